package domain

import "time"

// RequestLog records one metered suggestion request. The quota policy
// counts these rows inside the rolling window; rows are append-only and
// pruned opportunistically once they age out of any possible window.
type RequestLog struct {
	ID          string    `gorm:"type:char(36);primaryKey"`
	UserID      string    `gorm:"type:varchar(64);not null;index:idx_user_requests,priority:1"`
	RequestedAt time.Time `gorm:"not null;index:idx_user_requests,priority:2"`
}

// TableName implements the GORM tabler interface.
func (RequestLog) TableName() string { return "request_log" }
