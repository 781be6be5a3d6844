// Package utils contains small helpers shared by the HTTP layer.
package utils

import "strconv"

// AtoiDefault parses s as a base-10 integer and returns def when s is empty
// or not a valid number. Handlers use it for query parameters like page and
// page_size so a malformed value falls back instead of failing the request.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
