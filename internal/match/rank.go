package match

import (
	"sort"
	"time"
)

// MarkUsage annotates candidates with usage recency: a candidate whose
// (template id, variant index) appears in usage within lookback of now is
// flagged recently used, with LastUsedAt set to the most recent qualifying
// timestamp. Records outside the window are ignored.
func MarkUsage(cands []*Candidate, usage []Usage, lookback time.Duration, now time.Time) {
	if len(cands) == 0 || len(usage) == 0 {
		return
	}
	cutoff := now.Add(-lookback)

	type key struct {
		id      string
		variant int
	}
	last := make(map[key]time.Time, len(usage))
	for _, u := range usage {
		if u.At.Before(cutoff) || u.At.After(now) {
			continue
		}
		k := key{u.TemplateID, u.VariantIndex}
		if prev, ok := last[k]; !ok || u.At.After(prev) {
			last[k] = u.At
		}
	}

	for _, c := range cands {
		if at, ok := last[key{c.Template.ID, c.VariantIndex}]; ok {
			c.RecentlyUsed = true
			c.LastUsedAt = at
			c.hasLastUsed = true
		}
	}
}

// Rank orders candidates by the core ranking contract: fresh candidates
// (no qualifying recent usage) always precede stale ones, regardless of
// score. Fresh sorts by score descending with template id then variant
// index as deterministic tie-breaks; stale sorts by last use ascending so
// repeats rotate fairly, with unresolved timestamps first. The result is
// truncated to limit.
func Rank(cands []*Candidate, limit int) []*Candidate {
	if limit <= 0 {
		limit = 3
	}

	fresh := make([]*Candidate, 0, len(cands))
	stale := make([]*Candidate, 0, len(cands))
	for _, c := range cands {
		if c.RecentlyUsed {
			stale = append(stale, c)
			continue
		}
		fresh = append(fresh, c)
	}

	sort.SliceStable(fresh, func(a, b int) bool {
		if fresh[a].Score != fresh[b].Score {
			return fresh[a].Score > fresh[b].Score
		}
		if fresh[a].Template.ID != fresh[b].Template.ID {
			return fresh[a].Template.ID < fresh[b].Template.ID
		}
		return fresh[a].VariantIndex < fresh[b].VariantIndex
	})

	sort.SliceStable(stale, func(a, b int) bool {
		sa, sb := stale[a], stale[b]
		if sa.hasLastUsed != sb.hasLastUsed {
			return !sa.hasLastUsed // unknown last use sorts first
		}
		return sa.LastUsedAt.Before(sb.LastUsedAt)
	})

	out := append(fresh, stale...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
