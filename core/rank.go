package core

// topN returns the first 'limit' items. A limit of zero or less keeps everything.
func topN[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
