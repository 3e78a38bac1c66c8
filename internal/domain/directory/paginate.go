package directory

// paginationRange converts a 1-based (page, limit) pair into the zero-based
// inclusive [start, end] window used by both the rating index and the review
// ledger range queries. Callers validate page >= 1 and limit >= 1; invalid
// input passes through uncorrected.
func paginationRange(page, limit int) (int64, int64) {
	start := int64(page-1) * int64(limit)
	end := start + int64(limit) - 1
	return start, end
}
