package util

const DefaultPageSize = 10

// Calculate clamps a 1-based page number and page size to sane bounds and
// returns the resulting offset and limit.
func Calculate(page, size int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = DefaultPageSize
	}
	offset = (page - 1) * size
	return offset, size
}

// TotalPages rounds up total/limit.
func TotalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
