package domain

// NormalizePage applies defaults and clamps limit to [1, MaxLimit].
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// Offset returns the row offset for a normalized page.
func Offset(page, limit int) int {
	return (page - 1) * limit
}
