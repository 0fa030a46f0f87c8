package utils

// NormalizePage clamps the page/per_page query values the same way every
// paginated listing does: page starts at 1, per_page stays within 1..100
// and falls back to 10 when out of range.
func NormalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}
	return page, perPage
}

// Pages returns the number of pages needed for total items at perPage per
// page.  An empty result set still reports one page.
func Pages(total, perPage int) int {
	if total <= 0 {
		return 1
	}
	pages := total / perPage
	if total%perPage != 0 {
		pages++
	}
	return pages
}
