package dto

// PageGap marks an elided run of pages in a page-number strip.
const PageGap = 0

// PageNumbers produces the pagination strip for the given current page and
// total: all pages when seven or fewer fit, otherwise a window around the
// current page with the first and last pages always visible and gaps marked
// by PageGap.
func PageNumbers(current, total int) []int {
	if total <= 0 {
		return nil
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}

	if total <= 7 {
		pages := make([]int, 0, total)
		for p := 1; p <= total; p++ {
			pages = append(pages, p)
		}
		return pages
	}

	switch {
	case current <= 4:
		return []int{1, 2, 3, 4, 5, PageGap, total}
	case current >= total-3:
		return []int{1, PageGap, total - 4, total - 3, total - 2, total - 1, total}
	default:
		return []int{1, PageGap, current - 1, current, current + 1, PageGap, total}
	}
}
