package listing

// Button is one entry of the page selector. Ellipsis entries carry no page.
type Button struct {
	Page     int  `json:"page,omitempty"`
	Current  bool `json:"current,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

const maxButtons = 5

// TotalPages is the number of pages needed for n records.
func TotalPages(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Bounds returns the half-open slice range of page.
func Bounds(page, size, n int) (int, int) {
	start := size * (page - 1)
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	end := start + size
	if end > n {
		end = n
	}
	return start, end
}

// Buttons lists every page when there are at most five, otherwise the first
// and last pages around a window of three.
func Buttons(page, total int) []Button {
	var pages []int
	switch {
	case total <= maxButtons:
		for i := 1; i <= total; i++ {
			pages = append(pages, i)
		}
	case page <= 3:
		pages = []int{1, 2, 3, 4, 0, total}
	case page >= total-2:
		pages = []int{1, 0, total - 3, total - 2, total - 1, total}
	default:
		pages = []int{1, 0, page - 1, page, page + 1, 0, total}
	}

	out := make([]Button, len(pages))
	for i, p := range pages {
		if p == 0 {
			out[i] = Button{Ellipsis: true}
			continue
		}
		out[i] = Button{Page: p, Current: p == page}
	}
	return out
}
