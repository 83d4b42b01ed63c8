package utils

// PageWindow converts a 1-based page into LIMIT/OFFSET values.
type PageWindow struct {
	Page    int
	PerPage int
}

func (w PageWindow) Offset() int {
	if w.Page < 1 || w.PerPage < 1 {
		return 0
	}
	return (w.Page - 1) * w.PerPage
}

// Pages is the number of pages needed for total rows. Zero rows means zero pages.
func (w PageWindow) Pages(total int64) int {
	if w.PerPage < 1 || total < 1 {
		return 0
	}
	per := int64(w.PerPage)
	return int((total + per - 1) / per)
}

func (w PageWindow) HasNext(total int64) bool {
	return w.Page < w.Pages(total)
}
