package domain

import "slices"

type Filter struct {
	Category Category
	Page     int
	PageSize int
}

func ValidateFilters(ev *ErrValidation, f *Filter) {
	ev.Evaluate(f.Page > 0, "page", "must be greater than zero")
	ev.Evaluate(f.Page <= 10_000_000, "page", "must be a max of 10 million")
	ev.Evaluate(f.PageSize > 0, "page_size", "must be greater than zero")
	ev.Evaluate(f.PageSize <= 100, "page_size", "must be a max of 100")
	ev.Evaluate(f.Category == "" || f.Category == CategoryAll || slices.Contains(Categories, f.Category),
		"category", "invalid category")
}

// Filtered reports whether the listing must be restricted to a single category
func (f *Filter) Filtered() bool {
	return f.Category != "" && f.Category != CategoryAll
}

func (f *Filter) Limit() int {
	return f.PageSize
}

func (f *Filter) Offset() int {
	return (f.Page - 1) * f.PageSize
}
