package orderstore

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is a 1-based pagination request.
type Page struct {
	Number int
	Size   int
}

// NewPage normalizes the given page number and size: number defaults to 1,
// size defaults to DefaultPageSize and is capped at MaxPageSize.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}

	if size < 1 {
		size = DefaultPageSize
	}

	if size > MaxPageSize {
		size = MaxPageSize
	}

	return Page{Number: number, Size: size}
}

// Offset returns the number of rows to skip for this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// OrderPage is one page of orders, newest first.
// CountsByStatus is only filled for listings across all customers.
type OrderPage struct {
	Orders         []StorableOrder
	Page           Page
	TotalCount     int
	CountsByStatus map[string]int
}

// TotalPages returns the number of pages needed for TotalCount.
func (p OrderPage) TotalPages() int {
	if p.Page.Size == 0 {
		return 0
	}

	return (p.TotalCount + p.Page.Size - 1) / p.Page.Size
}
