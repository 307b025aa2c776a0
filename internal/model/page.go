package model

// Page is one slice of a larger ordered result set.
// Number is the zero-based page index.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// NewPage builds a Page and derives TotalPages from total and size.
func NewPage[T any](content []T, number, size int, total int64) *Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	return &Page[T]{
		Content:       content,
		Number:        number,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}

func (p *Page[T]) NumberOfElements() int { return len(p.Content) }

func (p *Page[T]) IsFirst() bool { return p.Number == 0 }

func (p *Page[T]) IsLast() bool { return !p.HasNext() }

func (p *Page[T]) HasNext() bool { return p.Number+1 < p.TotalPages }

func (p *Page[T]) HasPrevious() bool { return p.Number > 0 }

func (p *Page[T]) NextNumber() int { return p.Number + 1 }

func (p *Page[T]) PreviousNumber() int {
	if p.Number == 0 {
		return 0
	}
	return p.Number - 1
}

// LastNumber is the index of the final page, 0 for an empty result.
func (p *Page[T]) LastNumber() int {
	if p.TotalPages == 0 {
		return 0
	}
	return p.TotalPages - 1
}

// DisplayNumber is the one-based page number shown to humans.
func (p *Page[T]) DisplayNumber() int { return p.Number + 1 }
