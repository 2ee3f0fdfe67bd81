package db

import (
	"fmt"

	"gorm.io/gorm"
)

// Page is one page of an ordered listing
type Page[T any] struct {
	Number int
	Size   int
	Total  int64
	Items  []T
}

// NumPages is the number of pages; an empty listing still has one page.
func (p *Page[T]) NumPages() int {
	if p.Total == 0 || p.Size <= 0 {
		return 1
	}
	return int((p.Total + int64(p.Size) - 1) / int64(p.Size))
}

// HasPrevious reports whether a page precedes this one
func (p *Page[T]) HasPrevious() bool {
	return p.Number > 1
}

// HasNext reports whether a page follows this one
func (p *Page[T]) HasNext() bool {
	return p.Number < p.NumPages()
}

// PreviousNumber returns the previous page number
func (p *Page[T]) PreviousNumber() int {
	return p.Number - 1
}

// NextNumber returns the next page number
func (p *Page[T]) NextNumber() int {
	return p.Number + 1
}

// Len returns the number of items on this page
func (p *Page[T]) Len() int {
	return len(p.Items)
}

func (p *Page[T]) offset() int {
	return (p.Number - 1) * p.Size
}

// resolvePage clamps a requested page number: anything below 1 becomes the
// first page, anything past the end becomes the last page.
func resolvePage(requested, size int, total int64) int {
	if requested < 1 {
		return 1
	}
	p := &Page[struct{}]{Size: size, Total: total}
	if last := p.NumPages(); requested > last {
		return last
	}
	return requested
}

// Paginate counts query, then loads the resolved page. The scopes apply to
// the item query only (ordering, preloads).
func Paginate[T any](query *gorm.DB, number, size int, scopes ...func(*gorm.DB) *gorm.DB) (*Page[T], error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid page size: %d", size)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count page items: %w", err)
	}

	page := &Page[T]{
		Number: resolvePage(number, size, total),
		Size:   size,
		Total:  total,
		Items:  []T{},
	}
	if total == 0 {
		return page, nil
	}

	if err := query.Session(&gorm.Session{}).
		Scopes(scopes...).
		Offset(page.offset()).
		Limit(size).
		Find(&page.Items).Error; err != nil {
		return nil, fmt.Errorf("failed to load page items: %w", err)
	}

	return page, nil
}
