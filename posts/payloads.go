package posts

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListQuery filters and paginates post listings
type ListQuery struct {
	Page     int      `query:"page"`
	Limit    int      `query:"limit"`
	Search   string   `query:"search"`
	Category Category `query:"category"`
}

// Normalize applies defaults and clamps the page size
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// Offset is the number of rows skipped for the page
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Validate will run validation rules
func (q ListQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Category, validation.In(categoryValues()...)),
	)
}

// TotalPages is ceil(total/limit)
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// CreateInput is the payload for a new post
type CreateInput struct {
	Title    string   `json:"title" form:"title"`
	Content  string   `json:"content" form:"content"`
	Category Category `json:"category" form:"category"`
}

// Validate will run validation rules
func (r CreateInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.RuneLength(1, 255)),
		validation.Field(&r.Content, validation.Required),
		validation.Field(&r.Category, validation.Required, validation.In(categoryValues()...)),
	)
}

// UpdateInput is a partial post update. Nil fields are left unchanged.
type UpdateInput struct {
	Title    *string   `json:"title,omitempty" form:"title"`
	Content  *string   `json:"content,omitempty" form:"content"`
	Category *Category `json:"category,omitempty" form:"category"`
}

// Validate will run validation rules
func (r UpdateInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.RuneLength(1, 255)),
		validation.Field(&r.Content, validation.NilOrNotEmpty),
		validation.Field(&r.Category, validation.NilOrNotEmpty, validation.In(categoryValues()...)),
	)
}

// Apply copies the present fields onto p
func (r UpdateInput) Apply(p *Post) {
	if r.Title != nil {
		p.Title = *r.Title
	}
	if r.Content != nil {
		p.Content = *r.Content
	}
	if r.Category != nil {
		p.Category = *r.Category
	}
}
