package posts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	board "github.com/goliatone/go-board"
	"github.com/goliatone/go-board/comments"
)

// Category classifies a post
type Category string

const (
	CategoryHistory  Category = "History"
	CategoryFood     Category = "Food"
	CategoryPets     Category = "Pets"
	CategoryHealth   Category = "Health"
	CategoryFashion  Category = "Fashion"
	CategoryExercise Category = "Exercise"
	CategoryOthers   Category = "Others"
)

// Categories lists every accepted category
var Categories = []Category{
	CategoryHistory,
	CategoryFood,
	CategoryPets,
	CategoryHealth,
	CategoryFashion,
	CategoryExercise,
	CategoryOthers,
}

func categoryValues() []any {
	out := make([]any, len(Categories))
	for i, c := range Categories {
		out[i] = c
	}
	return out
}

// Post is the post model
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:pst"`
	ID            uuid.UUID           `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title         string              `bun:"title,notnull" json:"title"`
	Content       string              `bun:"content,notnull" json:"content"`
	Category      Category            `bun:"category,notnull" json:"category"`
	AuthorID      uuid.UUID           `bun:"author_id,notnull,type:uuid" json:"author_id"`
	Author        *board.User         `bun:"rel:belongs-to,join:author_id=id" json:"-"`
	Comments      []*comments.Comment `bun:"rel:has-many,join:id=post_id" json:"-"`
	CreatedAt     *time.Time          `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time          `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// OwnerID implements board.Ownable
func (p *Post) OwnerID() uuid.UUID {
	return p.AuthorID
}

// View is the public representation of a post
type View struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	Content      string          `json:"content"`
	Category     Category        `json:"category"`
	AuthorID     uuid.UUID       `json:"authorId"`
	Author       *board.UserView `json:"author,omitempty"`
	CommentCount int             `json:"commentCount"`
	Comments     []comments.View `json:"comments,omitempty"`
	CreatedAt    *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time      `json:"updatedAt,omitempty"`
}

// NewView projects a post. Loaded comments are included and counted.
func NewView(p *Post, commentCount int) View {
	if p == nil {
		return View{}
	}
	v := View{
		ID:           p.ID,
		Title:        p.Title,
		Content:      p.Content,
		Category:     p.Category,
		AuthorID:     p.AuthorID,
		Author:       board.NewUserViewRef(p.Author),
		CommentCount: commentCount,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.Comments != nil {
		v.Comments = comments.NewViews(p.Comments)
		v.CommentCount = len(v.Comments)
	}
	return v
}

// Meta describes a page of results
type Meta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// Page is a paginated list of posts
type Page struct {
	Data []View `json:"data"`
	Meta Meta   `json:"meta"`
}

// DeleteResult acknowledges a delete
type DeleteResult struct {
	Message string `json:"message"`
}
