package comments

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	board "github.com/goliatone/go-board"
)

// Comment is a reply to a post. Comments are append only.
type Comment struct {
	bun.BaseModel `bun:"table:comments,alias:cmt"`
	ID            uuid.UUID   `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Content       string      `bun:"content,notnull" json:"content"`
	PostID        uuid.UUID   `bun:"post_id,notnull,type:uuid" json:"post_id"`
	AuthorID      uuid.UUID   `bun:"author_id,notnull,type:uuid" json:"author_id"`
	Author        *board.User `bun:"rel:belongs-to,join:author_id=id" json:"-"`
	CreatedAt     *time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// OwnerID implements board.Ownable
func (c *Comment) OwnerID() uuid.UUID {
	return c.AuthorID
}

// View is the public representation of a comment
type View struct {
	ID        uuid.UUID       `json:"id"`
	Content   string          `json:"content"`
	PostID    uuid.UUID       `json:"postId"`
	AuthorID  uuid.UUID       `json:"authorId"`
	Author    *board.UserView `json:"author,omitempty"`
	CreatedAt *time.Time      `json:"createdAt,omitempty"`
}

// NewView projects a comment together with its author
func NewView(c *Comment) View {
	if c == nil {
		return View{}
	}
	return View{
		ID:        c.ID,
		Content:   c.Content,
		PostID:    c.PostID,
		AuthorID:  c.AuthorID,
		Author:    board.NewUserViewRef(c.Author),
		CreatedAt: c.CreatedAt,
	}
}

// NewViews projects a list of comments
func NewViews(records []*Comment) []View {
	out := make([]View, 0, len(records))
	for _, c := range records {
		if c != nil {
			out = append(out, NewView(c))
		}
	}
	return out
}
