package comments

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository persists comments.
// Lookups return (nil, nil) when the record does not exist.
type Repository interface {
	Create(ctx context.Context, record *Comment) (*Comment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Comment, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]*Comment, error)
}

type comments struct {
	repo repository.Repository[*Comment]
	db   *bun.DB
}

var _ Repository = (*comments)(nil)

func NewRepository(db *bun.DB) Repository {
	repo := repository.NewRepository[*Comment](db, repository.ModelHandlers[*Comment]{
		NewRecord: func() *Comment { return &Comment{} },
		GetID: func(c *Comment) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *Comment, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
		GetIdentifier: func() string {
			return "id"
		},
	})

	return &comments{repo: repo, db: db}
}

func (r *comments) Create(ctx context.Context, record *Comment) (*Comment, error) {
	if record == nil {
		return nil, errors.New("comment record must not be nil", errors.CategoryBadInput)
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt == nil {
		now := time.Now().UTC()
		record.CreatedAt = &now
	}
	return r.repo.Create(ctx, record)
}

func (r *comments) FindByID(ctx context.Context, id uuid.UUID) (*Comment, error) {
	record, err := r.repo.GetByID(ctx, id.String(), withAuthor)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

// ListByPost returns the comments of a post, newest first, with authors.
func (r *comments) ListByPost(ctx context.Context, postID uuid.UUID) ([]*Comment, error) {
	records := make([]*Comment, 0)
	err := r.db.NewSelect().
		Model(&records).
		Relation("Author").
		Where("cmt.post_id = ?", postID).
		Order("cmt.created_at DESC").
		Scan(ctx)
	if err != nil && !isNoRows(err) {
		return nil, err
	}
	return records, nil
}

func withAuthor(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Relation("Author")
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || repository.IsRecordNotFound(err)
}
