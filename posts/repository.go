package posts

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-board/comments"
)

// Repository persists posts.
// Lookups return (nil, nil) when the record does not exist.
type Repository interface {
	Create(ctx context.Context, record *Post) (*Post, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Post, error)
	FindDetail(ctx context.Context, id uuid.UUID) (*Post, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, authorID uuid.UUID, query ListQuery) ([]*Post, int, error)
	CommentCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error)
	Update(ctx context.Context, record *Post) (*Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type posts struct {
	repo repository.Repository[*Post]
	db   *bun.DB
}

var _ Repository = (*posts)(nil)

func NewRepository(db *bun.DB) Repository {
	repo := repository.NewRepository[*Post](db, repository.ModelHandlers[*Post]{
		NewRecord: func() *Post { return &Post{} },
		GetID: func(p *Post) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Post, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
		GetIdentifier: func() string {
			return "id"
		},
	})

	return &posts{repo: repo, db: db}
}

func (r *posts) Create(ctx context.Context, record *Post) (*Post, error) {
	if record == nil {
		return nil, errors.New("post record must not be nil", errors.CategoryBadInput)
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	now := time.Now().UTC()
	record.CreatedAt = &now
	record.UpdatedAt = &now
	return r.repo.Create(ctx, record)
}

func (r *posts) FindByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	record, err := r.repo.GetByID(ctx, id.String(), withAuthor)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

// FindDetail loads a post with its author and its comments, newest first,
// each with their author.
func (r *posts) FindDetail(ctx context.Context, id uuid.UUID) (*Post, error) {
	record := &Post{}
	err := r.db.NewSelect().
		Model(record).
		Relation("Author").
		Relation("Comments", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("cmt.created_at DESC")
		}).
		Relation("Comments.Author").
		Where("pst.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	if record.Comments == nil {
		record.Comments = []*comments.Comment{}
	}
	return record, nil
}

func (r *posts) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.db.NewSelect().
		Model((*Post)(nil)).
		Where("pst.id = ?", id).
		Exists(ctx)
}

// likeEscaper makes LIKE wildcards in a search term match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List returns one page of posts, newest first, and the total match count.
// A non nil authorID restricts the listing to that author.
func (r *posts) List(ctx context.Context, authorID uuid.UUID, query ListQuery) ([]*Post, int, error) {
	query = query.Normalize()
	records := make([]*Post, 0, query.Limit)

	q := r.db.NewSelect().
		Model(&records).
		Relation("Author")

	if authorID != uuid.Nil {
		q = q.Where("pst.author_id = ?", authorID)
	}
	if query.Search != "" {
		q = q.Where(`LOWER(pst.title) LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(strings.ToLower(query.Search))+"%")
	}
	if query.Category != "" {
		q = q.Where("pst.category = ?", query.Category)
	}

	total, err := q.
		Order("pst.created_at DESC").
		Limit(query.Limit).
		Offset(query.Offset()).
		ScanAndCount(ctx)
	if err != nil && !isNoRows(err) {
		return nil, 0, err
	}
	return records, total, nil
}

// CommentCounts returns the number of comments per post id
func (r *posts) CommentCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []struct {
		PostID uuid.UUID `bun:"post_id"`
		Total  int       `bun:"total"`
	}

	err := r.db.NewSelect().
		Model((*comments.Comment)(nil)).
		Column("post_id").
		ColumnExpr("COUNT(*) AS total").
		Where("cmt.post_id IN (?)", bun.In(ids)).
		Group("post_id").
		Scan(ctx, &rows)
	if err != nil && !isNoRows(err) {
		return nil, err
	}

	for _, row := range rows {
		counts[row.PostID] = row.Total
	}
	return counts, nil
}

func (r *posts) Update(ctx context.Context, record *Post) (*Post, error) {
	now := time.Now().UTC()
	record.UpdatedAt = &now

	_, err := r.db.NewUpdate().
		Model(record).
		Column("title", "content", "category", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Delete removes a post and its comments
func (r *posts) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*comments.Comment)(nil)).
			Where("post_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}

		_, err := tx.NewDelete().
			Model((*Post)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		return err
	})
}

func withAuthor(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Relation("Author")
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || repository.IsRecordNotFound(err)
}
