package board

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type users struct {
	repo repository.Repository[*User]
	db   bun.IDB
}

var _ Users = (*users)(nil)

// NewUsersRepository returns the bun backed credential store
func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	return &users{
		repo: repo,
		db:   db,
	}
}

func (a *users) FindByUsername(ctx context.Context, username string) (*User, error) {
	if username == "" {
		return nil, nil
	}

	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.username = ?", username).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func (a *users) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	if id == uuid.Nil {
		return nil, nil
	}

	record, err := a.repo.GetByID(ctx, id.String())
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

// Create inserts a new user. A duplicate username is reported as ErrConflict.
func (a *users) Create(ctx context.Context, record *User) (*User, error) {
	if record == nil {
		return nil, errors.New("user record must not be nil", errors.CategoryBadInput)
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.SignInStatus = false

	created, err := a.repo.Create(ctx, record)
	if err != nil {
		if IsUniqueViolation(err) || a.taken(ctx, record.Username) {
			return nil, derive(ErrConflict, ErrConflict.Message, map[string]any{
				"username": record.Username,
			})
		}
		return nil, err
	}
	return created, nil
}

// UpdateSignInStatus sets the presence flag with a single row update.
// A missing user yields a not found error.
func (a *users) UpdateSignInStatus(ctx context.Context, id uuid.UUID, status bool) error {
	res, err := a.db.NewUpdate().
		Model((*User)(nil)).
		Set("sign_in_status = ?", status).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return NotFound("User", id.String())
	}
	return nil
}

// taken reports whether username is already stored. Used when the driver
// error for a failed insert does not carry the constraint name.
func (a *users) taken(ctx context.Context, username string) bool {
	if ctx.Err() != nil {
		return false
	}
	existing, err := a.FindByUsername(ctx, username)
	return err == nil && existing != nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || repository.IsRecordNotFound(err)
}
