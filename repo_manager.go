package board

import (
	"errors"

	"github.com/uptrace/bun"
)

// RepositoryManager exposes the credential store and its database
type RepositoryManager interface {
	Validate() error
	Users() Users
	DB() *bun.DB
}

type mngr struct {
	db    *bun.DB
	users Users
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:    db,
		users: NewUsersRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.db == nil {
		return errors.New("repository db should be initialized")
	}

	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	return nil
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) DB() *bun.DB {
	return m.db
}
