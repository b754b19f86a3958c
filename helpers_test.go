package board_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	board "github.com/goliatone/go-board"
)

const testSigningKey = "test-signing-key"

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})

	require.NoError(t, board.Migrate(context.Background(), sqldb, "sqlite"))
	return db
}

func newTestTokenService(t *testing.T, opts ...board.TokenServiceOption) *board.TokenServiceImpl {
	t.Helper()
	ts, err := board.NewTokenService(board.TokenSettings{
		SigningKey: testSigningKey,
		Expiration: time.Hour,
	}, opts...)
	require.NoError(t, err)
	return ts
}

// memUsers is an in memory credential store
type memUsers struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*board.User
	findErr error
	// onCreate runs before the insert, used to simulate a concurrent writer
	onCreate func(record *board.User)
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[uuid.UUID]*board.User{}}
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (*board.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) FindByID(_ context.Context, id uuid.UUID) (*board.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Create(_ context.Context, record *board.User) (*board.User, error) {
	if m.onCreate != nil {
		m.onCreate(record)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Username == record.Username {
			return nil, board.ErrConflict
		}
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.SignInStatus = false
	cp := *record
	m.byID[record.ID] = &cp
	return record, nil
}

func (m *memUsers) UpdateSignInStatus(_ context.Context, id uuid.UUID, status bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return board.NotFound("User", id.String())
	}
	u.SignInStatus = status
	return nil
}

func (m *memUsers) status(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id].SignInStatus
}

// MockUsers is a testify mock of board.Users
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) FindByUsername(ctx context.Context, username string) (*board.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*board.User), args.Error(1)
}

func (m *MockUsers) FindByID(ctx context.Context, id uuid.UUID) (*board.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*board.User), args.Error(1)
}

func (m *MockUsers) Create(ctx context.Context, record *board.User) (*board.User, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*board.User), args.Error(1)
}

func (m *MockUsers) UpdateSignInStatus(ctx context.Context, id uuid.UUID, status bool) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockLogger implements board.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) { m.Called(format, args) }
func (m *MockLogger) Info(format string, args ...any)  { m.Called(format, args) }
func (m *MockLogger) Warn(format string, args ...any)  { m.Called(format, args) }
func (m *MockLogger) Error(format string, args ...any) { m.Called(format, args) }

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
