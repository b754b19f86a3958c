package board

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Name          string     `bun:"name" json:"name,omitempty"`
	ImageURL      string     `bun:"image_url" json:"image_url,omitempty"`
	SignInStatus  bool       `bun:"sign_in_status,notnull" json:"sign_in_status"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// UserView is the public projection of a User. It has no credential fields.
type UserView struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name,omitempty"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	SignInStatus bool      `json:"signInStatus"`
}

// NewUserView projects a User. A nil user yields the zero view.
func NewUserView(u *User) UserView {
	if u == nil {
		return UserView{}
	}
	return UserView{
		ID:           u.ID,
		Username:     u.Username,
		Name:         u.Name,
		ImageURL:     u.ImageURL,
		SignInStatus: u.SignInStatus,
	}
}

// NewUserViewRef is NewUserView for optional relations
func NewUserViewRef(u *User) *UserView {
	if u == nil {
		return nil
	}
	v := NewUserView(u)
	return &v
}
