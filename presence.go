package board

import (
	"context"

	"github.com/google/uuid"
)

type presenceTracker struct {
	users Users
}

// NewPresenceTracker returns a PresenceTracker that keeps the flag on the
// user record.
func NewPresenceTracker(users Users) PresenceTracker {
	return &presenceTracker{users: users}
}

func (p *presenceTracker) SetSignedIn(ctx context.Context, userID uuid.UUID, status bool) error {
	return p.users.UpdateSignInStatus(ctx, userID, status)
}

func (p *presenceTracker) IsSignedIn(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := p.users.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, NotFound("User", userID.String())
	}
	return user.SignInStatus, nil
}
