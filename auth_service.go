package board

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultStoreTimeout bounds every credential store round trip.
const DefaultStoreTimeout = 5 * time.Second

// AuthService orchestrates sign up, sign in, sign out, disconnect and
// profile lookups.
type AuthService struct {
	users        Users
	hasher       PasswordHasher
	tokens       TokenIssuer
	presence     PresenceTracker
	logger       Logger
	activitySink ActivitySink
	storeTimeout time.Duration
	now          func() time.Time

	decoyOnce   sync.Once
	decoyDigest string
}

// AuthServiceOption customizes the AuthService
type AuthServiceOption func(*AuthService)

// WithServiceLogger sets the logger
func WithServiceLogger(logger Logger) AuthServiceOption {
	return func(s *AuthService) {
		s.logger = normalizeLogger(logger)
	}
}

// WithActivitySink sets the sink receiving auth events
func WithActivitySink(sink ActivitySink) AuthServiceOption {
	return func(s *AuthService) {
		s.activitySink = normalizeActivitySink(sink)
	}
}

// WithPresenceTracker overrides the tracker built from the credential store
func WithPresenceTracker(tracker PresenceTracker) AuthServiceOption {
	return func(s *AuthService) {
		if tracker != nil {
			s.presence = tracker
		}
	}
}

// WithStoreTimeout sets the per call store deadline. Zero disables it.
func WithStoreTimeout(timeout time.Duration) AuthServiceOption {
	return func(s *AuthService) {
		if timeout >= 0 {
			s.storeTimeout = timeout
		}
	}
}

// WithServiceClock overrides the clock used for activity timestamps
func WithServiceClock(now func() time.Time) AuthServiceOption {
	return func(s *AuthService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewAuthService wires the service collaborators
func NewAuthService(users Users, hasher PasswordHasher, tokens TokenIssuer, opts ...AuthServiceOption) *AuthService {
	if hasher == nil {
		hasher = NewBcryptHasher(DefaultBcryptCost)
	}

	s := &AuthService{
		users:        users,
		hasher:       hasher,
		tokens:       tokens,
		presence:     NewPresenceTracker(users),
		logger:       defLogger{},
		activitySink: noopActivitySink{},
		storeTimeout: DefaultStoreTimeout,
		now:          time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// SignUp registers a new account. The account starts signed out.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (SignUpResult, error) {
	input.Username = NormalizeUsername(input.Username)
	if err := input.Validate(); err != nil {
		return SignUpResult{}, ValidationError(err, "invalid sign up payload")
	}

	existing, err := s.findByUsername(ctx, input.Username)
	if err != nil {
		return SignUpResult{}, err
	}

	if existing != nil {
		s.logger.Info("sign up rejected, username taken", "username", input.Username)
		return SignUpResult{}, ErrConflict
	}

	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.logger.Error("sign up failed to hash password", "error", err)
		return SignUpResult{}, err
	}

	user, err := s.create(ctx, &User{
		Username:     input.Username,
		PasswordHash: digest,
		Name:         input.Name,
		ImageURL:     input.ImageURL,
	})
	if err != nil {
		if IsConflict(err) {
			s.logger.Info("sign up lost username race", "username", input.Username)
			return SignUpResult{}, ErrConflict
		}
		return SignUpResult{}, err
	}

	s.logger.Info("user signed up", "user_id", user.ID.String())
	s.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventSignUp,
		UserID:    user.ID.String(),
		Actor:     ActorRef{ID: user.ID.String(), Type: "user"},
		Metadata:  map[string]any{"username": user.Username},
	})

	return SignUpResult{User: NewUserView(user)}, nil
}

// SignIn verifies credentials, marks the user present and issues a token.
// An unknown username and a wrong password fail with the same error.
func (s *AuthService) SignIn(ctx context.Context, input SignInInput) (SignInResult, error) {
	input.Username = NormalizeUsername(input.Username)
	user, err := s.findByUsername(ctx, input.Username)
	if err != nil {
		return SignInResult{}, err
	}

	if user == nil {
		s.hasher.Verify(input.Password, s.decoy())
		s.signInFailed(ctx, input.Username, "")
		return SignInResult{}, ErrUnauthorized
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		s.signInFailed(ctx, input.Username, user.ID.String())
		return SignInResult{}, ErrUnauthorized
	}

	if err := s.setPresence(ctx, user.ID, true); err != nil {
		return SignInResult{}, err
	}
	user.SignInStatus = true

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error("sign in failed to issue token", "user_id", user.ID.String(), "error", err)
		return SignInResult{}, err
	}

	s.logger.Info("user signed in", "user_id", user.ID.String())
	s.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventSignInSuccess,
		UserID:    user.ID.String(),
		Actor:     ActorRef{ID: user.ID.String(), Type: "user"},
	})

	return SignInResult{
		Token: token,
		User:  NewUserView(user),
	}, nil
}

// SignOut clears the presence flag. Issued tokens remain valid until they
// expire. Signing out twice is not an error.
func (s *AuthService) SignOut(ctx context.Context, userID uuid.UUID) (SignOutResult, error) {
	if err := s.setPresence(ctx, userID, false); err != nil {
		return SignOutResult{}, err
	}

	s.logger.Info("user signed out", "user_id", userID.String())
	s.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventSignOut,
		UserID:    userID.String(),
		Actor:     ActorRef{ID: userID.String(), Type: "user"},
	})

	return SignOutResult{Success: true, Message: signOutMessage}, nil
}

// HandleDisconnection clears the presence flag when a realtime connection
// drops. Unknown users are ignored.
func (s *AuthService) HandleDisconnection(ctx context.Context, userID uuid.UUID) error {
	if err := s.setPresence(ctx, userID, false); err != nil {
		if IsNotFound(err) {
			s.logger.Debug("disconnect for unknown user", "user_id", userID.String())
			return nil
		}
		s.logger.Error("failed to clear presence on disconnect", "user_id", userID.String(), "error", err)
		return err
	}

	s.logger.Debug("user disconnected", "user_id", userID.String())
	s.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventDisconnect,
		UserID:    userID.String(),
		Actor:     ActorRef{ID: "transport", Type: "system"},
	})
	return nil
}

// GetProfile returns the public view of a user
func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (UserView, error) {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return UserView{}, StoreError(err, "users.find_by_id")
	}
	if user == nil {
		return UserView{}, derive(ErrNotFound, "User not found", map[string]any{
			"kind": "User",
			"id":   userID.String(),
		})
	}
	return NewUserView(user), nil
}

func (s *AuthService) findByUsername(ctx context.Context, username string) (*User, error) {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		s.logger.Error("credential lookup failed", "error", err)
		return nil, StoreError(err, "users.find_by_username")
	}
	return user, nil
}

func (s *AuthService) create(ctx context.Context, user *User) (*User, error) {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if IsConflict(err) {
			return nil, err
		}
		s.logger.Error("credential create failed", "error", err)
		return nil, StoreError(err, "users.create")
	}
	return created, nil
}

func (s *AuthService) setPresence(ctx context.Context, userID uuid.UUID, status bool) error {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	if err := s.presence.SetSignedIn(ctx, userID, status); err != nil {
		if IsNotFound(err) {
			return err
		}
		return StoreError(err, "users.update_sign_in_status")
	}
	return nil
}

func (s *AuthService) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

// fallbackDecoyDigest is a cost 10 bcrypt digest used when the hasher
// cannot produce a decoy of its own.
const fallbackDecoyDigest = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// decoy returns a digest used to spend the same hashing time when the
// username does not exist.
func (s *AuthService) decoy() string {
	s.decoyOnce.Do(func() {
		s.decoyDigest = fallbackDecoyDigest
		digest, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.logger.Warn("decoy digest unavailable, using fallback", "error", err)
			return
		}
		if digest != "" {
			s.decoyDigest = digest
		}
	})
	return s.decoyDigest
}

func (s *AuthService) signInFailed(ctx context.Context, username, userID string) {
	s.logger.Info("sign in rejected", "username", username)
	s.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventSignInFailure,
		UserID:    userID,
		Actor:     ActorRef{ID: username, Type: "anonymous"},
	})
}

func (s *AuthService) recordActivity(ctx context.Context, event ActivityEvent) {
	if s.activitySink == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now().UTC()
	}
	if err := s.activitySink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink failed", "event", string(event.EventType), "error", err)
	}
}
