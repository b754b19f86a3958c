package board

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const presenceUserLocal = "presence.user_id"

// Disconnector is notified when a realtime connection for a user goes away
type Disconnector interface {
	HandleDisconnection(ctx context.Context, userID uuid.UUID) error
}

// MessageReader is the read side of a realtime connection
type MessageReader interface {
	ReadMessage() (messageType int, p []byte, err error)
}

// PresenceChannel is a websocket endpoint whose lifetime tracks a user's
// presence. Closing the socket clears the user's sign in status.
type PresenceChannel struct {
	disconnector Disconnector
	validator    TokenValidator
	logger       Logger
	tokenQuery   string
	timeout      time.Duration
}

type PresenceChannelOption func(*PresenceChannel)

// WithPresenceLogger sets the logger
func WithPresenceLogger(logger Logger) PresenceChannelOption {
	return func(p *PresenceChannel) {
		p.logger = normalizeLogger(logger)
	}
}

// WithPresenceTokenQuery sets the query parameter carrying the token
func WithPresenceTokenQuery(name string) PresenceChannelOption {
	return func(p *PresenceChannel) {
		if name != "" {
			p.tokenQuery = name
		}
	}
}

func NewPresenceChannel(disconnector Disconnector, validator TokenValidator, opts ...PresenceChannelOption) *PresenceChannel {
	p := &PresenceChannel{
		disconnector: disconnector,
		validator:    validator,
		logger:       defLogger{},
		tokenQuery:   "token",
		timeout:      DefaultStoreTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Register mounts the upgrade check and the websocket handler on path.
func (p *PresenceChannel) Register(r fiber.Router, path string) {
	r.Get(path, p.Upgrade, p.Handler()).Name("presence.ws")
}

// Upgrade authenticates the handshake. The token is read from the query
// string or from a bearer Authorization header.
func (p *PresenceChannel) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	raw := c.Query(p.tokenQuery)
	if raw == "" {
		auth := c.Get(fiber.HeaderAuthorization)
		if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
			raw = auth[7:]
		}
	}

	claims, err := ResolveIdentity(p.validator, raw)
	if err != nil {
		return err
	}

	userID, err := UserIDFromClaims(claims)
	if err != nil {
		return err
	}

	c.Locals(presenceUserLocal, userID)
	return c.Next()
}

// Handler returns the websocket handler
func (p *PresenceChannel) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals(presenceUserLocal).(uuid.UUID)
		p.Serve(userID, conn)
	})
}

// Serve drains the connection until it fails and then reports the
// disconnect for userID.
func (p *PresenceChannel) Serve(userID uuid.UUID, conn MessageReader) {
	p.logger.Debug("presence channel opened", "user_id", userID.String())
	defer p.disconnect(userID)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (p *PresenceChannel) disconnect(userID uuid.UUID) {
	if userID == uuid.Nil || p.disconnector == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.disconnector.HandleDisconnection(ctx, userID); err != nil {
		p.logger.Error("presence disconnect failed", "user_id", userID.String(), "error", err)
		return
	}
	p.logger.Debug("presence channel closed", "user_id", userID.String())
}
