package activitymap_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	board "github.com/goliatone/go-board"
	"github.com/goliatone/go-board/activitymap"
)

func TestNormalizeDefaults(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)
	event := board.ActivityEvent{
		EventType: board.ActivityEventSignUp,
		Actor:     board.ActorRef{ID: "user-100", Type: "user"},
		UserID:    "user-100",
		Metadata: map[string]any{
			"username": "alice1",
		},
		OccurredAt: ts,
	}

	out := activitymap.Normalize(event)

	assert.Equal(t, "user-100", out.ActorID)
	assert.Equal(t, string(board.ActivityEventSignUp), out.Verb)
	assert.Equal(t, "user", out.ObjectType)
	assert.Equal(t, "user-100", out.ObjectID)
	assert.Equal(t, "auth", out.Channel)
	assert.True(t, out.OccurredAt.Equal(ts))
	assert.Equal(t, "alice1", out.Metadata["username"])
	assert.Equal(t, "user", out.Metadata[activitymap.MetadataKeyActorType])
	assert.Len(t, event.Metadata, 1, "source metadata must not be mutated")
}

func TestNormalizeFallbacks(t *testing.T) {
	t.Parallel()

	out := activitymap.Normalize(board.ActivityEvent{
		EventType: board.ActivityEventSignInFailure,
	}, activitymap.WithActorFallback("anonymous"), activitymap.WithDefaultChannel("presence"))

	assert.Equal(t, "anonymous", out.ActorID)
	assert.Equal(t, "presence", out.Channel)
	assert.Empty(t, out.ObjectID)
	assert.Nil(t, out.Metadata)
	assert.False(t, out.OccurredAt.IsZero())
}

func TestNormalizeKeepsExplicitActorType(t *testing.T) {
	t.Parallel()

	out := activitymap.Normalize(board.ActivityEvent{
		EventType: board.ActivityEventDisconnect,
		Actor:     board.ActorRef{ID: "transport", Type: "system"},
		UserID:    "user-1",
		Metadata:  map[string]any{activitymap.MetadataKeyActorType: "existing"},
	})

	assert.Equal(t, "transport", out.ActorID)
	assert.Equal(t, "existing", out.Metadata[activitymap.MetadataKeyActorType])
}

type captureLogger struct {
	messages []string
	args     [][]any
}

func (l *captureLogger) Debug(msg string, args ...any) {}
func (l *captureLogger) Warn(msg string, args ...any)  {}
func (l *captureLogger) Error(msg string, args ...any) {}
func (l *captureLogger) Info(msg string, args ...any) {
	l.messages = append(l.messages, msg)
	l.args = append(l.args, args)
}

func TestLoggingSinkWritesNormalizedEvent(t *testing.T) {
	logger := &captureLogger{}
	sink := activitymap.LoggingSink(logger)

	err := sink.Record(context.Background(), board.ActivityEvent{
		EventType: board.ActivityEventSignOut,
		UserID:    "user-7",
	})
	require.NoError(t, err)

	require.Len(t, logger.messages, 1)
	assert.Equal(t, "activity", logger.messages[0])
	assert.Contains(t, logger.args[0], string(board.ActivityEventSignOut))
	assert.Contains(t, logger.args[0], "user-7")
}

func TestLoggingSinkWithoutLogger(t *testing.T) {
	sink := activitymap.LoggingSink(nil)
	assert.NoError(t, sink.Record(context.Background(), board.ActivityEvent{}))
}
