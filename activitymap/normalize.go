package activitymap

import (
	"context"
	"strings"
	"time"

	board "github.com/goliatone/go-board"
)

// MetadataKeyActorType stores the actor type derived from board.ActorRef.Type.
const MetadataKeyActorType = "actor_type"

const (
	defaultChannel    = "auth"
	defaultObjectType = "user"
	defaultActorID    = "system"
)

// Normalized is a transport-agnostic activity shape for downstream systems.
type Normalized struct {
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type,omitempty"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Option customizes normalization behavior.
type Option func(*normalizeOptions)

type normalizeOptions struct {
	channel       string
	objectType    string
	actorFallback string
}

// Normalize converts a board.ActivityEvent into the normalized shape.
func Normalize(event board.ActivityEvent, opts ...Option) Normalized {
	options := normalizeOptions{
		channel:       defaultChannel,
		objectType:    defaultObjectType,
		actorFallback: defaultActorID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	return Normalized{
		ActorID: firstNonEmpty(
			strings.TrimSpace(event.Actor.ID),
			strings.TrimSpace(event.UserID),
			options.actorFallback,
		),
		Verb:       string(event.EventType),
		ObjectType: options.objectType,
		ObjectID:   strings.TrimSpace(event.UserID),
		Channel:    options.channel,
		Metadata:   normalizeMetadata(event),
		OccurredAt: occurredAt,
	}
}

// WithDefaultChannel sets the channel for normalized records.
func WithDefaultChannel(channel string) Option {
	return func(opts *normalizeOptions) {
		opts.channel = strings.TrimSpace(channel)
	}
}

// WithActorFallback sets the actor id used when the event has none.
func WithActorFallback(actorID string) Option {
	return func(opts *normalizeOptions) {
		opts.actorFallback = strings.TrimSpace(actorID)
	}
}

// LoggingSink returns an ActivitySink writing normalized events to logger.
func LoggingSink(logger board.Logger, opts ...Option) board.ActivitySink {
	return board.ActivitySinkFunc(func(_ context.Context, event board.ActivityEvent) error {
		if logger == nil {
			return nil
		}
		n := Normalize(event, opts...)
		args := []any{
			"verb", n.Verb,
			"actor_id", n.ActorID,
			"object_type", n.ObjectType,
			"object_id", n.ObjectID,
			"channel", n.Channel,
			"occurred_at", n.OccurredAt.Format(time.RFC3339Nano),
		}
		if len(n.Metadata) > 0 {
			args = append(args, "metadata", n.Metadata)
		}
		logger.Info("activity", args...)
		return nil
	})
}

func normalizeMetadata(event board.ActivityEvent) map[string]any {
	var metadata map[string]any
	if len(event.Metadata) > 0 {
		metadata = make(map[string]any, len(event.Metadata)+1)
		for k, v := range event.Metadata {
			metadata[k] = v
		}
	}

	if actorType := strings.TrimSpace(event.Actor.Type); actorType != "" {
		if metadata == nil {
			metadata = map[string]any{}
		}
		if _, exists := metadata[MetadataKeyActorType]; !exists {
			metadata[MetadataKeyActorType] = actorType
		}
	}

	return metadata
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
