package comments

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"

	board "github.com/goliatone/go-board"
)

// PostLookup reports whether a post exists
type PostLookup interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// CreateInput is the payload for a new comment
type CreateInput struct {
	PostID  string `json:"postId" form:"postId"`
	Content string `json:"content" form:"content"`
}

// Validate will run validation rules
func (r CreateInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PostID, validation.Required, is.UUID),
		validation.Field(&r.Content, validation.Required, validation.RuneLength(1, 5000)),
	)
}

// Service creates comments against existing posts
type Service struct {
	repo         Repository
	posts        PostLookup
	logger       board.Logger
	storeTimeout time.Duration
}

type ServiceOption func(*Service)

func WithLogger(logger board.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithStoreTimeout(timeout time.Duration) ServiceOption {
	return func(s *Service) {
		if timeout >= 0 {
			s.storeTimeout = timeout
		}
	}
}

func NewService(repo Repository, posts PostLookup, opts ...ServiceOption) *Service {
	s := &Service{
		repo:         repo,
		posts:        posts,
		logger:       board.NewSlogLogger(nil),
		storeTimeout: board.DefaultStoreTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Create adds a comment by authorID to an existing post
func (s *Service) Create(ctx context.Context, authorID uuid.UUID, input CreateInput) (View, error) {
	input.Content = strings.TrimSpace(input.Content)
	if err := input.Validate(); err != nil {
		return View{}, board.ValidationError(err, "invalid comment payload")
	}

	postID := uuid.MustParse(input.PostID)

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	exists, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return View{}, board.StoreError(err, "posts.exists")
	}
	if !exists {
		return View{}, board.NotFound("Post", postID.String())
	}

	created, err := s.repo.Create(ctx, &Comment{
		Content:  input.Content,
		PostID:   postID,
		AuthorID: authorID,
	})
	if err != nil {
		s.logger.Error("comment create failed", "post_id", postID.String(), "error", err)
		return View{}, board.StoreError(err, "comments.create")
	}

	loaded, err := s.repo.FindByID(ctx, created.ID)
	if err != nil {
		return View{}, board.StoreError(err, "comments.find_by_id")
	}
	if loaded == nil {
		loaded = created
	}

	s.logger.Info("comment created", "comment_id", loaded.ID.String(), "post_id", postID.String())
	return NewView(loaded), nil
}

// ListByPost returns the views of the comments on a post, newest first
func (s *Service) ListByPost(ctx context.Context, postID uuid.UUID) ([]View, error) {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	records, err := s.repo.ListByPost(ctx, postID)
	if err != nil {
		return nil, board.StoreError(err, "comments.list_by_post")
	}
	return NewViews(records), nil
}

func (s *Service) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}
