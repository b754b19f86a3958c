package posts

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	board "github.com/goliatone/go-board"
)

const deletedMessage = "Post deleted successfully"

// Service implements post listing, authoring and the owner only mutations
type Service struct {
	repo         Repository
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

func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo:         repo,
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

// List returns a page of all posts
func (s *Service) List(ctx context.Context, query ListQuery) (Page, error) {
	return s.list(ctx, uuid.Nil, query)
}

// ListByAuthor returns a page of the posts written by authorID
func (s *Service) ListByAuthor(ctx context.Context, authorID uuid.UUID, query ListQuery) (Page, error) {
	if authorID == uuid.Nil {
		return Page{}, board.ErrUnauthenticated
	}
	return s.list(ctx, authorID, query)
}

func (s *Service) list(ctx context.Context, authorID uuid.UUID, query ListQuery) (Page, error) {
	if err := query.Validate(); err != nil {
		return Page{}, board.ValidationError(err, "invalid post query")
	}
	query = query.Normalize()

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	records, total, err := s.repo.List(ctx, authorID, query)
	if err != nil {
		s.logger.Error("post list failed", "error", err)
		return Page{}, board.StoreError(err, "posts.list")
	}

	ids := make([]uuid.UUID, 0, len(records))
	for _, p := range records {
		ids = append(ids, p.ID)
	}

	counts, err := s.repo.CommentCounts(ctx, ids)
	if err != nil {
		return Page{}, board.StoreError(err, "posts.comment_counts")
	}

	data := make([]View, 0, len(records))
	for _, p := range records {
		data = append(data, NewView(p, counts[p.ID]))
	}

	return Page{
		Data: data,
		Meta: Meta{
			Total:      total,
			Page:       query.Page,
			Limit:      query.Limit,
			TotalPages: TotalPages(total, query.Limit),
		},
	}, nil
}

// Get returns a post with its author and comments
func (s *Service) Get(ctx context.Context, id uuid.UUID) (View, error) {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	post, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		return View{}, board.StoreError(err, "posts.find_detail")
	}
	if post == nil {
		return View{}, board.NotFound("Post", id.String())
	}
	return NewView(post, len(post.Comments)), nil
}

// Create stores a new post authored by authorID
func (s *Service) Create(ctx context.Context, authorID uuid.UUID, input CreateInput) (View, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := input.Validate(); err != nil {
		return View{}, board.ValidationError(err, "invalid post payload")
	}

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	created, err := s.repo.Create(ctx, &Post{
		Title:    input.Title,
		Content:  input.Content,
		Category: input.Category,
		AuthorID: authorID,
	})
	if err != nil {
		s.logger.Error("post create failed", "author_id", authorID.String(), "error", err)
		return View{}, board.StoreError(err, "posts.create")
	}

	loaded, err := s.repo.FindByID(ctx, created.ID)
	if err != nil {
		return View{}, board.StoreError(err, "posts.find_by_id")
	}
	if loaded == nil {
		loaded = created
	}

	s.logger.Info("post created", "post_id", loaded.ID.String(), "author_id", authorID.String())
	return NewView(loaded, 0), nil
}

// Update applies a partial update. Only the author may update a post.
func (s *Service) Update(ctx context.Context, id, requesterID uuid.UUID, input UpdateInput) (View, error) {
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		input.Title = &title
	}
	if err := input.Validate(); err != nil {
		return View{}, board.ValidationError(err, "invalid post payload")
	}

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	post, err := s.authorize(ctx, id, requesterID, "update")
	if err != nil {
		return View{}, err
	}

	input.Apply(post)

	updated, err := s.repo.Update(ctx, post)
	if err != nil {
		s.logger.Error("post update failed", "post_id", id.String(), "error", err)
		return View{}, board.StoreError(err, "posts.update")
	}

	counts, err := s.repo.CommentCounts(ctx, []uuid.UUID{updated.ID})
	if err != nil {
		return View{}, board.StoreError(err, "posts.comment_counts")
	}

	s.logger.Info("post updated", "post_id", id.String())
	return NewView(updated, counts[updated.ID]), nil
}

// Delete removes a post and its comments. Only the author may delete a post.
func (s *Service) Delete(ctx context.Context, id, requesterID uuid.UUID) (DeleteResult, error) {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	if _, err := s.authorize(ctx, id, requesterID, "delete"); err != nil {
		return DeleteResult{}, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("post delete failed", "post_id", id.String(), "error", err)
		return DeleteResult{}, board.StoreError(err, "posts.delete")
	}

	s.logger.Info("post deleted", "post_id", id.String())
	return DeleteResult{Message: deletedMessage}, nil
}

func (s *Service) authorize(ctx context.Context, id, requesterID uuid.UUID, action string) (*Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, board.StoreError(err, "posts.find_by_id")
	}

	if err := board.Authorize(post, post != nil, requesterID, "Post", id.String()); err != nil {
		if board.IsForbidden(err) {
			s.logger.Info("post "+action+" denied", "post_id", id.String(), "requester_id", requesterID.String())
		}
		return nil, err
	}
	return post, nil
}

func (s *Service) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

// Exists reports whether a post exists. It lets the service act as the post
// lookup for comments.
func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()
	return s.repo.Exists(ctx, id)
}
