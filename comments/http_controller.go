package comments

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	board "github.com/goliatone/go-board"
)

// Controller exposes comment endpoints
type Controller struct {
	Service    *Service
	ContextKey string
}

func NewController(service *Service, contextKey string) *Controller {
	if contextKey == "" {
		contextKey = board.DefaultContextKey
	}
	return &Controller{Service: service, ContextKey: contextKey}
}

// RegisterRoutes mounts the comment endpoints. Creating a comment requires
// a session.
func (ctrl *Controller) RegisterRoutes(r fiber.Router, protected fiber.Handler) {
	r.Post("/", protected, ctrl.Create).Name("comments.create")
	r.Get("/post/:postId", ctrl.ListByPost).Name("comments.list")
}

func (ctrl *Controller) Create(c *fiber.Ctx) error {
	authorID, err := board.RequesterID(c, ctrl.ContextKey)
	if err != nil {
		return err
	}

	payload := new(CreateInput)
	if err := c.BodyParser(payload); err != nil {
		return board.ValidationError(err, "malformed comment payload")
	}

	view, err := ctrl.Service.Create(c.UserContext(), authorID, *payload)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(view)
}

func (ctrl *Controller) ListByPost(c *fiber.Ctx) error {
	postID, err := uuid.Parse(c.Params("postId"))
	if err != nil {
		return board.ValidationError(err, "invalid post id")
	}

	views, err := ctrl.Service.ListByPost(c.UserContext(), postID)
	if err != nil {
		return err
	}
	return c.JSON(views)
}
