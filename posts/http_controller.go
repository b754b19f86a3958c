package posts

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	board "github.com/goliatone/go-board"
)

// Controller exposes post endpoints
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

// RegisterRoutes mounts the post endpoints. Reads are public, writes and
// the "my posts" listing need a session.
func (ctrl *Controller) RegisterRoutes(r fiber.Router, protected fiber.Handler) {
	r.Get("/", ctrl.List).Name("posts.list")
	r.Get("/my-posts", protected, ctrl.ListMine).Name("posts.mine")
	r.Post("/", protected, ctrl.Create).Name("posts.create")
	r.Get("/:id", ctrl.Get).Name("posts.get")
	r.Put("/:id", protected, ctrl.Update).Name("posts.update")
	r.Delete("/:id", protected, ctrl.Delete).Name("posts.delete")
}

func (ctrl *Controller) List(c *fiber.Ctx) error {
	query := ListQuery{}
	if err := c.QueryParser(&query); err != nil {
		return board.ValidationError(err, "malformed query")
	}

	page, err := ctrl.Service.List(c.UserContext(), query)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (ctrl *Controller) ListMine(c *fiber.Ctx) error {
	requesterID, err := board.RequesterID(c, ctrl.ContextKey)
	if err != nil {
		return err
	}

	query := ListQuery{}
	if err := c.QueryParser(&query); err != nil {
		return board.ValidationError(err, "malformed query")
	}

	page, err := ctrl.Service.ListByAuthor(c.UserContext(), requesterID, query)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (ctrl *Controller) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	view, err := ctrl.Service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (ctrl *Controller) Create(c *fiber.Ctx) error {
	requesterID, err := board.RequesterID(c, ctrl.ContextKey)
	if err != nil {
		return err
	}

	payload := new(CreateInput)
	if err := c.BodyParser(payload); err != nil {
		return board.ValidationError(err, "malformed post payload")
	}

	view, err := ctrl.Service.Create(c.UserContext(), requesterID, *payload)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

func (ctrl *Controller) Update(c *fiber.Ctx) error {
	requesterID, err := board.RequesterID(c, ctrl.ContextKey)
	if err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	payload := new(UpdateInput)
	if err := c.BodyParser(payload); err != nil {
		return board.ValidationError(err, "malformed post payload")
	}

	view, err := ctrl.Service.Update(c.UserContext(), id, requesterID, *payload)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (ctrl *Controller) Delete(c *fiber.Ctx) error {
	requesterID, err := board.RequesterID(c, ctrl.ContextKey)
	if err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	res, err := ctrl.Service.Delete(c.UserContext(), id, requesterID)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, board.ValidationError(err, "invalid post id")
	}
	return id, nil
}
