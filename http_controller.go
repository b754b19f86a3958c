package board

import (
	"github.com/gofiber/fiber/v2"
)

// AuthControllerRoutes holds the route paths relative to the mount point
type AuthControllerRoutes struct {
	SignUp  string
	SignIn  string
	Profile string
	SignOut string
}

// AuthController exposes the AuthService over HTTP
type AuthController struct {
	Logger     Logger
	Service    *AuthService
	Routes     *AuthControllerRoutes
	ContextKey string
}

type AuthControllerOption func(*AuthController) *AuthController

// WithControllerLogger sets the controller logger
func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(a *AuthController) *AuthController {
		a.Logger = normalizeLogger(logger)
		return a
	}
}

// WithControllerContextKey sets the Locals key the guard stores claims under
func WithControllerContextKey(key string) AuthControllerOption {
	return func(a *AuthController) *AuthController {
		if key != "" {
			a.ContextKey = key
		}
		return a
	}
}

func NewAuthController(service *AuthService, opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:     defLogger{},
		Service:    service,
		ContextKey: DefaultContextKey,
		Routes: &AuthControllerRoutes{
			SignUp:  "/signup",
			SignIn:  "/signin",
			Profile: "/profile",
			SignOut: "/signout",
		},
	}

	for _, opt := range opts {
		if opt != nil {
			c = opt(c)
		}
	}

	if c.Service == nil {
		panic("Missing AuthService in auth controller...")
	}

	return c
}

// RegisterAuthRoutes mounts the auth endpoints. protected guards the
// endpoints that need a session token.
func RegisterAuthRoutes(r fiber.Router, controller *AuthController, protected fiber.Handler) {
	r.Post(controller.Routes.SignUp, controller.SignUp).Name("auth.signup")
	r.Post(controller.Routes.SignIn, controller.SignIn).Name("auth.signin")
	r.Get(controller.Routes.Profile, protected, controller.Profile).Name("auth.profile")
	r.Post(controller.Routes.SignOut, protected, controller.SignOut).Name("auth.signout")
}

func (a *AuthController) SignUp(c *fiber.Ctx) error {
	payload := new(SignUpInput)
	if err := c.BodyParser(payload); err != nil {
		return ValidationError(err, "malformed sign up payload")
	}

	res, err := a.Service.SignUp(c.UserContext(), *payload)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(res)
}

func (a *AuthController) SignIn(c *fiber.Ctx) error {
	payload := new(SignInInput)
	if err := c.BodyParser(payload); err != nil {
		return ValidationError(err, "malformed sign in payload")
	}

	res, err := a.Service.SignIn(c.UserContext(), *payload)
	if err != nil {
		return err
	}

	return c.JSON(res)
}

func (a *AuthController) Profile(c *fiber.Ctx) error {
	userID, err := RequesterID(c, a.ContextKey)
	if err != nil {
		return err
	}

	view, err := a.Service.GetProfile(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return c.JSON(view)
}

func (a *AuthController) SignOut(c *fiber.Ctx) error {
	userID, err := RequesterID(c, a.ContextKey)
	if err != nil {
		return err
	}

	res, err := a.Service.SignOut(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return c.JSON(res)
}
