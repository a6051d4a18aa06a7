package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"

	"github.com/atvtrailers/shop-api/internal/auth"
	"github.com/atvtrailers/shop-api/internal/middleware"
	"github.com/atvtrailers/shop-api/internal/model"
	"github.com/atvtrailers/shop-api/internal/notify"
	"github.com/atvtrailers/shop-api/internal/repository"
)

// Dependencies are the collaborators the HTTP surface is wired with
type Dependencies struct {
	Tokens     *auth.TokenService
	Users      *repository.Users
	Trailers   *repository.CatalogItems
	Components *repository.CatalogItems
	Orders     *repository.Orders
	Resets     notify.PasswordResetDispatcher
	Logger     auth.Logger
}

// New builds the fiber application with every route mounted under /api.
// Public reads carry no middleware; admin mutations run Protected before
// RequireRoles.
func New(deps Dependencies) *fiber.App {
	logger := deps.Logger
	if logger == nil {
		logger = auth.DefaultLogger()
	}

	app := fiber.New(fiber.Config{
		AppName:      "shop-api",
		ErrorHandler: newErrorHandler(logger),
	})

	authCtrl := &AuthController{users: deps.Users, tokens: deps.Tokens, resets: deps.Resets, logger: logger}
	usersCtrl := &UsersController{users: deps.Users, logger: logger}
	trailersCtrl := NewCatalogController(deps.Trailers, logger, "trailer")
	componentsCtrl := NewCatalogController(deps.Components, logger, "component")
	ordersCtrl := &OrdersController{orders: deps.Orders, logger: logger}

	protected := middleware.Protected(deps.Tokens)
	adminOnly := middleware.RequireRoles(model.RoleAdmin)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", authCtrl.Register)
	authGroup.Post("/login", authCtrl.Login)
	authGroup.Post("/forgot-password", authCtrl.ForgotPassword)
	authGroup.Get("/me", protected, authCtrl.Me)
	authGroup.Put("/me/profile", protected, authCtrl.UpdateProfile)
	authGroup.Put("/me/password", protected, authCtrl.ChangePassword)

	users := api.Group("/users", protected, adminOnly)
	users.Get("/", usersCtrl.List)
	users.Get("/:id", usersCtrl.GetByID)
	users.Put("/:id", usersCtrl.Update)
	users.Delete("/:id", usersCtrl.Delete)

	registerCatalogRoutes(api.Group("/trailers"), trailersCtrl, protected, adminOnly)
	registerCatalogRoutes(api.Group("/components"), componentsCtrl, protected, adminOnly)

	orders := api.Group("/orders")
	orders.Post("/", middleware.OptionalAuth(deps.Tokens), ordersCtrl.Create)
	orders.Get("/my-orders", protected, ordersCtrl.MyOrders)
	orders.Get("/", protected, adminOnly, ordersCtrl.List)
	orders.Get("/:orderId", protected, adminOnly, ordersCtrl.GetByID)
	orders.Put("/:orderId/status", protected, adminOnly, ordersCtrl.UpdateStatus)
	orders.Delete("/:orderId", protected, adminOnly, ordersCtrl.Delete)

	return app
}

func registerCatalogRoutes(g fiber.Router, ctrl *CatalogController, protected, adminOnly fiber.Handler) {
	g.Get("/", ctrl.List)
	g.Get("/slug/:slug", ctrl.GetBySlug)
	g.Get("/:id", ctrl.GetByID)
	g.Post("/", protected, adminOnly, ctrl.Create)
	g.Put("/:id", protected, adminOnly, ctrl.Update)
	g.Delete("/:id", protected, adminOnly, ctrl.Delete)
}

// newErrorHandler converts categorized errors into the JSON error body
// every failure shares: {message, error?}. Internal faults echo the
// underlying error string; everything else returns only the message.
func newErrorHandler(logger auth.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			status := statusForCategory(richErr.Category)
			body := fiber.Map{"message": richErr.Message}
			if status == fiber.StatusInternalServerError {
				logger.Error("request failed path=%s error=%v", c.Path(), err)
				if richErr.Source != nil {
					body["error"] = richErr.Source.Error()
				}
			}
			return c.Status(status).JSON(body)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
		}

		logger.Error("unhandled error path=%s error=%v", c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "internal server error",
			"error":   err.Error(),
		})
	}
}

// statusForCategory maps the error taxonomy onto HTTP statuses. Conflicts
// surface as 400, same as the pre-check validation path would have.
func statusForCategory(category errors.Category) int {
	switch category {
	case errors.CategoryValidation, errors.CategoryBadInput, errors.CategoryConflict:
		return fiber.StatusBadRequest
	case errors.CategoryAuth:
		return fiber.StatusUnauthorized
	case errors.CategoryAuthz:
		return fiber.StatusForbidden
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
