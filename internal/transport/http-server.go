package transport

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/auth"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/config"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/service"
)

const (
	localSubject   = "subject"
	localRequestID = "request_id"

	headerRequestID = "X-Request-ID"

	censored = "$censored"
)

const indexText = `Hello and welcome to the recipe application. The endpoints are:

POST   /auth/register
POST   /auth/login
GET    /auth/user
GET    /auth/user/:id
PATCH  /auth/user/:id
DELETE /auth/user/:id

GET    /recipes
GET    /recipes/:id
GET    /recipes/search?ingredient=|title=
POST   /recipes/create
PATCH  /recipes/:id
DELETE /recipes/:id

GET    /review
GET    /review/:recipe_id?highest=1&newest=1
POST   /review/:recipe_id
PATCH  /review/:id
DELETE /review/:id

GET    /ingredient?search=   and /allergy?search=
POST   /ingredient           and /allergy
PATCH  /ingredient/:id       and /allergy/:id
DELETE /ingredient/delete    and /allergy/delete
DELETE /ingredient/delete/:id and /allergy/delete/:id
`

var Module = fx.Options(
	fx.Provide(NewHTTPServer),
	fx.Invoke(func(*HTTPServer) {}),
)

type (
	HTTPServer struct {
		app         *fiber.App
		users       *service.Users
		ingredients *service.Ingredients
		allergies   *service.Allergies
		recipes     *service.Recipes
		reviews     *service.Reviews
		tokens      *auth.Tokens
		logger      *zap.SugaredLogger
	}

	Deps struct {
		fx.In

		Users       *service.Users
		Ingredients *service.Ingredients
		Allergies   *service.Allergies
		Recipes     *service.Recipes
		Reviews     *service.Reviews
		Tokens      *auth.Tokens
	}

	errorResp struct {
		Error  string              `json:"error"`
		Fields map[string][]string `json:"fields,omitempty"`
	}
)

func NewHTTPServer(lc fx.Lifecycle, cfg *config.Config, deps Deps, logger *zap.SugaredLogger) *HTTPServer {
	instance := newServer(deps, logger.Named("http"))

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				listen := cfg.HTTPListen()
				if err := instance.app.Listen(listen); err != nil {
					instance.logger.Fatalw("shutting down the server", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			instance.logger.Info("Stopping HTTP server.")
			return instance.app.ShutdownWithContext(ctx)
		},
	})

	return instance
}

func newServer(deps Deps, logger *zap.SugaredLogger) *HTTPServer {
	instance := &HTTPServer{
		users:       deps.Users,
		ingredients: deps.Ingredients,
		allergies:   deps.Allergies,
		recipes:     deps.Recipes,
		reviews:     deps.Reviews,
		tokens:      deps.Tokens,
		logger:      logger,
	}

	app := fiber.New(fiber.Config{
		AppName:               "recipes",
		DisableStartupMessage: true,
		ErrorHandler:          instance.ErrorHandler,
	})

	app.Use(instance.RequestLogger)
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(instance.AuthMiddleware)

	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(indexText) })
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	authG := app.Group("/auth")
	authG.Post("/register", instance.Register)
	authG.Post("/login", instance.Login)
	authG.Get("/user", instance.RequireAuth, instance.UserList)
	authG.Get("/user/:id<int>", instance.RequireAuth, instance.UserGet)
	authG.Put("/user/:id<int>", instance.RequireAuth, instance.UserUpdate)
	authG.Patch("/user/:id<int>", instance.RequireAuth, instance.UserUpdate)
	authG.Delete("/user/:id<int>", instance.RequireAuth, instance.UserDelete)

	recipesG := app.Group("/recipes")
	recipesG.Get("/", instance.RecipeList)
	recipesG.Get("/search", instance.RecipeSearch)
	recipesG.Get("/:id<int>", instance.RecipeGet)
	recipesG.Post("/create", instance.RequireAuth, instance.RecipeCreate)
	recipesG.Put("/:id<int>", instance.RequireAuth, instance.RecipeUpdate)
	recipesG.Patch("/:id<int>", instance.RequireAuth, instance.RecipeUpdate)
	recipesG.Delete("/:id<int>", instance.RequireAuth, instance.RecipeDelete)

	reviewG := app.Group("/review")
	reviewG.Get("/", instance.ReviewList)
	reviewG.Get("/:recipe_id<int>", instance.ReviewListByRecipe)
	reviewG.Post("/:recipe_id<int>", instance.RequireAuth, instance.ReviewCreate)
	reviewG.Put("/:id<int>", instance.RequireAuth, instance.ReviewUpdate)
	reviewG.Patch("/:id<int>", instance.RequireAuth, instance.ReviewUpdate)
	reviewG.Delete("/:id<int>", instance.RequireAuth, instance.ReviewDelete)

	newCatalogHandlers(deps.Ingredients, "ingredient", "ingredients").mount(app.Group("/ingredient"), instance.RequireAuth)
	newCatalogHandlers(deps.Allergies, "allergy", "allergies").mount(app.Group("/allergy"), instance.RequireAuth)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "resource not found")
	})

	instance.app = app
	return instance
}

// ErrorHandler renders every error as {"error": message}. Validation failures also carry the
// violated fields.
func (s *HTTPServer) ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(errorResp{Error: fe.Message})
	}

	var se *service.Error
	if errors.As(err, &se) {
		resp := errorResp{Error: se.Message}
		if len(se.Fields) != 0 {
			resp.Fields = se.Fields.ByField()
		}
		return c.Status(statusOf(se.Kind)).JSON(resp)
	}

	s.logger.Errorw("request failed", "error", err, "request_id", c.Locals(localRequestID))
	return c.Status(fiber.StatusInternalServerError).JSON(errorResp{Error: "internal server error"})
}

func statusOf(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return fiber.StatusBadRequest
	case service.KindUnauthorized:
		return fiber.StatusUnauthorized
	case service.KindForbidden:
		return fiber.StatusForbidden
	case service.KindNotFound:
		return fiber.StatusNotFound
	case service.KindConflict:
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// RequestLogger tags the request with an id and logs it once the response status is known.
func (s *HTTPServer) RequestLogger(c *fiber.Ctx) error {
	start := time.Now()
	requestID := uuid.NewString()
	c.Locals(localRequestID, requestID)
	c.Set(headerRequestID, requestID)

	if body := c.Body(); len(body) != 0 {
		s.logger.Debugw("request body", "request_id", requestID, "body", string(censorBody(body)))
	}

	if err := c.Next(); err != nil {
		if herr := s.ErrorHandler(c, err); herr != nil {
			return herr
		}
	}

	s.logger.Infow("request",
		"request_id", requestID,
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"latency", time.Since(start),
	)
	return nil
}

// AuthMiddleware resolves the bearer token when one is sent. Requests without a token continue
// anonymously; routes that need a subject add RequireAuth.
func (s *HTTPServer) AuthMiddleware(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return c.Next()
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "authorization header must be 'Bearer <token>'")
	}

	subject, err := s.tokens.Subject(token)
	if err != nil {
		s.logger.Debugw("token rejected", "error", err, "request_id", c.Locals(localRequestID))
		return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
	}

	c.Locals(localSubject, subject)
	return c.Next()
}

func (s *HTTPServer) RequireAuth(c *fiber.Ctx) error {
	if _, ok := c.Locals(localSubject).(uint64); !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "missing authorization token")
	}
	return c.Next()
}

func GetSubject(c *fiber.Ctx) uint64 {
	subject, _ := c.Locals(localSubject).(uint64)
	return subject
}

func Bind(c *fiber.Ctx, v interface{}) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	return nil
}

func GetAndParseParam(c *fiber.Ctx, name string) (uint64, error) {
	v, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid path param '"+name+"'")
	}
	return v, nil
}

// queryFlag treats any value other than empty, "0" and "false" as set.
func queryFlag(c *fiber.Ctx, name string) bool {
	switch strings.ToLower(c.Query(name)) {
	case "", "0", "false":
		return false
	}
	return true
}

// censorBody replaces a top level password with a placeholder. Bodies that are not JSON objects
// are returned unchanged.
func censorBody(body []byte) []byte {
	m := map[string]interface{}{}
	if err := json.Unmarshal(body, &m); err != nil {
		return body
	}
	if _, ok := m["password"]; !ok {
		return body
	}
	m["password"] = censored
	out, err := json.Marshal(m)
	if err != nil {
		return body
	}
	return out
}
