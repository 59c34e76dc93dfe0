package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/dtroode/taskflow-server/internal/api/http/handler"
	"github.com/dtroode/taskflow-server/internal/api/http/middleware"
	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/model"
)

const defaultServiceName = "taskflow-server"

// Options holds the HTTP surface settings that are not services.
// Nil TracerProvider and Propagators fall back to the otel globals.
type Options struct {
	AllowedOrigins []string
	Development    bool
	ServiceName    string
	TracerProvider trace.TracerProvider
	Propagators    propagation.TextMapPropagator
}

// Router builds the echo instance serving the REST API.
type Router struct {
	authService    handler.AuthService
	taskService    handler.TaskService
	tokenService   middleware.TokenService
	contextManager model.ContextManager
	pinger         model.Pinger
	logger         *logger.Logger
	opts           Options
}

// New creates new HTTP Router instance.
func New(
	authService handler.AuthService,
	taskService handler.TaskService,
	tokenService middleware.TokenService,
	contextManager model.ContextManager,
	pinger model.Pinger,
	logger *logger.Logger,
	opts Options,
) *Router {
	return &Router{
		authService:    authService,
		taskService:    taskService,
		tokenService:   tokenService,
		contextManager: contextManager,
		pinger:         pinger,
		logger:         logger,
		opts:           opts,
	}
}

// Register wires middleware and routes and returns the configured echo instance.
func (r *Router) Register() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = handler.SonicSerializer{}
	e.HTTPErrorHandler = handler.NewErrorHandler(r.logger, r.opts.Development).Handle

	logging := middleware.NewLogging(r.logger)

	e.Use(
		echoMiddleware.RequestID(),
		otelecho.Middleware(r.serviceName(), r.tracingOptions()...),
		logging.Handle,
		echoMiddleware.RecoverWithConfig(echoMiddleware.RecoverConfig{
			DisablePrintStack: true,
			LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
				r.logger.Error("HTTP router: recovered from panic",
					"path", c.Request().URL.Path,
					"error", err.Error(),
					"stack", string(stack))
				return err
			},
		}),
		echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
			AllowOrigins:     r.opts.AllowedOrigins,
			AllowCredentials: true,
			AllowMethods: []string{
				http.MethodGet, http.MethodPost, http.MethodPut,
				http.MethodDelete, http.MethodOptions, http.MethodPatch,
			},
			AllowHeaders: []string{
				echo.HeaderContentType, echo.HeaderAuthorization, echo.HeaderXRequestedWith,
			},
		}),
	)

	r.registerHealthRoutes(e)
	r.registerAuthRoutes(e)
	r.registerTaskRoutes(e)

	return e
}

func (r *Router) serviceName() string {
	if r.opts.ServiceName == "" {
		return defaultServiceName
	}
	return r.opts.ServiceName
}

func (r *Router) tracingOptions() []otelecho.Option {
	var opts []otelecho.Option
	if r.opts.TracerProvider != nil {
		opts = append(opts, otelecho.WithTracerProvider(r.opts.TracerProvider))
	}
	if r.opts.Propagators != nil {
		opts = append(opts, otelecho.WithPropagators(r.opts.Propagators))
	}
	return opts
}

func (r *Router) registerHealthRoutes(e *echo.Echo) {
	h := handler.NewHealth(r.pinger, r.logger)
	e.GET("/", h.Root)
	e.GET("/healthz", h.Check)
}

func (r *Router) registerAuthRoutes(e *echo.Echo) {
	h := handler.NewAuth(r.authService, r.contextManager, r.logger)
	authenticate := middleware.NewAuthenticate(r.tokenService, r.contextManager, r.logger)

	g := e.Group("/api/auth")
	g.POST("/signup", h.Signup)
	g.POST("/login", h.Login)
	g.GET("/profile", h.Profile, authenticate.Handle)
}

func (r *Router) registerTaskRoutes(e *echo.Echo) {
	h := handler.NewTask(r.taskService, r.contextManager, r.logger)
	authenticate := middleware.NewAuthenticate(r.tokenService, r.contextManager, r.logger)

	g := e.Group("/api/tasks", authenticate.Handle)
	g.POST("", h.Create)
	g.GET("", h.List)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
