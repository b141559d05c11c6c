package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"userapi/internal/dispatch"
	"userapi/internal/problem"
)

// Check is a named readiness probe.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// Config wires the router.
type Config struct {
	Dispatcher *dispatch.Dispatcher
	Translator *problem.Translator
	Log        *slog.Logger
	// Limiter is optional.
	Limiter *RateLimiter
	// Verifier protects /api/users when AuthRequired is set.
	Verifier     TokenVerifier
	AuthRequired bool
	Ready        []Check
	// TrustedProxies may set X-Forwarded-For for the client IP used by the
	// limiter. Empty means the peer address is always used.
	TrustedProxies []string
}

// Server holds the dependencies of the route handlers.
type Server struct {
	d     *dispatch.Dispatcher
	tr    *problem.Translator
	log   *slog.Logger
	ready []Check
}

// NewRouter builds the gin engine with every route and middleware.
func NewRouter(cfg Config) *gin.Engine {
	s := &Server{d: cfg.Dispatcher, tr: cfg.Translator, log: cfg.Log, ready: cfg.Ready}

	chain := NewExceptionChain(
		ValidationExceptionHandler{Translator: cfg.Translator, Log: cfg.Log},
		GlobalExceptionHandler{Translator: cfg.Translator, Log: cfg.Log},
	)

	r := gin.New()
	r.HandleMethodNotAllowed = true
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		cfg.Log.Error("invalid trusted proxies, using peer address", "err", err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(RequestID(), RequestLogger(cfg.Log), Exceptions(chain))
	r.NoRoute(s.notFound)
	r.NoMethod(s.methodNotAllowed)

	r.GET("/health", s.live)
	r.GET("/health/ready", s.readiness)

	limited := r.Group("")
	if cfg.Limiter != nil {
		limited.Use(cfg.Limiter.Middleware(cfg.Translator))
	}

	authGroup := limited.Group("/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/login", s.login)

	api := limited.Group("/api")
	api.GET("/dummies", s.greet)

	usersGroup := api.Group("/users")
	if cfg.AuthRequired && cfg.Verifier != nil {
		usersGroup.Use(Authenticate(cfg.Verifier, cfg.Translator))
	}
	usersGroup.POST("", s.createUser)
	usersGroup.GET("", s.listUsers)
	usersGroup.GET("/:userId", s.getUser)
	usersGroup.PUT("/:userId", s.updateUser)
	usersGroup.DELETE("/:userId", s.deleteUser)

	return r
}

func (s *Server) notFound(c *gin.Context) {
	writeProblem(c, s.tr.FromStatus(problemRequest(c), http.StatusNotFound,
		"No route matches "+c.Request.Method+" "+c.Request.URL.Path+"."))
}

func (s *Server) methodNotAllowed(c *gin.Context) {
	writeProblem(c, s.tr.FromStatus(problemRequest(c), http.StatusMethodNotAllowed, ""))
}
