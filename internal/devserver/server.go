// Package devserver emulates the remote academic tracking API in memory. It
// backs local development of the client core and its integration tests.
package devserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-tracker/internal/middleware"
	"github.com/noah-isme/academic-tracker/internal/models"
	"github.com/noah-isme/academic-tracker/internal/service"
	"github.com/noah-isme/academic-tracker/pkg/config"
	"github.com/noah-isme/academic-tracker/pkg/logger"
	"github.com/noah-isme/academic-tracker/pkg/middleware/cors"
	"github.com/noah-isme/academic-tracker/pkg/middleware/requestid"
)

// Server is the emulated API.
type Server struct {
	cfg       config.DevServerConfig
	store     *store
	tokens    *tokenManager
	sanitizer *bluemonday.Policy
	logger    *zap.Logger
	metrics   *service.MetricsService
	now       func() time.Time
	seed      bool
	engine    *gin.Engine
}

// Option customises a Server.
type Option func(*Server)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithoutSeed starts the server with no accounts, posts or stages.
func WithoutSeed() Option {
	return func(s *Server) { s.seed = false }
}

// New builds the server and seeds its demo data. metrics may be nil.
func New(cfg config.DevServerConfig, log *zap.Logger, metrics *service.MetricsService, opts ...Option) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 5
	}
	if cfg.JWTExpiration <= 0 {
		cfg.JWTExpiration = 24 * time.Hour
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("devserver: jwt secret must not be empty")
	}

	s := &Server{
		cfg:       cfg,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    log,
		metrics:   metrics,
		now:       time.Now,
		seed:      true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.store = newStore(s.now)
	s.tokens = &tokenManager{secret: []byte(cfg.JWTSecret), ttl: cfg.JWTExpiration, now: s.now}

	if s.seed {
		if err := seedDemoData(s.store, cfg.SeedPassword); err != nil {
			return nil, err
		}
	}
	s.engine = s.routes()
	return s, nil
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// AddAccount registers an extra account, for tests and demos.
func (s *Server) AddAccount(cedula, email string, role models.UserRole, password string) (string, error) {
	a, err := s.store.addAccount(account{Cedula: cedula, Email: email, Role: role}, password)
	if err != nil {
		return "", err
	}
	return a.ID, nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestid.Middleware())
	r.Use(cors.New(s.cfg.AllowedOrigins))
	r.Use(logger.GinMiddleware(s.logger))
	r.Use(middleware.Metrics(s.metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": s.now().UTC()})
	})
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	auth := r.Group("/auth")
	auth.POST("/staff-login", s.staffLogin)
	auth.POST("/login", s.studentLogin)
	auth.POST("/register", s.register)

	api := r.Group("/", middleware.JWT(s.tokens))
	admin := middleware.RequireRoles(models.RoleAdmin)

	api.GET("/posts", s.listPosts)
	api.GET("/posts/:id", s.getPost)
	api.POST("/posts", admin, s.createPost)
	api.PUT("/posts/:id", admin, s.updatePost)
	api.DELETE("/posts/:id", admin, s.deletePost)

	api.GET("/etapas", s.listStages)
	api.POST("/etapas", admin, s.createStage)
	api.DELETE("/etapas/:name", admin, s.deleteStage)

	api.GET("/profesores", s.listProfessors)

	api.GET("/staff/cedula/:cedula", middleware.RequireStaff(), s.staffProfile)
	api.GET("/students/cedula/:cedula", s.studentProfile)
	return r
}
