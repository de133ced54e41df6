package server

import (
	"log"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/mesakhbesta/Channel-Customer-Report-Emina/internal/config"
	"github.com/mesakhbesta/Channel-Customer-Report-Emina/internal/server/handlers"
	"github.com/mesakhbesta/Channel-Customer-Report-Emina/internal/service/upload"
	"github.com/mesakhbesta/Channel-Customer-Report-Emina/internal/store"
)

// Server HTTP server
type Server struct {
	router   *gin.Engine
	store    *store.Store
	handlers *handlers.Handlers
}

// NewServer creates the server with its session store and API handlers
func NewServer(cfg *config.AppConfig) *Server {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		dataDir = cfg.Data.DataDir
	}
	dbPath := filepath.Join(dataDir, "emina-report.db")

	sessionStore, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}

	s := &Server{
		router:   gin.Default(),
		store:    sessionStore,
		handlers: handlers.NewHandlers(cfg, sessionStore),
	}

	archive, err := upload.NewArchive(filepath.Join(dataDir, "uploads"))
	if err != nil {
		log.Printf("Upload archive disabled: %v", err)
	} else {
		s.handlers.UseArchive(archive)
		if err := s.handlers.RestoreUploads(); err != nil {
			log.Printf("Failed to restore archived uploads: %v", err)
		}
	}

	s.setupRoutes(cfg.Server.DevMode)

	return s
}

func (s *Server) setupRoutes(devMode bool) {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api/v1")
	{
		s.handlers.RegisterRoutes(api)
	}

	if devMode {
		// dev mode: frontend runs on its own dev server
		s.router.NoRoute(func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, "http://localhost:5173"+c.Request.URL.Path)
		})
	}
}

// Run starts the server
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close releases the session store
func (s *Server) Close() error {
	return s.store.Close()
}

// GetStore returns the session store (for tests)
func (s *Server) GetStore() *store.Store {
	return s.store
}
