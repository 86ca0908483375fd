package api

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/papercomputeco/parley/api/auth"
	"github.com/papercomputeco/parley/api/worker"
	"github.com/papercomputeco/parley/pkg/echobot"
	"github.com/papercomputeco/parley/pkg/eventstream"
	"github.com/papercomputeco/parley/pkg/storage"
)

// Server is the parley API server.
type Server struct {
	config    Config
	driver    storage.Driver
	pool      *worker.Pool
	directory *auth.Directory
	bot       *echobot.Bot
	logger    *slog.Logger
	app       *fiber.App

	// ctx bounds reply streams and is cancelled on Shutdown.
	ctx    context.Context
	cancel context.CancelFunc

	// replies tracks streamReply goroutines. mu guards closing and every
	// replies.Add so none starts once Shutdown is waiting.
	mu      sync.Mutex
	closing bool
	replies sync.WaitGroup
}

// NewServer creates a new API server.
// The driver is injected so that storage can be shared or swapped in tests.
// publisher may be nil to disable event publishing.
func NewServer(config Config, driver storage.Driver, publisher eventstream.Publisher, logger *slog.Logger) (*Server, error) {
	pool, err := worker.NewPool(&worker.Config{
		Driver:    driver,
		Publisher: publisher,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}

	if len(config.AllowOrigins) == 0 {
		config.AllowOrigins = DefaultAllowOrigins
	}

	botOpts := []echobot.Option{echobot.WithDelay(config.EventDelay)}
	if config.Seed != 0 {
		botOpts = append(botOpts, echobot.WithSeed(config.Seed))
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		config:    config,
		driver:    driver,
		pool:      pool,
		directory: auth.NewDirectory(),
		bot:       echobot.New(botOpts...),
		logger:    logger,
		app:       app,
		ctx:       ctx,
		cancel:    cancel,
	}

	app.Use(s.requestLogger)
	app.Use(cors.New(corsConfig(config.AllowOrigins)))

	app.Get("/api/health", s.handleHealth)
	app.Post("/api/login", s.handleLogin)
	app.Post("/api/chat", s.handleChat)
	app.Get("/api/transcripts", s.handleListTranscripts)
	app.Get("/api/transcripts/:id", s.handleGetTranscript)

	return s, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowOrigins: strings.Join(origins, ","),
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}

	// Credentials cannot be combined with a wildcard origin.
	for _, o := range origins {
		if o == "*" {
			return cfg
		}
	}
	cfg.AllowCredentials = true
	return cfg
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown stops accepting requests, ends open reply streams and waits for
// pending exchanges to be recorded.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	s.cancel()
	err := s.app.Shutdown()

	// Replies enqueue their exchange on the way out; the pool must outlive them.
	s.replies.Wait()
	s.pool.Close()
	return err
}

// startReply registers a reply goroutine. It reports false once Shutdown
// has begun.
func (s *Server) startReply() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing {
		return false
	}
	s.replies.Add(1)
	return true
}
