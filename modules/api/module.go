package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/magbay/LAN-Chat/modules/activity"
	"github.com/magbay/LAN-Chat/modules/presence"
)

// multipartOverhead is added to the upload limit to form the request body limit.
const multipartOverhead = 1 << 20

// Config holds the HTTP server settings.
type Config struct {
	Addr               string
	MaxUploadSize      int64
	SendQueueSize      int
	ChatRateLimit      float64
	ChatRateBurst      int
	CORSAllowedOrigins string
}

// Module serves the websocket endpoint, image uploads and the REST helpers.
type Module struct {
	cfg          Config
	app          *fiber.App
	hub          *presence.Hub
	images       ImageStore
	presencePort presence.PresencePort
	activityPort activity.ActivityPort
	logger       types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.DependentModule       = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new api module.
func NewModule(cfg Config, logger types.Logger) *Module {
	return &Module{
		cfg:    cfg,
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *Module) Dependencies() []string {
	return []string{"presence", "activity"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "presence":
		m.presencePort = presence.NewPresenceAdapter(container)
	case "activity":
		m.activityPort = activity.NewActivityAdapter(container)
	}
}

// SetHub sets the connection hub (called from main.go).
func (m *Module) SetHub(hub *presence.Hub) {
	m.hub = hub
}

// SetImageStore sets the image store (called from main.go).
func (m *Module) SetImageStore(store ImageStore) {
	m.images = store
}

// Start builds the Fiber app and begins listening.
func (m *Module) Start(_ context.Context) error {
	switch {
	case m.hub == nil:
		return fmt.Errorf("presence hub dependency not set")
	case m.images == nil:
		return fmt.Errorf("image store dependency not set")
	case m.presencePort == nil:
		return fmt.Errorf("presence adapter dependency not set")
	case m.activityPort == nil:
		return fmt.Errorf("activity adapter dependency not set")
	}

	m.app = m.newApp()

	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(m.cfg.Addr); err != nil {
			errCh <- err
		}
	}()

	// Wait briefly to catch immediate startup errors
	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	m.logger.Info("HTTP server started", "addr", m.cfg.Addr)
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (m *Module) Stop(ctx context.Context) error {
	if m.hub != nil {
		// websocket handlers only return once their connection is closed
		m.hub.CloseClients()
	}
	if m.app != nil {
		if err := m.app.ShutdownWithContext(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}
	m.logger.Info("HTTP server stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	details := map[string]any{"addr": m.cfg.Addr}
	if m.hub != nil {
		details["connections"] = m.hub.ClientCount()
	}
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: details,
	}
}

func (m *Module) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "LAN Chat",
		DisableStartupMessage: true,
		BodyLimit:             int(m.cfg.MaxUploadSize) + multipartOverhead,
		ErrorHandler:          m.errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return websocket.IsWebSocketUpgrade(c)
		},
		Format: "[${time}] ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: m.cfg.CORSAllowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))

	m.registerRoutes(app)
	return app
}

// registerRoutes sets up all HTTP and WebSocket routes.
func (m *Module) registerRoutes(app *fiber.App) {
	app.Get("/health", m.healthHandler)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(m.handleWebSocket))

	app.Post("/upload", m.uploadImage)
	app.Get("/uploads/:id/:name", m.serveImage)

	v1 := app.Group("/api/v1")
	v1.Get("/roster", m.getRoster)
	v1.Get("/nickname", m.getNickname)
	v1.Get("/stats", m.getStats)
}

// errorHandler renders every error as {"error": message}.
func (m *Module) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	if code >= fiber.StatusInternalServerError {
		m.logger.Error("HTTP error", "code", code, "path", c.Path(), "error", err)
	} else {
		m.logger.Debug("HTTP client error", "code", code, "path", c.Path(), "message", message)
	}

	return c.Status(code).JSON(ErrorResponse{Error: message})
}
