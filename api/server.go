package api

import (
	"time"

	"coinflip/application"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"
)

// CallerHeader carries the authenticated caller identity set by the gateway
const CallerHeader = "X-Caller-Identity"

// Handlers are the application entry points the routes delegate to
type Handlers struct {
	Wagers   application.WagerHandler
	Treasury application.TreasuryHandler
	Accounts application.AccountHandler
}

// Config holds the HTTP-facing settings
type Config struct {
	DisputeDelayEpochs int64
	DefaultListLimit   int
}

// Server exposes the settlement engine over HTTP
type Server struct {
	app      *fiber.App
	handlers Handlers
	cfg      Config
}

// NewServer builds the fiber app and registers every route
func NewServer(handlers Handlers, cfg Config) *Server {
	if cfg.DefaultListLimit <= 0 {
		cfg.DefaultListLimit = 50
	}

	app := fiber.New(fiber.Config{
		AppName:               "coinflip",
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
	})
	app.Use(recover.New())
	app.Use(requestLogger())

	s := &Server{app: app, handlers: handlers, cfg: cfg}
	s.registerRoutes()
	return s
}

// App returns the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until Shutdown is called
func (s *Server) Listen(addr string) error {
	log.WithField("addr", addr).Info("HTTP server listening")
	return s.app.Listen(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}

func (s *Server) registerRoutes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	wagers := s.app.Group("/wagers")
	wagers.Post("/", requireCaller, s.createWager)
	wagers.Get("/:id", s.getWager)
	wagers.Post("/:id/resolve", s.resolveWager)
	wagers.Post("/:id/forfeit", s.forfeitWager)
	wagers.Get("/:id/outcome", s.getOutcome)

	s.app.Post("/verify", s.verifyOutcome)
	s.app.Get("/treasury", s.getTreasury)
	s.app.Get("/epochs/current", s.currentEpoch)

	accounts := s.app.Group("/accounts")
	accounts.Get("/:id", s.getAccount)
	accounts.Post("/:id/deposit", s.deposit)
	accounts.Post("/:id/withdraw", requireCaller, s.withdraw)
	accounts.Get("/:id/history", s.accountHistory)
	accounts.Get("/:id/wagers", s.openWagers)
	accounts.Get("/:id/outcomes", s.outcomes)

	admin := s.app.Group("/admin", requireCaller)
	admin.Post("/treasury/init", s.initTreasury)
	admin.Post("/treasury/top-up", s.topUp)
	admin.Post("/treasury/withdraw", s.withdrawTreasury)
	admin.Post("/treasury/claim-fees", s.claimFees)
	admin.Post("/treasury/fee-rates", s.setFeeRates)
	admin.Post("/treasury/stake-bounds", s.setStakeBounds)
	admin.Post("/treasury/verification-key", s.rotateKey)
	admin.Post("/epochs/advance", s.advanceEpoch)
	admin.Get("/conservation", s.conservation)
	admin.Post("/qualifying-items", s.registerItem)
}

// requireCaller rejects requests without a caller identity
func requireCaller(c *fiber.Ctx) error {
	if caller(c) == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error: "missing " + CallerHeader + " header",
			Code:  "missing_caller",
		})
	}
	return c.Next()
}

func caller(c *fiber.Ctx) string {
	return c.Get(CallerHeader)
}

func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.WithFields(log.Fields{
			"method":   c.Method(),
			"path":     c.Path(),
			"status":   c.Response().StatusCode(),
			"duration": time.Since(start),
			"caller":   caller(c),
		}).Debug("HTTP request")
		return err
	}
}
