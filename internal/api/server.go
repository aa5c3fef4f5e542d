package api

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/colmena-labs/stellardonate/internal/api/middleware"
	"github.com/colmena-labs/stellardonate/internal/apperrors"
	"github.com/colmena-labs/stellardonate/internal/metrics"
	"github.com/colmena-labs/stellardonate/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	app       *fiber.App
	baseURL   string
	users     services.UserService
	sessions  services.SessionService
	projects  services.ProjectService
	donations services.DonationService
	issuers   services.IssuerService
	benefits  services.BenefitService
	metrics   *metrics.Metrics
}

func NewServer(
	users services.UserService,
	sessions services.SessionService,
	projects services.ProjectService,
	donations services.DonationService,
	issuers services.IssuerService,
	benefits services.BenefitService,
	m *metrics.Metrics,
	baseURL string,
) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	// Add middleware
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	server := &Server{
		app:       app,
		baseURL:   strings.TrimRight(baseURL, "/"),
		users:     users,
		sessions:  sessions,
		projects:  projects,
		donations: donations,
		issuers:   issuers,
		benefits:  benefits,
		metrics:   m,
	}
	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	if s.metrics != nil {
		s.app.Use(s.measureRequests)
	}
	auth := middleware.Auth(s.sessions)

	// Auth + profile
	s.app.Post("/auth/register", s.handleRegister)
	s.app.Post("/auth/login", s.handleLogin)
	s.app.Post("/auth/logout", auth, s.handleLogout)
	s.app.Get("/me", auth, s.handleMe)
	s.app.Patch("/me", auth, s.handleUpdateMe)

	// Projects
	s.app.Post("/projects", auth, s.handleCreateProject)
	s.app.Get("/projects/:id", s.handleGetProject)
	s.app.Patch("/projects/:id", auth, s.handleUpdateProject)
	s.app.Post("/projects/:id/publish", auth, s.handlePublishProject)
	s.app.Post("/projects/:id/roadmap", auth, s.handleAddRoadmapItem)

	// Donations
	s.app.Post("/donations", auth, s.handleCreateDonation)
	s.app.Get("/projects/:id/donations", s.handleListProjectDonations)

	// Issuer account lifecycle
	s.app.Post("/projects/:id/create-issuer", auth, s.handleCreateIssuer)
	s.app.Post("/projects/:id/fund-issuer", auth, s.handleFundIssuer)
	s.app.Get("/projects/:id/issuer", s.handleGetIssuer)

	// Benefit catalog
	s.app.Post("/benefits", auth, s.handleCreateBenefit)
	s.app.Get("/benefits", s.handleListBenefits)
	s.app.Patch("/benefits/:id/toggle", auth, s.handleToggleBenefit)
	s.app.Post("/benefits/generate-image", auth, s.handleGenerateBenefitImage)
	s.app.Get("/wallets/:address/holdings", s.handleListHoldings)

	// Observability
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})
}

func (s *Server) measureRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0
	s.metrics.ObserveRequest(c.Method(), strconv.Itoa(c.Response().StatusCode()), elapsed)
	return err
}

// publicProjectURL builds the shareable URL for a project page. With no
// base URL configured the path is returned relative.
func (s *Server) publicProjectURL(id uint) string {
	return fmt.Sprintf("%s/projects/%d", s.baseURL, id)
}

// Start starts the server on the given port.
func (s *Server) Start(port int) error {
	return s.app.Listen(fmt.Sprintf(":%d", port))
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying Fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// errorHandler converts errors into the JSON error payloads every failure
// returns. Validation detail is passed through; unexpected errors become a
// generic message.
func errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"error":   true,
			"message": fiberErr.Message,
		})
	}

	appErr := apperrors.From(err)
	if appErr.Kind == apperrors.KindInternal {
		log.Printf("internal error: %v", appErr.Err)
	}

	payload := fiber.Map{
		"error":   true,
		"message": appErr.Message,
	}
	if len(appErr.Fields) > 0 {
		payload["fields"] = appErr.Fields
	}
	return c.Status(appErr.StatusCode()).JSON(payload)
}
