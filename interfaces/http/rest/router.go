package rest

import (
	"net/http"

	"ccivisits-backend/application/commands/bus"
	"ccivisits-backend/application/ports"
	querybus "ccivisits-backend/application/queries/bus"
	"ccivisits-backend/application/services"
	"ccivisits-backend/interfaces/http/rest/handlers"
	"ccivisits-backend/interfaces/http/rest/middleware"
	"ccivisits-backend/pkg/auth"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	reorder    *services.ReorderService
	userRepo   ports.UserRepository
	instRepo   ports.InstitutionRepository
	eventBus   ports.EventBus
	validator  *auth.JWTValidator
	enableCORS bool
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	reorder *services.ReorderService,
	userRepo ports.UserRepository,
	instRepo ports.InstitutionRepository,
	eventBus ports.EventBus,
	validator *auth.JWTValidator,
	enableCORS bool,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus: commandBus,
		queryBus:   queryBus,
		reorder:    reorder,
		userRepo:   userRepo,
		instRepo:   instRepo,
		eventBus:   eventBus,
		validator:  validator,
		enableCORS: enableCORS,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.ccivisits.org"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.validator, rt.logger))

		// Visit endpoints
		visitHandler := handlers.NewVisitHandler(rt.commandBus, rt.queryBus, rt.logger)
		historyHandler := handlers.NewHistoryHandler(rt.queryBus, rt.logger)
		r.Route("/visits", func(r chi.Router) {
			r.Post("/", visitHandler.CreateVisit)
			r.Get("/{visitID}", visitHandler.GetVisit)
			r.Put("/{visitID}", visitHandler.UpdateVisit)
			r.Get("/{visitID}/history", historyHandler.GetVisitHistory)
		})

		// Day timeline and ordering endpoints
		orderHandler := handlers.NewOrderHandler(rt.commandBus, rt.reorder, rt.logger)
		r.Route("/days/{day}", func(r chi.Router) {
			r.Get("/visits", visitHandler.ListDayVisits)
			r.Put("/order", orderHandler.CommitOrders)
			r.Route("/reorder", func(r chi.Router) {
				r.Post("/", orderHandler.StartSession)
				r.Delete("/", orderHandler.DiscardSession)
				r.Post("/drag", orderHandler.BeginDrag)
				r.Post("/drag-over", orderHandler.DragOver)
				r.Post("/drop", orderHandler.Drop)
				r.Post("/commit", orderHandler.CommitSession)
			})
		})

		// Admin directory endpoints
		directoryHandler := handlers.NewDirectoryHandler(rt.queryBus, rt.userRepo, rt.instRepo, rt.eventBus, rt.logger)
		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireRole("admin"))
			r.Get("/", directoryHandler.ListUsers)
			r.Post("/", directoryHandler.CreateUser)
			r.Put("/{userID}/role", directoryHandler.UpdateUserRole)
		})
		r.Route("/institutions", func(r chi.Router) {
			r.Get("/", directoryHandler.ListInstitutions)
			r.With(middleware.RequireRole("admin")).Post("/", directoryHandler.CreateInstitution)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
