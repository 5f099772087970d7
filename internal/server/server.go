package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"dukan-pos/internal/config"
	custommiddleware "dukan-pos/internal/middleware"
	"dukan-pos/internal/repository"
	"dukan-pos/internal/service"
	"dukan-pos/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config      *config.Config
	logger      *zap.Logger
	db          *sql.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB) *Server {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.Server.Env == "development"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	saleRepo := repository.NewSaleRepository(db)

	// Services
	authService := service.NewAuthService(userRepo, employeeRepo, refreshTokenRepo, cfg.JWT.Secret)
	employeeService := service.NewEmployeeService(employeeRepo, userRepo, logger)
	saleService := service.NewSaleService(saleRepo, employeeRepo)
	dashboardService := service.NewDashboardService(saleRepo, customerRepo, productRepo)

	// Handlers
	authHandler := transport.NewAuthHandler(authService, logger)
	productHandler := transport.NewProductHandler(productRepo, logger)
	customerHandler := transport.NewCustomerHandler(customerRepo, logger)
	saleHandler := transport.NewSaleHandler(saleService, logger)
	employeeHandler := transport.NewEmployeeHandler(employeeService, logger)
	dashboardHandler := transport.NewDashboardHandler(dashboardService, logger)

	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	adminMiddleware := custommiddleware.RequireAdmin(logger)

	// Login attempts are throttled per client via Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	loginLimiter := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 10,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit:login",
	}, logger)

	authHandler.RegisterRoutes(router, authMiddleware, loginLimiter)
	productHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	customerHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	saleHandler.RegisterRoutes(router, authMiddleware)
	employeeHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	dashboardHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:      cfg,
		logger:      logger,
		db:          db,
		redisClient: redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
