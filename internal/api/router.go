package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SCRMS-FPT/court-booking-service/internal/auth"
	"github.com/SCRMS-FPT/court-booking-service/internal/availability"
	availHttp "github.com/SCRMS-FPT/court-booking-service/internal/availability/http"
	"github.com/SCRMS-FPT/court-booking-service/internal/booking"
	bookingHttp "github.com/SCRMS-FPT/court-booking-service/internal/booking/http"
	"github.com/SCRMS-FPT/court-booking-service/internal/court"
	courtHttp "github.com/SCRMS-FPT/court-booking-service/internal/court/http"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/request"
	"github.com/SCRMS-FPT/court-booking-service/internal/promotion"
	promHttp "github.com/SCRMS-FPT/court-booking-service/internal/promotion/http"
	"github.com/SCRMS-FPT/court-booking-service/internal/schedule"
	schedHttp "github.com/SCRMS-FPT/court-booking-service/internal/schedule/http"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Config holds the services and settings the router is assembled from.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	CourtService        court.Service
	ScheduleService     schedule.Service
	PromotionService    promotion.Service
	BookingService      booking.Service
	AvailabilityService availability.Service

	JWTManager *auth.JWTManager
	// BookingRateLimit is in limiter format ("30-M"); empty disables limiting.
	BookingRateLimit string
	// DB is pinged by /healthz; nil skips the check.
	DB HealthChecker
}

// NewRouter initializes the HTTP router engine.
// It assembles global middleware (recovery, logging, metrics, CORS) and registers every module's routes.
func NewRouter(cfg Config) (*gin.Engine, error) {
	if err := request.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(), Metrics())

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:3000",
			"http://localhost:8081", // Swagger
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", healthz(cfg.DB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	managerMiddleware := auth.RequireManager()

	commandLimiter := func(c *gin.Context) { c.Next() }
	if cfg.BookingRateLimit != "" {
		l, err := BookingRateLimiter(cfg.BookingRateLimit)
		if err != nil {
			return nil, err
		}
		commandLimiter = l
	}

	v1 := r.Group("/v1")
	{
		courtHttp.RegisterRoutes(v1, courtHttp.NewHandler(cfg.CourtService), authMiddleware)
		schedHttp.RegisterRoutes(v1, schedHttp.NewHandler(cfg.ScheduleService), authMiddleware, managerMiddleware)
		promHttp.RegisterRoutes(v1, promHttp.NewHandler(cfg.PromotionService), authMiddleware, managerMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHttp.NewHandler(cfg.BookingService), authMiddleware, commandLimiter)
		availHttp.RegisterRoutes(v1, availHttp.NewHandler(cfg.AvailabilityService))
	}

	return r, nil
}

func healthz(db HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			if err := db.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
