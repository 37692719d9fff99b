package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/SCRMS-FPT/court-booking-service/internal/api"
	"github.com/SCRMS-FPT/court-booking-service/internal/auth"
	"github.com/SCRMS-FPT/court-booking-service/internal/availability"
	"github.com/SCRMS-FPT/court-booking-service/internal/booking"
	"github.com/SCRMS-FPT/court-booking-service/internal/court"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/mq"
	"github.com/SCRMS-FPT/court-booking-service/internal/promotion"
	"github.com/SCRMS-FPT/court-booking-service/internal/schedule"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	JWTSecret    string
	JWTTTL       time.Duration

	// Redis backs the availability cache; nil disables caching.
	Redis    redis.Cmdable
	CacheTTL time.Duration
	// Publisher delivers booking events; nil disables publishing.
	Publisher *mq.Publisher

	BookingRateLimit string
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// Availability cache, shared as the invalidator of every write path.
	var (
		cache       availability.Cache
		invalidator booking.Invalidator
	)
	if cfg.Redis != nil {
		rc := availability.NewRedisCache(cfg.Redis, cfg.CacheTTL)
		cache, invalidator = rc, rc
	}

	var events booking.Publisher
	if cfg.Publisher != nil {
		events = cfg.Publisher
	}

	// Court Module
	courtRepo := court.NewPgxRepository(cfg.DBPool)
	courtService := court.NewService(courtRepo)

	// Schedule Module
	schedRepo := schedule.NewPgxRepository(cfg.DBPool)
	schedService := schedule.NewService(schedRepo, courtService, invalidator)

	// Promotion Module
	promoRepo := promotion.NewPgxRepository(cfg.DBPool)
	promoService := promotion.NewService(promoRepo, courtService, invalidator)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, courtRepo, schedRepo, promoRepo, invalidator, events)

	// Availability Module
	availService := availability.NewService(courtRepo, schedRepo, promoRepo, bookingRepo, cache)

	router, err := api.NewRouter(api.Config{
		IsProduction:        cfg.IsProduction,
		ProdOrigins:         cfg.ProdOrigins,
		CourtService:        courtService,
		ScheduleService:     schedService,
		PromotionService:    promoService,
		BookingService:      bookingService,
		AvailabilityService: availService,
		JWTManager:          jwtManager,
		BookingRateLimit:    cfg.BookingRateLimit,
		DB:                  cfg.DBPool,
	})
	if err != nil {
		return nil, err
	}

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
	}, nil
}
