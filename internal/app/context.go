package app

import (
	"log/slog"
	"time"

	"github.com/oggyb/matchmaker/internal/cache"
	"github.com/oggyb/matchmaker/internal/config"
	"github.com/oggyb/matchmaker/internal/push"
	"gorm.io/gorm"
)

// AppContext holds shared dependencies (DB, Redis, Logger, etc.)
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Push       *push.Dispatcher
	// Now is the clock used for age windows and freshness checks.
	Now func() time.Time
}

// New creates a new AppContext. Push defaults to a no-op dispatcher.
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger, dispatcher *push.Dispatcher) *AppContext {
	if dispatcher == nil {
		dispatcher = push.NewDispatcher(push.Nop{}, logger)
	}
	return &AppContext{
		Config:     cfg,
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Push:       dispatcher,
		Now:        time.Now,
	}
}
