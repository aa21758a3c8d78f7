package api

import (
	"net/http"
	"time"

	"github.com/cleanflow/bedsync/internal/mw"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type RouterOptions struct {
	// ForceSyncPerMinute caps manual syncs across all clients.
	ForceSyncPerMinute int
	StatsCacheTTL      time.Duration
	// StatsCache is shared with the scheduler so finished runs invalidate it.
	// Nil builds a private cache from StatsCacheTTL.
	StatsCache *mw.ResponseCache
	// AllowedOrigins empty means any origin.
	AllowedOrigins []string
}

// NewRouter creates and configures a new Gin router.
func NewRouter(deps Deps, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	corsConfig := cors.DefaultConfig()
	if len(opts.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = opts.AllowedOrigins
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "PATCH", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization")
	r.Use(cors.New(corsConfig))
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	if opts.ForceSyncPerMinute < 1 {
		opts.ForceSyncPerMinute = 6
	}
	if opts.StatsCacheTTL <= 0 {
		opts.StatsCacheTTL = 30 * time.Second
	}

	statsCache := opts.StatsCache
	if statsCache == nil {
		statsCache = mw.NewResponseCache(opts.StatsCacheTTL)
	}
	h := NewHandler(deps)

	forceLimit := mw.RateLimiter(
		mw.NewKeyedLimiter(rate.Every(time.Minute/time.Duration(opts.ForceSyncPerMinute)), opts.ForceSyncPerMinute),
		mw.GlobalKey,
	)
	apiLimit := mw.RateLimiter(mw.NewKeyedLimiter(rate.Limit(20), 40), mw.ClientIPKey)

	api := r.Group("/api")
	api.Use(apiLimit)
	{
		api.GET("/sync/status", h.GetSyncStatus)
		api.POST("/sync/force", forceLimit, h.ForceSync)
		api.GET("/sync/history", h.GetSyncHistory)
		api.GET("/sync/statistics", statsCache.Handler(), h.GetSyncStatistics)

		api.GET("/integration/config", h.GetIntegrationConfig)
		api.PUT("/integration/config", h.SaveIntegrationConfig)
		api.POST("/integration/test-connection", h.TestConnection)
		api.POST("/integration/test-transformation", h.TestTransformation)

		api.GET("/locations", h.ListLocations)
		api.POST("/locations/:id/cleaning/start", h.StartCleaning)
		api.POST("/locations/:id/cleaning/finish", h.FinishCleaning)

		api.GET("/mappings", h.ListMappings)
		api.POST("/mappings", h.CreateMapping)
		api.PUT("/mappings/:id", h.UpdateMapping)
		api.PATCH("/mappings/:id/active", h.SetMappingActive)

		api.GET("/cleaning/settings", h.GetCleaningSettings)
		api.PUT("/cleaning/settings", h.SaveCleaningSettings)
		api.GET("/cleaning/occurrences", h.ListOccurrences)
	}

	return r
}
