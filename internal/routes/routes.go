package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/domain"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/domain/account"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/domain/activity"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/domain/history"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/domain/profile"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/domain/rewards"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/domain/support"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/domain/user"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/models"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/session"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/tabs"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/tabsync"
	database "github.com/FACorreiaa/greengrove-accounts/internal/db"
	"github.com/FACorreiaa/greengrove-accounts/internal/pkg/config"
)

type AppHandlers struct {
	Account  *account.Handler
	Profile  *profile.Handler
	User     *user.Handler
	Activity *activity.Handler
	History  *history.Handler
	Support  *support.Handler
	Rewards  *rewards.Handler
}

// NewAppHandlers wires every repository, service and handler on db.
func NewAppHandlers(db database.Querier, logger *zap.Logger) *AppHandlers {
	base := domain.NewBaseHandler(logger)

	profileService := profile.NewService(profile.NewRepositoryImpl(db, logger), logger)
	userService := user.NewService(user.NewRepositoryImpl(db, logger), profileService, logger)

	return &AppHandlers{
		Account:  account.NewHandler(base),
		Profile:  profile.NewHandler(base, profileService),
		User:     user.NewHandler(base, userService),
		Activity: activity.NewHandler(activity.NewService(activity.NewRepositoryImpl(db, logger), logger), logger),
		History:  history.NewHandler(history.NewService(history.NewRepositoryImpl(db, logger), logger), logger),
		Support:  support.NewHandler(support.NewService(support.NewRepositoryImpl(db, logger), logger), logger),
		Rewards:  rewards.NewHandler(rewards.NewService(rewards.NewRepositoryImpl(db, logger), logger), logger),
	}
}

// TabContents maps each account tab to the handler rendering it.
func (h *AppHandlers) TabContents() map[tabs.ID]tabs.Content {
	return map[tabs.ID]tabs.Content{
		tabs.Profile:   h.Profile,
		tabs.Activity:  h.Activity,
		tabs.Support:   h.Support,
		tabs.Rewards:   h.Rewards,
		tabs.Purchases: h.History,
	}
}

// NewRegistry builds the workspace registry from the configured defaults.
func NewRegistry(cfg *config.Config, h *AppHandlers, logger *zap.Logger) *session.Registry {
	defaults := models.Selection{UserID: cfg.DefaultUserID, Role: models.RoleCustomer}
	return session.NewRegistry(cfg.WorkspaceTTL, defaults, h.TabContents(), logger,
		tabsync.WithDelay(cfg.TabSyncDebounce))
}

// Setup registers all routes. Everything except the health check runs with
// a workspace attached.
func Setup(r *gin.Engine, db database.Querier, h *AppHandlers, reg *session.Registry, logger *zap.Logger) {
	r.GET("/healthz", healthz(db, reg))

	app := r.Group("/", session.Middleware(reg, logger))
	app.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/account")
	})

	acc := app.Group("/account")
	{
		acc.GET("", h.Account.Page)
		acc.GET("/location", h.Account.Location)
		acc.POST("/tabs/:id", h.Account.SelectTab)
		acc.GET("/tabs/:id/panel", h.Account.Panel)
		acc.POST("/tabs/:id/retry", h.Account.Retry)
		acc.POST("/profile", h.Profile.UpdateProfile)
		acc.POST("/preferences", h.Profile.UpdatePreferences)
	}

	users := app.Group("/users")
	{
		users.GET("/options", h.User.Options)
		users.POST("/select", h.User.Select)
	}
}

// healthz pings the database and reports the live workspaces with the
// counters of their store.
func healthz(db database.Querier, reg *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if _, err := db.Exec(ctx, "SELECT 1"); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":          "ok",
			"workspaces":      reg.Len(),
			"workspace_cache": reg.CacheStats(),
		})
	}
}
