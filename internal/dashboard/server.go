// Package dashboard serves the JSON API behind the web dashboard.
package dashboard

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"guildhub/internal/analytics"
	"guildhub/internal/bot"
	"guildhub/internal/config"
	"guildhub/internal/embeds"
	"guildhub/internal/modules/access"
	"guildhub/internal/modules/audit"
	"guildhub/internal/modules/automod"
	"guildhub/internal/modules/autorole"
	"guildhub/internal/modules/greeting"
	"guildhub/internal/permissions"
	"guildhub/internal/storage"
)

type Authenticator interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, *discordgo.User, error)
}

type GuildDirectory interface {
	ListGuilds(ctx context.Context) ([]bot.GuildInfo, error)
	LeaveGuild(ctx context.Context, guildID string) error
	ListGuildChannels(ctx context.Context, guildID string) ([]bot.Channel, error)
	ListGuildRoles(ctx context.Context, guildID string) ([]bot.Role, error)
}

type Deps struct {
	OAuth     Authenticator
	Identity  permissions.Identity
	Gate      permissions.Authorizer
	Directory GuildDirectory
	Store     *storage.Store
	Publisher *embeds.Publisher
	Greeting  *greeting.Module
	Automod   *automod.Module
	Autorole  *autorole.Module
	Access    *access.Module
	Analytics *analytics.Service
	Audit     *audit.Logger
}

type Server struct {
	Deps
	cfg      config.DashboardConfig
	logger   *zap.Logger
	sessions *Sessions
	router   *gin.Engine
	http     *http.Server
	started  time.Time
}

func New(cfg config.DashboardConfig, logger *zap.Logger, deps Deps) *Server {
	ttl := time.Duration(cfg.SessionTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	s := &Server{
		Deps:     deps,
		cfg:      cfg,
		logger:   logger,
		sessions: NewSessions(ttl),
		router:   gin.New(),
		started:  time.Now(),
	}
	s.router.Use(recovery(logger), requestLogger(logger), requestTimeout(timeout))
	s.routes()

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.router.GET("/health", s.health)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := s.router.Group("/auth")
	auth.GET("/login", s.login)
	auth.GET("/callback", s.callback)
	auth.GET("/logout", s.logout)

	api := s.router.Group("/api", s.requireSession)
	api.GET("/me", s.me)
	api.GET("/guilds", s.guilds)
	api.GET("/colors", s.colorNames)

	guild := api.Group("/guild/:id")
	guild.GET("/settings", s.guildSettings)
	guild.GET("/channels", s.guildChannels)
	guild.GET("/roles", s.guildRoles)
	guild.GET("/audit", s.guildAudit)
	guild.GET("/embeds", s.listEmbeds)
	guild.POST("/embed/create", s.createEmbed)
	guild.GET("/embed/:embedId", s.getEmbed)
	guild.POST("/embed/:embedId/update", s.updateEmbed)
	guild.DELETE("/embed/:embedId", s.deleteEmbed)
	guild.POST("/welcome", s.updateWelcome)
	guild.POST("/leave", s.updateLeave)
	guild.POST("/automod", s.updateAutomod)
	guild.POST("/autorole", s.updateAutorole)
	guild.POST("/commands", s.updateCommands)
	guild.POST("/restricted", s.updateRestricted)

	admin := api.Group("/admin", s.requireAdmin)
	admin.GET("/guilds", s.adminGuilds)
	admin.POST("/guilds/:id/leave", s.adminLeaveGuild)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("dashboard listening", zap.String("addr", s.cfg.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}
