package dashboard

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"guildhub/internal/apperr"
	"guildhub/internal/colors"
	"guildhub/internal/embeds"
	"guildhub/internal/modules/audit"
	"guildhub/internal/modules/automod"
	"guildhub/internal/modules/greeting"
	"guildhub/internal/permissions"
	"guildhub/internal/storage"
	"guildhub/internal/validate"
)

type guildSummary struct {
	permissions.UserGuild
	BotPresent bool `json:"botPresent"`
}

func (s *Server) guilds(c *gin.Context) {
	ctx := c.Request.Context()
	mine, err := s.Identity.UserGuilds(ctx, caller(c).AccessToken)
	if err != nil {
		s.fail(c, permissions.LookupError(err))
		return
	}
	present, err := s.Directory.ListGuilds(ctx)
	if err != nil {
		s.fail(c, apperr.Upstream(apperr.CodeDirectoryFailed, "could not list bot guilds", err))
		return
	}
	inGuild := make(map[string]bool, len(present))
	for _, guild := range present {
		inGuild[guild.ID] = true
	}

	manageable := permissions.Manageable(mine)
	out := make([]guildSummary, 0, len(manageable))
	for _, guild := range manageable {
		out = append(out, guildSummary{UserGuild: guild, BotPresent: inGuild[guild.ID]})
	}
	c.JSON(http.StatusOK, gin.H{"guilds": out})
}

// colorNames lists the names the embed color field accepts besides hex.
func (s *Server) colorNames(c *gin.Context) {
	names := colors.Names()
	sort.Strings(names)
	c.JSON(http.StatusOK, gin.H{"colors": names, "default": colors.Default})
}

// authorized runs the gate for read routes and reports false after
// answering the request itself.
func (s *Server) authorized(c *gin.Context) bool {
	if _, err := s.Gate.Require(c.Request.Context(), caller(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return false
	}
	return true
}

func (s *Server) guildSettings(c *gin.Context) {
	if !s.authorized(c) {
		return
	}
	settings, err := s.Store.GuildSettings(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, storage.Classify(err))
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (s *Server) guildChannels(c *gin.Context) {
	if !s.authorized(c) {
		return
	}
	channels, err := s.Directory.ListGuildChannels(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, apperr.Upstream(apperr.CodeDirectoryFailed, "could not list channels", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": channels})
}

func (s *Server) guildRoles(c *gin.Context) {
	if !s.authorized(c) {
		return
	}
	roles, err := s.Directory.ListGuildRoles(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, apperr.Upstream(apperr.CodeDirectoryFailed, "could not list roles", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"roles": roles})
}

func (s *Server) guildAudit(c *gin.Context) {
	if !s.authorized(c) {
		return
	}
	days := 7
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 365 {
			s.fail(c, apperr.Validation(apperr.CodeInvalidField, "days", "days must be between 1 and 365"))
			return
		}
		days = parsed
	}

	ctx := c.Request.Context()
	report, err := s.Analytics.Report(ctx, c.Param("id"), time.Now().AddDate(0, 0, -days))
	if err != nil {
		s.fail(c, storage.Classify(err))
		return
	}
	entries, err := s.Audit.Entries(ctx, c.Param("id"))
	if err != nil {
		s.fail(c, storage.Classify(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report, "entries": entries})
}

func (s *Server) listEmbeds(c *gin.Context) {
	records, err := s.Publisher.List(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"embeds": records})
}

func (s *Server) getEmbed(c *gin.Context) {
	rec, err := s.Publisher.Get(c.Request.Context(), caller(c), c.Param("id"), c.Param("embedId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) createEmbed(c *gin.Context) {
	var in embeds.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		s.fail(c, badBody(err))
		return
	}
	res, err := s.Publisher.Create(c.Request.Context(), caller(c), c.Param("id"), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, publishResponse(res))
}

func (s *Server) updateEmbed(c *gin.Context) {
	var patch embeds.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		s.fail(c, badBody(err))
		return
	}
	res, err := s.Publisher.Update(c.Request.Context(), caller(c), c.Param("id"), c.Param("embedId"), patch)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, publishResponse(res))
}

func (s *Server) deleteEmbed(c *gin.Context) {
	if err := s.Publisher.Delete(c.Request.Context(), caller(c), c.Param("id"), c.Param("embedId")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func publishResponse(res embeds.Result) gin.H {
	return gin.H{
		"success":   true,
		"embedId":   res.EmbedID,
		"messageId": res.MessageID,
		"channelId": res.ChannelID,
	}
}

func (s *Server) updateWelcome(c *gin.Context) {
	var patch greeting.MessagePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		s.fail(c, badBody(err))
		return
	}
	cfg, err := s.Greeting.UpdateWelcome(c.Request.Context(), caller(c), c.Param("id"), patch)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "welcome": cfg})
}

func (s *Server) updateLeave(c *gin.Context) {
	var patch greeting.MessagePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		s.fail(c, badBody(err))
		return
	}
	cfg, err := s.Greeting.UpdateLeave(c.Request.Context(), caller(c), c.Param("id"), patch)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "leave": cfg})
}

func (s *Server) updateAutomod(c *gin.Context) {
	var patch automod.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		s.fail(c, badBody(err))
		return
	}
	cfg, err := s.Automod.Update(c.Request.Context(), caller(c), c.Param("id"), patch)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "automod": cfg})
}

func (s *Server) updateAutorole(c *gin.Context) {
	var body struct {
		RoleID string `json:"roleId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, badBody(err))
		return
	}
	cfg, err := s.Autorole.Update(c.Request.Context(), caller(c), c.Param("id"), body.RoleID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "autorole": cfg})
}

func (s *Server) updateCommands(c *gin.Context) {
	var body struct {
		Assignments map[string]string `json:"assignments"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, badBody(err))
		return
	}
	out, err := s.Access.SetCommandAssignments(c.Request.Context(), caller(c), c.Param("id"), body.Assignments)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "commandAssignments": out})
}

func (s *Server) updateRestricted(c *gin.Context) {
	var body struct {
		Channels []string `json:"channels"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, badBody(err))
		return
	}
	out, err := s.Access.SetRestrictedChannels(c.Request.Context(), caller(c), c.Param("id"), body.Channels)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "restrictedChannels": out})
}

func (s *Server) adminGuilds(c *gin.Context) {
	guilds, err := s.Directory.ListGuilds(c.Request.Context())
	if err != nil {
		s.fail(c, apperr.Upstream(apperr.CodeDirectoryFailed, "could not list bot guilds", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"guilds": guilds})
}

// adminLeaveGuild removes the bot from a guild. ?purge=true also deletes
// the guild's stored configuration.
func (s *Server) adminLeaveGuild(c *gin.Context) {
	guildID := c.Param("id")
	if !validate.Snowflake(guildID) {
		s.fail(c, apperr.Validation(apperr.CodeInvalidSnowflake, "guildId", "guild id must be 17 to 19 digits"))
		return
	}
	ctx := c.Request.Context()
	if err := s.Directory.LeaveGuild(ctx, guildID); err != nil {
		s.fail(c, apperr.Upstream(apperr.CodeDirectoryFailed, "could not leave the guild", err))
		return
	}

	removed := 0
	if c.Query("purge") == "true" {
		keys, err := s.Store.PurgeGuild(ctx, guildID)
		if err != nil {
			s.fail(c, storage.Classify(err))
			return
		}
		removed = len(keys)
		paths := make([]string, 0, len(keys))
		for _, key := range keys {
			paths = append(paths, key.String())
		}
		s.logger.Warn("guild data purged", zap.String("guild_id", guildID), zap.Strings("documents", paths))
	} else {
		s.Audit.Log(ctx, audit.LevelWarn, guildID, currentSession(c).UserID, "admin.leave", "bot removed from guild by an administrator")
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "purgedDocuments": removed})
}
