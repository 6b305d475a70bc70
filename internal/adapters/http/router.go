package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/caresync/signaling/internal/adapters/signal"
	"github.com/caresync/signaling/internal/config"
	"github.com/caresync/signaling/internal/domain"
)

// ClientTokenMiddleware tags every browser with a stable cookie token,
// handy for correlating reconnects in the logs.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, ctrl *signal.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("CareSyncSessions", store))
	r.Use(ClientTokenMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	api.GET("/ws", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("ct", c.GetString("client_token")).Msg("ws endpoint hit")
		ctrl.HandleWS(ctx, c)
	})

	api.GET("/presence/online", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"online": ctrl.Orch.Presence.Online()})
	})

	api.GET("/chats/:doctorId/:patientId/messages", func(c *gin.Context) {
		doctorID := domain.UserID(c.Param("doctorId"))
		patientID := domain.UserID(c.Param("patientId"))
		if doctorID.Validate() != nil || patientID.Validate() != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant id"})
			return
		}

		limit := cfg.HistoryLimit
		if raw := c.Query("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 && n < limit {
				limit = n
			}
		}

		msgs, err := ctrl.History.History(c.Request.Context(), doctorID, patientID, limit)
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("read chat history")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"chatId":   domain.RoomKeyFor(doctorID, patientID),
			"messages": msgs,
		})
	})

	return r
}
