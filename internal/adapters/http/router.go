// Package http exposes the session controller to a rendering collaborator
// over a small local API: one state snapshot plus the four mutation
// operations. Visual rendering itself lives outside this module.
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sandeep3158/strangercall/internal/app"
	"github.com/sandeep3158/strangercall/internal/config"
	"github.com/sandeep3158/strangercall/internal/domain"
)

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware tags the rendering client with a stable cookie so
// log lines from different local UIs can be told apart.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

type enterRequest struct {
	Username string `json:"username"`
}

type messageRequest struct {
	Text string `json:"text"`
}

func SetupRouter(cfg *config.Config, ctl *app.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(ClientTokenMiddleware())

	api := r.Group("/api")

	api.GET("/state", func(c *gin.Context) {
		c.JSON(http.StatusOK, ctl.Snapshot())
	})

	api.POST("/enter", func(c *gin.Context) {
		var req enterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_payload"})
			return
		}
		if err := ctl.EnterChat(req.Username); err != nil {
			if errors.Is(err, domain.ErrUsernameEmpty) || errors.Is(err, domain.ErrUsernameTooLong) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			// Media failures are recoverable: the snapshot carries the
			// dismissible banner text.
			log.Warn().Err(err).Str("module", "adapters.http").Msg("enter chat")
		}
		c.JSON(http.StatusOK, ctl.Snapshot())
	})

	api.POST("/retry", func(c *gin.Context) {
		ctl.Retry()
		c.JSON(http.StatusOK, ctl.Snapshot())
	})

	api.POST("/end", func(c *gin.Context) {
		ctl.EndChat()
		c.JSON(http.StatusOK, ctl.Snapshot())
	})

	api.POST("/message", func(c *gin.Context) {
		var req messageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_payload"})
			return
		}
		ctl.SendMessage(req.Text)
		c.JSON(http.StatusOK, ctl.Snapshot())
	})

	api.POST("/dismiss-error", func(c *gin.Context) {
		ctl.DismissMediaError()
		c.JSON(http.StatusOK, ctl.Snapshot())
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
