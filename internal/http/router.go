// README: HTTP router registration.
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"saguaro/internal/ai"
	"saguaro/internal/http/handlers"
	"saguaro/internal/http/middleware"
)

type RouterDeps struct {
	Engine      handlers.Suggester
	Parser      ai.WindowParser
	Snapshot    handlers.SnapshotFunc
	SlackSecret string
	Log         zerolog.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Recovery(deps.Log), middleware.Logging(deps.Log))

	suggestionHandler := handlers.NewSuggestionHandler(deps.Engine, deps.Parser, deps.Snapshot, deps.Log)
	r.POST("/api/suggestions", suggestionHandler.Create)

	slackHandler := handlers.NewSlackHandler(deps.Engine, deps.Parser, deps.Snapshot, deps.SlackSecret, deps.Log)
	r.POST("/slack/command", slackHandler.Command)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	return r
}
