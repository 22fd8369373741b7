package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires the HTTP surface. The front end is served elsewhere, so CORS
// stays open to configured origins (all origins when none are given).
func NewRouter(handler *SchedulingHandler, logger *zap.Logger, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))

	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "X-Recruiter-ID"}
	r.Use(cors.New(corsConfig))

	api := r.Group("/api/v1")
	{
		api.GET("/health", HealthCheck)

		scheduling := api.Group("/scheduling")
		{
			scheduling.POST("/interviews/:applicationID/propose", handler.ProposeInterviewSlots)
			scheduling.GET("/interviews/:applicationID/status", handler.InterviewStatus)

			scheduling.POST("/coffee-chats/:recruiterID/:studentID/propose", handler.ProposeCoffeeChatSlots)
			scheduling.GET("/coffee-chats/:recruiterID/:studentID/status", handler.CoffeeChatStatus)

			scheduling.GET("/confirm/:token", handler.ValidateToken)
			scheduling.POST("/confirm/:token", handler.ConfirmSlot)
		}
	}

	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
