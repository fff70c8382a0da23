package routes

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/vidai-app/vidai-golang/internal/handlers"
	"github.com/vidai-app/vidai-golang/internal/middleware"
)

// CORSMiddleware tells the browser that the frontend origin may talk
// to us, Authorization header included.
func CORSMiddleware() gin.HandlerFunc {
	origin := os.Getenv("FRONTEND_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}

	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// Preflight requests get an empty 204.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	// CORS must run before anything else.
	router.Use(CORSMiddleware())

	api := router.Group("/api")
	{
		// --- Ping Route (Public) ---
		api.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public) ---
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)
		api.POST("/auth/social-login", h.SocialLogin)

		// --- Public Plan Catalog ---
		api.GET("/subscription-plans", h.GetSubscriptionPlans)

		// --- Protected Routes (Login Required) ---
		auth := api.Group("/")
		auth.Use(middleware.AuthMiddleware(h.Store))
		{
			auth.GET("/auth/me", h.Me)

			// --- AI Pipeline Routes ---
			auth.POST("/ai/generate-scenes", h.GenerateScenes)
			auth.POST("/ai/enhance-scenes", h.EnhanceScenes)
			auth.POST("/ai/generate-image", h.GenerateImage)
			auth.POST("/ai/create-video", h.CreateVideo)
			auth.GET("/ai/video-status/:videoId", h.VideoStatus)

			// --- Video CRUD ---
			auth.POST("/videos", h.CreateVideoRecord)
			auth.GET("/videos", h.GetMyVideos)
			auth.GET("/videos/:id", h.GetVideo)
			auth.DELETE("/videos/:id", h.DeleteVideo)

			// --- Subscription Management ---
			auth.GET("/user/subscription", h.GetMySubscription)
			auth.POST("/user/subscription/upgrade", h.UpgradeSubscription)
			auth.POST("/user/subscription/cancel", h.CancelSubscription)
		}

		// --- Admin-Only Routes ---
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(h.Store))
		admin.Use(middleware.AdminMiddleware())
		{
			admin.GET("/stats", h.GetAdminStats)
			admin.GET("/users", h.GetAllUsers)
			admin.GET("/videos", h.GetAllVideos)
			admin.PUT("/users/:id/role", h.UpdateUserRole)
			admin.POST("/users/:id/ban", h.BanUser)

			admin.GET("/api-configs", h.GetAPIConfigs)
			admin.GET("/api-configs/:name", h.GetAPIConfig)
			admin.PUT("/api-configs", h.UpdateAPIConfig)
		}
	}

	return router
}
