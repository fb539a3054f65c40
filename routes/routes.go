package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"lemon16/handlers"
	"lemon16/middleware"
)

// Setup builds the dashboard router. The page, login and static assets are
// public; every mutating endpoint sits behind the admin token middleware.
func Setup(jwtSecret string, authEnabled bool) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.LoadHTMLGlob("templates/*.html")
	router.StaticFile("/dashboard.js", "./public/dashboard.js")
	router.StaticFile("/styles.css", "./public/styles.css")

	router.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	router.GET("/dashboard", handlers.Dashboard)
	router.POST("/login", handlers.Login)
	router.GET("/user/:userId", handlers.GetUser)

	protected := router.Group("/")
	protected.Use(middleware.AdminAuth(jwtSecret, authEnabled))

	protected.POST("/reset-swipes", handlers.ResetSwipes)
	protected.POST("/ban-user/:userId", handlers.BanUser)
	protected.POST("/delete-user/:userId", handlers.DeleteUser)
	protected.POST("/toggle-premium/:userId", handlers.TogglePremium)
	protected.POST("/edit-user/:userId", handlers.EditUser)
	protected.POST("/message-inactive", handlers.MessageInactive)
	protected.POST("/delete-inactive", handlers.DeleteInactive)

	return router
}
