package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akorchak/urlstash-server/internal/api/http/handler"
	"github.com/akorchak/urlstash-server/internal/api/http/middleware"
)

// New assembles the HTTP routing tree.
func New(authHandler *handler.Auth, fileHandler *handler.File, authenticate *middleware.Authenticate) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh-token", authHandler.Refresh)
		}

		file := api.Group("/file")
		file.Use(authenticate.Handle)
		{
			file.POST("/upload", fileHandler.Upload)
			file.GET("/list-of-files", fileHandler.List)
			file.GET("/file-info", fileHandler.Info)
			file.GET("/download", fileHandler.Download)
			file.DELETE("/delete", fileHandler.Delete)
		}
	}

	return r
}
