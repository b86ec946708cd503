package api

import (
	"github.com/gin-gonic/gin"

	"shortreel/config"
)

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(videos *VideoController) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(corsMiddleware())
	r.MaxMultipartMemory = config.MaxUploadMemory

	RegisterHealthRoutes(r)
	RegisterVideoRoutes(r, videos)
	return r
}

// corsMiddleware lets the browser front-end call the API from any origin.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
