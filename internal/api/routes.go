package api

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.SetHTMLTemplate(indexTemplate)
	r.GET("/", h.index)

	download := r.Group("/")
	if h.limiter != nil {
		download.Use(h.limiter.Middleware())
	}
	download.POST("/download", h.download)

	api := r.Group("/api")
	{
		api.GET("/health", health)
		api.GET("/deck/:id", h.deckText)
		api.GET("/deck/:id/qr", h.deckQR)
	}
}
