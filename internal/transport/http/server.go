package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"audio-vectorize/internal/bootstrap"
	"audio-vectorize/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	if app.Config.App.MultipartMemoryMB > 0 {
		router.MaxMultipartMemory = int64(app.Config.App.MultipartMemoryMB) << 20
	}

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	audioHandler := handler.NewAudioHandler(app.Audio)
	fileManagementHandler := handler.NewFileManagementHandler(app.Catalog)

	api := router.Group("/api")
	api.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Hello World"})
	})
	api.POST("/search", audioHandler.Search)

	audio := api.Group("/audio")
	audio.POST("/upload", audioHandler.Upload)
	audio.PUT("/update", audioHandler.Update)
	audio.GET("/:id", audioHandler.Get)
	audio.GET("/:id/chunks", audioHandler.Chunks)
	audio.DELETE("/:id", audioHandler.Delete)

	fm := api.Group("/FileManagement")
	fm.GET("/database_and_collections", fileManagementHandler.DatabasesAndCollections)
	fm.GET("/vector_collections", fileManagementHandler.VectorCollections)
	fm.POST("/create/database", fileManagementHandler.CreateDatabase)
	fm.DELETE("/delete/database", fileManagementHandler.DeleteDatabase)
	fm.POST("/create/collection", fileManagementHandler.CreateCollection)
	fm.DELETE("/delete/collection", fileManagementHandler.DeleteCollection)

	return router
}
