package handler

import (
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Documents *DocumentHandler
	AI        *AIHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/health", deps.AI.Health)

	api.POST("/documents/upload", deps.Documents.Upload)
	api.GET("/documents", deps.Documents.List)
	api.GET("/documents/:id", deps.Documents.Get)
	api.GET("/documents/:id/download", deps.Documents.Download)
	api.DELETE("/documents/:id", deps.Documents.Delete)
	api.GET("/documents/:id/history", deps.Documents.History)
	api.GET("/documents/:id/history/export", deps.Documents.ExportHistory)

	api.POST("/ai/chat", deps.AI.Chat)
	api.POST("/ai/tasks", deps.AI.Task)
	api.GET("/ai/providers", deps.AI.Providers)
}
