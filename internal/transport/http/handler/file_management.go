package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"audio-vectorize/internal/app"
	"audio-vectorize/internal/transport/http/response"
)

type FileManagementHandler struct {
	catalog *app.CatalogService
}

type CreateDatabaseRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Database string `json:"database" binding:"required,max=128"`
}

type CreateCollectionRequest struct {
	Name       string `json:"name" binding:"required,max=128"`
	DatabaseID string `json:"database_id" binding:"required"`
}

func NewFileManagementHandler(catalog *app.CatalogService) *FileManagementHandler {
	return &FileManagementHandler{catalog: catalog}
}

func (h *FileManagementHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrDatabaseNotFound), errors.Is(err, app.ErrCollectionNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrNameTaken):
		response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, fmt.Sprintf("Internal server error %v", err))
	}
}

func (h *FileManagementHandler) DatabasesAndCollections(c *gin.Context) {
	pairs, err := h.catalog.ListDatabasesAndCollections(c.Request.Context(), c.Query("email"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, "databases and collections", gin.H{"databases": pairs})
}

func (h *FileManagementHandler) VectorCollections(c *gin.Context) {
	grouped, err := h.catalog.ListVectorCollections(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, "vector collections", gin.H{"collections": grouped})
}

func (h *FileManagementHandler) CreateDatabase(c *gin.Context) {
	var req CreateDatabaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	database, err := h.catalog.CreateDatabase(c.Request.Context(), req.Email, req.Database)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, "created database", gin.H{"database": database})
}

func (h *FileManagementHandler) DeleteDatabase(c *gin.Context) {
	if err := h.catalog.DeleteDatabase(c.Request.Context(), c.Query("database_id")); err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, "deleted database", nil)
}

func (h *FileManagementHandler) CreateCollection(c *gin.Context) {
	var req CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	collection, err := h.catalog.CreateCollection(c.Request.Context(), req.Name, req.DatabaseID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, "created collection", gin.H{"collection": collection})
}

func (h *FileManagementHandler) DeleteCollection(c *gin.Context) {
	if err := h.catalog.DeleteCollection(c.Request.Context(), c.Query("collection_id")); err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, "deleted collection", nil)
}
