package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"audio-vectorize/internal/app"
	"audio-vectorize/internal/transport/http/response"
	"audio-vectorize/internal/vectorstore"
)

type AudioHandler struct {
	audio *app.AudioService
}

type UploadForm struct {
	DatabaseID   string `form:"database_id" binding:"required"`
	CollectionID string `form:"collection_id" binding:"required"`
	ChunkSize    *int   `form:"chunk_size" binding:"required"`
	ChunkOverlap *int   `form:"chunk_overlap" binding:"required"`
}

type UpdateForm struct {
	UploadForm
	FileID string `form:"file_id" binding:"required"`
}

type SearchRequest struct {
	DatabaseID   string `json:"database_id" binding:"required"`
	CollectionID string `json:"collection_id" binding:"required"`
	Query        string `json:"query" binding:"required"`
	TopK         int    `json:"top_k" binding:"omitempty,min=1,max=100"`
}

func NewAudioHandler(audio *app.AudioService) *AudioHandler {
	return &AudioHandler{audio: audio}
}

func (f UploadForm) chunking() vectorstore.ChunkOptions {
	return vectorstore.ChunkOptions{Size: *f.ChunkSize, Overlap: *f.ChunkOverlap}
}

// uploadedFiles reads the "files" parts, falling back to "audiofiles".
func uploadedFiles(c *gin.Context) ([]app.AudioFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		headers = form.File["audiofiles"]
	}
	if len(headers) == 0 {
		return nil, errors.New("no files in request")
	}

	files := make([]app.AudioFile, 0, len(headers))
	for _, fh := range headers {
		fh := fh
		files = append(files, app.AudioFile{
			Name:        fh.Filename,
			Size:        fh.Size,
			ContentType: fh.Header.Get("Content-Type"),
			Open:        func() (io.ReadCloser, error) { return openPart(fh) },
		})
	}
	return files, nil
}

func openPart(fh *multipart.FileHeader) (io.ReadCloser, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	return f, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, app.ErrDatabaseNotFound) ||
		errors.Is(err, app.ErrCollectionNotFound) ||
		errors.Is(err, app.ErrFileNotFound)
}

func isInvalid(err error) bool {
	return errors.Is(err, app.ErrInvalidInput) || errors.Is(err, app.ErrUnsupportedFormat)
}

func (h *AudioHandler) Upload(c *gin.Context) {
	var form UploadForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	files, err := uploadedFiles(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.audio.Upload(c.Request.Context(), app.UploadInput{
		DatabaseID:   form.DatabaseID,
		CollectionID: form.CollectionID,
		Files:        files,
		Chunk:        form.chunking(),
	})
	counts := gin.H{
		"successful":   res.Successful,
		"unsuccessful": res.Unsuccessful,
	}
	switch {
	case err == nil:
		response.OK(c, "files uploaded", counts)
	case isNotFound(err):
		response.ErrorWith(c, http.StatusGone, err.Error(), counts)
	case isInvalid(err):
		response.ErrorWith(c, http.StatusBadRequest, err.Error(), counts)
	default:
		detail := fmt.Sprintf("Error in uploading audio Error=%v, %d/%d successfully uploaded : List %v",
			err, len(res.Successful), len(files), res.Successful)
		response.ErrorWith(c, http.StatusInternalServerError, detail, counts)
	}
}

// Update replaces the transcript of an existing file with the first uploaded file.
func (h *AudioHandler) Update(c *gin.Context) {
	var form UpdateForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	files, err := uploadedFiles(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	err = h.audio.Update(c.Request.Context(), app.UpdateInput{
		DatabaseID:   form.DatabaseID,
		CollectionID: form.CollectionID,
		FileID:       form.FileID,
		File:         files[0],
		Chunk:        form.chunking(),
	})
	switch {
	case err == nil:
		response.OK(c, "files updated", nil)
	case isNotFound(err):
		response.Error(c, http.StatusGone, err.Error())
	case isInvalid(err):
		response.Error(c, http.StatusBadRequest, err.Error())
	default:
		response.Error(c, response.StatusOperationFailed, fmt.Sprintf("Error in updating audio: %v", err))
	}
}

func (h *AudioHandler) Get(c *gin.Context) {
	file, err := h.audio.GetFile(c.Request.Context(), c.Param("id"))
	if err != nil {
		if isNotFound(err) {
			response.Error(c, http.StatusGone, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, err.Error())
		}
		return
	}
	response.OK(c, "file", gin.H{"file": file})
}

func (h *AudioHandler) Chunks(c *gin.Context) {
	chunks, err := h.audio.GetFileChunks(c.Request.Context(), c.Param("id"), c.Query("database_id"), c.Query("collection_id"))
	if err != nil {
		if isNotFound(err) {
			response.Error(c, http.StatusGone, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, err.Error())
		}
		return
	}
	response.OK(c, "file chunks", gin.H{"chunks": chunks})
}

func (h *AudioHandler) Delete(c *gin.Context) {
	err := h.audio.DeleteFile(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		response.OK(c, "file deleted", nil)
	case isNotFound(err):
		response.Error(c, http.StatusGone, err.Error())
	default:
		response.Error(c, response.StatusOperationFailed, fmt.Sprintf("Error in deleting audio: %v", err))
	}
}

func (h *AudioHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	results, err := h.audio.Search(c.Request.Context(), app.SearchInput{
		DatabaseID:   req.DatabaseID,
		CollectionID: req.CollectionID,
		Query:        req.Query,
		TopK:         req.TopK,
	})
	switch {
	case err == nil:
		response.OK(c, "search results", gin.H{"results": results})
	case isNotFound(err):
		response.Error(c, http.StatusGone, err.Error())
	case isInvalid(err):
		response.Error(c, http.StatusBadRequest, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, err.Error())
	}
}
