package handler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/akorchak/urlstash-server/internal/api/http/middleware"
	"github.com/akorchak/urlstash-server/internal/logger"
	"github.com/akorchak/urlstash-server/internal/model"
	"github.com/akorchak/urlstash-server/internal/service"
)

// File exposes the ingestion entry point and the file lifecycle, all scoped
// to the authenticated owner.
type File struct {
	service *service.File
	logger  *logger.Logger
}

func NewFile(service *service.File, logger *logger.Logger) *File {
	return &File{
		service: service,
		logger:  logger,
	}
}

type uploadRequest struct {
	FileURL string `json:"file_url" binding:"required,url"`
}

type basicFileInfo struct {
	FileID   uuid.UUID `json:"file_id"`
	Filename string    `json:"filename"`
}

type fileInfo struct {
	FileID     uuid.UUID `json:"file_id"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Upload registers the URL and starts the background fetch. The response
// returns before any network work; a duplicate filename for this owner is a
// 409 and enqueues nothing.
func (h *File) Upload(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
		return
	}

	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.service.Upload(c.Request.Context(), ownerID, req.FileURL); err != nil {
		if err == model.ErrConflict {
			c.JSON(http.StatusConflict, gin.H{"error": "this file is already uploaded"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "file upload started"})
}

// List returns every file of the owner. No files is a 404, not an empty
// list.
func (h *File) List(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
		return
	}

	files, err := h.service.List(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]basicFileInfo, 0, len(files))
	for _, f := range files {
		out = append(out, basicFileInfo{FileID: f.ID, Filename: f.Filename})
	}

	c.JSON(http.StatusOK, out)
}

// Info returns metadata of one file. Size 0 means the fetch has not
// completed yet (or the file is genuinely empty).
func (h *File) Info(c *gin.Context) {
	ownerID, fileID, ok := h.ownerAndFileID(c)
	if !ok {
		return
	}

	file, err := h.service.Info(c.Request.Context(), ownerID, fileID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, fileInfo{
		FileID:     file.ID,
		Filename:   file.Filename,
		Size:       file.Size,
		UploadedAt: file.UploadedAt,
	})
}

// Download streams the stored bytes. Row missing, bytes still in flight and
// fetch failed all produce the same 404.
func (h *File) Download(c *gin.Context) {
	ownerID, fileID, ok := h.ownerAndFileID(c)
	if !ok {
		return
	}

	file, reader, err := h.service.Download(c.Request.Context(), ownerID, fileID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, reader); err != nil {
		h.logger.Error("failed to stream file to client",
			"file_id", file.ID, "error", err)
	}
}

// Delete removes the file record and best-effort removes its bytes.
func (h *File) Delete(c *gin.Context) {
	ownerID, fileID, ok := h.ownerAndFileID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), ownerID, fileID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("file with id %s was deleted successfully", fileID)})
}

func (h *File) ownerAndFileID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
		return uuid.Nil, uuid.Nil, false
	}

	fileID, err := uuid.Parse(c.Query("file_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return uuid.Nil, uuid.Nil, false
	}

	return ownerID, fileID, true
}
