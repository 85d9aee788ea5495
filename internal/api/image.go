package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipe-organizer/backend/internal/service"
	"github.com/pageza/recipe-organizer/backend/internal/types"
)

// multipartOverhead leaves room for boundaries and headers around the file.
const multipartOverhead = 1 << 20

type UploadHandler struct {
	images   service.IImageService
	maxBytes int64
	log      *zap.Logger
}

func NewUploadHandler(images service.IImageService, maxBytes int64, log *zap.Logger) *UploadHandler {
	return &UploadHandler{images: images, maxBytes: maxBytes, log: log}
}

func (h *UploadHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/upload", h.Upload)
}

// Upload accepts a multipart form with an "image" file field.
func (h *UploadHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			badRequest(c, "File too large")
			return
		}
		badRequest(c, "No file uploaded")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer file.Close()

	// Read one byte past the limit so the service can reject oversize files.
	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	image, err := h.images.Store(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, types.Success(image))
}
