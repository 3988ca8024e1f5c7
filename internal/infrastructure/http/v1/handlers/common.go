package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"postboard/internal/core/apperror"
	"postboard/internal/domain/media"
	"postboard/internal/infrastructure/http/v1/dto"
)

// UploadField is the multipart field carrying the image.
const UploadField = "image"

// CommonHandler handles uploads and serves stored images.
type CommonHandler struct {
	*BaseHandler
	media *media.Service
}

// NewCommonHandler creates a common handler.
func NewCommonHandler(base *BaseHandler, m *media.Service) *CommonHandler {
	return &CommonHandler{BaseHandler: base, media: m}
}

// UploadImage handles POST /common/image
func (h *CommonHandler) UploadImage(c *gin.Context) {
	// multipart overhead on top of the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, media.MaxUploadSize+1<<20)

	fh, err := c.FormFile(UploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, apperror.NewTooLarge(media.MaxUploadSize))
			return
		}
		h.Error(c, apperror.NewValidation("image file is required").WithDetail("field", UploadField))
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}
	defer f.Close()

	name, err := h.media.Upload(c.Request.Context(), fh.Filename, fh.Size, f)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.UploadResponse{FileName: name})
}

// ServeFile handles GET /public/:area/:name
func (h *CommonHandler) ServeFile(c *gin.Context) {
	rc, contentType, err := h.media.Open(c.Request.Context(), media.Area(c.Param("area")), c.Param("name"))
	if err != nil {
		h.Error(c, err)
		return
	}
	defer rc.Close()

	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}
