package handler

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kimyounil1/honey-pot-sub000/internal/logger"
	"github.com/kimyounil1/honey-pot-sub000/internal/middleware"
	"github.com/kimyounil1/honey-pot-sub000/internal/service"
)

type FileHandler struct {
	upstream *service.Upstream
	timeout  time.Duration
}

func NewFileHandler(upstream *service.Upstream, timeout time.Duration) *FileHandler {
	return &FileHandler{upstream: upstream, timeout: timeout}
}

// POST /api/file  multipart field "file", forwarded to the OCR endpoint
func (h *FileHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "file 필드가 필요합니다."})
		return
	}

	body, contentType, err := repack(fh)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	logger.Info("file.upload", "subject", middleware.Subject(c), "file", fh.Filename, "size", fh.Size)
	reply, err := h.upstream.Do(c.Request.Context(), service.Call{
		Method:      http.MethodPost,
		Path:        "/ocr/",
		Token:       middleware.Token(c),
		ContentType: contentType,
		Body:        body,
		Timeout:     h.timeout,
	})
	if err != nil {
		logger.Error("file.upload.failed", "file", fh.Filename, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	relay(c, reply)
}

// repack copies the uploaded file into a fresh multipart body keeping its name.
func repack(fh *multipart.FileHeader) (io.Reader, string, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", fh.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, "", fmt.Errorf("copy upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
