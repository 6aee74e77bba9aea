package handlers

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/nano-blog/internal/models"
)

// imageExtensions maps every accepted sniffed content type to the stored extension
var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// UploadHandler stores uploaded images on local disk
type UploadHandler struct {
	dir      string
	maxBytes int64
	logger   *zap.Logger
}

// NewUploadHandler creates an UploadHandler writing into dir
func NewUploadHandler(dir string, maxBytes int64, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{dir: dir, maxBytes: maxBytes, logger: logger}
}

// RegisterUploadRoutes registers the upload route and serves stored files under /uploads
func (h *UploadHandler) RegisterUploadRoutes(g *echo.Group, guard ...echo.MiddlewareFunc) {
	g.POST("/upload", h.Upload, guard...)
	g.Static("/uploads", h.dir)
}

// Upload accepts a multipart "file" field holding an image
func (h *UploadHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing file")
	}
	if h.maxBytes > 0 && fh.Size > h.maxBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "File too large")
	}

	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unreadable file")
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return echo.NewHTTPError(http.StatusBadRequest, "Unreadable file")
	}
	ext, ok := imageExtensions[http.DetectContentType(head[:n])]
	if !ok {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, "Only png, jpeg, gif and webp images are allowed")
	}

	// Stored extension always matches the sniffed type, never the client filename
	name := uuid.NewString() + ext
	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := saveUpload(filepath.Join(h.dir, name), head[:n], src); err != nil {
		h.logger.Error("storing upload", zap.String("file", name), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not store file")
	}

	h.logger.Info("image uploaded", zap.String("file", name), zap.Int64("bytes", fh.Size))
	return c.JSON(http.StatusCreated, models.UploadResponse{URL: "/uploads/" + name})
}

// saveUpload writes head followed by rest to path; a failed write leaves no file behind
func saveUpload(path string, head []byte, rest io.Reader) (err error) {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := dst.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if _, err = dst.Write(head); err != nil {
		return err
	}
	_, err = io.Copy(dst, rest)
	return err
}
