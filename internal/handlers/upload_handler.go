package handlers

import (
	"context"
	"io"
	"strings"

	"pasar/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

const maxImageBytes = 5 << 20

// ImageUploader stores an image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, filename string, image io.Reader) (string, error)
}

// UploadHandler proxies image uploads to the image host.
type UploadHandler struct {
	uploader ImageUploader
}

// NewUploadHandler creates a new instance of UploadHandler.
func NewUploadHandler(uploader ImageUploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

// RegisterRoutes registers the upload routes with the Fiber app.
func (h *UploadHandler) RegisterRoutes(router fiber.Router, guard middleware.Guard) {
	router.Post("/uploads", guard.Any(h.HandleUpload)...)
}

// HandleUpload accepts multipart field "image".
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	header, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Multipart field 'image' is required",
			"error":   err.Error(),
		})
	}
	if header.Size > maxImageBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"message": "Image must be 5 MB or smaller",
		})
	}
	if ct := header.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Only image files can be uploaded",
		})
	}

	file, err := header.Open()
	if err != nil {
		return fail(c, err, "Could not read upload")
	}
	defer file.Close()

	url, err := h.uploader.Upload(c.UserContext(), header.Filename, file)
	if err != nil {
		return fail(c, err, "Image upload failed")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": url})
}
