package api

import (
	"errors"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/magbay/LAN-Chat/modules/uploads"
)

const uploadField = "file"

// healthHandler handles GET /health.
func (m *Module) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module":      "api",
			"connections": m.hub.ClientCount(),
			"peers":       m.hub.Room().Len(),
		},
	})
}

// uploadImage handles POST /upload.
func (m *Module) uploadImage(c *fiber.Ctx) error {
	header, err := formImage(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := uploads.ValidateImageName(header.Filename); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if header.Size > m.cfg.MaxUploadSize {
		return fiber.ErrRequestEntityTooLarge
	}

	data, err := readFormFile(header)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Failed to read file")
	}

	stored, err := m.images.SaveImage(c.UserContext(), header.Filename, data)
	if err != nil {
		if errors.Is(err, uploads.ErrNoSelectedFile) || errors.Is(err, uploads.ErrInvalidFileType) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	m.logger.Info("Image uploaded", "url", stored.URL, "size", stored.Size)
	return c.JSON(UploadResponse{URL: stored.URL})
}

// serveImage handles GET /uploads/:id/:name.
func (m *Module) serveImage(c *fiber.Ctx) error {
	data, info, err := m.images.OpenImage(c.UserContext(), c.Params("id"), c.Params("name"))
	if err != nil {
		if errors.Is(err, uploads.ErrNotFound) || errors.Is(err, uploads.ErrInvalidImageID) {
			return fiber.NewError(fiber.StatusNotFound, "Not found")
		}
		return err
	}

	c.Set(fiber.HeaderContentType, info.ContentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	return c.Send(data)
}

// getRoster handles GET /api/v1/roster.
func (m *Module) getRoster(c *fiber.Ctx) error {
	snap, err := m.presencePort.Roster(c.UserContext())
	if err != nil {
		m.logger.Error("Failed to get roster", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to get roster")
	}
	return c.JSON(RosterResponse{Nicknames: snap.Nicknames, Count: snap.Count})
}

// getNickname handles GET /api/v1/nickname.
func (m *Module) getNickname(c *fiber.Ctx) error {
	nickname, err := m.presencePort.RandomNickname(c.UserContext())
	if err != nil {
		m.logger.Error("Failed to generate nickname", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to generate nickname")
	}
	return c.JSON(NicknameResponse{Nickname: nickname})
}

// getStats handles GET /api/v1/stats.
func (m *Module) getStats(c *fiber.Ctx) error {
	stats, err := m.activityPort.Stats(c.UserContext())
	if err != nil {
		m.logger.Error("Failed to get stats", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to get stats")
	}
	return c.JSON(stats)
}

// formImage finds the uploaded file part. A part sent with an empty filename
// is parsed as a plain form value, which is how "no selected file" shows up.
func formImage(c *fiber.Ctx) (*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, uploads.ErrNoFilePart
	}
	files := form.File[uploadField]
	if len(files) == 0 {
		if _, ok := form.Value[uploadField]; ok {
			return nil, uploads.ErrNoSelectedFile
		}
		return nil, uploads.ErrNoFilePart
	}
	if files[0].Filename == "" {
		return nil, uploads.ErrNoSelectedFile
	}
	return files[0], nil
}

func readFormFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
