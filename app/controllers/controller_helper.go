package controllers

import (
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// errorJSON builds the shared error envelope used by every API handler.
func errorJSON(code, message string) fiber.Map {
	return fiber.Map{"error": code, "message": message}
}

// parseUintParam reads a positive integer route parameter, 0 when invalid.
func parseUintParam(c *fiber.Ctx, name string) uint {
	raw := strings.TrimSpace(c.Params(name))
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}

// readFileHead returns the first bytes of an uploaded file for content-type
// sniffing. The caller re-opens the header for the actual upload.
func readFileHead(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return head[:n], nil
}

// parsePagination reads offset/limit query params with sane bounds.
func parsePagination(c *fiber.Ctx) (int, int) {
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return offset, limit
}
