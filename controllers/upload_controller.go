package controllers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/shreyasiddheshwar12/orangesample/config"
	"github.com/shreyasiddheshwar12/orangesample/services"
	"github.com/shreyasiddheshwar12/orangesample/utils"
)

// UploadMedia handles POST /api/v1/upload - stores a profile photo or portfolio clip
func UploadMedia(c *gin.Context) {
	if _, ok := currentActor(c); !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "A file is required in the 'file' form field")
		return
	}

	media, err := services.GetMediaService().Upload(c.Request.Context(), fileHeader)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, media)
}

// GetUploadedMedia handles GET /api/v1/uploads/:filename - serves locally stored uploads
func GetUploadedMedia(c *gin.Context) {
	filename := c.Param("filename")

	if !utils.SafeFilename(filename) {
		respondError(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid filename")
		return
	}

	filePath := filepath.Join(config.GetConfig().UploadDir, filename)
	if _, err := os.Stat(filePath); err != nil {
		respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "File not found")
		return
	}

	mtype, err := mimetype.DetectFile(filePath)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Type", mtype.String())
	c.Header("Cache-Control", "public, max-age=86400") // 24 hours
	c.File(filePath)
}
