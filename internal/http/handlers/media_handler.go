package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/aeroclubhq/membership-backend/internal/models"
	"github.com/aeroclubhq/membership-backend/internal/repository"
	"github.com/aeroclubhq/membership-backend/internal/storage"
)

// Разрешённые типы файлов: фотографии и документы (лицензии, сертификаты).
var allowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// Разрешённые расширения файлов
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".pdf":  true,
}

// MediaHandler управляет загрузкой и удалением файлов участников.
type MediaHandler struct {
	repo    *repository.MediaRepository
	storage *storage.FileStorage
}

// NewMediaHandler создаёт новый хэндлер.
func NewMediaHandler(repo *repository.MediaRepository, storage *storage.FileStorage) *MediaHandler {
	return &MediaHandler{repo: repo, storage: storage}
}

// Upload обрабатывает POST /media.
func (h *MediaHandler) Upload(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "поле file обязательно"})
		return
	}

	if file.Size == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "файл не может быть пустым"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("неподдерживаемый формат файла. Разрешены: %s", strings.Join(extensionList(), ", ")),
		})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()

	// Читаем первые 512 байт для проверки магических байтов
	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": "не удалось прочитать файл"})
		return
	}

	kind, err := filetype.Match(buffer[:n])
	if err != nil || kind == filetype.Unknown {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "не удалось определить тип файла",
		})
		return
	}

	contentType := kind.MIME.Value
	if !allowedMimeTypes[contentType] {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("неподдерживаемый тип файла (%s)", contentType),
		})
		return
	}

	// Расширение должно соответствовать реальному типу файла
	expectedExt := "." + kind.Extension
	if ext != expectedExt && !(ext == ".jpg" && expectedExt == ".jpeg") && !(ext == ".jpeg" && expectedExt == ".jpg") {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("расширение файла (%s) не соответствует реальному типу (%s)", ext, expectedExt),
		})
		return
	}

	if seeker, ok := src.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "не удалось сбросить позицию файла"})
			return
		}
	}

	relativePath, size, err := h.storage.Save(c.Request.Context(), userID, file.Filename, src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	media := &models.Media{
		OwnerID:     userID,
		Filename:    filepath.ToSlash(relativePath),
		ContentType: contentType,
		SizeBytes:   size,
	}

	if err := h.repo.Create(c.Request.Context(), media); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, media)
}

// ListMine обрабатывает GET /media — файлы текущего участника.
func (h *MediaHandler) ListMine(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	files, err := h.repo.ListForOwner(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, files)
}

// Delete обрабатывает DELETE /media/:id.
func (h *MediaHandler) Delete(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	mediaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор файла"})
		return
	}

	media, err := h.repo.GetByID(c.Request.Context(), mediaID)
	if err != nil {
		if errors.Is(err, repository.ErrMediaNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "файл не найден"})
			return
		}
		respondError(c, err)
		return
	}

	// Участник может удалять только свои файлы
	if media.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "у вас нет прав на удаление этого файла"})
		return
	}

	if err := h.repo.Delete(c.Request.Context(), mediaID); err != nil {
		respondError(c, err)
		return
	}

	if err := h.storage.Delete(c.Request.Context(), media.Filename); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// extensionList возвращает список разрешённых расширений.
func extensionList() []string {
	exts := make([]string, 0, len(allowedExtensions))
	for ext := range allowedExtensions {
		exts = append(exts, ext)
	}
	return exts
}
