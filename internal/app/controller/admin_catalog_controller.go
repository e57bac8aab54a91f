package controller

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bookshelf-backend/internal/app/model"
	"github.com/ikkim/bookshelf-backend/internal/app/service"
	"github.com/ikkim/bookshelf-backend/internal/catalogio"
	apperrors "github.com/ikkim/bookshelf-backend/internal/errors"
	"github.com/ikkim/bookshelf-backend/internal/middleware"
	"github.com/ikkim/bookshelf-backend/internal/storage"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CoverUploader issues presigned cover uploads
type CoverUploader interface {
	PresignCoverUpload(ctx context.Context, itemID uint, filename, contentType string) (*storage.PresignedURLResponse, error)
}

type AdminCatalogController struct {
	catalogService service.CatalogService
	covers         CoverUploader
}

// NewAdminCatalogController wires catalog administration. A nil uploader answers 503 on cover requests.
func NewAdminCatalogController(catalogService service.CatalogService, covers CoverUploader) *AdminCatalogController {
	return &AdminCatalogController{
		catalogService: catalogService,
		covers:         covers,
	}
}

type CoverUploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// List GET /api/admin/catalogs
func (ctrl *AdminCatalogController) List(c *gin.Context) {
	items, err := ctrl.catalogService.List()
	if err != nil {
		respondError(c, err, "list catalog items")
		return
	}
	c.JSON(http.StatusOK, items)
}

// Get GET /api/admin/catalogs/:id
func (ctrl *AdminCatalogController) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	item, err := ctrl.catalogService.Get(id)
	if err != nil {
		respondError(c, err, "get catalog item")
		return
	}
	c.JSON(http.StatusOK, item)
}

// Create POST /api/admin/catalogs
func (ctrl *AdminCatalogController) Create(c *gin.Context) {
	var item model.CatalogItem
	if !bindJSON(c, &item, "create catalog item") {
		return
	}

	if err := ctrl.catalogService.Create(&item); err != nil {
		respondError(c, err, "create catalog item")
		return
	}

	created, err := ctrl.catalogService.Get(item.ID)
	if err != nil {
		respondError(c, err, "get catalog item")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Replace PUT /api/admin/catalogs/:id
func (ctrl *AdminCatalogController) Replace(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var item model.CatalogItem
	if !bindJSON(c, &item, "replace catalog item") {
		return
	}

	if err := ctrl.catalogService.Replace(id, &item); err != nil {
		respondError(c, err, "replace catalog item")
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete DELETE /api/admin/catalogs/:id
func (ctrl *AdminCatalogController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.catalogService.Delete(id); err != nil {
		respondError(c, err, "delete catalog item")
		return
	}
	c.Status(http.StatusNoContent)
}

// Export GET /api/admin/catalogs/export
func (ctrl *AdminCatalogController) Export(c *gin.Context) {
	items, err := ctrl.catalogService.List()
	if err != nil {
		respondError(c, err, "export catalog")
		return
	}

	var buf bytes.Buffer
	if err := catalogio.WriteXLSX(&buf, items); err != nil {
		respondError(c, err, "export catalog")
		return
	}

	filename := "catalog-" + time.Now().UTC().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Import POST /api/admin/catalogs/import (multipart field "file")
func (ctrl *AdminCatalogController) Import(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	header, err := c.FormFile("file")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, err, "import catalog")
		return
	}
	defer file.Close()

	rows, skipped, err := catalogio.ReadXLSX(file)
	if err != nil {
		log.Warn("Unreadable catalog workbook", map[string]interface{}{
			"filename": header.Filename,
			"error":    err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "File is not a readable catalog workbook")
		return
	}

	imported, err := ctrl.catalogService.Import(rows)
	if err != nil {
		respondError(c, err, "import catalog")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"imported":      imported,
		"skipped_lines": skipped,
	})
}

// Cover POST /api/admin/catalogs/:id/cover
func (ctrl *AdminCatalogController) Cover(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if ctrl.covers == nil {
		apperrors.ServiceUnavailable(c, apperrors.UploadUnavailable, "Cover storage is not configured")
		return
	}

	var req CoverUploadRequest
	if !bindJSON(c, &req, "cover upload") {
		return
	}

	if _, err := ctrl.catalogService.Get(id); err != nil {
		respondError(c, err, "get catalog item")
		return
	}

	upload, err := ctrl.covers.PresignCoverUpload(c.Request.Context(), id, req.Filename, req.ContentType)
	if err != nil {
		if errors.Is(err, storage.ErrContentTypeNotAllowed) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Cover must be a JPEG, PNG or WebP image")
			return
		}
		middleware.GetLoggerFromContext(c).Error("Failed to presign cover upload", err, map[string]interface{}{
			"catalog_item_id": id,
		})
		apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.UploadFailed, "Could not prepare the upload")
		return
	}

	if err := ctrl.catalogService.SetCoverURL(id, upload.FileURL); err != nil {
		respondError(c, err, "update catalog item cover")
		return
	}
	c.JSON(http.StatusOK, upload)
}
