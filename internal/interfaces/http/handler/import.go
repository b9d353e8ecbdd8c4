package handler

import (
	"context"
	"io"
	"net/http"

	importapp "github.com/erp/retail/internal/application/import"
	"github.com/erp/retail/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ImportHandler accepts CSV uploads for purchases and sales
type ImportHandler struct {
	BaseHandler
	imports     *importapp.Service
	maxFileSize int64
}

// NewImportHandler creates a new ImportHandler. maxFileSize caps the
// uploaded file in bytes; zero means no cap beyond the body limit.
func NewImportHandler(imports *importapp.Service, maxFileSize int64) *ImportHandler {
	return &ImportHandler{imports: imports, maxFileSize: maxFileSize}
}

type importFunc func(ctx context.Context, tenantID uuid.UUID, r io.Reader, batchKey string) (*importapp.Result, error)

// ImportPurchases applies an uploaded purchase CSV (multipart field "file")
func (h *ImportHandler) ImportPurchases(c *gin.Context) {
	h.handle(c, h.imports.ImportPurchases)
}

// ImportSales applies an uploaded sale CSV (multipart field "file")
func (h *ImportHandler) ImportSales(c *gin.Context) {
	h.handle(c, h.imports.ImportSales)
}

func (h *ImportHandler) handle(c *gin.Context, run importFunc) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "A CSV file is required in the 'file' field")
		return
	}
	if h.maxFileSize > 0 && header.Size > h.maxFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "File exceeds the maximum import size")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer file.Close()

	batchKey := c.GetHeader(IdempotencyKeyHeader)
	if batchKey == "" {
		batchKey = c.PostForm("batch_key")
	}

	result, err := run(c.Request.Context(), tenantID, file, batchKey)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
