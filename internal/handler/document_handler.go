package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/pdflux/internal/pkg/errcode"
	"github.com/xxxsen/pdflux/internal/pkg/response"
	"github.com/xxxsen/pdflux/internal/service"
)

type DocumentHandler struct {
	documents *service.DocumentService
	export    *service.ExportService
	maxUpload int64
}

func NewDocumentHandler(documents *service.DocumentService, export *service.ExportService, maxUpload int64) *DocumentHandler {
	return &DocumentHandler{documents: documents, export: export, maxUpload: maxUpload}
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "file is required")
		return
	}
	if h.maxUpload > 0 && file.Size > h.maxUpload {
		response.Error(c, errcode.ErrInvalidFile, "file too large")
		return
	}
	opened, err := file.Open()
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "failed to open file")
		return
	}
	defer opened.Close()
	data, err := io.ReadAll(opened)
	if err != nil {
		response.Error(c, errcode.ErrUploadFailed, "failed to read file")
		return
	}
	res, err := h.documents.Upload(c.Request.Context(), file.Filename, data)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, res)
}

func (h *DocumentHandler) List(c *gin.Context) {
	items, err := h.documents.List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": items})
}

func (h *DocumentHandler) Get(c *gin.Context) {
	detail, err := h.documents.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, detail)
}

func (h *DocumentHandler) Download(c *gin.Context) {
	reader, filename, err := h.documents.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	defer reader.Close()
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = io.Copy(c.Writer, reader)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	docID := c.Param("id")
	if err := h.documents.Delete(c.Request.Context(), docID); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Document deleted successfully", "document_id": docID})
}

func (h *DocumentHandler) History(c *gin.Context) {
	records, err := h.documents.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": records})
}

func (h *DocumentHandler) ExportHistory(c *gin.Context) {
	page, err := h.export.ExportHistoryHTML(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.Data(200, "text/html; charset=utf-8", page)
}
