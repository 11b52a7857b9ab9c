package service

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/pdflux/internal/extract"
	"github.com/xxxsen/pdflux/internal/filestore"
	"github.com/xxxsen/pdflux/internal/model"
	appErr "github.com/xxxsen/pdflux/internal/pkg/errors"
)

const (
	uploadPreviewChars = 500
	detailPreviewChars = 1000
)

type documentStore interface {
	Create(ctx context.Context, doc *model.Document) error
	GetByID(ctx context.Context, docID string) (*model.Document, error)
	List(ctx context.Context, limit int) ([]model.Document, error)
	Delete(ctx context.Context, docID string) error
}

type historyStore interface {
	ListByDocument(ctx context.Context, docID string) ([]model.Interaction, error)
	DeleteByDocument(ctx context.Context, docID string) error
}

// DocumentService owns the document lifecycle: upload with one-time text
// extraction, reads, download of the original bytes, and cascade delete of
// the interaction history. Document rows never change after creation, which
// makes the read cache coherent without invalidation beyond delete.
type DocumentService struct {
	documents documentStore
	history   historyStore
	files     filestore.Store
	cache     *expirable.LRU[string, *model.Document]
}

func NewDocumentService(documents documentStore, history historyStore, files filestore.Store) *DocumentService {
	cache := expirable.NewLRU[string, *model.Document](1024, nil, time.Hour)
	return &DocumentService{
		documents: documents,
		history:   history,
		files:     files,
		cache:     cache,
	}
}

type UploadResult struct {
	DocumentID  string `json:"document_id"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	PageCount   int    `json:"page_count"`
	Status      string `json:"status"`
	TextPreview string `json:"text_preview"`
}

type DocumentDetail struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	PageCount   int    `json:"page_count"`
	UploadDate  int64  `json:"upload_date"`
	TextPreview string `json:"text_preview"`
}

type DocumentListItem struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	Size       int64  `json:"size"`
	PageCount  int    `json:"page_count"`
	UploadDate int64  `json:"upload_date"`
}

// Upload stores one PDF: original bytes in the file store, extracted text
// and metadata in the document store. Extraction failure is not fatal; the
// document is kept with empty text, matching scanned or image-only PDFs.
func (s *DocumentService) Upload(ctx context.Context, filename string, data []byte) (*UploadResult, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return nil, appErr.ErrInvalid
	}
	logger := logutil.GetLogger(ctx).With(zap.String("filename", filename), zap.Int("size", len(data)))

	res, err := extract.PDF(data)
	if err != nil {
		logger.Warn("pdf text extraction failed, keeping document without text", zap.Error(err))
		res = extract.Result{}
	}

	docID := newID()
	if err := s.files.Save(ctx, fileKey(docID), bytes.NewReader(data), int64(len(data))); err != nil {
		logger.Error("save uploaded file failed", zap.Error(err))
		return nil, err
	}
	doc := &model.Document{
		ID:          docID,
		Filename:    filename,
		Size:        int64(len(data)),
		PageCount:   res.PageCount,
		TextContent: res.Text,
		UploadDate:  time.Now().Unix(),
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		logger.Error("create document failed", zap.Error(err))
		return nil, err
	}
	logger.Info("document uploaded", zap.String("document_id", docID), zap.Int("page_count", res.PageCount))
	return &UploadResult{
		DocumentID:  docID,
		Filename:    filename,
		Size:        doc.Size,
		PageCount:   doc.PageCount,
		Status:      "uploaded",
		TextPreview: preview(res.Text, uploadPreviewChars),
	}, nil
}

// GetByID reads one document, serving repeated lookups from the cache.
// Safe because text_content is immutable for the life of a document.
func (s *DocumentService) GetByID(ctx context.Context, docID string) (*model.Document, error) {
	if doc, ok := s.cache.Get(docID); ok {
		return doc, nil
	}
	doc, err := s.documents.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	s.cache.Add(docID, doc)
	return doc, nil
}

func (s *DocumentService) Detail(ctx context.Context, docID string) (*DocumentDetail, error) {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	return &DocumentDetail{
		ID:          doc.ID,
		Filename:    doc.Filename,
		Size:        doc.Size,
		PageCount:   doc.PageCount,
		UploadDate:  doc.UploadDate,
		TextPreview: preview(doc.TextContent, detailPreviewChars),
	}, nil
}

func (s *DocumentService) List(ctx context.Context) ([]DocumentListItem, error) {
	docs, err := s.documents.List(ctx, 100)
	if err != nil {
		return nil, err
	}
	items := make([]DocumentListItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, DocumentListItem{
			ID:         doc.ID,
			Filename:   doc.Filename,
			Size:       doc.Size,
			PageCount:  doc.PageCount,
			UploadDate: doc.UploadDate,
		})
	}
	return items, nil
}

func (s *DocumentService) Download(ctx context.Context, docID string) (io.ReadCloser, string, error) {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return nil, "", err
	}
	reader, err := s.files.Open(ctx, fileKey(docID))
	if err != nil {
		return nil, "", appErr.ErrNotFound
	}
	return reader, doc.Filename, nil
}

// Delete removes the document row, cascade-deletes its interaction history
// and evicts the cache entry. Removing the stored file is best effort.
func (s *DocumentService) Delete(ctx context.Context, docID string) error {
	logger := logutil.GetLogger(ctx).With(zap.String("document_id", docID))
	if err := s.documents.Delete(ctx, docID); err != nil {
		return err
	}
	s.cache.Remove(docID)
	if err := s.history.DeleteByDocument(ctx, docID); err != nil {
		logger.Error("cascade delete interactions failed", zap.Error(err))
		return err
	}
	if err := s.files.Delete(ctx, fileKey(docID)); err != nil {
		logger.Warn("delete stored file failed", zap.Error(err))
	}
	logger.Info("document deleted")
	return nil
}

func (s *DocumentService) History(ctx context.Context, docID string) ([]model.Interaction, error) {
	if _, err := s.GetByID(ctx, docID); err != nil {
		return nil, err
	}
	return s.history.ListByDocument(ctx, docID)
}

func fileKey(docID string) string {
	return docID + ".pdf"
}

func preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
