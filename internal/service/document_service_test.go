package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/pdflux/internal/model"
	appErr "github.com/xxxsen/pdflux/internal/pkg/errors"
)

type memDocumentStore struct {
	docs map[string]*model.Document
}

func newMemDocumentStore() *memDocumentStore {
	return &memDocumentStore{docs: map[string]*model.Document{}}
}

func (m *memDocumentStore) Create(ctx context.Context, doc *model.Document) error {
	m.docs[doc.ID] = doc
	return nil
}

func (m *memDocumentStore) GetByID(ctx context.Context, docID string) (*model.Document, error) {
	doc, ok := m.docs[docID]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return doc, nil
}

func (m *memDocumentStore) List(ctx context.Context, limit int) ([]model.Document, error) {
	out := make([]model.Document, 0, len(m.docs))
	for _, doc := range m.docs {
		out = append(out, *doc)
	}
	return out, nil
}

func (m *memDocumentStore) Delete(ctx context.Context, docID string) error {
	if _, ok := m.docs[docID]; !ok {
		return appErr.ErrNotFound
	}
	delete(m.docs, docID)
	return nil
}

type memHistoryStore struct {
	byDoc map[string][]model.Interaction
}

func newMemHistoryStore() *memHistoryStore {
	return &memHistoryStore{byDoc: map[string][]model.Interaction{}}
}

func (m *memHistoryStore) ListByDocument(ctx context.Context, docID string) ([]model.Interaction, error) {
	return m.byDoc[docID], nil
}

func (m *memHistoryStore) DeleteByDocument(ctx context.Context, docID string) error {
	delete(m.byDoc, docID)
	return nil
}

type memFileStore struct {
	files map[string][]byte
}

func newMemFileStore() *memFileStore {
	return &memFileStore{files: map[string][]byte{}}
}

func (m *memFileStore) Save(ctx context.Context, key string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.files[key] = data
	return nil
}

func (m *memFileStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.files[key]
	if !ok {
		return nil, fmt.Errorf("no such key: %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memFileStore) Delete(ctx context.Context, key string) error {
	delete(m.files, key)
	return nil
}

func newTestDocumentService() (*DocumentService, *memDocumentStore, *memHistoryStore, *memFileStore) {
	docs := newMemDocumentStore()
	history := newMemHistoryStore()
	files := newMemFileStore()
	return NewDocumentService(docs, history, files), docs, history, files
}

func TestUploadRejectsNonPDF(t *testing.T) {
	svc, _, _, files := newTestDocumentService()
	_, err := svc.Upload(context.Background(), "notes.txt", []byte("plain text"))
	require.ErrorIs(t, err, appErr.ErrInvalid)
	require.Empty(t, files.files)
}

func TestUploadKeepsDocumentWhenExtractionFails(t *testing.T) {
	svc, docs, _, files := newTestDocumentService()
	data := []byte("not actually a pdf")
	res, err := svc.Upload(context.Background(), "broken.PDF", data)
	require.NoError(t, err, "extraction failure must not reject the upload")
	require.Equal(t, "uploaded", res.Status)
	require.Zero(t, res.PageCount)
	require.Empty(t, res.TextPreview)
	require.Equal(t, int64(len(data)), res.Size)

	stored := docs.docs[res.DocumentID]
	require.NotNil(t, stored)
	require.Empty(t, stored.TextContent)
	require.Equal(t, data, files.files[res.DocumentID+".pdf"])
}

func TestPreviewTruncation(t *testing.T) {
	long := strings.Repeat("a", 600)
	got := preview(long, 500)
	require.Len(t, got, 503)
	require.True(t, strings.HasSuffix(got, "..."))
	require.Equal(t, strings.Repeat("a", 500), got[:500])

	require.Equal(t, "short", preview("short", 500))

	// limits count code points, not bytes
	wide := strings.Repeat("世", 501)
	require.Equal(t, strings.Repeat("世", 500)+"...", preview(wide, 500))
}

func TestDetailPreviewLimit(t *testing.T) {
	svc, docs, _, _ := newTestDocumentService()
	docs.docs["d1"] = &model.Document{
		ID:          "d1",
		Filename:    "big.pdf",
		TextContent: strings.Repeat("b", 1500),
	}
	detail, err := svc.Detail(context.Background(), "d1")
	require.NoError(t, err)
	require.Len(t, detail.TextPreview, 1003)
	require.True(t, strings.HasSuffix(detail.TextPreview, "..."))
}

func TestGetByIDServesFromCache(t *testing.T) {
	svc, docs, _, _ := newTestDocumentService()
	docs.docs["d1"] = &model.Document{ID: "d1", Filename: "a.pdf", TextContent: "text"}

	first, err := svc.GetByID(context.Background(), "d1")
	require.NoError(t, err)

	// drop the backing row; the cached copy keeps serving
	delete(docs.docs, "d1")
	second, err := svc.GetByID(context.Background(), "d1")
	require.NoError(t, err)
	require.Same(t, first, second)
}

func TestDownload(t *testing.T) {
	svc, docs, _, files := newTestDocumentService()
	docs.docs["d1"] = &model.Document{ID: "d1", Filename: "report.pdf"}
	files.files["d1.pdf"] = []byte("%PDF-1.4 payload")

	reader, filename, err := svc.Download(context.Background(), "d1")
	require.NoError(t, err)
	defer reader.Close()
	require.Equal(t, "report.pdf", filename)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Equal(t, []byte("%PDF-1.4 payload"), data)
}

func TestDownloadMissingFile(t *testing.T) {
	svc, docs, _, _ := newTestDocumentService()
	docs.docs["d1"] = &model.Document{ID: "d1", Filename: "report.pdf"}
	_, _, err := svc.Download(context.Background(), "d1")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestDeleteCascades(t *testing.T) {
	svc, docs, history, files := newTestDocumentService()
	docs.docs["d1"] = &model.Document{ID: "d1", Filename: "a.pdf"}
	history.byDoc["d1"] = []model.Interaction{{ID: "i1", DocumentID: "d1"}}
	files.files["d1.pdf"] = []byte("bytes")

	// warm the cache, then make sure delete evicts it
	_, err := svc.GetByID(context.Background(), "d1")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "d1"))
	require.Empty(t, docs.docs)
	require.Empty(t, history.byDoc["d1"])
	require.Empty(t, files.files)

	_, err = svc.GetByID(context.Background(), "d1")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestDeleteUnknownDocument(t *testing.T) {
	svc, _, _, _ := newTestDocumentService()
	err := svc.Delete(context.Background(), "missing")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestHistoryRequiresDocument(t *testing.T) {
	svc, _, history, _ := newTestDocumentService()
	history.byDoc["ghost"] = []model.Interaction{{ID: "i1", DocumentID: "ghost"}}
	_, err := svc.History(context.Background(), "ghost")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestHistoryListsRecords(t *testing.T) {
	svc, docs, history, _ := newTestDocumentService()
	docs.docs["d1"] = &model.Document{ID: "d1", Filename: "a.pdf"}
	history.byDoc["d1"] = []model.Interaction{
		{ID: "i1", DocumentID: "d1", Kind: model.InteractionKindTask, TaskType: "summarize"},
		{ID: "i2", DocumentID: "d1", Kind: model.InteractionKindChat},
	}
	records, err := svc.History(context.Background(), "d1")
	require.NoError(t, err)
	require.Len(t, records, 2)
}
