package handler_test

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/xxxsen/pdflux/internal/ai"
	"github.com/xxxsen/pdflux/internal/config"
	"github.com/xxxsen/pdflux/internal/filestore"
	"github.com/xxxsen/pdflux/internal/handler"
	"github.com/xxxsen/pdflux/internal/middleware"
	"github.com/xxxsen/pdflux/internal/model"
	"github.com/xxxsen/pdflux/internal/repo"
	"github.com/xxxsen/pdflux/internal/service"
	"github.com/xxxsen/pdflux/test/testutil"
)

// stubProvider answers every call with a fixed reply and records nothing
// upstream. It is wired into the dispatcher under every catalog name so
// handler tests never hit a real AI endpoint.
type stubProvider struct {
	name  string
	reply string
}

func (p *stubProvider) Name() string {
	return p.name
}

func (p *stubProvider) Generate(ctx context.Context, model, system, user string) (string, error) {
	return p.reply, nil
}

type testEnv struct {
	router    http.Handler
	documents *repo.DocumentRepo
	history   *repo.InteractionRepo
}

func setupRouter(t *testing.T) (*testEnv, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, cleanup := testutil.OpenTestDB(t)
	docRepo := repo.NewDocumentRepo(db)
	interactionRepo := repo.NewInteractionRepo(db)

	tmpDir, err := os.MkdirTemp("", "pdflux-upload-*")
	require.NoError(t, err)

	store, err := filestore.New(config.FileStoreConfig{
		Type: "local",
		Data: map[string]interface{}{
			"dir": tmpDir,
		},
	})
	require.NoError(t, err)

	providers := map[string]ai.IProvider{}
	for _, entry := range ai.Catalog() {
		providers[entry.Name] = &stubProvider{name: entry.Name, reply: "stub reply"}
	}
	dispatcher := ai.NewDispatcher(providers, 10*time.Second)

	documentService := service.NewDocumentService(docRepo, interactionRepo, store)
	aiService := service.NewAIService(dispatcher, documentService, interactionRepo)
	exportService := service.NewExportService(documentService, interactionRepo)

	deps := handler.RouterDeps{
		Documents: handler.NewDocumentHandler(documentService, exportService, 20*1024*1024),
		AI:        handler.NewAIHandler(aiService),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(nil),
		),
	)
	require.NoError(t, err)

	env := &testEnv{
		router:    engine,
		documents: docRepo,
		history:   interactionRepo,
	}
	return env, func() {
		cleanup()
		_ = os.RemoveAll(tmpDir)
	}
}

func (e *testEnv) seedDocument(t *testing.T, id, filename, text string) {
	t.Helper()
	require.NoError(t, e.documents.Create(context.Background(), &model.Document{
		ID:          id,
		Filename:    filename,
		Size:        int64(len(text)),
		PageCount:   1,
		TextContent: text,
		UploadDate:  time.Now().Unix(),
	}))
	t.Cleanup(func() {
		_ = e.history.DeleteByDocument(context.Background(), id)
		_ = e.documents.Delete(context.Background(), id)
	})
}
