package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"captain-smart/internal/cleanup"
	"captain-smart/internal/database"
	"captain-smart/internal/engine"
	"captain-smart/internal/expiry"
	"captain-smart/internal/middleware"
	"captain-smart/internal/models"
	"captain-smart/internal/utils"
	ws "captain-smart/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeStore implements the store methods the HTTP tests exercise. The
// embedded interface covers the rest; calling an unimplemented method panics,
// which is what we want in a test.
type fakeStore struct {
	database.Store

	mu       sync.Mutex
	exposes  map[string]*models.Expose
	views    map[string]bool // sessionID|exposeID
	articles map[string]*models.Article
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		exposes:  make(map[string]*models.Expose),
		views:    make(map[string]bool),
		articles: make(map[string]*models.Article),
	}
}

func (f *fakeStore) SaveExpose(ctx context.Context, expose *models.Expose) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *expose
	f.exposes[expose.ID] = &cp
	return nil
}

func (f *fakeStore) GetExpose(ctx context.Context, id string) (*models.Expose, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	expose, ok := f.exposes[id]
	if !ok {
		return nil, utils.NewExposeNotFoundError(id)
	}
	cp := *expose
	return &cp, nil
}

func (f *fakeStore) GetRecentExposes(ctx context.Context, now time.Time, limit int) ([]*models.Expose, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Expose
	for _, e := range f.exposes {
		if !expiry.IsExpired(e.ExpiresAt, now) {
			cp := *e
			out = append(out, &cp)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) FindExpiredExposes(ctx context.Context, now time.Time) ([]*models.Expose, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Expose
	for _, e := range f.exposes {
		if expiry.IsExpired(e.ExpiresAt, now) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteExpiredExposes(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for id, e := range f.exposes {
		if expiry.IsExpired(e.ExpiresAt, now) {
			delete(f.exposes, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeStore) IncrementVote(ctx context.Context, id string, vote models.VoteType) (*models.Expose, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	expose, ok := f.exposes[id]
	if !ok {
		return nil, utils.NewExposeNotFoundError(id)
	}
	if vote == models.VoteUp {
		expose.Upvotes++
	} else {
		expose.Downvotes++
	}
	cp := *expose
	return &cp, nil
}

func (f *fakeStore) IncrementShares(ctx context.Context, id string) (*models.Expose, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	expose, ok := f.exposes[id]
	if !ok {
		return nil, utils.NewExposeNotFoundError(id)
	}
	expose.Shares++
	cp := *expose
	return &cp, nil
}

func (f *fakeStore) IncrementViews(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if expose, ok := f.exposes[id]; ok {
		expose.Views++
	}
	return nil
}

func (f *fakeStore) InsertView(ctx context.Context, view *models.ViewRecord) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := view.SessionID + "|" + view.ExposeID
	if f.views[key] {
		return false, nil
	}
	f.views[key] = true
	return true, nil
}

func (f *fakeStore) SaveArticle(ctx context.Context, article *models.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.articles {
		if existing.Slug == article.Slug && existing.ID != article.ID {
			return utils.NewAppError(utils.ErrDuplicate, "slug already in use: "+article.Slug, nil)
		}
	}
	cp := *article
	f.articles[article.ID] = &cp
	return nil
}

func (f *fakeStore) GetArticle(ctx context.Context, id string) (*models.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	article, ok := f.articles[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrNotFound, "Article not found: "+id, nil)
	}
	cp := *article
	return &cp, nil
}

func (f *fakeStore) GetArticleBySlug(ctx context.Context, slug string) (*models.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, article := range f.articles {
		if article.Slug == slug {
			cp := *article
			return &cp, nil
		}
	}
	return nil, utils.NewAppError(utils.ErrNotFound, "Article not found: "+slug, nil)
}

func (f *fakeStore) GetArticlesByCategory(ctx context.Context, category string, limit int) ([]*models.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Article
	for _, article := range f.articles {
		if article.Category == category {
			cp := *article
			out = append(out, &cp)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) IncrementArticleViews(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if article, ok := f.articles[id]; ok {
		article.Views++
	}
	return nil
}

type fakeMedia struct {
	mu       sync.Mutex
	uploaded []string
	deleted  []string
}

func (f *fakeMedia) Upload(ctx context.Context, key, contentType string, body io.ReadSeeker) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded = append(f.uploaded, key)
	return "https://media.test/" + key, nil
}

func (f *fakeMedia) DeleteFile(ctx context.Context, fileURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, fileURL)
	return nil
}

type testEnv struct {
	server *Server
	store  *fakeStore
	media  *fakeMedia
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newFakeStore()
	media := &fakeMedia{}
	metrics := utils.NewMetricsCollector()
	system := actor.NewActorSystem()
	eng := engine.NewEngine(system, store, nil, metrics, 48*time.Hour)
	cleanupSvc := cleanup.NewService(store, media, metrics)

	passHash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	srv := NewServer(system, eng, metrics, store, media, cleanupSvc, ws.NewHub(), "test-jwt-secret", string(passHash))
	return &testEnv{server: srv, store: store, media: media}
}

func (env *testEnv) seedExpose(t *testing.T, expiresAt time.Time) *models.Expose {
	t.Helper()
	expose := &models.Expose{
		ID:        models.NewExposeID(),
		Title:     "Seeded",
		Content:   "Seeded content",
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}
	require.NoError(t, env.store.SaveExpose(context.Background(), expose))
	return expose
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	req.RemoteAddr = "203.0.113.7:54321"
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestHandleExposesCreateAndFetch(t *testing.T) {
	env := newTestEnv(t)

	rec := doJSON(t, env.server.HandleExposes(), http.MethodPost, "/api/exposes", CreateExposeRequest{
		Title:   "Procurement scandal",
		Content: "The invoices do not add up.",
		Hashtag: "#procurement",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope["success"])
	data := envelope["data"].(map[string]interface{})
	exposeID := data["ID"].(string)
	assert.True(t, models.ValidExposeID(exposeID))

	rec = doJSON(t, env.server.HandleExposes(), http.MethodGet, "/api/exposes?id="+exposeID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	envelope = decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope["success"])
}

func TestHandleExposesValidationError(t *testing.T) {
	env := newTestEnv(t)

	rec := doJSON(t, env.server.HandleExposes(), http.MethodPost, "/api/exposes", CreateExposeRequest{
		Title:   "",
		Content: "content without a title",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, false, envelope["success"])
	assert.Equal(t, utils.ErrInvalidInput, envelope["code"])
	assert.NotEmpty(t, envelope["error"])
}

func TestHandleVoteUnknownExpose(t *testing.T) {
	env := newTestEnv(t)

	rec := doJSON(t, env.server.HandleVote(), http.MethodPost, "/api/exposes/votes", VoteRequest{
		ExposeID: models.NewExposeID(),
		VoteType: "upvote",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, false, envelope["success"])
	assert.Equal(t, utils.ErrNotFound, envelope["code"])
}

func TestHandleVoteCounts(t *testing.T) {
	env := newTestEnv(t)
	expose := env.seedExpose(t, time.Now().Add(time.Hour))

	rec := doJSON(t, env.server.HandleVote(), http.MethodPost, "/api/exposes/votes", VoteRequest{
		ExposeID: expose.ID,
		VoteType: "upvote",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["upvotes"])
	assert.Equal(t, float64(1), data["netVotes"])
}

func TestHandleViewDeduplicatesBySession(t *testing.T) {
	env := newTestEnv(t)
	expose := env.seedExpose(t, time.Now().Add(time.Hour))

	req := ViewRequest{ExposeID: expose.ID, SessionID: "session_abcdef123456"}

	rec := doJSON(t, env.server.HandleView(), http.MethodPost, "/api/exposes/views", req)
	assert.Equal(t, http.StatusOK, rec.Code)
	first := decodeEnvelope(t, rec)
	assert.Equal(t, true, first["success"])
	assert.Equal(t, true, first["newView"])
	assert.Equal(t, float64(1), first["views"])

	// A repeat from the same session succeeds but changes nothing.
	rec = doJSON(t, env.server.HandleView(), http.MethodPost, "/api/exposes/views", req)
	assert.Equal(t, http.StatusOK, rec.Code)
	second := decodeEnvelope(t, rec)
	assert.Equal(t, true, second["success"])
	assert.Equal(t, false, second["newView"])
	assert.Equal(t, float64(1), second["views"])
}

func TestHandleViewExpiredExpose(t *testing.T) {
	env := newTestEnv(t)
	expose := env.seedExpose(t, time.Now().Add(-time.Minute))

	rec := doJSON(t, env.server.HandleView(), http.MethodPost, "/api/exposes/views", ViewRequest{
		ExposeID:  expose.ID,
		SessionID: "session_abcdef123456",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, utils.ErrExposeExpired, envelope["code"])
}

func TestHandleAdminLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := doJSON(t, env.server.HandleAdminLogin(), http.MethodPost, "/api/admin/login", AdminLoginRequest{
		Password: "hunter2",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	data := envelope["data"].(map[string]interface{})
	token := data["token"].(string)
	require.NotEmpty(t, token)

	claims, err := middleware.ValidateAdminToken("test-jwt-secret", token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
}

func TestHandleAdminLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)

	rec := doJSON(t, env.server.HandleAdminLogin(), http.MethodPost, "/api/admin/login", AdminLoginRequest{
		Password: "not-it",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, utils.ErrUnauthorized, envelope["code"])
}

func TestAdminAuthGuardsHandler(t *testing.T) {
	called := false
	guarded := middleware.AdminAuth("test-jwt-secret", func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/cleanup", nil)
	rec := httptest.NewRecorder()
	guarded(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)

	token, err := middleware.GenerateAdminToken("test-jwt-secret")
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodPost, "/api/admin/cleanup", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	guarded(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestHandleCleanupReportsResult(t *testing.T) {
	env := newTestEnv(t)
	expired := env.seedExpose(t, time.Now().Add(-time.Hour))
	expired.ImageURLs = []string{"https://media.test/exposes/a.jpg"}
	require.NoError(t, env.store.SaveExpose(context.Background(), expired))
	env.seedExpose(t, time.Now().Add(time.Hour))

	rec := doJSON(t, env.server.HandleCleanup(), http.MethodPost, "/api/admin/cleanup", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope["success"])
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["cleanedCount"])
	assert.Equal(t, float64(1), data["filesDeleted"])
	assert.Equal(t, float64(0), data["filesFailed"])
	assert.Equal(t, []string{"https://media.test/exposes/a.jpg"}, env.media.deleted)
}

func multipartUpload(t *testing.T, contentType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="upload.bin"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestHandleMediaUpload(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartUpload(t, "image/png", []byte("not-a-real-png"))
	req := httptest.NewRequest(http.MethodPost, "/api/media/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.server.HandleMediaUpload()(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	data := envelope["data"].(map[string]interface{})
	assert.Contains(t, data["url"], "https://media.test/exposes/")
	require.Len(t, env.media.uploaded, 1)
	assert.Contains(t, env.media.uploaded[0], ".png")
}

func TestHandleMediaUploadRejectsUnknownType(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartUpload(t, "application/zip", []byte{0x50, 0x4b})
	req := httptest.NewRequest(http.MethodPost, "/api/media/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.server.HandleMediaUpload()(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, utils.ErrInvalidInput, envelope["code"])
	assert.Empty(t, env.media.uploaded)
}

func TestHandleArticlesLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := doJSON(t, env.server.HandleArticles(), http.MethodPost, "/api/articles", CreateArticleRequest{
		Title:    "Audit report released",
		Slug:     "audit-report-released",
		Category: "Politics",
		Content:  "Full details of the audit.",
		Author:   "Newsroom",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	data := envelope["data"].(map[string]interface{})
	articleID := data["ID"].(string)
	assert.True(t, models.ValidArticleID(articleID))
	assert.Equal(t, "politics", data["Category"])

	rec = doJSON(t, env.server.HandleArticles(), http.MethodGet, "/api/articles?slug=audit-report-released", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	envelope = decodeEnvelope(t, rec)
	data = envelope["data"].(map[string]interface{})
	assert.Equal(t, articleID, data["ID"])
	assert.Equal(t, float64(1), data["Views"]) // reads bump the counter

	rec = doJSON(t, env.server.HandleArticles(), http.MethodGet, "/api/articles?category=politics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleArticlesBadSlug(t *testing.T) {
	env := newTestEnv(t)

	rec := doJSON(t, env.server.HandleArticles(), http.MethodPost, "/api/articles", CreateArticleRequest{
		Title:    "Bad slug",
		Slug:     "Not A Slug",
		Category: "politics",
		Content:  "body",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, utils.ErrInvalidInput, envelope["code"])
}
