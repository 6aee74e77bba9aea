package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anonto42/nano-blog/internal/middleware"
	"github.com/anonto42/nano-blog/internal/models"
	"github.com/anonto42/nano-blog/internal/testdb"
	"github.com/anonto42/nano-blog/validators"
)

// pngHeader is enough for http.DetectContentType to report image/png
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newServer(t *testing.T, writeAuth echo.MiddlewareFunc) (*echo.Echo, string) {
	t.Helper()
	dir := t.TempDir()
	e := echo.New()
	e.Validator = validators.NewValidator()
	SetupRoutes(e, Options{
		DB:             testdb.Open(t),
		Logger:         zap.NewNop(),
		UploadDir:      dir,
		MaxUploadBytes: 1 << 20,
		WriteAuth:      writeAuth,
	})
	return e, dir
}

func do(t *testing.T, e *echo.Echo, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestPostLifecycle(t *testing.T) {
	e, _ := newServer(t, nil)

	rec := do(t, e, http.MethodPost, "/posts", models.CreatePostRequest{Title: "Hello", Content: "World", ImageURLs: []string{"http://x/a.png"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Post](t, rec)
	assert.NotZero(t, created.ID)
	assert.Equal(t, []string{"http://x/a.png"}, created.ImageURLs)

	rec = do(t, e, http.MethodPut, fmt.Sprintf("/posts/%d", created.ID), models.CreatePostRequest{Title: "Hello again", Content: "World"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Post](t, rec)
	assert.Equal(t, "Hello again", updated.Title)
	assert.Equal(t, []string{"http://x/a.png"}, updated.ImageURLs, "omitted imageUrls keep the stored value")

	rec = do(t, e, http.MethodGet, "/posts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]models.Post](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "Hello again", list[0].Title)

	rec = do(t, e, http.MethodDelete, fmt.Sprintf("/posts/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":true}`, rec.Body.String())

	rec = do(t, e, http.MethodGet, fmt.Sprintf("/posts/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, e, http.MethodDelete, fmt.Sprintf("/posts/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostValidation(t *testing.T) {
	e, _ := newServer(t, nil)

	rec := do(t, e, http.MethodPost, "/posts", models.CreatePostRequest{Title: "", Content: "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "title is required")

	rec = do(t, e, http.MethodGet, "/posts/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodPut, "/posts/99", models.CreatePostRequest{Title: "t", Content: "c"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCommentLifecycle(t *testing.T) {
	e, _ := newServer(t, nil)

	post := decode[models.Post](t, do(t, e, http.MethodPost, "/posts", models.CreatePostRequest{Title: "Post", Content: "Body"}))

	rec := do(t, e, http.MethodPost, "/comments", models.CreateCommentRequest{Author: "Alice", Text: "first", PostID: post.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decode[models.Comment](t, rec)
	second := decode[models.Comment](t, do(t, e, http.MethodPost, "/comments", models.CreateCommentRequest{Author: "Bob", Text: "second", PostID: post.ID}))

	rec = do(t, e, http.MethodGet, fmt.Sprintf("/comments/%d", post.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	thread := decode[[]models.Comment](t, rec)
	require.Len(t, thread, 2)
	assert.Equal(t, second.ID, thread[0].ID)
	assert.Equal(t, first.ID, thread[1].ID)

	got := decode[models.Post](t, do(t, e, http.MethodGet, fmt.Sprintf("/posts/%d", post.ID), nil))
	assert.Equal(t, 2, got.CommentsCount)

	rec = do(t, e, http.MethodDelete, fmt.Sprintf("/comments/%d", first.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	count := decode[models.CommentCount](t, do(t, e, http.MethodGet, fmt.Sprintf("/posts/%d/comments/count", post.ID), nil))
	assert.Equal(t, models.CommentCount{PostID: post.ID, Count: 1}, count)
	rec = do(t, e, http.MethodDelete, fmt.Sprintf("/comments/%d", first.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, e, http.MethodPost, "/comments", models.CreateCommentRequest{Author: "Alice", Text: "orphan", PostID: 999})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, e, http.MethodPost, "/comments", models.CreateCommentRequest{Author: strings.Repeat("a", 51), Text: "x", PostID: post.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	return req
}

func TestUploadStoresAndServesImage(t *testing.T) {
	e, dir := newServer(t, nil)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, uploadRequest(t, "photo.PNG", pngHeader))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode[models.UploadResponse](t, rec)
	require.True(t, strings.HasPrefix(res.URL, "/uploads/"))
	assert.True(t, strings.HasSuffix(res.URL, ".png"))

	_, err := os.Stat(filepath.Join(dir, strings.TrimPrefix(res.URL, "/uploads/")))
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, res.URL, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pngHeader, rec.Body.Bytes())
}

func TestUploadNamesFileBySniffedType(t *testing.T) {
	e, dir := newServer(t, nil)

	payload := append(append([]byte{}, pngHeader...), []byte("<html><script>alert(1)</script></html>")...)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, uploadRequest(t, "evil.html", payload))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode[models.UploadResponse](t, rec)
	assert.True(t, strings.HasSuffix(res.URL, ".png"), res.URL)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".png", filepath.Ext(entries[0].Name()))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, res.URL, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
}

func TestUploadRejectsUnlistedImageType(t *testing.T) {
	e, dir := newServer(t, nil)

	// BMP sniffs as an image but is not an accepted upload type
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, uploadRequest(t, "pic.bmp", []byte("BM\x00\x00\x00\x00")))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadRejectsNonImage(t *testing.T) {
	e, _ := newServer(t, nil)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, uploadRequest(t, "notes.txt", []byte("just some text")))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestWriteAuthGuardsMutations(t *testing.T) {
	const secret = "s3cret"
	e, _ := newServer(t, middleware.JWTAuthMiddleware(secret))

	rec := do(t, e, http.MethodPost, "/posts", models.CreatePostRequest{Title: "Hello", Content: "World"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, e, http.MethodGet, "/posts", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "reads stay public")

	token, err := middleware.SignToken(secret, &models.APIClaims{Name: "editor"})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(models.CreatePostRequest{Title: "Hello", Content: "World"}))
	req := httptest.NewRequest(http.MethodPost, "/posts", &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, e, http.MethodGet, "/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	e, _ := newServer(t, nil)
	rec := do(t, e, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}
