package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anonto42/nano-blog/internal/middleware"
	"github.com/anonto42/nano-blog/internal/models"
	"github.com/anonto42/nano-blog/internal/router"
	"github.com/anonto42/nano-blog/internal/testdb"
	"github.com/anonto42/nano-blog/validators"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// newBackend serves the real routes over an in-memory database
func newBackend(t *testing.T, writeAuth echo.MiddlewareFunc) *httptest.Server {
	t.Helper()
	e := echo.New()
	e.Validator = validators.NewValidator()
	router.SetupRoutes(e, router.Options{
		DB:             testdb.Open(t),
		Logger:         zap.NewNop(),
		UploadDir:      t.TempDir(),
		MaxUploadBytes: 1 << 20,
		WriteAuth:      writeAuth,
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, baseURL, token string) *Client {
	t.Helper()
	c, err := NewClient(baseURL, token, 5*time.Second)
	require.NoError(t, err)
	return c
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient("ftp://example.com", "", 0)
	assert.Error(t, err)
	_, err = NewClient("://nope", "", 0)
	assert.Error(t, err)
}

func TestPostsRoundTrip(t *testing.T) {
	srv := newBackend(t, nil)
	c := newClient(t, srv.URL, "")
	ctx := context.Background()

	created, err := c.CreatePost(ctx, models.CreatePostRequest{Title: "Hello", Content: "World"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Empty(t, created.ImageURLs)

	require.NoError(t, c.UpdatePost(ctx, created.ID, models.CreatePostRequest{Title: "Hello again", Content: "World"}))

	posts, err := c.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Hello again", posts[0].Title)

	comment, err := c.CreateComment(ctx, models.CreateCommentRequest{Author: "Alice", Text: "hi", PostID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, "Alice", comment.Author)

	n, err := c.CountComments(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	thread, err := c.ListComments(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, comment.ID, thread[0].ID)

	require.NoError(t, c.DeleteComment(ctx, comment.ID))
	require.NoError(t, c.DeletePost(ctx, created.ID))

	posts, err = c.ListPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestUpdatePostImages(t *testing.T) {
	srv := newBackend(t, nil)
	c := newClient(t, srv.URL, "")
	ctx := context.Background()

	created, err := c.CreatePost(ctx, models.CreatePostRequest{Title: "Hello", Content: "World", ImageURLs: []string{"/uploads/a.png"}})
	require.NoError(t, err)

	imagesAfter := func(form models.PostForm) []string {
		t.Helper()
		require.NoError(t, c.UpdatePost(ctx, created.ID, form.Request()))
		posts, err := c.ListPosts(ctx)
		require.NoError(t, err)
		require.Len(t, posts, 1)
		return posts[0].ImageURLs
	}

	assert.Equal(t, []string{"/uploads/a.png"}, imagesAfter(models.PostForm{Title: "Hello", Content: "World"}),
		"nil images keep the stored ones")
	assert.Empty(t, imagesAfter(models.PostForm{Title: "Hello", Content: "World", ImageURLs: []string{}}),
		"an empty list clears them")
	assert.Equal(t, []string{"/uploads/b.png"}, imagesAfter(models.PostForm{Title: "Hello", Content: "World", ImageURLs: []string{"/uploads/b.png"}}))
}

func TestErrorMapping(t *testing.T) {
	srv := newBackend(t, nil)
	c := newClient(t, srv.URL, "")
	ctx := context.Background()

	err := c.DeletePost(ctx, 404)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "Post not found")

	_, err = c.CreatePost(ctx, models.CreatePostRequest{Title: "", Content: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "title is required")
}

func TestServerErrorIsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL, "").ListPosts(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
	assert.Contains(t, err.Error(), "502")
}

func TestTransportErrorIsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newClient(t, url, "").ListPosts(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
}

func TestCancelledContext(t *testing.T) {
	srv := newBackend(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newClient(t, srv.URL, "").ListPosts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBearerToken(t *testing.T) {
	secret := "s3cret"
	srv := newBackend(t, middleware.JWTAuthMiddleware(secret))
	ctx := context.Background()

	_, err := newClient(t, srv.URL, "").CreatePost(ctx, models.CreatePostRequest{Title: "t", Content: "c"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))

	token, err := middleware.SignToken(secret, &models.APIClaims{Name: "cli"})
	require.NoError(t, err)
	_, err = newClient(t, srv.URL, token).CreatePost(ctx, models.CreatePostRequest{Title: "t", Content: "c"})
	assert.NoError(t, err)
}

func TestUploadImageResolvesURL(t *testing.T) {
	srv := newBackend(t, nil)
	c := newClient(t, srv.URL, "")

	path := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(path, pngHeader, 0o644))

	url, err := c.UploadImage(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, srv.URL+"/uploads/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUploadImageMissingFile(t *testing.T) {
	c := newClient(t, "http://127.0.0.1:1", "")
	_, err := c.UploadImage(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	c := newClient(t, "https://blog.example.com/api", "")

	got, err := c.resolve("/uploads/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://blog.example.com/api/uploads/a.png", got)

	got, err = c.resolve("https://cdn.example.com/b.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/b.png", got)

	_, err = c.resolve("")
	assert.ErrorIs(t, err, ErrNetwork)
}
