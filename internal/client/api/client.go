// Package api is the HTTP client for the blog backend
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anonto42/nano-blog/internal/models"
)

var (
	// ErrNotFound is returned when the server reports a missing post or comment
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned when input is rejected, locally or by the server
	ErrValidation = errors.New("validation failed")
	// ErrNetwork covers transport failures, timeouts and server errors
	ErrNetwork = errors.New("network failure")
)

// Client talks to the blog backend
type Client struct {
	baseURL *url.URL
	token   string
	client  *http.Client
}

// NewClient creates a client for baseURL. An empty token sends no Authorization header
func NewClient(baseURL, token string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: u,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// errorBody is the JSON shape of an echo.HTTPError response
type errorBody struct {
	Message string `json:"message"`
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.ResolveReference(&url.URL{Path: strings.TrimPrefix(path, "/")}).String()
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// do sends req and decodes a successful JSON response into out when out is non-nil
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrNetwork, err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(raw))
	var body errorBody
	if json.Unmarshal(raw, &body) == nil && body.Message != "" {
		msg = body.Message
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrValidation, msg)
	default:
		return fmt.Errorf("%w: server returned %d: %s", ErrNetwork, resp.StatusCode, msg)
	}
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := c.newRequest(ctx, method, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// ListPosts fetches every post, newest first
func (c *Client) ListPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := c.get(ctx, "/posts", &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// CreatePost creates a post and returns it as stored
func (c *Client) CreatePost(ctx context.Context, req models.CreatePostRequest) (models.Post, error) {
	var post models.Post
	err := c.sendJSON(ctx, http.MethodPost, "/posts", req, &post)
	return post, err
}

// UpdatePost replaces title, content and images of post id
func (c *Client) UpdatePost(ctx context.Context, id uint, req models.CreatePostRequest) error {
	return c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/posts/%d", id), req, nil)
}

// DeletePost removes post id and its comments
func (c *Client) DeletePost(ctx context.Context, id uint) error {
	return c.delete(ctx, fmt.Sprintf("/posts/%d", id))
}

// ListComments fetches a post's thread, newest first
func (c *Client) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	if err := c.get(ctx, fmt.Sprintf("/comments/%d", postID), &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CountComments fetches the number of comments on a post
func (c *Client) CountComments(ctx context.Context, postID uint) (int, error) {
	var count models.CommentCount
	if err := c.get(ctx, fmt.Sprintf("/posts/%d/comments/count", postID), &count); err != nil {
		return 0, err
	}
	return count.Count, nil
}

// CreateComment adds a comment and returns it as stored
func (c *Client) CreateComment(ctx context.Context, req models.CreateCommentRequest) (models.Comment, error) {
	var comment models.Comment
	err := c.sendJSON(ctx, http.MethodPost, "/comments", req, &comment)
	return comment, err
}

// DeleteComment removes comment id
func (c *Client) DeleteComment(ctx context.Context, id uint) error {
	return c.delete(ctx, fmt.Sprintf("/comments/%d", id))
}

// UploadImage sends the file at localPath and returns its absolute URL
func (c *Client) UploadImage(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filepath.Base(localPath))
	if err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(fw, f); err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/upload", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out models.UploadResponse
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return c.resolve(out.URL)
}

// resolve turns a server-relative URL such as /uploads/x.png into an absolute
// one under the base URL
func (c *Client) resolve(raw string) (string, error) {
	ref, err := url.Parse(raw)
	if err != nil || raw == "" {
		return "", fmt.Errorf("%w: bad upload url %q", ErrNetwork, raw)
	}
	if ref.IsAbs() {
		return raw, nil
	}
	ref.Path = strings.TrimPrefix(ref.Path, "/")
	return c.baseURL.ResolveReference(ref).String(), nil
}
