// Package syncer orchestrates calls to the blog API and reconciles their
// results into the client stores. A store is only touched after the remote
// call it depends on has succeeded and the caller's context is still live
package syncer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/anonto42/nano-blog/internal/client/api"
	"github.com/anonto42/nano-blog/internal/client/store"
	"github.com/anonto42/nano-blog/internal/client/viewed"
	"github.com/anonto42/nano-blog/internal/models"
	"github.com/anonto42/nano-blog/validators"
)

// API is the subset of the backend client the controller depends on
type API interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	CreatePost(ctx context.Context, req models.CreatePostRequest) (models.Post, error)
	UpdatePost(ctx context.Context, id uint, req models.CreatePostRequest) error
	DeletePost(ctx context.Context, id uint) error
	ListComments(ctx context.Context, postID uint) ([]models.Comment, error)
	CountComments(ctx context.Context, postID uint) (int, error)
	CreateComment(ctx context.Context, req models.CreateCommentRequest) (models.Comment, error)
	DeleteComment(ctx context.Context, id uint) error
	UploadImage(ctx context.Context, localPath string) (string, error)
}

// Notifier shows a failure to the user. Implementations should block until
// the message has been acknowledged when the UI supports it
type Notifier interface {
	Error(title, message string)
}

type nopNotifier struct{}

func (nopNotifier) Error(string, string) {}

// Options tunes the controller
type Options struct {
	// CountConcurrency bounds parallel comment-count and upload requests
	CountConcurrency int
}

const defaultConcurrency = 4

// Controller is stateless apart from the collaborators it is built with
type Controller struct {
	api      API
	posts    *store.PostStore
	comments *store.CommentStore
	viewed   *viewed.Set
	edit     *store.EditSession
	notify   Notifier
	validate *validators.Validator
	log      *zap.Logger
	limit    int
}

// Deps groups the collaborators of a Controller. Edit, Notifier and Logger may be nil
type Deps struct {
	API      API
	Posts    *store.PostStore
	Comments *store.CommentStore
	Viewed   *viewed.Set
	Edit     *store.EditSession
	Notifier Notifier
	Logger   *zap.Logger
}

// New creates a Controller
func New(deps Deps, opts Options) *Controller {
	c := &Controller{
		api:      deps.API,
		posts:    deps.Posts,
		comments: deps.Comments,
		viewed:   deps.Viewed,
		edit:     deps.Edit,
		notify:   deps.Notifier,
		validate: validators.NewValidator(),
		log:      deps.Logger,
		limit:    opts.CountConcurrency,
	}
	if c.notify == nil {
		c.notify = nopNotifier{}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.edit == nil {
		c.edit = store.NewEditSession(nil)
	}
	if c.limit <= 0 {
		c.limit = defaultConcurrency
	}
	return c
}

// fail logs and reports err. A cancelled caller is not notified
func (c *Controller) fail(ctx context.Context, title string, err error) error {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		c.log.Debug("operation abandoned", zap.String("op", title), zap.Error(err))
		return err
	}
	c.log.Warn(title, zap.Error(err))
	c.notify.Error(title, err.Error())
	return err
}

// abandoned reports whether ctx was cancelled while a remote call was in flight
func (c *Controller) abandoned(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		c.log.Debug("discarding result of cancelled operation", zap.String("op", op), zap.Error(err))
		return err
	}
	return nil
}

func (c *Controller) check(ctx context.Context, title string, v interface{}) error {
	if err := c.validate.Validate(v); err != nil {
		return c.fail(ctx, title, fmt.Errorf("%w: %s", api.ErrValidation, err.Error()))
	}
	return nil
}

// syncCount refreshes postID's comment count after a thread change. A
// loaded thread is authoritative; otherwise delta adjusts the cached count
func (c *Controller) syncCount(postID uint, delta int) {
	if c.comments.PostID() == postID {
		c.posts.SetCommentsCount(postID, c.comments.Len())
		return
	}
	if p, ok := c.posts.Get(postID); ok {
		c.posts.SetCommentsCount(postID, p.CommentsCount+delta)
	}
}

// ClearHistory forgets every viewed post
func (c *Controller) ClearHistory(ctx context.Context) {
	c.viewed.Clear(ctx)
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
