package syncer

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anonto42/nano-blog/internal/client/store"
	"github.com/anonto42/nano-blog/internal/models"
)

// LoadPosts fetches the post list and each post's comment count. A failed
// count leaves that post at 0 without failing the load
func (c *Controller) LoadPosts(ctx context.Context) error {
	posts, err := c.api.ListPosts(ctx)
	if err != nil {
		return c.fail(ctx, "Failed to load posts", err)
	}

	counts := make([]int, len(posts))
	var g errgroup.Group
	g.SetLimit(c.limit)
	for i := range posts {
		id := posts[i].ID
		g.Go(func() error {
			n, err := c.api.CountComments(ctx, id)
			if err != nil {
				c.log.Warn("comment count unavailable", zap.Uint("post_id", id), zap.Error(err))
				return nil
			}
			counts[i] = n
			return nil
		})
	}
	_ = g.Wait()

	if err := c.abandoned(ctx, "load posts"); err != nil {
		return err
	}

	annotated := make([]models.Post, len(posts))
	for i, p := range posts {
		p.CommentsCount = counts[i]
		if p.ImageURLs == nil {
			p.ImageURLs = []string{}
		}
		annotated[i] = p
	}
	c.posts.SetAll(annotated)
	c.log.Info("posts loaded", zap.Int("count", len(annotated)))
	return nil
}

// CreatePost uploads images, then creates the post. A failed upload keeps the
// local path in place of a server URL and does not fail the create
func (c *Controller) CreatePost(ctx context.Context, form models.PostForm, images []string) (models.Post, error) {
	form.Title, form.Content = trim(form.Title), trim(form.Content)
	if err := c.check(ctx, "Invalid post", form); err != nil {
		return models.Post{}, err
	}

	urls := append([]string{}, form.ImageURLs...)
	urls = append(urls, c.uploadAll(ctx, images)...)
	form.ImageURLs = urls

	post, err := c.api.CreatePost(ctx, form.Request())
	if err != nil {
		return models.Post{}, c.fail(ctx, "Failed to create post", err)
	}
	if err := c.abandoned(ctx, "create post"); err != nil {
		return models.Post{}, err
	}

	post.Comments = []models.Comment{}
	post.CommentsCount = 0
	if post.ImageURLs == nil {
		post.ImageURLs = []string{}
	}
	c.posts.UpsertAfterCreate(post)
	c.log.Info("post created", zap.Uint("post_id", post.ID), zap.Int("images", len(post.ImageURLs)))
	return post, nil
}

// uploadAll uploads every local image concurrently, preserving order
func (c *Controller) uploadAll(ctx context.Context, images []string) []string {
	urls := make([]string, len(images))
	var g errgroup.Group
	g.SetLimit(c.limit)
	for i, local := range images {
		g.Go(func() error {
			url, err := c.api.UploadImage(ctx, local)
			if err != nil {
				c.log.Warn("image upload failed, keeping local path", zap.String("path", local), zap.Error(err))
				urls[i] = local
				return nil
			}
			urls[i] = url
			return nil
		})
	}
	_ = g.Wait()
	return urls
}

// UpdatePost saves an edit and patches the stored post
func (c *Controller) UpdatePost(ctx context.Context, id uint, form models.PostForm) error {
	form.Title, form.Content = trim(form.Title), trim(form.Content)
	if err := c.check(ctx, "Invalid post", form); err != nil {
		return err
	}

	if err := c.api.UpdatePost(ctx, id, form.Request()); err != nil {
		return c.fail(ctx, "Failed to update post", err)
	}
	if err := c.abandoned(ctx, "update post"); err != nil {
		return err
	}

	c.posts.ReplaceByID(id, store.Patch(form))
	c.edit.CloseIf(id)
	c.log.Info("post updated", zap.Uint("post_id", id))
	return nil
}

// DeletePost removes the post from the server, the store and the viewed set,
// and force-closes an edit session open on it
func (c *Controller) DeletePost(ctx context.Context, id uint) error {
	if err := c.api.DeletePost(ctx, id); err != nil {
		return c.fail(ctx, "Failed to delete post", err)
	}
	if err := c.abandoned(ctx, "delete post"); err != nil {
		return err
	}

	c.posts.RemoveByID(id)
	c.viewed.Remove(context.WithoutCancel(ctx), id)
	if c.comments.PostID() == id {
		c.comments.Clear()
	}
	if c.edit.CloseIf(id) {
		c.log.Info("closed edit session for deleted post", zap.Uint("post_id", id))
	}
	c.log.Info("post deleted", zap.Uint("post_id", id))
	return nil
}

// OpenPost marks the post viewed and loads its thread
func (c *Controller) OpenPost(ctx context.Context, id uint) error {
	c.viewed.MarkViewed(ctx, id)
	return c.LoadComments(ctx, id)
}

// EditPost opens an edit session on a known post
func (c *Controller) EditPost(id uint) (models.Post, bool) {
	post, ok := c.posts.Get(id)
	if ok {
		c.edit.Open(id)
	}
	return post, ok
}
