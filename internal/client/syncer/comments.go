package syncer

import (
	"context"

	"go.uber.org/zap"

	"github.com/anonto42/nano-blog/internal/models"
)

// LoadComments replaces the visible thread with postID's comments and
// pushes the thread size into the post's count
func (c *Controller) LoadComments(ctx context.Context, postID uint) error {
	comments, err := c.api.ListComments(ctx, postID)
	if err != nil {
		return c.fail(ctx, "Failed to load comments", err)
	}
	if err := c.abandoned(ctx, "load comments"); err != nil {
		return err
	}

	c.comments.SetAll(postID, comments)
	c.syncCount(postID, 0)
	return nil
}

// AddComment validates and creates a comment. It is prepended when postID's
// thread is the one loaded
func (c *Controller) AddComment(ctx context.Context, postID uint, author, text string) (models.Comment, error) {
	req := models.CreateCommentRequest{Author: trim(author), Text: trim(text), PostID: postID}
	if err := c.check(ctx, "Invalid comment", req); err != nil {
		return models.Comment{}, err
	}

	comment, err := c.api.CreateComment(ctx, req)
	if err != nil {
		return models.Comment{}, c.fail(ctx, "Failed to add comment", err)
	}
	if err := c.abandoned(ctx, "add comment"); err != nil {
		return models.Comment{}, err
	}

	if c.comments.PostID() == postID {
		c.comments.Prepend(comment)
	}
	c.syncCount(postID, 1)
	c.log.Info("comment added", zap.Uint("post_id", postID), zap.Uint("comment_id", comment.ID))
	return comment, nil
}

// DeleteComment deletes a comment of postID
func (c *Controller) DeleteComment(ctx context.Context, postID, commentID uint) error {
	if err := c.api.DeleteComment(ctx, commentID); err != nil {
		return c.fail(ctx, "Failed to delete comment", err)
	}
	if err := c.abandoned(ctx, "delete comment"); err != nil {
		return err
	}

	if c.comments.PostID() == postID {
		c.comments.RemoveByID(commentID)
	}
	c.syncCount(postID, -1)
	c.log.Info("comment deleted", zap.Uint("post_id", postID), zap.Uint("comment_id", commentID))
	return nil
}
