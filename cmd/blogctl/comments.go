package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/anonto42/nano-blog/internal/models"
)

func newCommentsCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Read and write comments",
	}
	cmd.AddCommand(
		newCommentsListCmd(get),
		newCommentsAddCmd(get),
		newCommentsDeleteCmd(get),
	)
	return cmd
}

func printComments(w io.Writer, comments []models.Comment) error {
	for _, c := range comments {
		if _, err := fmt.Fprintf(w, "[%d] %s (%s): %s\n", c.ID, c.Author, c.CreatedAt.Format("2006-01-02 15:04"), c.Text); err != nil {
			return err
		}
	}
	return nil
}

func newCommentsListCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <post-id>",
		Short: "List a post's comments, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := parseID(args[0], "post id")
			if err != nil {
				return err
			}
			a := get()
			if err := a.ctrl.LoadComments(cmd.Context(), postID); err != nil {
				return reported(err)
			}
			if a.comments.Len() == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No comments yet.")
				return err
			}
			return printComments(cmd.OutOrStdout(), a.comments.Comments())
		},
	}
}

func newCommentsAddCmd(get func() *app) *cobra.Command {
	var author, text string

	cmd := &cobra.Command{
		Use:   "add <post-id>",
		Short: "Comment on a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := parseID(args[0], "post id")
			if err != nil {
				return err
			}
			comment, err := get().ctrl.AddComment(cmd.Context(), postID, author, text)
			if err != nil {
				return reported(err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Comment added (ID: %d)\n", comment.ID)
			return err
		},
	}
	cmd.Flags().StringVar(&author, "author", "", "Your name (1-50 characters)")
	cmd.Flags().StringVar(&text, "text", "", "Comment text (1-500 characters)")
	return cmd
}

func newCommentsDeleteCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <post-id> <comment-id>",
		Short: "Delete a comment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := parseID(args[0], "post id")
			if err != nil {
				return err
			}
			commentID, err := parseID(args[1], "comment id")
			if err != nil {
				return err
			}
			if err := get().ctrl.DeleteComment(cmd.Context(), postID, commentID); err != nil {
				return reported(err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Comment %d deleted\n", commentID)
			return err
		},
	}
}
