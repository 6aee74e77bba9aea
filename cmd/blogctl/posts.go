package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/anonto42/nano-blog/internal/client/filter"
	"github.com/anonto42/nano-blog/internal/models"
)

func newPostsCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List, create, edit and delete posts",
	}
	cmd.AddCommand(
		newPostsListCmd(get),
		newPostsCreateCmd(get),
		newPostsUpdateCmd(get),
		newPostsDeleteCmd(get),
		newPostsOpenCmd(get),
	)
	return cmd
}

func newPostsListCmd(get func() *app) *cobra.Command {
	var query string
	var filters []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts, optionally narrowed by a search and filters",
		Long: "List posts newest first. --filter may repeat; accepted names are " +
			strings.Join(filter.FilterNames(), ", ") + ".",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var preds filter.Predicates
			for _, name := range filters {
				f, err := filter.ParseFilter(name)
				if err != nil {
					return err
				}
				preds = preds.Set(f, true)
			}

			a := get()
			if err := a.ctrl.LoadPosts(cmd.Context()); err != nil {
				return reported(err)
			}
			visible := filter.VisiblePosts(a.posts.Posts(), query, preds, a.viewed.IsViewed)
			return printPosts(cmd.OutOrStdout(), visible, a.viewed.IsViewed)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Match title or content, case-insensitive")
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "Filter toggle (repeatable)")
	return cmd
}

func printPosts(w io.Writer, posts []models.Post, isViewed func(uint) bool) error {
	if len(posts) == 0 {
		_, err := fmt.Fprintln(w, "No posts found.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCOMMENTS\tIMAGES\tVIEWED\tCREATED")
	for _, p := range posts {
		seen := ""
		if isViewed(p.ID) {
			seen = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\t%s\n",
			p.ID, p.Title, p.CommentsCount, len(p.ImageURLs), seen, p.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func newPostsCreateCmd(get func() *app) *cobra.Command {
	var form models.PostForm
	var images []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post, uploading any local images first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			post, err := get().ctrl.CreatePost(cmd.Context(), form, images)
			if err != nil {
				return reported(err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Post created (ID: %d)\n", post.ID)
			return err
		},
	}
	cmd.Flags().StringVar(&form.Title, "title", "", "Post title (at least 3 characters)")
	cmd.Flags().StringVar(&form.Content, "content", "", "Post body (at least 5 characters)")
	cmd.Flags().StringArrayVar(&images, "image", nil, "Local image to upload (repeatable)")
	cmd.Flags().StringArrayVar(&form.ImageURLs, "image-url", nil, "Already hosted image URL (repeatable)")
	return cmd
}

func newPostsUpdateCmd(get func() *app) *cobra.Command {
	var title, content string
	var imageURLs []string
	var clearImages bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a post's title, content or images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "post id")
			if err != nil {
				return err
			}
			a := get()
			if err := a.ctrl.LoadPosts(cmd.Context()); err != nil {
				return reported(err)
			}
			current, ok := a.ctrl.EditPost(id)
			if !ok {
				return fmt.Errorf("post %d not found", id)
			}

			form := models.PostForm{Title: current.Title, Content: current.Content}
			if cmd.Flags().Changed("title") {
				form.Title = title
			}
			if cmd.Flags().Changed("content") {
				form.Content = content
			}
			switch {
			case clearImages:
				form.ImageURLs = []string{}
			case len(imageURLs) > 0:
				form.ImageURLs = imageURLs
			}

			if err := a.ctrl.UpdatePost(cmd.Context(), id, form); err != nil {
				return reported(err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Post %d updated\n", id)
			return err
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&content, "content", "", "New content")
	cmd.Flags().StringArrayVar(&imageURLs, "image-url", nil, "Replace images with these URLs (repeatable)")
	cmd.Flags().BoolVar(&clearImages, "clear-images", false, "Remove every image")
	return cmd
}

func newPostsDeleteCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a post and its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "post id")
			if err != nil {
				return err
			}
			if err := get().ctrl.DeletePost(cmd.Context(), id); err != nil {
				return reported(err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Post %d deleted\n", id)
			return err
		},
	}
}

func newPostsOpenCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "open <id>",
		Short: "Show a post with its comments and mark it viewed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "post id")
			if err != nil {
				return err
			}
			a := get()
			if err := a.ctrl.LoadPosts(cmd.Context()); err != nil {
				return reported(err)
			}
			post, ok := a.posts.Get(id)
			if !ok {
				return fmt.Errorf("post %d not found", id)
			}
			if err := a.ctrl.OpenPost(cmd.Context(), id); err != nil {
				return reported(err)
			}
			post, _ = a.posts.Get(id)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s\n%s\n\n%s\n", post.Title, strings.Repeat("=", len([]rune(post.Title))), post.Content)
			for _, u := range post.ImageURLs {
				fmt.Fprintf(w, "  image: %s\n", u)
			}
			fmt.Fprintf(w, "\n%d comment(s)\n", post.CommentsCount)
			return printComments(w, a.comments.Comments())
		},
	}
}
