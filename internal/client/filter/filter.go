// Package filter derives the visible post list from a search query and a set
// of exclusive toggle pairs. Nothing here performs I/O or mutates its input
package filter

import (
	"strings"

	"github.com/anonto42/nano-blog/internal/models"
)

// VisiblePosts returns the posts in all that match query and p, preserving
// their relative order. isViewed may be nil when no viewed toggle is on
func VisiblePosts(all []models.Post, query string, p Predicates, isViewed func(uint) bool) []models.Post {
	needle := strings.ToLower(strings.TrimSpace(query))

	out := make([]models.Post, 0, len(all))
	for _, post := range all {
		if needle != "" && !matchesText(post, needle) {
			continue
		}
		if !pair(p, WithAttachments, WithoutAttachments, post.HasAttachments()) {
			continue
		}
		if !pair(p, WithComments, WithoutComments, post.CommentsCount > 0) {
			continue
		}
		if p.Enabled(Viewed) || p.Enabled(Unviewed) {
			seen := isViewed != nil && isViewed(post.ID)
			if !pair(p, Viewed, Unviewed, seen) {
				continue
			}
		}
		out = append(out, post)
	}
	return out
}

func matchesText(post models.Post, needle string) bool {
	return strings.Contains(strings.ToLower(post.Title), needle) ||
		strings.Contains(strings.ToLower(post.Content), needle)
}

// pair applies one exclusive pair: yes requires has, no requires !has
func pair(p Predicates, yes, no Filter, has bool) bool {
	switch {
	case p.Enabled(yes):
		return has
	case p.Enabled(no):
		return !has
	default:
		return true
	}
}
