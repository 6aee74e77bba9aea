package validators

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/nano-blog/internal/models"
)

func TestValidateCommentRequest(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		req     models.CreateCommentRequest
		wantErr string
	}{
		{"valid", models.CreateCommentRequest{Author: "Alice", Text: "hi", PostID: 1}, ""},
		{"missing author", models.CreateCommentRequest{Text: "hi", PostID: 1}, "author is required"},
		{"long author", models.CreateCommentRequest{Author: strings.Repeat("a", 51), Text: "hi", PostID: 1}, "author cannot be longer than 50 characters"},
		{"long text", models.CreateCommentRequest{Author: "a", Text: strings.Repeat("x", 501), PostID: 1}, "text cannot be longer than 500 characters"},
		{"zero post", models.CreateCommentRequest{Author: "a", Text: "b"}, "postId is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidatePostForm(t *testing.T) {
	v := NewValidator()

	err := v.Validate(models.PostForm{Title: "Hi", Content: "long enough"})
	require.Error(t, err)
	assert.Equal(t, "title must be at least 3 characters", err.Error())

	err = v.Validate(models.PostForm{Title: "Title", Content: "tiny"})
	require.Error(t, err)
	assert.Equal(t, "content must be at least 5 characters", err.Error())

	assert.NoError(t, v.Validate(models.PostForm{Title: "Title", Content: "Content"}))
}

func TestValidateCountsRunes(t *testing.T) {
	v := NewValidator()
	// 50 multi-byte runes are still within the author limit
	author := strings.Repeat("é", 50)
	assert.NoError(t, v.Validate(models.CreateCommentRequest{Author: author, Text: "ok", PostID: 3}))
}
