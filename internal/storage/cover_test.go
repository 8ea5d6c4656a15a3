package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoverKey(t *testing.T) {
	k := CoverKey("c1", "Banner.PNG", "image/png")
	assert.True(t, strings.HasPrefix(k, "courses/c1/"), k)
	assert.True(t, strings.HasSuffix(k, ".png"), k)

	k2 := CoverKey("c1", "Banner.PNG", "image/png")
	assert.NotEqual(t, k, k2)

	noExt := CoverKey("c1", "banner", "image/png")
	assert.True(t, strings.HasSuffix(noExt, ".png"), noExt)
}

func TestValidateCover(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int64
		want        error
	}{
		{name: "png", contentType: "image/png", size: 1024},
		{name: "jpeg with params", contentType: "image/jpeg; charset=binary", size: MaxCoverSize},
		{name: "pdf", contentType: "application/pdf", size: 10, want: ErrNotImage},
		{name: "garbage type", contentType: ";;", size: 10, want: ErrNotImage},
		{name: "empty", contentType: "image/png", size: 0, want: ErrEmptyUpload},
		{name: "too big", contentType: "image/webp", size: MaxCoverSize + 1, want: ErrCoverTooBig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateCover(tt.contentType, tt.size), tt.want)
		})
	}
}
