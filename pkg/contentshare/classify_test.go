package contentshare_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendant/content-share/pkg/contentshare"
)

func TestClassifyFileType(t *testing.T) {
	tests := []struct {
		contentType string
		expected    contentshare.FileType
	}{
		{"video/mp4", contentshare.FileTypeVideo},
		{"video/quicktime", contentshare.FileTypeVideo},
		{"image/png", contentshare.FileTypeImage},
		{"application/pdf", contentshare.FileTypeOther},
		{"text/plain", contentshare.FileTypeOther},
		{"", contentshare.FileTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.expected, contentshare.ClassifyFileType(tt.contentType))
		})
	}
}

func TestDeriveThumbnail(t *testing.T) {
	tests := []struct {
		name     string
		fileType contentshare.FileType
		path     string
		expected string
	}{
		{
			name:     "video with upload segment",
			fileType: contentshare.FileTypeVideo,
			path:     "https://res.example.com/demo/video/upload/v1/website-content/abc.mp4",
			expected: "https://res.example.com/demo/video/upload/w_400,c_fill,g_auto,pg_1/v1/website-content/abc.jpg",
		},
		{
			name:     "video key without upload segment",
			fileType: contentshare.FileTypeVideo,
			path:     "website-content/abc.mov",
			expected: "website-content/abc.jpg",
		},
		{
			name:     "video without extension",
			fileType: contentshare.FileTypeVideo,
			path:     "website-content/v1.2/abc",
			expected: "website-content/v1.2/abc.jpg",
		},
		{
			name:     "image reuses path",
			fileType: contentshare.FileTypeImage,
			path:     "website-content/abc.png",
			expected: "website-content/abc.png",
		},
		{
			name:     "other has none",
			fileType: contentshare.FileTypeOther,
			path:     "website-content/abc.pdf",
			expected: "",
		},
		{
			name:     "unknown has none",
			fileType: contentshare.FileTypeUnknown,
			path:     "website-content/abc",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, contentshare.DeriveThumbnail(tt.fileType, tt.path))
		})
	}
}

func TestVideoThumbnailDiffersFromPath(t *testing.T) {
	path := "website-content/clip.mp4"
	thumb := contentshare.DeriveThumbnail(contentshare.FileTypeVideo, path)
	assert.NotEmpty(t, thumb)
	assert.NotEqual(t, path, thumb)
}
