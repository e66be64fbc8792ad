package urlstrategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCDNStrategy_PublicURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		key      string
		expected string
	}{
		{"plain join", "https://cdn.example.com", "website-content/a.mp4", "https://cdn.example.com/website-content/a.mp4"},
		{"base with trailing slash", "https://cdn.example.com/", "website-content/a.mp4", "https://cdn.example.com/website-content/a.mp4"},
		{"key with leading slash", "https://cdn.example.com", "/website-content/a.mp4", "https://cdn.example.com/website-content/a.mp4"},
		{"both slashes", "https://cdn.example.com//", "//a.png", "https://cdn.example.com/a.png"},
		{"empty key returns base", "https://cdn.example.com/", "", "https://cdn.example.com/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewCDNStrategy(tt.base)
			assert.Equal(t, tt.expected, s.PublicURL(tt.key))
		})
	}
}

func TestCDNStrategy_TransformedURLFallsBack(t *testing.T) {
	s := NewCDNStrategy("https://cdn.example.com")
	assert.Equal(t, s.PublicURL("a.jpg"), s.TransformedURL("a.jpg", "w_400"))
	assert.False(t, s.SupportsTransforms())
}

func TestCloudinaryStrategy(t *testing.T) {
	s := NewCloudinaryStrategy("https://res.cloudinary.com/demo/video/")

	assert.Equal(t, "https://res.cloudinary.com/demo/video/upload/clips/a.mp4", s.PublicURL("clips/a.mp4"))
	assert.Equal(t,
		"https://res.cloudinary.com/demo/video/upload/w_400,c_fill/clips/a.jpg",
		s.TransformedURL("clips/a.jpg", "w_400,c_fill"))
	assert.Equal(t, s.PublicURL("a.jpg"), s.TransformedURL("a.jpg", ""))
	assert.Equal(t, "https://res.cloudinary.com/demo/video/", s.PublicURL(""))
	assert.True(t, s.SupportsTransforms())
}

func TestNew(t *testing.T) {
	s, err := New("", "https://cdn.example.com")
	require.NoError(t, err)
	assert.IsType(t, &CDNStrategy{}, s)

	s, err = New(StrategyCloudinary, "https://res.cloudinary.com/demo/image")
	require.NoError(t, err)
	assert.IsType(t, &CloudinaryStrategy{}, s)

	_, err = New("signed", "https://cdn.example.com")
	assert.Error(t, err)
}
