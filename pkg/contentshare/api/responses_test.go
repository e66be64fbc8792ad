package api

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/tendant/content-share/pkg/contentshare"
	"github.com/tendant/content-share/pkg/contentshare/objectstore"
	memorystorage "github.com/tendant/content-share/pkg/contentshare/storage/memory"
	"github.com/tendant/content-share/pkg/contentshare/urlstrategy"
)

func TestContentView_VideoThumbnail(t *testing.T) {
	video := &contentshare.Content{
		ID:           uuid.New(),
		Title:        "Launch",
		FileType:     contentshare.FileTypeVideo,
		FilePath:     "website-content/launch.mp4",
		ThumbnailURL: contentshare.DeriveThumbnail(contentshare.FileTypeVideo, "website-content/launch.mp4"),
	}

	tests := []struct {
		name      string
		strategy  urlstrategy.Strategy
		media     string
		thumbnail string
	}{
		{
			name:      "cdn falls back to the video",
			strategy:  urlstrategy.NewCDNStrategy("/media"),
			media:     "/media/website-content/launch.mp4",
			thumbnail: "/media/website-content/launch.mp4",
		},
		{
			name:      "cloudinary renders a poster frame",
			strategy:  urlstrategy.NewCloudinaryStrategy("https://res.cloudinary.com/demo/video"),
			media:     "https://res.cloudinary.com/demo/video/upload/website-content/launch.mp4",
			thumbnail: "https://res.cloudinary.com/demo/video/upload/" + contentshare.ThumbnailTransform + "/website-content/launch.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := objectstore.New("memory", memorystorage.New(), objectstore.WithURLStrategy(tt.strategy))
			view := contentView(video, storage)
			assert.Equal(t, tt.media, view.MediaURL)
			assert.Equal(t, tt.thumbnail, view.ThumbnailURL)
		})
	}

	t.Run("absolute thumbnail kept", func(t *testing.T) {
		c := *video
		c.ThumbnailURL = "https://img.example.com/poster.jpg"
		storage := objectstore.New("memory", memorystorage.New())
		assert.Equal(t, c.ThumbnailURL, contentView(&c, storage).ThumbnailURL)
	})
}
