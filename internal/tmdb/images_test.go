package tmdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageURL(t *testing.T) {
	path := "/abc.jpg"
	empty := ""

	tests := []struct {
		name string
		path *string
		kind ImageKind
		size ImageSize
		want string
	}{
		{"poster medium", &path, ImagePoster, SizeMedium, "https://image.tmdb.org/t/p/w342/abc.jpg"},
		{"backdrop large", &path, ImageBackdrop, SizeLarge, "https://image.tmdb.org/t/p/w1280/abc.jpg"},
		{"profile large", &path, ImageProfile, SizeLarge, "https://image.tmdb.org/t/p/h632/abc.jpg"},
		{"original", &path, ImagePoster, SizeOriginal, "https://image.tmdb.org/t/p/original/abc.jpg"},
		{"unknown size", &path, ImagePoster, "huge", "https://image.tmdb.org/t/p/w342/abc.jpg"},
		{"nil path", nil, ImagePoster, SizeSmall, ""},
		{"empty path", &empty, ImagePoster, SizeSmall, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ImageURL("", tt.path, tt.kind, tt.size))
		})
	}

	assert.Equal(t, "http://img/w185/abc.jpg", ImageURL("http://img/", &path, ImagePoster, SizeSmall))
}
