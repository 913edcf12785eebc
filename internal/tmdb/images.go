package tmdb

import "strings"

// ImageKind is the asset type an image path belongs to
type ImageKind string

const (
	ImagePoster   ImageKind = "poster"
	ImageBackdrop ImageKind = "backdrop"
	ImageProfile  ImageKind = "profile"
)

// ImageSize is a named size tier
type ImageSize string

const (
	SizeSmall    ImageSize = "small"
	SizeMedium   ImageSize = "medium"
	SizeLarge    ImageSize = "large"
	SizeOriginal ImageSize = "original"
)

var imageSizes = map[ImageKind]map[ImageSize]string{
	ImagePoster: {
		SizeSmall:    "w185",
		SizeMedium:   "w342",
		SizeLarge:    "w500",
		SizeOriginal: "original",
	},
	ImageBackdrop: {
		SizeSmall:    "w300",
		SizeMedium:   "w780",
		SizeLarge:    "w1280",
		SizeOriginal: "original",
	},
	ImageProfile: {
		SizeSmall:    "w45",
		SizeMedium:   "w185",
		SizeLarge:    "h632",
		SizeOriginal: "original",
	},
}

// ImageURL composes a displayable URL from a relative image path.
// A nil or empty path yields "". Unknown kinds fall back to poster, unknown sizes to medium.
func ImageURL(base string, path *string, kind ImageKind, size ImageSize) string {
	if path == nil || *path == "" {
		return ""
	}
	if base == "" {
		base = DefaultImageBaseURL
	}
	sizes, ok := imageSizes[kind]
	if !ok {
		sizes = imageSizes[ImagePoster]
	}
	tier, ok := sizes[size]
	if !ok {
		tier = sizes[SizeMedium]
	}
	return strings.TrimRight(base, "/") + "/" + tier + *path
}
