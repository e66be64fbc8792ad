package contentshare

import "strings"

// ThumbnailTransform is the transformation applied to a video path to obtain
// its poster frame: 400px wide, filled, auto gravity, first page.
const ThumbnailTransform = "w_400,c_fill,g_auto,pg_1"

// ClassifyFileType maps a declared content type to a FileType.
func ClassifyFileType(contentType string) FileType {
	switch {
	case contentType == "":
		return FileTypeUnknown
	case strings.HasPrefix(contentType, "video"):
		return FileTypeVideo
	case strings.HasPrefix(contentType, "image"):
		return FileTypeImage
	default:
		return FileTypeOther
	}
}

// DeriveThumbnail returns the thumbnail location for a stored file.
// Videos get a transformed poster-frame path, images reuse the file itself,
// everything else has no thumbnail.
func DeriveThumbnail(fileType FileType, filePath string) string {
	switch fileType {
	case FileTypeVideo:
		return VideoThumbnailPath(filePath)
	case FileTypeImage:
		return filePath
	default:
		return ""
	}
}

// VideoThumbnailPath inserts ThumbnailTransform after any "/upload/" segment
// and swaps the extension of the last path segment for ".jpg".
func VideoThumbnailPath(filePath string) string {
	p := strings.ReplaceAll(filePath, "/upload/", "/upload/"+ThumbnailTransform+"/")
	lastSlash := strings.LastIndex(p, "/")
	lastDot := strings.LastIndex(p, ".")
	if lastDot > lastSlash {
		return p[:lastDot] + ".jpg"
	}
	return p + ".jpg"
}
