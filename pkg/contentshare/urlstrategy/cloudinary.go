package urlstrategy

// CloudinaryStrategy builds delivery URLs of the form
// {BaseURL}/upload/{transform}/{key}, where BaseURL names the cloud and the
// resource type, e.g. "https://res.cloudinary.com/demo/video".
type CloudinaryStrategy struct {
	BaseURL string
}

// NewCloudinaryStrategy creates a new Cloudinary URL strategy
func NewCloudinaryStrategy(baseURL string) *CloudinaryStrategy {
	return &CloudinaryStrategy{BaseURL: baseURL}
}

func (s *CloudinaryStrategy) PublicURL(key string) string {
	if key == "" {
		return s.BaseURL
	}
	return joinURL(joinURL(s.BaseURL, "upload"), key)
}

func (s *CloudinaryStrategy) TransformedURL(key, transform string) string {
	if key == "" || transform == "" {
		return s.PublicURL(key)
	}
	return joinURL(joinURL(joinURL(s.BaseURL, "upload"), transform), key)
}

func (s *CloudinaryStrategy) SupportsTransforms() bool { return true }
