package urlstrategy

// CDNStrategy serves objects straight from a bucket or CDN base URL,
// e.g. "https://cdn.example.com" or "https://bucket.s3.us-east-1.amazonaws.com".
// It has no image transformations.
type CDNStrategy struct {
	BaseURL string
}

// NewCDNStrategy creates a new CDN URL strategy
func NewCDNStrategy(baseURL string) *CDNStrategy {
	return &CDNStrategy{BaseURL: baseURL}
}

func (s *CDNStrategy) PublicURL(key string) string {
	return joinURL(s.BaseURL, key)
}

func (s *CDNStrategy) TransformedURL(key, transform string) string {
	return s.PublicURL(key)
}

func (s *CDNStrategy) SupportsTransforms() bool { return false }
