// Package urlstrategy builds public URLs for stored objects.
package urlstrategy

import (
	"fmt"
	"strings"
)

// Strategy maps object keys to client-facing URLs
type Strategy interface {
	// PublicURL returns the direct URL of key. An empty key yields the base URL.
	PublicURL(key string) string

	// TransformedURL returns a URL with transform applied when the delivery
	// network supports it, and PublicURL(key) otherwise.
	TransformedURL(key, transform string) string
	// SupportsTransforms reports whether TransformedURL renders derived
	// objects, such as video poster frames, on the fly.
	SupportsTransforms() bool
}

const (
	StrategyCDN        = "cdn"
	StrategyCloudinary = "cloudinary"
)

// New returns the strategy registered under kind
func New(kind, baseURL string) (Strategy, error) {
	switch kind {
	case "", StrategyCDN:
		return NewCDNStrategy(baseURL), nil
	case StrategyCloudinary:
		return NewCloudinaryStrategy(baseURL), nil
	default:
		return nil, fmt.Errorf("unsupported URL strategy: %s", kind)
	}
}

// joinURL joins base and key with exactly one slash between them
func joinURL(base, key string) string {
	if key == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
