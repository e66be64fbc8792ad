package objectkey

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// DefaultPrefix is the logical folder every uploaded file lives under
const DefaultPrefix = "website-content/"

const maxExtensionLength = 16

const (
	LayoutFlat    = "flat"
	LayoutSharded = "sharded"
)

// Generator defines the interface for object key generation strategies
type Generator interface {
	// GenerateKey creates a unique object key that keeps the extension of fileName
	GenerateKey(fileName string) string
}

// New returns the generator registered under layout
func New(layout, prefix string) (Generator, error) {
	switch layout {
	case "", LayoutFlat:
		return NewFlatGenerator(prefix), nil
	case LayoutSharded:
		return NewShardedGenerator(prefix), nil
	default:
		return nil, fmt.Errorf("unsupported key layout: %s", layout)
	}
}

// FlatGenerator produces prefix + random UUID + original extension.
// Example: website-content/5b0c...e1.mp4
type FlatGenerator struct {
	Prefix string
}

// NewFlatGenerator creates a generator writing directly under prefix
func NewFlatGenerator(prefix string) *FlatGenerator {
	return &FlatGenerator{Prefix: normalizePrefix(prefix)}
}

func (g *FlatGenerator) GenerateKey(fileName string) string {
	return g.Prefix + uuid.New().String() + Extension(fileName)
}

// ShardedGenerator spreads keys over sub-folders named after the first
// characters of the random id.
// Example: website-content/5b/5b0c...e1.mp4
type ShardedGenerator struct {
	Prefix      string
	ShardLength int
}

// NewShardedGenerator creates a sharded generator with two-character shards
func NewShardedGenerator(prefix string) *ShardedGenerator {
	return &ShardedGenerator{Prefix: normalizePrefix(prefix), ShardLength: 2}
}

func (g *ShardedGenerator) GenerateKey(fileName string) string {
	id := uuid.New().String()
	shard := g.ShardLength
	if shard <= 0 || shard > 8 {
		shard = 2
	}
	return g.Prefix + id[:shard] + "/" + id + Extension(fileName)
}

// Extension returns the extension of the last path element of fileName,
// including the dot, restricted to ASCII letters and digits.
// Returns "" when there is none.
func Extension(fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	ext := path.Ext(base)
	if ext == "" || ext == base {
		return ""
	}

	var b strings.Builder
	b.WriteByte('.')
	for _, r := range ext[1:] {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 1 || b.Len() > maxExtensionLength {
		return ""
	}
	return b.String()
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimLeft(prefix, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}
