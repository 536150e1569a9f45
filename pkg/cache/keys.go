package cache

import (
	"strconv"
	"strings"
)

// Key types, reported to the cache hooks.
const (
	KeyTypeQi = "qi"
)

// Keyer derives cache keys.
type Keyer interface {
	// QiKey identifies the qi result of one partition of one graph at one
	// threshold. graphHash is Hash of the graph's text form.
	QiKey(graphHash string, labels []int, threshold int) string
}

// DefaultKeyer produces keys of the form "qi:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// QiKey hashes the graph hash, the labels and the threshold together.
// Every threshold <= 0 asks for the exact value and shares one key.
func (DefaultKeyer) QiKey(graphHash string, labels []int, threshold int) string {
	if threshold < 0 {
		threshold = 0
	}
	var b strings.Builder
	b.Grow(len(labels) * 3)
	for i, l := range labels {
		if i > 0 {
			b.WriteByte('-')
		}
		b.WriteString(strconv.Itoa(l))
	}
	return hashKey(KeyTypeQi, graphHash, b.String(), threshold)
}

// ScopedKeyer prepends a fixed prefix to every key of an inner Keyer.
// Results computed under different engine settings differ above the exact
// limit, so callers scope keys by the engine they use:
//
//	keyer := NewScopedKeyer(nil, "dsatur:16:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or DefaultKeyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// QiKey returns the prefixed inner key.
func (k *ScopedKeyer) QiKey(graphHash string, labels []int, threshold int) string {
	return k.prefix + k.inner.QiKey(graphHash, labels, threshold)
}
