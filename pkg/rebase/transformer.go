package rebase

import (
	"strings"

	"github.com/google/uuid"
)

// DefaultAffix is the marker the built-in transformers put into rebased
// method names.
const DefaultAffix = "original"

// NameTransformer derives the name of a rebased method from the name of
// the method it preserves.
type NameTransformer interface {
	Transform(name string) string
}

// NameTransformerFunc adapts a function to NameTransformer.
type NameTransformerFunc func(name string) string

func (f NameTransformerFunc) Transform(name string) string { return f(name) }

// Suffixing appends "$<affix>$<random>" to a name. The random part is
// drawn once per transformer so repeated transforms agree.
type Suffixing struct {
	affix  string
	random string
}

// NewSuffixing returns a Suffixing transformer. An empty affix selects
// DefaultAffix.
func NewSuffixing(affix string) *Suffixing {
	if affix == "" {
		affix = DefaultAffix
	}
	return &Suffixing{affix: affix, random: randomString()}
}

func (s *Suffixing) Transform(name string) string {
	return name + "$" + s.affix + "$" + s.random
}

// Prefixing prepends "<affix>$" to a name.
type Prefixing struct {
	affix string
}

// NewPrefixing returns a Prefixing transformer. An empty affix selects
// DefaultAffix.
func NewPrefixing(affix string) *Prefixing {
	if affix == "" {
		affix = DefaultAffix
	}
	return &Prefixing{affix: affix}
}

func (p *Prefixing) Transform(name string) string {
	return p.affix + "$" + name
}

// randomString returns eight characters valid in a JVM method name.
func randomString() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
