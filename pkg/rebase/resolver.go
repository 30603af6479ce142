// Package rebase decides how the original methods of an instrumented type
// are preserved when new implementations take their place.
package rebase

import (
	"errors"
	"fmt"

	"github.com/daimatz/jrebase/pkg/bytecode"
	"github.com/daimatz/jrebase/pkg/classfile"
	"github.com/daimatz/jrebase/pkg/description"
	"github.com/daimatz/jrebase/pkg/matcher"
	log "github.com/sirupsen/logrus"
)

// RebasedMethodModifier is the modifier of every rebased copy. Rebased
// copies keep the static and native bits of the original on top of it.
const RebasedMethodModifier = classfile.AccPrivate | classfile.AccSynthetic

// ErrIllegalState is returned when a resolution is used in a way its state
// does not allow.
var ErrIllegalState = errors.New("illegal state")

// Resolution is the outcome of resolving one method.
type Resolution interface {
	// IsRebased reports whether the method is preserved under a new identity.
	IsRebased() bool
	// ResolvedMethod is the method to invoke to reach the original code.
	ResolvedMethod() description.Method
	// AdditionalArguments pushes what a call site of the original signature
	// needs on top of its arguments to invoke ResolvedMethod.
	AdditionalArguments() (bytecode.StackManipulation, error)
}

// Resolver resolves methods of an instrumented type.
type Resolver interface {
	Resolve(m description.Method) Resolution
}

// Default rebases every method its ignored matcher does not match.
type Default struct {
	ignored     matcher.Matcher[description.Method]
	placeholder description.Type
	transformer NameTransformer
}

// NewResolver returns a resolver. Methods matched by ignored are left
// unchanged, rebased constructors take a trailing placeholder parameter
// and rebased methods are renamed by transformer.
func NewResolver(ignored matcher.Matcher[description.Method], placeholder description.Type, transformer NameTransformer) *Default {
	return &Default{ignored: ignored, placeholder: placeholder, transformer: transformer}
}

func (r *Default) Resolve(m description.Method) Resolution {
	switch {
	case r.ignored.Matches(m):
		return unchanged{method: m}
	case m.IsConstructor():
		return rebased{method: newRebasedConstructor(m, r.placeholder), arguments: bytecode.NullConstant}
	default:
		return rebased{method: newRebasedMethod(m, r.transformer.Transform(m.InternalName())), arguments: bytecode.Trivial}
	}
}

func (r *Default) String() string {
	return fmt.Sprintf("rebase.Default{ignored: %s, placeholder: %s}", r.ignored, r.placeholder.Name())
}

type unchanged struct {
	method description.Method
}

func (u unchanged) IsRebased() bool                    { return false }
func (u unchanged) ResolvedMethod() description.Method { return u.method }

func (u unchanged) AdditionalArguments() (bytecode.StackManipulation, error) {
	return nil, fmt.Errorf("%s is not rebased: %w", u.method, ErrIllegalState)
}

type rebased struct {
	method    description.Method
	arguments bytecode.StackManipulation
}

func (r rebased) IsRebased() bool                    { return true }
func (r rebased) ResolvedMethod() description.Method { return r.method }

func (r rebased) AdditionalArguments() (bytecode.StackManipulation, error) {
	return r.arguments, nil
}

// Plan resolves methods in order.
func Plan(resolver Resolver, methods description.MethodList) []Resolution {
	resolutions := make([]Resolution, len(methods))
	for i, m := range methods {
		resolution := resolver.Resolve(m)
		log.WithFields(log.Fields{
			"method":   m.UniqueSignature(),
			"rebased":  resolution.IsRebased(),
			"resolved": resolution.ResolvedMethod().UniqueSignature(),
		}).Debug("Resolved method")
		resolutions[i] = resolution
	}
	return resolutions
}
