// Package matcher selects methods, types and annotations with composable
// predicates.
package matcher

import (
	"fmt"
	"strings"

	"github.com/daimatz/jrebase/pkg/classfile"
)

// Matcher decides whether a target is matched.
type Matcher[T any] interface {
	Matches(target T) bool
	String() string
}

// Junction is a Matcher that can be combined with others.
type Junction[T any] interface {
	Matcher[T]
	And(other Matcher[T]) Junction[T]
	Or(other Matcher[T]) Junction[T]
}

// New creates a Junction from a predicate. description is what String
// returns.
func New[T any](description string, match func(T) bool) Junction[T] {
	return predicate[T]{description: description, match: match}
}

type predicate[T any] struct {
	description string
	match       func(T) bool
}

func (p predicate[T]) Matches(target T) bool            { return p.match(target) }
func (p predicate[T]) String() string                   { return p.description }
func (p predicate[T]) And(other Matcher[T]) Junction[T] { return AllOf[T](p, other) }
func (p predicate[T]) Or(other Matcher[T]) Junction[T]  { return AnyOf[T](p, other) }

// Any matches everything.
func Any[T any]() Junction[T] {
	return New("any()", func(T) bool { return true })
}

// None matches nothing.
func None[T any]() Junction[T] {
	return New("none()", func(T) bool { return false })
}

// Not negates m.
func Not[T any](m Matcher[T]) Junction[T] {
	return New("not("+m.String()+")", func(target T) bool { return !m.Matches(target) })
}

type equaler[T any] interface {
	Equal(other T) bool
	String() string
}

// Is matches targets equal to value.
func Is[T equaler[T]](value T) Junction[T] {
	return New("is("+value.String()+")", func(target T) bool { return value.Equal(target) })
}

// AllOf matches when every matcher matches. It matches everything when
// empty.
func AllOf[T any](matchers ...Matcher[T]) Junction[T] {
	return New(join(matchers, " and "), func(target T) bool {
		for _, m := range matchers {
			if !m.Matches(target) {
				return false
			}
		}
		return true
	})
}

// AnyOf matches when at least one matcher matches. It matches nothing when
// empty.
func AnyOf[T any](matchers ...Matcher[T]) Junction[T] {
	return New(join(matchers, " or "), func(target T) bool {
		for _, m := range matchers {
			if m.Matches(target) {
				return true
			}
		}
		return false
	})
}

func join[T any](matchers []Matcher[T], sep string) string {
	parts := make([]string, len(matchers))
	for i, m := range matchers {
		parts[i] = m.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// Filter returns the elements of list that m matches.
func Filter[T any](list []T, m Matcher[T]) []T {
	var out []T
	for _, e := range list {
		if m.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

type modifierReviewable interface {
	Modifiers() classfile.AccessFlags
}

// HasModifiers matches targets with every bit of mask set.
func HasModifiers[T modifierReviewable](mask classfile.AccessFlags) Junction[T] {
	return New(modifierString("hasModifiers", mask), func(target T) bool {
		return target.Modifiers().Has(mask)
	})
}

func modifierString(name string, mask classfile.AccessFlags) string {
	return fmt.Sprintf("%s(0x%04x)", name, uint16(mask))
}
