package description

import (
	"strings"

	"golang.org/x/exp/slices"
)

// TypeList is an ordered list of types.
type TypeList []Type

// Descriptors concatenates the descriptors of all types.
func (l TypeList) Descriptors() string {
	var b strings.Builder
	for _, t := range l {
		b.WriteString(t.Descriptor())
	}
	return b.String()
}

// InternalNames returns the internal name of every type.
func (l TypeList) InternalNames() []string {
	names := make([]string, len(l))
	for i, t := range l {
		names[i] = t.InternalName()
	}
	return names
}

// StackSize sums the stack sizes of all types.
func (l TypeList) StackSize() int {
	size := 0
	for _, t := range l {
		size += int(t.StackSize())
	}
	return size
}

// Equal compares the lists element by element.
func (l TypeList) Equal(other TypeList) bool {
	return slices.EqualFunc(l, other, func(a, b Type) bool { return a.Equal(b) })
}

// HashCode follows the JVM List#hashCode scheme.
func (l TypeList) HashCode() int32 {
	h := int32(1)
	for _, t := range l {
		h = 31*h + t.HashCode()
	}
	return h
}

// Filter returns the types for which keep is true.
func (l TypeList) Filter(keep func(Type) bool) TypeList {
	var out TypeList
	for _, t := range l {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// MethodList is an ordered list of methods.
type MethodList []Method

// Filter returns the methods for which keep is true.
func (l MethodList) Filter(keep func(Method) bool) MethodList {
	var out MethodList
	for _, m := range l {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

// Lookup returns the method with the given unique signature.
func (l MethodList) Lookup(uniqueSignature string) (Method, bool) {
	i := slices.IndexFunc(l, func(m Method) bool { return m.UniqueSignature() == uniqueSignature })
	if i < 0 {
		return nil, false
	}
	return l[i], true
}

// Signatures returns the unique signature of every method.
func (l MethodList) Signatures() []string {
	signatures := make([]string, len(l))
	for i, m := range l {
		signatures[i] = m.UniqueSignature()
	}
	return signatures
}
