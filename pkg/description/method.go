package description

import (
	"fmt"
	"strings"

	"github.com/daimatz/jrebase/pkg/classfile"
)

const (
	ConstructorInternalName     = "<init>"
	TypeInitializerInternalName = "<clinit>"

	// TypeInitializerModifiers are the modifiers of a type initializer.
	TypeInitializerModifiers = classfile.AccStatic | classfile.AccPrivate | classfile.AccSynthetic
)

// sourceModifiers are the modifiers visible in Java source, in the order
// they are rendered.
var sourceModifiers = []struct {
	flag classfile.AccessFlags
	name string
}{
	{classfile.AccPublic, "public"},
	{classfile.AccProtected, "protected"},
	{classfile.AccPrivate, "private"},
	{classfile.AccAbstract, "abstract"},
	{classfile.AccStatic, "static"},
	{classfile.AccFinal, "final"},
	{classfile.AccSynchronized, "synchronized"},
	{classfile.AccNative, "native"},
}

// Primitives are the reads a method representation provides.
type Primitives interface {
	InternalName() string
	DeclaringType() Type
	ReturnType() Type
	ParameterTypes() TypeList
	ExceptionTypes() TypeList
	Modifiers() classfile.AccessFlags
	IsSynthetic() bool
	IsConstructor() bool
	IsTypeInitializer() bool
	DeclaredAnnotations() AnnotationList
	// ParameterAnnotations has one list per parameter.
	ParameterAnnotations() []AnnotationList
	// DefaultValue is the default of an annotation element, or nil.
	DefaultValue() any
}

// Method describes a method, constructor or type initializer.
type Method interface {
	Primitives

	IsMethod() bool
	// Name is the internal name for methods and the declaring type's name
	// for constructors and type initializers.
	Name() string
	SourceCodeName() string
	Descriptor() string
	UniqueSignature() string
	StackSize() int
	ParameterOffset(index int) (int, error)
	AdjustedModifiers(nonAbstract bool) classfile.AccessFlags

	IsPublic() bool
	IsProtected() bool
	IsPrivate() bool
	IsPackagePrivate() bool
	IsStatic() bool
	IsFinal() bool
	IsAbstract() bool
	IsNative() bool
	IsSynchronized() bool
	IsBridge() bool
	IsVarargs() bool

	IsOverridable() bool
	IsVisibleTo(t Type) bool
	IsDefaultMethod() bool
	IsSpecializableFor(target Type) bool
	Represents(info classfile.MethodInfo) bool

	Equal(other Method) bool
	HashCode() int32
	String() string
}

// Describe derives a full Method from a representation.
func Describe(p Primitives) Method {
	return &method{p}
}

type method struct {
	Primitives
}

func (m *method) IsMethod() bool {
	return !m.IsConstructor() && !m.IsTypeInitializer()
}

func (m *method) Name() string {
	if m.IsMethod() {
		return m.InternalName()
	}
	return m.DeclaringType().Name()
}

func (m *method) SourceCodeName() string {
	if m.IsMethod() {
		return m.Name()
	}
	return ""
}

func (m *method) Descriptor() string {
	return "(" + m.ParameterTypes().Descriptors() + ")" + m.ReturnType().Descriptor()
}

func (m *method) UniqueSignature() string {
	return m.InternalName() + m.Descriptor()
}

func (m *method) StackSize() int {
	size := m.ParameterTypes().StackSize()
	if !m.IsStatic() {
		size++
	}
	return size
}

func (m *method) ParameterOffset(index int) (int, error) {
	offset := 1
	if m.IsStatic() {
		offset = 0
	}
	for i, t := range m.ParameterTypes() {
		if i == index {
			return offset, nil
		}
		offset += int(t.StackSize())
	}
	return 0, fmt.Errorf("%s does not have a parameter of index %d: %w", m, index, ErrIllegalArgument)
}

func (m *method) AdjustedModifiers(nonAbstract bool) classfile.AccessFlags {
	if nonAbstract {
		return m.Modifiers() &^ (classfile.AccAbstract | classfile.AccNative)
	}
	return m.Modifiers()&^classfile.AccNative | classfile.AccAbstract
}

func (m *method) IsPublic() bool    { return m.Modifiers()&classfile.AccPublic != 0 }
func (m *method) IsProtected() bool { return m.Modifiers()&classfile.AccProtected != 0 }
func (m *method) IsPrivate() bool   { return m.Modifiers()&classfile.AccPrivate != 0 }
func (m *method) IsStatic() bool    { return m.Modifiers()&classfile.AccStatic != 0 }
func (m *method) IsFinal() bool     { return m.Modifiers()&classfile.AccFinal != 0 }
func (m *method) IsAbstract() bool  { return m.Modifiers()&classfile.AccAbstract != 0 }
func (m *method) IsNative() bool    { return m.Modifiers()&classfile.AccNative != 0 }
func (m *method) IsBridge() bool    { return m.Modifiers()&classfile.AccBridge != 0 }
func (m *method) IsVarargs() bool   { return m.Modifiers()&classfile.AccVarargs != 0 }

func (m *method) IsSynchronized() bool {
	return m.Modifiers()&classfile.AccSynchronized != 0
}

func (m *method) IsPackagePrivate() bool {
	return m.Modifiers()&(classfile.AccPublic|classfile.AccProtected|classfile.AccPrivate) == 0
}

func (m *method) IsOverridable() bool {
	return !(m.IsConstructor() || m.IsFinal() || m.IsPrivate() || m.IsStatic())
}

func (m *method) IsVisibleTo(t Type) bool {
	declaring := m.DeclaringType()
	return declaring.IsVisibleTo(t) &&
		(m.IsPublic() ||
			declaring.Equal(t) ||
			(m.IsProtected() && declaring.IsAssignableFrom(t)) ||
			(!m.IsPrivate() && declaring.IsSamePackage(t)))
}

func (m *method) IsDefaultMethod() bool {
	return !m.IsAbstract() && !m.IsBridge() && m.DeclaringType().IsInterface()
}

func (m *method) IsSpecializableFor(target Type) bool {
	switch {
	case m.IsStatic():
		// a private static method is not specializable either
		return false
	case m.IsPrivate() || m.IsConstructor() || m.IsDefaultMethod():
		return m.DeclaringType().Equal(target)
	default:
		return !m.IsAbstract() && m.DeclaringType().IsAssignableFrom(target)
	}
}

// Represents reports whether info is the class file member of this method
// within its declaring type.
func (m *method) Represents(info classfile.MethodInfo) bool {
	return m.InternalName() == info.Name && m.Descriptor() == info.Descriptor
}

func (m *method) Equal(other Method) bool {
	if other == nil {
		return false
	}
	return m.InternalName() == other.InternalName() &&
		m.DeclaringType().Equal(other.DeclaringType()) &&
		m.ReturnType().Equal(other.ReturnType()) &&
		m.ParameterTypes().Equal(other.ParameterTypes())
}

func (m *method) HashCode() int32 {
	h := m.DeclaringType().HashCode()
	h = 31*h + stringHash(m.InternalName())
	h = 31*h + m.ReturnType().HashCode()
	return 31*h + m.ParameterTypes().HashCode()
}

func (m *method) String() string {
	var b strings.Builder
	modifiers := m.Modifiers()
	for _, mod := range sourceModifiers {
		if modifiers&mod.flag != 0 {
			b.WriteString(mod.name)
			b.WriteByte(' ')
		}
	}
	if m.IsMethod() {
		b.WriteString(m.ReturnType().SourceCodeName())
		b.WriteByte(' ')
		b.WriteString(m.DeclaringType().SourceCodeName())
		b.WriteByte('.')
	}
	b.WriteString(m.Name())
	b.WriteByte('(')
	for i, t := range m.ParameterTypes() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(t.SourceCodeName())
	}
	b.WriteByte(')')
	if exceptions := m.ExceptionTypes(); len(exceptions) > 0 {
		b.WriteString(" throws ")
		for i, t := range exceptions {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(t.Name())
		}
	}
	return b.String()
}

// DefaultValueAs returns the default value of m as a T. A method without a
// default value yields the zero T.
func DefaultValueAs[T any](m Method) (T, error) {
	var zero T
	v := m.DefaultValue()
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("default value of %s is %T, not %T: %w", m, v, zero, ErrClassCast)
	}
	return t, nil
}
