// Package description describes JVM types and their methods independently of
// whether they come from a class file or are still under construction.
package description

import (
	"strings"

	"github.com/daimatz/jrebase/pkg/classfile"
)

// StackSize is the number of operand stack slots a value occupies.
type StackSize int

const (
	StackSizeZero   StackSize = 0
	StackSizeSingle StackSize = 1
	StackSizeDouble StackSize = 2
)

// Type describes a primitive, array, class or interface type.
type Type interface {
	TypeDefinition

	// Name is the binary name: "int", "java.lang.String", "[Ljava.lang.String;".
	Name() string
	// InternalName is the class file form: "java/lang/String". Arrays use
	// their descriptor, primitives their keyword.
	InternalName() string
	// SourceCodeName is the name as written in Java source: "int[]".
	SourceCodeName() string
	PackageName() string
	StackSize() StackSize

	IsPrimitive() bool
	IsArray() bool
	IsInterface() bool
	IsAbstract() bool
	IsPublic() bool
	IsProtected() bool
	IsFinal() bool

	IsAssignableFrom(other Type) bool
	IsAssignableTo(other Type) bool
	IsVisibleTo(other Type) bool
	IsSamePackage(other Type) bool

	Equal(other Type) bool
	HashCode() int32
	String() string
}

// TypeDefinition is what a type representation provides. Everything else a
// Type offers is derived from it.
type TypeDefinition interface {
	Descriptor() string
	Modifiers() classfile.AccessFlags
	// SuperType is nil for java.lang.Object, interfaces, primitives and void.
	SuperType() Type
	Interfaces() TypeList
	// ComponentType is nil unless the type is an array.
	ComponentType() Type
	DeclaredMethods() MethodList
	DeclaredAnnotations() AnnotationList
}

// DescribeType derives a full Type from a representation.
func DescribeType(def TypeDefinition) Type {
	if t, ok := def.(Type); ok {
		return t
	}
	return &typeDescription{def}
}

type typeDescription struct {
	TypeDefinition
}

var primitiveNames = map[byte]string{
	'Z': "boolean",
	'B': "byte",
	'C': "char",
	'S': "short",
	'I': "int",
	'J': "long",
	'F': "float",
	'D': "double",
	'V': "void",
}

func (t *typeDescription) Name() string {
	d := t.Descriptor()
	switch {
	case len(d) == 1:
		return primitiveNames[d[0]]
	case d[0] == '[':
		return strings.ReplaceAll(d, "/", ".")
	default:
		return strings.ReplaceAll(d[1:len(d)-1], "/", ".")
	}
}

func (t *typeDescription) InternalName() string {
	d := t.Descriptor()
	switch {
	case len(d) == 1:
		return primitiveNames[d[0]]
	case d[0] == '[':
		return d
	default:
		return d[1 : len(d)-1]
	}
}

func (t *typeDescription) SourceCodeName() string {
	if t.IsArray() {
		return t.ComponentType().SourceCodeName() + "[]"
	}
	return t.Name()
}

func (t *typeDescription) PackageName() string {
	if t.IsPrimitive() || t.IsArray() {
		return ""
	}
	name := t.Name()
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return ""
}

func (t *typeDescription) StackSize() StackSize {
	switch t.Descriptor() {
	case "V":
		return StackSizeZero
	case "J", "D":
		return StackSizeDouble
	default:
		return StackSizeSingle
	}
}

func (t *typeDescription) IsPrimitive() bool { return len(t.Descriptor()) == 1 }
func (t *typeDescription) IsArray() bool     { return strings.HasPrefix(t.Descriptor(), "[") }
func (t *typeDescription) IsInterface() bool { return t.Modifiers().IsInterface() }
func (t *typeDescription) IsAbstract() bool  { return t.Modifiers().IsAbstract() }
func (t *typeDescription) IsPublic() bool    { return t.Modifiers().IsPublic() }
func (t *typeDescription) IsProtected() bool { return t.Modifiers().IsProtected() }
func (t *typeDescription) IsFinal() bool     { return t.Modifiers().IsFinal() }

func (t *typeDescription) IsAssignableFrom(other Type) bool {
	return isAssignable(t, other)
}

func (t *typeDescription) IsAssignableTo(other Type) bool {
	return isAssignable(other, t)
}

// isAssignable reports whether a value of type from can be stored in a
// variable of type to.
func isAssignable(to, from Type) bool {
	if to == nil || from == nil {
		return false
	}
	if to.Equal(from) {
		return true
	}
	if to.IsPrimitive() || from.IsPrimitive() {
		return false
	}
	if to.Descriptor() == objectDescriptor {
		return true
	}
	if from.IsArray() {
		if to.IsArray() {
			return isAssignable(to.ComponentType(), from.ComponentType())
		}
		return to.Descriptor() == cloneableDescriptor || to.Descriptor() == serializableDescriptor
	}
	if to.IsArray() {
		return false
	}
	if super := from.SuperType(); super != nil && isAssignable(to, super) {
		return true
	}
	for _, iface := range from.Interfaces() {
		if isAssignable(to, iface) {
			return true
		}
	}
	return false
}

func (t *typeDescription) IsVisibleTo(other Type) bool {
	switch {
	case t.IsPrimitive():
		return true
	case t.IsArray():
		return t.ComponentType().IsVisibleTo(other)
	default:
		return t.IsPublic() || t.IsProtected() || t.IsSamePackage(other)
	}
}

func (t *typeDescription) IsSamePackage(other Type) bool {
	return other != nil && t.PackageName() == other.PackageName()
}

func (t *typeDescription) Equal(other Type) bool {
	return other != nil && t.Descriptor() == other.Descriptor()
}

func (t *typeDescription) HashCode() int32 {
	return stringHash(t.Name())
}

func (t *typeDescription) String() string {
	switch {
	case t.IsPrimitive():
		return t.Name()
	case t.IsInterface():
		return "interface " + t.Name()
	default:
		return "class " + t.Name()
	}
}
