package description

import (
	"fmt"

	"github.com/daimatz/jrebase/pkg/classfile"
)

const (
	objectDescriptor       = "Ljava/lang/Object;"
	cloneableDescriptor    = "Ljava/lang/Cloneable;"
	serializableDescriptor = "Ljava/io/Serializable;"
)

// primitiveType is a primitive type or void.
type primitiveType struct {
	descriptor string
}

func (p *primitiveType) Descriptor() string { return p.descriptor }

func (p *primitiveType) Modifiers() classfile.AccessFlags {
	return classfile.AccPublic | classfile.AccFinal | classfile.AccAbstract
}

func (p *primitiveType) SuperType() Type                     { return nil }
func (p *primitiveType) Interfaces() TypeList                { return nil }
func (p *primitiveType) ComponentType() Type                 { return nil }
func (p *primitiveType) DeclaredMethods() MethodList         { return nil }
func (p *primitiveType) DeclaredAnnotations() AnnotationList { return nil }

var (
	Boolean = DescribeType(&primitiveType{"Z"})
	Byte    = DescribeType(&primitiveType{"B"})
	Char    = DescribeType(&primitiveType{"C"})
	Short   = DescribeType(&primitiveType{"S"})
	Int     = DescribeType(&primitiveType{"I"})
	Long    = DescribeType(&primitiveType{"J"})
	Float   = DescribeType(&primitiveType{"F"})
	Double  = DescribeType(&primitiveType{"D"})
	Void    = DescribeType(&primitiveType{"V"})
)

var primitives = map[string]Type{
	"Z": Boolean, "B": Byte, "C": Char, "S": Short,
	"I": Int, "J": Long, "F": Float, "D": Double, "V": Void,
}

// Primitive returns the primitive type (or void) for a keyword such as "int"
// or a descriptor such as "I".
func Primitive(name string) (Type, error) {
	if t, ok := primitives[name]; ok {
		return t, nil
	}
	for _, t := range primitives {
		if t.Name() == name {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%q is not a primitive type: %w", name, ErrIllegalArgument)
}

// Well-known types every array type refers to. They are latent stand-ins
// that compare equal to the same types loaded through a TypePool.
var (
	Object       Type = NewLatentType("java/lang/Object", classfile.AccPublic, nil)
	Cloneable    Type = NewLatentType("java/lang/Cloneable", classfile.AccPublic|classfile.AccInterface|classfile.AccAbstract, nil)
	Serializable Type = NewLatentType("java/io/Serializable", classfile.AccPublic|classfile.AccInterface|classfile.AccAbstract, nil)
	String       Type = NewLatentType("java/lang/String", classfile.AccPublic|classfile.AccFinal, Object, Serializable)
)

type arrayType struct {
	component Type
}

// ArrayOf returns the one dimensional array type of component.
func ArrayOf(component Type) Type {
	return DescribeType(&arrayType{component: component})
}

func (a *arrayType) Descriptor() string { return "[" + a.component.Descriptor() }

func (a *arrayType) Modifiers() classfile.AccessFlags {
	return classfile.AccPublic | classfile.AccFinal | classfile.AccAbstract
}

func (a *arrayType) SuperType() Type                     { return Object }
func (a *arrayType) Interfaces() TypeList                { return TypeList{Cloneable, Serializable} }
func (a *arrayType) ComponentType() Type                 { return a.component }
func (a *arrayType) DeclaredMethods() MethodList         { return nil }
func (a *arrayType) DeclaredAnnotations() AnnotationList { return nil }
