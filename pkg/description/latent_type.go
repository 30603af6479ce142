package description

import (
	"github.com/daimatz/jrebase/pkg/classfile"
)

// LatentType is a class or interface under construction. Members are added
// with the Define methods before the type is handed out.
type LatentType struct {
	Type
	def *latentTypeDefinition
}

type latentTypeDefinition struct {
	internalName string
	modifiers    classfile.AccessFlags
	superType    Type
	interfaces   TypeList
	methods      MethodList
	annotations  AnnotationList
}

// NewLatentType creates a type with the given internal name. superType may
// be nil.
func NewLatentType(internalName string, modifiers classfile.AccessFlags, superType Type, interfaces ...Type) *LatentType {
	def := &latentTypeDefinition{
		internalName: internalName,
		modifiers:    modifiers,
		superType:    superType,
		interfaces:   interfaces,
	}
	return &LatentType{Type: DescribeType(def), def: def}
}

func (d *latentTypeDefinition) Descriptor() string                  { return "L" + d.internalName + ";" }
func (d *latentTypeDefinition) Modifiers() classfile.AccessFlags    { return d.modifiers }
func (d *latentTypeDefinition) SuperType() Type                     { return d.superType }
func (d *latentTypeDefinition) Interfaces() TypeList                { return d.interfaces }
func (d *latentTypeDefinition) ComponentType() Type                 { return nil }
func (d *latentTypeDefinition) DeclaredMethods() MethodList         { return d.methods }
func (d *latentTypeDefinition) DeclaredAnnotations() AnnotationList { return d.annotations }

// SetSuperType replaces the super type.
func (t *LatentType) SetSuperType(superType Type) {
	t.def.superType = superType
}

// AddInterfaces appends directly implemented interfaces.
func (t *LatentType) AddInterfaces(interfaces ...Type) {
	t.def.interfaces = append(t.def.interfaces, interfaces...)
}

// AddModifiers sets additional modifier bits.
func (t *LatentType) AddModifiers(modifiers classfile.AccessFlags) {
	t.def.modifiers |= modifiers
}

// Annotate adds type annotations.
func (t *LatentType) Annotate(annotations ...Annotation) {
	t.def.annotations = append(t.def.annotations, annotations...)
}

// DefineMethod adds a method declared by t.
func (t *LatentType) DefineMethod(name string, returnType Type, parameters TypeList, modifiers classfile.AccessFlags, exceptions TypeList, opts ...LatentOption) Method {
	m := NewLatentMethod(name, t, returnType, parameters, modifiers, exceptions, opts...)
	t.def.methods = append(t.def.methods, m)
	return m
}

// DefineConstructor adds a constructor declared by t.
func (t *LatentType) DefineConstructor(parameters TypeList, modifiers classfile.AccessFlags, exceptions TypeList, opts ...LatentOption) Method {
	return t.DefineMethod(ConstructorInternalName, Void, parameters, modifiers, exceptions, opts...)
}

// DefineTypeInitializer adds the type initializer of t.
func (t *LatentType) DefineTypeInitializer() Method {
	m := TypeInitializerOf(t)
	t.def.methods = append(t.def.methods, m)
	return m
}
