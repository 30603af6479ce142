package description

import (
	"github.com/daimatz/jrebase/pkg/classfile"
)

type latentMethod struct {
	internalName         string
	declaring            Type
	returnType           Type
	parameters           TypeList
	modifiers            classfile.AccessFlags
	exceptions           TypeList
	annotations          AnnotationList
	parameterAnnotations []AnnotationList
	defaultValue         any
}

// LatentOption sets an optional property of a latent method.
type LatentOption func(*latentMethod)

// WithAnnotations sets the declared annotations.
func WithAnnotations(annotations ...Annotation) LatentOption {
	return func(m *latentMethod) { m.annotations = annotations }
}

// WithParameterAnnotations sets the annotations of parameter index.
func WithParameterAnnotations(index int, annotations ...Annotation) LatentOption {
	return func(m *latentMethod) {
		if index >= 0 && index < len(m.parameterAnnotations) {
			m.parameterAnnotations[index] = annotations
		}
	}
}

// WithDefaultValue sets the annotation element default.
func WithDefaultValue(v any) LatentOption {
	return func(m *latentMethod) { m.defaultValue = v }
}

// NewLatentMethod describes a method that exists only in memory.
func NewLatentMethod(internalName string, declaring, returnType Type, parameters TypeList, modifiers classfile.AccessFlags, exceptions TypeList, opts ...LatentOption) Method {
	m := &latentMethod{
		internalName:         internalName,
		declaring:            declaring,
		returnType:           returnType,
		parameters:           parameters,
		modifiers:            modifiers,
		exceptions:           exceptions,
		annotations:          AnnotationList{},
		parameterAnnotations: emptyAnnotationLists(len(parameters)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return Describe(m)
}

// TypeInitializerOf returns the <clinit> method of declaring.
func TypeInitializerOf(declaring Type) Method {
	return NewLatentMethod(TypeInitializerInternalName, declaring, Void, nil, TypeInitializerModifiers, nil)
}

func (m *latentMethod) InternalName() string                   { return m.internalName }
func (m *latentMethod) DeclaringType() Type                    { return m.declaring }
func (m *latentMethod) ParameterTypes() TypeList               { return m.parameters }
func (m *latentMethod) ExceptionTypes() TypeList               { return m.exceptions }
func (m *latentMethod) Modifiers() classfile.AccessFlags       { return m.modifiers }
func (m *latentMethod) IsSynthetic() bool                      { return m.modifiers.IsSynthetic() }
func (m *latentMethod) IsConstructor() bool                    { return m.internalName == ConstructorInternalName }
func (m *latentMethod) IsTypeInitializer() bool                { return m.internalName == TypeInitializerInternalName }
func (m *latentMethod) DeclaredAnnotations() AnnotationList    { return m.annotations }
func (m *latentMethod) ParameterAnnotations() []AnnotationList { return m.parameterAnnotations }

// Constructors always return void and never carry a default value.

func (m *latentMethod) ReturnType() Type {
	if m.IsConstructor() {
		return Void
	}
	return m.returnType
}

func (m *latentMethod) DefaultValue() any {
	if m.IsConstructor() {
		return nil
	}
	return m.defaultValue
}
