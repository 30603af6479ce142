package description

import (
	"fmt"

	"github.com/daimatz/jrebase/pkg/classfile"
)

// loadedMethod is a method read from a class file.
type loadedMethod struct {
	declaring            Type
	info                 classfile.MethodInfo
	returnType           Type
	parameters           TypeList
	exceptions           TypeList
	annotations          AnnotationList
	parameterAnnotations []AnnotationList
}

func newLoadedMethod(declaring Type, info classfile.MethodInfo, pool *TypePool) (*loadedMethod, error) {
	md, err := classfile.ParseMethodDescriptor(info.Descriptor)
	if err != nil {
		return nil, fmt.Errorf("describing %s: %w", info.Name, err)
	}
	m := &loadedMethod{
		declaring:  declaring,
		info:       info,
		returnType: pool.Lazy(md.Return),
		parameters: make(TypeList, len(md.Parameters)),
		exceptions: make(TypeList, len(info.Exceptions)),
	}
	for i, p := range md.Parameters {
		m.parameters[i] = pool.Lazy(p)
	}
	for i, e := range info.Exceptions {
		m.exceptions[i] = pool.Lazy("L" + e + ";")
	}
	m.annotations = loadedAnnotations(info.Annotations, pool)

	// javac leaves out synthetic leading parameters, so the recorded lists
	// line up with the last parameters.
	m.parameterAnnotations = emptyAnnotationLists(len(md.Parameters))
	offset := len(md.Parameters) - len(info.ParameterAnnotations)
	for i, annotations := range info.ParameterAnnotations {
		if offset+i >= 0 {
			m.parameterAnnotations[offset+i] = loadedAnnotations(annotations, pool)
		}
	}
	return m, nil
}

// ForLoadedMethod describes a method member of declaring's class file.
func ForLoadedMethod(declaring Type, info classfile.MethodInfo, pool *TypePool) (Method, error) {
	if info.Name == ConstructorInternalName {
		return nil, fmt.Errorf("%s is a constructor: %w", info.Name+info.Descriptor, ErrIllegalArgument)
	}
	m, err := newLoadedMethod(declaring, info, pool)
	if err != nil {
		return nil, err
	}
	return Describe(m), nil
}

func (m *loadedMethod) InternalName() string                   { return m.info.Name }
func (m *loadedMethod) DeclaringType() Type                    { return m.declaring }
func (m *loadedMethod) ReturnType() Type                       { return m.returnType }
func (m *loadedMethod) ParameterTypes() TypeList               { return m.parameters }
func (m *loadedMethod) ExceptionTypes() TypeList               { return m.exceptions }
func (m *loadedMethod) Modifiers() classfile.AccessFlags       { return m.info.AccessFlags }
func (m *loadedMethod) IsSynthetic() bool                      { return m.info.AccessFlags.IsSynthetic() }
func (m *loadedMethod) IsConstructor() bool                    { return false }
func (m *loadedMethod) IsTypeInitializer() bool                { return m.info.Name == TypeInitializerInternalName }
func (m *loadedMethod) DeclaredAnnotations() AnnotationList    { return m.annotations }
func (m *loadedMethod) ParameterAnnotations() []AnnotationList { return m.parameterAnnotations }
func (m *loadedMethod) DefaultValue() any                      { return m.info.AnnotationDefault }

// loadedConstructor is an <init> member of a class file.
type loadedConstructor struct {
	*loadedMethod
}

// ForLoadedConstructor describes a constructor member of declaring's class
// file.
func ForLoadedConstructor(declaring Type, info classfile.MethodInfo, pool *TypePool) (Method, error) {
	if info.Name != ConstructorInternalName {
		return nil, fmt.Errorf("%s is not a constructor: %w", info.Name+info.Descriptor, ErrIllegalArgument)
	}
	m, err := newLoadedMethod(declaring, info, pool)
	if err != nil {
		return nil, err
	}
	return Describe(loadedConstructor{m}), nil
}

func (c loadedConstructor) ReturnType() Type        { return Void }
func (c loadedConstructor) IsConstructor() bool     { return true }
func (c loadedConstructor) IsTypeInitializer() bool { return false }
func (c loadedConstructor) DefaultValue() any       { return nil }
