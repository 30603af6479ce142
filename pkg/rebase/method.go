package rebase

import (
	"github.com/daimatz/jrebase/pkg/classfile"
	"github.com/daimatz/jrebase/pkg/description"
)

// rebasedMethod is the preserved copy of a method: renamed, with the
// rebased modifiers. Every other read goes to the original.
type rebasedMethod struct {
	description.Method
	name      string
	modifiers classfile.AccessFlags
}

func newRebasedMethod(original description.Method, name string) description.Method {
	return description.Describe(&rebasedMethod{
		Method:    original,
		name:      name,
		modifiers: RebasedMethodModifier | original.Modifiers()&(classfile.AccStatic|classfile.AccNative),
	})
}

func (m *rebasedMethod) InternalName() string             { return m.name }
func (m *rebasedMethod) Modifiers() classfile.AccessFlags { return m.modifiers }
func (m *rebasedMethod) IsSynthetic() bool                { return m.modifiers.IsSynthetic() }

// rebasedConstructor is the preserved copy of a constructor. Constructors
// cannot be renamed so the copy takes a trailing placeholder parameter.
type rebasedConstructor struct {
	description.Method
	placeholder description.Type
}

func newRebasedConstructor(original description.Method, placeholder description.Type) description.Method {
	return description.Describe(&rebasedConstructor{Method: original, placeholder: placeholder})
}

func (c *rebasedConstructor) Modifiers() classfile.AccessFlags { return RebasedMethodModifier }
func (c *rebasedConstructor) IsSynthetic() bool                { return true }

func (c *rebasedConstructor) ParameterTypes() description.TypeList {
	original := c.Method.ParameterTypes()
	params := make(description.TypeList, 0, len(original)+1)
	params = append(params, original...)
	return append(params, c.placeholder)
}

func (c *rebasedConstructor) ParameterAnnotations() []description.AnnotationList {
	annotations := make([]description.AnnotationList, len(c.Method.ParameterTypes())+1)
	copy(annotations, c.Method.ParameterAnnotations())
	return annotations
}
