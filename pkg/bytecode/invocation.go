package bytecode

import (
	"fmt"

	"github.com/daimatz/jrebase/pkg/description"
)

// MethodInvocation invokes m: invokestatic for static methods, invokespecial
// for constructors and private methods, invokeinterface for methods of an
// interface and invokevirtual otherwise. A type initializer cannot be
// invoked.
func MethodInvocation(m description.Method) StackManipulation {
	if m.IsTypeInitializer() {
		return Illegal
	}
	return invocation{method: m}
}

type invocation struct {
	method description.Method
}

func (i invocation) opcode() Opcode {
	switch {
	case i.method.IsStatic():
		return OpInvokestatic
	case i.method.IsConstructor(), i.method.IsPrivate():
		return OpInvokespecial
	case i.method.DeclaringType().IsInterface():
		return OpInvokeinterface
	default:
		return OpInvokevirtual
	}
}

func (i invocation) IsValid() bool { return true }

// Apply pops the receiver and arguments and pushes the return value.
func (i invocation) Apply(mv MethodVisitor, _ Context) Size {
	owner := i.method.DeclaringType()
	mv.VisitMethodInsn(i.opcode(), owner.InternalName(), i.method.InternalName(), i.method.Descriptor(), owner.IsInterface())
	impact := int(i.method.ReturnType().StackSize()) - i.method.StackSize()
	return Size{Impact: impact, Maximal: max(impact, 0)}
}

func (i invocation) String() string {
	return fmt.Sprintf("MethodInvocation(%s, %s)", i.opcode(), i.method.UniqueSignature())
}

// MethodReturn returns a value of type t, or nothing for void.
func MethodReturn(t description.Type) StackManipulation {
	if !t.IsPrimitive() {
		return methodReturn{OpAreturn, description.StackSizeSingle}
	}
	switch {
	case t.Equal(description.Void):
		return methodReturn{OpReturn, description.StackSizeZero}
	case t.Equal(description.Long):
		return methodReturn{OpLreturn, description.StackSizeDouble}
	case t.Equal(description.Float):
		return methodReturn{OpFreturn, description.StackSizeSingle}
	case t.Equal(description.Double):
		return methodReturn{OpDreturn, description.StackSizeDouble}
	default:
		return methodReturn{OpIreturn, description.StackSizeSingle}
	}
}

type methodReturn struct {
	op   Opcode
	size description.StackSize
}

func (r methodReturn) IsValid() bool { return true }

func (r methodReturn) Apply(mv MethodVisitor, _ Context) Size {
	mv.VisitInsn(r.op)
	return Size{Impact: -int(r.size)}
}

func (r methodReturn) String() string { return fmt.Sprintf("MethodReturn(%s)", r.op) }
