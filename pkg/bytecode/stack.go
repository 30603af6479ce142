package bytecode

import (
	"fmt"
	"strings"

	"github.com/daimatz/jrebase/pkg/description"
)

// MethodVisitor receives the instructions of a method body.
type MethodVisitor interface {
	VisitInsn(op Opcode)
	VisitVarInsn(op Opcode, index int)
	VisitMethodInsn(op Opcode, owner, name, descriptor string, isInterface bool)
}

// Context is the implementation context a manipulation is applied in.
type Context interface {
	InstrumentedType() description.Type
}

// NewContext returns a Context for an instrumented type.
func NewContext(instrumented description.Type) Context {
	return context{instrumented: instrumented}
}

type context struct {
	instrumented description.Type
}

func (c context) InstrumentedType() description.Type { return c.instrumented }

// Size is the change a manipulation makes to the operand stack: its net
// Impact and the Maximal height reached while applying it, both in slots.
type Size struct {
	Impact  int
	Maximal int
}

// Aggregate returns the size of applying s and then other.
func (s Size) Aggregate(other Size) Size {
	return Size{
		Impact:  s.Impact + other.Impact,
		Maximal: max(s.Maximal, s.Impact+other.Maximal),
	}
}

func sizeOf(stackSize description.StackSize) Size {
	return Size{Impact: int(stackSize), Maximal: int(stackSize)}
}

// StackManipulation is a sequence of instructions with a known stack effect.
type StackManipulation interface {
	IsValid() bool
	Apply(mv MethodVisitor, ctx Context) Size
	String() string
}

type trivial struct{}

// Trivial emits nothing.
var Trivial StackManipulation = trivial{}

func (trivial) IsValid() bool                     { return true }
func (trivial) Apply(MethodVisitor, Context) Size { return Size{} }
func (trivial) String() string                    { return "Trivial" }

type nullConstant struct{}

// NullConstant pushes null.
var NullConstant StackManipulation = nullConstant{}

func (nullConstant) IsValid() bool { return true }

func (nullConstant) Apply(mv MethodVisitor, _ Context) Size {
	mv.VisitInsn(OpAconstNull)
	return sizeOf(description.StackSizeSingle)
}

func (nullConstant) String() string { return "NullConstant" }

type illegal struct{}

// Illegal is a manipulation that cannot be applied. Apply panics, callers
// check IsValid first.
var Illegal StackManipulation = illegal{}

func (illegal) IsValid() bool { return false }

func (illegal) Apply(MethodVisitor, Context) Size {
	panic("bytecode: apply of an illegal stack manipulation")
}

func (illegal) String() string { return "Illegal" }

// Compound applies its parts in order.
type Compound []StackManipulation

func (c Compound) IsValid() bool {
	for _, m := range c {
		if !m.IsValid() {
			return false
		}
	}
	return true
}

func (c Compound) Apply(mv MethodVisitor, ctx Context) Size {
	var size Size
	for _, m := range c {
		size = size.Aggregate(m.Apply(mv, ctx))
	}
	return size
}

func (c Compound) String() string {
	parts := make([]string, len(c))
	for i, m := range c {
		parts[i] = m.String()
	}
	return fmt.Sprintf("Compound[%s]", strings.Join(parts, ", "))
}
