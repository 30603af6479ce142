package bytecode

import (
	"fmt"

	"github.com/daimatz/jrebase/pkg/description"
)

// MaxLocalIndex is the highest local variable index an instruction can
// address.
const MaxLocalIndex = 0xFFFF

// MethodVariableAccess loads local variables of one kind: int-like, long,
// float, double or reference.
type MethodVariableAccess struct {
	name      string
	load      Opcode
	loadShort Opcode
	size      description.StackSize
}

var (
	IntegerAccess   = MethodVariableAccess{"int", OpIload, OpIload0, description.StackSizeSingle}
	LongAccess      = MethodVariableAccess{"long", OpLload, OpLload0, description.StackSizeDouble}
	FloatAccess     = MethodVariableAccess{"float", OpFload, OpFload0, description.StackSizeSingle}
	DoubleAccess    = MethodVariableAccess{"double", OpDload, OpDload0, description.StackSizeDouble}
	ReferenceAccess = MethodVariableAccess{"reference", OpAload, OpAload0, description.StackSizeSingle}
)

// VariableAccessOf returns the access for values of t. void has none.
func VariableAccessOf(t description.Type) (MethodVariableAccess, bool) {
	if !t.IsPrimitive() {
		return ReferenceAccess, true
	}
	switch {
	case t.Equal(description.Long):
		return LongAccess, true
	case t.Equal(description.Float):
		return FloatAccess, true
	case t.Equal(description.Double):
		return DoubleAccess, true
	case t.Equal(description.Void):
		return MethodVariableAccess{}, false
	default:
		return IntegerAccess, true
	}
}

// LoadFrom returns the manipulation loading the variable at offset.
func (a MethodVariableAccess) LoadFrom(offset int) StackManipulation {
	return variableLoad{access: a, offset: offset}
}

// Load returns the manipulation loading a t stored at offset, Illegal for
// void.
func Load(t description.Type, offset int) StackManipulation {
	access, ok := VariableAccessOf(t)
	if !ok {
		return Illegal
	}
	return access.LoadFrom(offset)
}

// LoadArguments loads every parameter of m in order.
func LoadArguments(m description.Method) StackManipulation {
	var loads Compound
	for i, t := range m.ParameterTypes() {
		offset, err := m.ParameterOffset(i)
		if err != nil {
			return Illegal
		}
		loads = append(loads, Load(t, offset))
	}
	return loads
}

// LoadThisReferenceAndArguments loads this, unless m is static, followed by
// every parameter of m.
func LoadThisReferenceAndArguments(m description.Method) StackManipulation {
	if m.IsStatic() {
		return LoadArguments(m)
	}
	return Compound{ReferenceAccess.LoadFrom(0), LoadArguments(m)}
}

type variableLoad struct {
	access MethodVariableAccess
	offset int
}

func (l variableLoad) IsValid() bool { return l.offset >= 0 && l.offset <= MaxLocalIndex }

func (l variableLoad) Apply(mv MethodVisitor, _ Context) Size {
	if l.offset < 4 {
		mv.VisitInsn(l.access.loadShort + Opcode(l.offset))
	} else {
		mv.VisitVarInsn(l.access.load, l.offset)
	}
	return sizeOf(l.access.size)
}

func (l variableLoad) String() string {
	return fmt.Sprintf("Load(%s, %d)", l.access.name, l.offset)
}
