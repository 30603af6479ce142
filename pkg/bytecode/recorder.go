package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/daimatz/jrebase/pkg/classfile"
)

// Recorder is a MethodVisitor that encodes the visited instructions.
// Method references are numbered in the order they are first visited,
// starting at 1, in place of a real constant pool.
type Recorder struct {
	code  bytes.Buffer
	insns []string
	refs  map[string]int
}

func (r *Recorder) VisitInsn(op Opcode) {
	r.code.WriteByte(byte(op))
	r.insns = append(r.insns, op.String())
}

// VisitVarInsn writes op with a one byte index, or prefixed with wide and
// a two byte index when the index does not fit. It panics when index is
// not a valid local variable index.
func (r *Recorder) VisitVarInsn(op Opcode, index int) {
	switch {
	case index < 0 || index > MaxLocalIndex:
		panic(fmt.Sprintf("bytecode: local variable index %d out of range", index))
	case index > 0xFF:
		r.code.WriteByte(byte(OpWide))
		r.code.WriteByte(byte(op))
		r.code.Write(binary.BigEndian.AppendUint16(nil, uint16(index)))
	default:
		r.code.WriteByte(byte(op))
		r.code.WriteByte(byte(index))
	}
	r.insns = append(r.insns, fmt.Sprintf("%s %d", op, index))
}

// VisitMethodInsn writes op with a two byte reference index. invokeinterface
// is followed by its argument slot count and a zero byte. It panics on a
// malformed descriptor.
func (r *Recorder) VisitMethodInsn(op Opcode, owner, name, descriptor string, isInterface bool) {
	ref := owner + "." + name + descriptor
	r.code.WriteByte(byte(op))
	r.code.Write(binary.BigEndian.AppendUint16(nil, uint16(r.reference(ref))))
	if op == OpInvokeinterface {
		md, err := classfile.ParseMethodDescriptor(descriptor)
		if err != nil {
			panic(fmt.Sprintf("bytecode: %v", err))
		}
		r.code.WriteByte(byte(argumentSlots(md) + 1))
		r.code.WriteByte(0)
	}
	insn := fmt.Sprintf("%s %s", op, ref)
	if isInterface && op != OpInvokeinterface {
		insn += " (interface)"
	}
	r.insns = append(r.insns, insn)
}

func (r *Recorder) reference(ref string) int {
	if r.refs == nil {
		r.refs = make(map[string]int)
	}
	index, ok := r.refs[ref]
	if !ok {
		index = len(r.refs) + 1
		r.refs[ref] = index
	}
	return index
}

func argumentSlots(md classfile.MethodDescriptor) int {
	slots := 0
	for _, p := range md.Parameters {
		if p == "J" || p == "D" {
			slots += 2
		} else {
			slots++
		}
	}
	return slots
}

// Bytes returns the encoded instructions.
func (r *Recorder) Bytes() []byte {
	return r.code.Bytes()
}

// String lists the instructions, one per line.
func (r *Recorder) String() string {
	return strings.Join(r.insns, "\n")
}
