// Package bytecode is the narrow emission interface the rebase core hands
// instructions to: a method visitor, stack manipulations and their sizes.
package bytecode

import "fmt"

// Opcode is a single JVM instruction opcode.
type Opcode byte

// Opcodes
const (
	OpAconstNull Opcode = 0x01

	OpIload  Opcode = 0x15
	OpLload  Opcode = 0x16
	OpFload  Opcode = 0x17
	OpDload  Opcode = 0x18
	OpAload  Opcode = 0x19
	OpIload0 Opcode = 0x1A
	OpLload0 Opcode = 0x1E
	OpFload0 Opcode = 0x22
	OpDload0 Opcode = 0x26
	OpAload0 Opcode = 0x2A

	OpIreturn Opcode = 0xAC
	OpLreturn Opcode = 0xAD
	OpFreturn Opcode = 0xAE
	OpDreturn Opcode = 0xAF
	OpAreturn Opcode = 0xB0
	OpReturn  Opcode = 0xB1

	OpInvokevirtual   Opcode = 0xB6
	OpInvokespecial   Opcode = 0xB7
	OpInvokestatic    Opcode = 0xB8
	OpInvokeinterface Opcode = 0xB9

	OpWide Opcode = 0xC4
)

var mnemonics = map[Opcode]string{
	OpAconstNull:      "aconst_null",
	OpIload:           "iload",
	OpLload:           "lload",
	OpFload:           "fload",
	OpDload:           "dload",
	OpAload:           "aload",
	OpIreturn:         "ireturn",
	OpLreturn:         "lreturn",
	OpFreturn:         "freturn",
	OpDreturn:         "dreturn",
	OpAreturn:         "areturn",
	OpReturn:          "return",
	OpInvokevirtual:   "invokevirtual",
	OpInvokespecial:   "invokespecial",
	OpInvokestatic:    "invokestatic",
	OpInvokeinterface: "invokeinterface",
	OpWide:            "wide",
}

func init() {
	// the four <x>load_<n> short forms follow each base
	for base, name := range map[Opcode]string{
		OpIload0: "iload", OpLload0: "lload", OpFload0: "fload", OpDload0: "dload", OpAload0: "aload",
	} {
		for n := Opcode(0); n < 4; n++ {
			mnemonics[base+n] = fmt.Sprintf("%s_%d", name, n)
		}
	}
}

func (op Opcode) String() string {
	if name, ok := mnemonics[op]; ok {
		return name
	}
	return fmt.Sprintf("opcode(0x%02X)", byte(op))
}
