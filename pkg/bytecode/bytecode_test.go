package bytecode

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/daimatz/jrebase/pkg/classfile"
	"github.com/daimatz/jrebase/pkg/description"
)

var declaring = description.NewLatentType("com/example/Foo", classfile.AccPublic, description.Object)

// apply runs m against a fresh Recorder and returns the recorder and size.
func apply(t *testing.T, m StackManipulation) (*Recorder, Size) {
	t.Helper()
	if !m.IsValid() {
		t.Fatalf("%s is not valid", m)
	}
	r := &Recorder{}
	size := m.Apply(r, NewContext(declaring))
	return r, size
}

func TestSizeAggregate(t *testing.T) {
	tests := []struct {
		name        string
		first, next Size
		want        Size
	}{
		{"push then pop", Size{1, 1}, Size{-1, 0}, Size{0, 1}},
		{"pop then push", Size{-2, 0}, Size{1, 1}, Size{-1, 0}},
		{"two pushes", Size{1, 3}, Size{1, 3}, Size{2, 4}},
		{"zero", Size{}, Size{}, Size{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.first.Aggregate(tt.next); got != tt.want {
				t.Errorf("Aggregate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestConstants(t *testing.T) {
	tests := []struct {
		name string
		m    StackManipulation
		code []byte
		size Size
	}{
		{"trivial", Trivial, nil, Size{}},
		{"null", NullConstant, []byte{0x01}, Size{1, 1}},
		{"compound", Compound{NullConstant, Trivial, NullConstant}, []byte{0x01, 0x01}, Size{2, 2}},
		{"empty compound", Compound{}, nil, Size{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, size := apply(t, tt.m)
			if !bytes.Equal(r.Bytes(), tt.code) {
				t.Errorf("code = % x, want % x", r.Bytes(), tt.code)
			}
			if size != tt.size {
				t.Errorf("size = %+v, want %+v", size, tt.size)
			}
		})
	}
}

func TestIllegal(t *testing.T) {
	if Illegal.IsValid() {
		t.Fatal("Illegal should not be valid")
	}
	if (Compound{Trivial, Illegal}).IsValid() {
		t.Error("compound containing Illegal should not be valid")
	}

	defer func() {
		if recover() == nil {
			t.Error("Apply of Illegal should panic")
		}
	}()
	Illegal.Apply(&Recorder{}, NewContext(declaring))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		typ    description.Type
		offset int
		code   []byte
		size   int
	}{
		{"int short", description.Int, 0, []byte{0x1A}, 1},
		{"boolean short", description.Boolean, 3, []byte{0x1D}, 1},
		{"long short", description.Long, 2, []byte{0x20}, 2},
		{"float short", description.Float, 1, []byte{0x23}, 1},
		{"double short", description.Double, 3, []byte{0x29}, 2},
		{"reference short", description.String, 1, []byte{0x2B}, 1},
		{"array", description.ArrayOf(description.Int), 0, []byte{0x2A}, 1},
		{"int", description.Int, 4, []byte{0x15, 0x04}, 1},
		{"reference", declaring, 255, []byte{0x19, 0xFF}, 1},
		{"wide", description.Long, 300, []byte{0xC4, 0x16, 0x01, 0x2C}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, size := apply(t, Load(tt.typ, tt.offset))
			if !bytes.Equal(r.Bytes(), tt.code) {
				t.Errorf("code = % x, want % x", r.Bytes(), tt.code)
			}
			if size.Impact != tt.size || size.Maximal != tt.size {
				t.Errorf("size = %+v, want %d", size, tt.size)
			}
		})
	}

	if Load(description.Void, 0).IsValid() {
		t.Error("loading void should be illegal")
	}
	if !Load(description.Int, MaxLocalIndex).IsValid() {
		t.Error("loading the highest index should be legal")
	}
	for _, offset := range []int{-1, MaxLocalIndex + 1} {
		if Load(description.Int, offset).IsValid() {
			t.Errorf("loading index %d should be illegal", offset)
		}
	}
}

func TestRecorderRejectsIndexOutOfRange(t *testing.T) {
	for _, index := range []int{-1, 0x10000, 0x1FFFF} {
		t.Run(fmt.Sprint(index), func(t *testing.T) {
			r := &Recorder{}
			defer func() {
				if recover() == nil {
					t.Errorf("VisitVarInsn(%d) should panic", index)
				}
				if len(r.Bytes()) != 0 {
					t.Errorf("code = % x, want none", r.Bytes())
				}
			}()
			r.VisitVarInsn(OpIload, index)
		})
	}

	r := &Recorder{}
	r.VisitVarInsn(OpIload, MaxLocalIndex)
	if want := []byte{0xC4, 0x15, 0xFF, 0xFF}; !bytes.Equal(r.Bytes(), want) {
		t.Errorf("code = % x, want % x", r.Bytes(), want)
	}
}

func TestLoadThisReferenceAndArguments(t *testing.T) {
	params := description.TypeList{description.Int, description.Long, description.ArrayOf(description.Double)}

	t.Run("instance", func(t *testing.T) {
		m := description.NewLatentMethod("sum", declaring, description.Long, params, classfile.AccPublic, nil)
		r, size := apply(t, LoadThisReferenceAndArguments(m))

		// aload_0, iload_1, lload_2, aload 4
		want := []byte{0x2A, 0x1B, 0x20, 0x19, 0x04}
		if !bytes.Equal(r.Bytes(), want) {
			t.Errorf("code = % x, want % x", r.Bytes(), want)
		}
		if size != (Size{5, 5}) {
			t.Errorf("size = %+v, want {5 5}", size)
		}
		if got := r.String(); got != "aload_0\niload_1\nlload_2\naload 4" {
			t.Errorf("String() = %q", got)
		}
	})

	t.Run("static", func(t *testing.T) {
		m := description.NewLatentMethod("sum", declaring, description.Long, params, classfile.AccPublic|classfile.AccStatic, nil)
		r, size := apply(t, LoadThisReferenceAndArguments(m))

		want := []byte{0x1A, 0x1F, 0x2D}
		if !bytes.Equal(r.Bytes(), want) {
			t.Errorf("code = % x, want % x", r.Bytes(), want)
		}
		if size != (Size{4, 4}) {
			t.Errorf("size = %+v, want {4 4}", size)
		}
	})

	t.Run("no parameters", func(t *testing.T) {
		m := description.NewLatentMethod("run", declaring, description.Void, nil, classfile.AccPublic|classfile.AccStatic, nil)
		r, size := apply(t, LoadThisReferenceAndArguments(m))
		if len(r.Bytes()) != 0 || size != (Size{}) {
			t.Errorf("code = % x, size = %+v", r.Bytes(), size)
		}
	})
}

func TestOpcodeString(t *testing.T) {
	tests := []struct {
		op   Opcode
		want string
	}{
		{OpAconstNull, "aconst_null"},
		{OpAload0 + 3, "aload_3"},
		{OpDload0 + 2, "dload_2"},
		{OpLreturn, "lreturn"},
		{OpInvokespecial, "invokespecial"},
		{Opcode(0xFE), "opcode(0xFE)"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Opcode(0x%02X).String() = %q, want %q", byte(tt.op), got, tt.want)
		}
	}
}

func TestMethodInvocation(t *testing.T) {
	iface := description.NewLatentType("com/example/Service", classfile.AccPublic|classfile.AccInterface|classfile.AccAbstract, nil)
	params := description.TypeList{description.Int, description.Long}

	tests := []struct {
		name   string
		method description.Method
		code   []byte
		insn   string
		size   Size
	}{
		{
			"virtual",
			description.NewLatentMethod("sum", declaring, description.Long, params, classfile.AccPublic, nil),
			[]byte{0xB6, 0x00, 0x01},
			"invokevirtual com/example/Foo.sum(IJ)J",
			Size{-2, 0},
		},
		{
			"private",
			description.NewLatentMethod("sum", declaring, description.Long, params, classfile.AccPrivate, nil),
			[]byte{0xB7, 0x00, 0x01},
			"invokespecial com/example/Foo.sum(IJ)J",
			Size{-2, 0},
		},
		{
			"static",
			description.NewLatentMethod("sum", declaring, description.Long, params, classfile.AccPublic|classfile.AccStatic, nil),
			[]byte{0xB8, 0x00, 0x01},
			"invokestatic com/example/Foo.sum(IJ)J",
			Size{-1, 0},
		},
		{
			"static returning",
			description.NewLatentMethod("now", declaring, description.Long, nil, classfile.AccPublic|classfile.AccStatic, nil),
			[]byte{0xB8, 0x00, 0x01},
			"invokestatic com/example/Foo.now()J",
			Size{2, 2},
		},
		{
			"constructor",
			description.NewLatentMethod(description.ConstructorInternalName, declaring, description.Void, params, classfile.AccPublic, nil),
			[]byte{0xB7, 0x00, 0x01},
			"invokespecial com/example/Foo.<init>(IJ)V",
			Size{-4, 0},
		},
		{
			"interface",
			description.NewLatentMethod("sum", iface, description.Long, params, classfile.AccPublic|classfile.AccAbstract, nil),
			[]byte{0xB9, 0x00, 0x01, 0x04, 0x00},
			"invokeinterface com/example/Service.sum(IJ)J",
			Size{-2, 0},
		},
		{
			"static interface",
			description.NewLatentMethod("of", iface, iface, nil, classfile.AccPublic|classfile.AccStatic, nil),
			[]byte{0xB8, 0x00, 0x01},
			"invokestatic com/example/Service.of()Lcom/example/Service; (interface)",
			Size{1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, size := apply(t, MethodInvocation(tt.method))
			if !bytes.Equal(r.Bytes(), tt.code) {
				t.Errorf("code = % x, want % x", r.Bytes(), tt.code)
			}
			if got := r.String(); got != tt.insn {
				t.Errorf("String() = %q, want %q", got, tt.insn)
			}
			if size != tt.size {
				t.Errorf("size = %+v, want %+v", size, tt.size)
			}
		})
	}

	clinit := description.NewLatentMethod(description.TypeInitializerInternalName, declaring, description.Void, nil, description.TypeInitializerModifiers, nil)
	if MethodInvocation(clinit).IsValid() {
		t.Error("invoking a type initializer should be illegal")
	}
}

func TestRecorderNumbersReferences(t *testing.T) {
	m := description.NewLatentMethod("run", declaring, description.Void, nil, classfile.AccPublic|classfile.AccStatic, nil)
	other := description.NewLatentMethod("stop", declaring, description.Void, nil, classfile.AccPublic|classfile.AccStatic, nil)

	r, _ := apply(t, Compound{MethodInvocation(m), MethodInvocation(other), MethodInvocation(m)})
	want := []byte{0xB8, 0x00, 0x01, 0xB8, 0x00, 0x02, 0xB8, 0x00, 0x01}
	if !bytes.Equal(r.Bytes(), want) {
		t.Errorf("code = % x, want % x", r.Bytes(), want)
	}
}

func TestMethodReturn(t *testing.T) {
	tests := []struct {
		typ    description.Type
		op     Opcode
		impact int
	}{
		{description.Void, OpReturn, 0},
		{description.Boolean, OpIreturn, -1},
		{description.Int, OpIreturn, -1},
		{description.Long, OpLreturn, -2},
		{description.Float, OpFreturn, -1},
		{description.Double, OpDreturn, -2},
		{description.String, OpAreturn, -1},
		{description.ArrayOf(description.Long), OpAreturn, -1},
	}

	for _, tt := range tests {
		t.Run(tt.typ.Name(), func(t *testing.T) {
			r, size := apply(t, MethodReturn(tt.typ))
			if want := []byte{byte(tt.op)}; !bytes.Equal(r.Bytes(), want) {
				t.Errorf("code = % x, want % x", r.Bytes(), want)
			}
			if size != (Size{Impact: tt.impact}) {
				t.Errorf("size = %+v, want impact %d", size, tt.impact)
			}
		})
	}
}

func TestDelegation(t *testing.T) {
	params := description.TypeList{description.Int, description.Long}
	m := description.NewLatentMethod("sum", declaring, description.Long, params, classfile.AccPublic, nil)
	target := description.NewLatentMethod("original$sum", declaring, description.Long, params, classfile.AccPrivate|classfile.AccSynthetic, nil)

	r, size := apply(t, Compound{LoadThisReferenceAndArguments(m), MethodInvocation(target), MethodReturn(m.ReturnType())})
	want := "aload_0\niload_1\nlload_2\ninvokespecial com/example/Foo.original$sum(IJ)J\nlreturn"
	if got := r.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if size != (Size{0, 4}) {
		t.Errorf("size = %+v, want {0 4}", size)
	}
}
