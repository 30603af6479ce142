package description

import (
	"errors"
	"testing"

	"github.com/daimatz/jrebase/pkg/classfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeNames(t *testing.T) {
	inner := NewLatentType("com/example/Outer$Inner", public, Object)
	tests := []struct {
		name                                              string
		typ                                               Type
		binary, internal, descriptor, source, packageName string
	}{
		{"primitive", Int, "int", "int", "I", "int", ""},
		{"void", Void, "void", "void", "V", "void", ""},
		{"class", String, "java.lang.String", "java/lang/String", "Ljava/lang/String;", "java.lang.String", "java.lang"},
		{"nested", inner, "com.example.Outer$Inner", "com/example/Outer$Inner", "Lcom/example/Outer$Inner;", "com.example.Outer$Inner", "com.example"},
		{"primitive array", ArrayOf(Int), "[I", "[I", "[I", "int[]", ""},
		{"object array", ArrayOf(ArrayOf(String)), "[[Ljava.lang.String;", "[[Ljava/lang/String;", "[[Ljava/lang/String;", "java.lang.String[][]", ""},
		{"default package", NewLatentType("Foo", public, Object), "Foo", "Foo", "LFoo;", "Foo", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.binary, tt.typ.Name())
			assert.Equal(t, tt.internal, tt.typ.InternalName())
			assert.Equal(t, tt.descriptor, tt.typ.Descriptor())
			assert.Equal(t, tt.source, tt.typ.SourceCodeName())
			assert.Equal(t, tt.packageName, tt.typ.PackageName())
		})
	}
}

func TestStackSizes(t *testing.T) {
	assert.Equal(t, StackSizeZero, Void.StackSize())
	assert.Equal(t, StackSizeDouble, Long.StackSize())
	assert.Equal(t, StackSizeDouble, Double.StackSize())
	for _, typ := range []Type{Boolean, Byte, Char, Short, Int, Float, Object, ArrayOf(Long)} {
		assert.Equal(t, StackSizeSingle, typ.StackSize(), typ.Name())
	}
	assert.Equal(t, 6, TypeList{Int, Long, Object, Double}.StackSize())
}

func TestPrimitive(t *testing.T) {
	for _, name := range []string{"int", "I"} {
		typ, err := Primitive(name)
		require.NoError(t, err)
		assert.Same(t, Int, typ)
	}
	_, err := Primitive("java.lang.String")
	assert.ErrorIs(t, err, ErrIllegalArgument)
}

func TestIsAssignableFrom(t *testing.T) {
	h := newHierarchy()
	runnable := NewLatentType("java/lang/Runnable", public|classfile.AccInterface|abstract, nil)
	task := NewLatentType("com/example/Task", public, h.base, runnable)
	subTask := NewLatentType("com/example/SubTask", public, task)

	tests := []struct {
		name     string
		to, from Type
		want     bool
	}{
		{"identity", h.base, h.base, true},
		{"same primitive", Int, Int, true},
		{"different primitives", Long, Int, false},
		{"primitive to object", Object, Int, false},
		{"class to object", Object, h.base, true},
		{"interface to object", Object, runnable, true},
		{"subclass", h.base, h.sub, true},
		{"superclass", h.sub, h.base, false},
		{"unrelated", h.other, h.base, false},
		{"interface", runnable, task, true},
		{"inherited interface", runnable, subTask, true},
		{"transitive superclass", h.base, subTask, true},
		{"array to object", Object, ArrayOf(Int), true},
		{"array to cloneable", Cloneable, ArrayOf(Int), true},
		{"array to serializable", Serializable, ArrayOf(String), true},
		{"array to other interface", runnable, ArrayOf(String), false},
		{"covariant array", ArrayOf(h.base), ArrayOf(h.sub), true},
		{"contravariant array", ArrayOf(h.sub), ArrayOf(h.base), false},
		{"object array from primitive array", ArrayOf(Object), ArrayOf(Int), false},
		{"primitive arrays", ArrayOf(Long), ArrayOf(Int), false},
		{"class from array", h.base, ArrayOf(h.base), false},
		{"array from class", ArrayOf(h.base), h.base, false},
		{"nil", h.base, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.to.IsAssignableFrom(tt.from))
			if tt.from != nil {
				assert.Equal(t, tt.want, tt.from.IsAssignableTo(tt.to))
			}
		})
	}
}

func TestTypeIsVisibleTo(t *testing.T) {
	h := newHierarchy()
	hidden := NewLatentType("com/example/Hidden", 0, Object)

	assert.True(t, h.base.IsVisibleTo(h.other))
	assert.True(t, hidden.IsVisibleTo(h.peer))
	assert.False(t, hidden.IsVisibleTo(h.other))
	assert.True(t, Int.IsVisibleTo(h.other))
	assert.False(t, ArrayOf(hidden).IsVisibleTo(h.other))
	assert.True(t, ArrayOf(hidden).IsVisibleTo(h.base))
}

func TestArrayType(t *testing.T) {
	array := ArrayOf(String)
	assert.True(t, array.IsArray())
	assert.False(t, array.IsPrimitive())
	assert.True(t, array.ComponentType().Equal(String))
	assert.True(t, array.SuperType().Equal(Object))
	assert.True(t, array.Interfaces().Equal(TypeList{Cloneable, Serializable}))
	assert.Equal(t, public|final|abstract, array.Modifiers())
	assert.True(t, array.Equal(ArrayOf(String)))
	assert.False(t, array.Equal(ArrayOf(Object)))
}

func TestPrimitiveType(t *testing.T) {
	assert.True(t, Int.IsPrimitive())
	assert.Nil(t, Int.SuperType())
	assert.Empty(t, Int.Interfaces())
	assert.Nil(t, Int.ComponentType())
	assert.Empty(t, Int.DeclaredMethods())
	assert.Equal(t, "int", Int.String())
}

func TestTypeString(t *testing.T) {
	h := newHierarchy()
	assert.Equal(t, "class com.example.Base", h.base.String())
	assert.Equal(t, "interface com.example.Iface", h.iface.String())
}

func TestLazyType(t *testing.T) {
	calls := 0
	lazy := LazyType("Lcom/example/Lazy;", func() (Type, error) {
		calls++
		return NewLatentType("com/example/Lazy", public|final, Object), nil
	})

	// name queries need no resolution
	assert.Equal(t, "com.example.Lazy", lazy.Name())
	assert.Equal(t, 0, calls)

	assert.True(t, lazy.IsFinal())
	assert.True(t, lazy.SuperType().Equal(Object))
	assert.Equal(t, 1, calls)

	broken := LazyType("Lcom/example/Missing;", func() (Type, error) {
		return nil, errors.New("not found")
	})
	assert.Equal(t, classfile.AccessFlags(0), broken.Modifiers())
	assert.Nil(t, broken.SuperType())
	assert.Empty(t, broken.DeclaredMethods())
	assert.True(t, Object.IsAssignableFrom(broken))
	assert.False(t, broken.IsAssignableFrom(String))
}

func TestTypeListEqual(t *testing.T) {
	assert.True(t, TypeList{Int, String}.Equal(TypeList{Int, String}))
	assert.False(t, TypeList{Int, String}.Equal(TypeList{String, Int}))
	assert.False(t, TypeList{Int}.Equal(TypeList{Int, Int}))
	assert.True(t, TypeList(nil).Equal(TypeList{}))
	assert.Equal(t, "IJ", TypeList{Int, Long}.Descriptors())
}

func TestLatentTypeMembers(t *testing.T) {
	typ := NewLatentType("com/example/Built", public, Object)
	method := typ.DefineMethod("run", Void, nil, public, nil)
	ctor := typ.DefineConstructor(TypeList{Int}, public, nil)
	clinit := typ.DefineTypeInitializer()

	methods := typ.DeclaredMethods()
	require.Len(t, methods, 3)
	assert.Same(t, method, methods[0])
	assert.Equal(t, []string{"run()V", "<init>(I)V", "<clinit>()V"}, methods.Signatures())
	assert.True(t, ctor.DeclaringType().Equal(typ))
	assert.True(t, clinit.DeclaringType().Equal(typ))

	found, ok := methods.Lookup("<init>(I)V")
	require.True(t, ok)
	assert.True(t, found.IsConstructor())

	_, ok = methods.Lookup("missing()V")
	assert.False(t, ok)

	assert.Len(t, methods.Filter(Method.IsMethod), 1)
}
