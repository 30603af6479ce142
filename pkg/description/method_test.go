package description

import (
	"testing"

	"github.com/daimatz/jrebase/pkg/classfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	public    = classfile.AccPublic
	protected = classfile.AccProtected
	private   = classfile.AccPrivate
	static    = classfile.AccStatic
	abstract  = classfile.AccAbstract
	native    = classfile.AccNative
	final     = classfile.AccFinal
)

// hierarchy used across the tests:
//
//	com.example.Base            (public)
//	com.example.Sub    extends Base
//	com.example.Peer            (package-private)
//	org.other.OtherSub extends Base
//	org.other.Other
//	com.example.Iface           (interface)
type hierarchy struct {
	base, sub, peer, otherSub, other, iface *LatentType
}

func newHierarchy() hierarchy {
	base := NewLatentType("com/example/Base", public, Object)
	return hierarchy{
		base:     base,
		sub:      NewLatentType("com/example/Sub", public, base),
		peer:     NewLatentType("com/example/Peer", 0, Object),
		otherSub: NewLatentType("org/other/OtherSub", public, base),
		other:    NewLatentType("org/other/Other", public, Object),
		iface:    NewLatentType("com/example/Iface", public|classfile.AccInterface|abstract, nil),
	}
}

func TestDescriptor(t *testing.T) {
	h := newHierarchy()
	tests := []struct {
		name       string
		returnType Type
		params     TypeList
		want       string
	}{
		{"no parameters", Void, nil, "()V"},
		{"primitives", Int, TypeList{Long, Double, Boolean}, "(JDZ)I"},
		{"references", String, TypeList{Object, h.base}, "(Ljava/lang/Object;Lcom/example/Base;)Ljava/lang/String;"},
		{"arrays", ArrayOf(Int), TypeList{ArrayOf(ArrayOf(String)), Char}, "([[Ljava/lang/String;C)[I"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewLatentMethod("foo", h.base, tt.returnType, tt.params, public, nil)
			assert.Equal(t, tt.want, m.Descriptor())
			assert.Equal(t, "foo"+tt.want, m.UniqueSignature())
		})
	}
}

func TestEqualIgnoresExceptionsAndModifiers(t *testing.T) {
	h := newHierarchy()
	ioException := NewLatentType("java/io/IOException", public, Object)

	first := NewLatentMethod("foo", h.base, Int, TypeList{Long}, public, nil)
	second := NewLatentMethod("foo", h.base, Int, TypeList{Long}, private|static|final, TypeList{ioException})

	assert.True(t, first.Equal(second))
	assert.True(t, second.Equal(first))
	assert.Equal(t, first.HashCode(), second.HashCode())

	for name, other := range map[string]Method{
		"name":        NewLatentMethod("bar", h.base, Int, TypeList{Long}, public, nil),
		"declaring":   NewLatentMethod("foo", h.sub, Int, TypeList{Long}, public, nil),
		"return type": NewLatentMethod("foo", h.base, Long, TypeList{Long}, public, nil),
		"parameters":  NewLatentMethod("foo", h.base, Int, TypeList{Int}, public, nil),
	} {
		t.Run(name, func(t *testing.T) {
			assert.False(t, first.Equal(other))
		})
	}
	assert.False(t, first.Equal(nil))
}

func TestHashCode(t *testing.T) {
	h := newHierarchy()
	m := NewLatentMethod("foo", h.base, Int, TypeList{Long, String}, public, nil)

	want := stringHash("com.example.Base")
	want = 31*want + stringHash("foo")
	want = 31*want + stringHash("int")
	params := int32(1)
	params = 31*params + stringHash("long")
	params = 31*params + stringHash("java.lang.String")
	want = 31*want + params

	assert.Equal(t, want, m.HashCode())
	assert.Equal(t, int32(99162322), stringHash("hello"))
	assert.Equal(t, int32(0), stringHash(""))
}

func TestStackSize(t *testing.T) {
	h := newHierarchy()
	params := TypeList{Int, Long, String, Double}

	assert.Equal(t, 6, NewLatentMethod("foo", h.base, Void, params, public|static, nil).StackSize())
	assert.Equal(t, 7, NewLatentMethod("foo", h.base, Void, params, public, nil).StackSize())
	assert.Equal(t, 0, NewLatentMethod("foo", h.base, Void, nil, static, nil).StackSize())
	assert.Equal(t, 1, NewLatentMethod("foo", h.base, Void, nil, 0, nil).StackSize())
}

func TestParameterOffset(t *testing.T) {
	h := newHierarchy()

	t.Run("static", func(t *testing.T) {
		m := NewLatentMethod("foo", h.base, Void, TypeList{Int, Object}, public|static, nil)
		for i, want := range []int{0, 1} {
			got, err := m.ParameterOffset(i)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
		_, err := m.ParameterOffset(2)
		assert.ErrorIs(t, err, ErrIllegalArgument)
	})

	t.Run("instance", func(t *testing.T) {
		m := NewLatentMethod("foo", h.base, Void, TypeList{Int, Object}, public, nil)
		for i, want := range []int{1, 2} {
			got, err := m.ParameterOffset(i)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
		_, err := m.ParameterOffset(3)
		assert.ErrorIs(t, err, ErrIllegalArgument)
		_, err = m.ParameterOffset(-1)
		assert.ErrorIs(t, err, ErrIllegalArgument)
	})

	t.Run("wide parameters", func(t *testing.T) {
		m := NewLatentMethod("foo", h.base, Void, TypeList{Long, Double, Int}, public, nil)
		for i, want := range []int{1, 3, 5} {
			got, err := m.ParameterOffset(i)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})
}

func TestAdjustedModifiers(t *testing.T) {
	h := newHierarchy()
	m := NewLatentMethod("foo", h.base, Void, nil, public|abstract|native, nil)
	assert.Equal(t, public, m.AdjustedModifiers(true))
	assert.Equal(t, public|abstract, m.AdjustedModifiers(false))
}

func TestIsOverridable(t *testing.T) {
	h := newHierarchy()
	tests := []struct {
		name      string
		method    Method
		overrides bool
	}{
		{"virtual", NewLatentMethod("foo", h.base, Void, nil, public, nil), true},
		{"abstract", NewLatentMethod("foo", h.base, Void, nil, protected|abstract, nil), true},
		{"final", NewLatentMethod("foo", h.base, Void, nil, public|final, nil), false},
		{"private", NewLatentMethod("foo", h.base, Void, nil, private, nil), false},
		{"static", NewLatentMethod("foo", h.base, Void, nil, public|static, nil), false},
		{"constructor", h.base.DefineConstructor(nil, public, nil), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overrides, tt.method.IsOverridable())
		})
	}
}

func TestIsSpecializableFor(t *testing.T) {
	h := newHierarchy()
	impl := NewLatentType("com/example/Impl", public, Object, h.iface)

	virtual := NewLatentMethod("foo", h.base, Void, nil, public, nil)
	abstractMethod := NewLatentMethod("foo", h.base, Void, nil, public|abstract, nil)
	privateMethod := NewLatentMethod("foo", h.base, Void, nil, private, nil)
	staticMethod := NewLatentMethod("foo", h.base, Void, nil, public|static, nil)
	privateStatic := NewLatentMethod("foo", h.base, Void, nil, private|static, nil)
	constructor := NewLatentMethod(ConstructorInternalName, h.base, Void, nil, public, nil)
	defaultMethod := NewLatentMethod("foo", h.iface, Void, nil, public, nil)

	tests := []struct {
		name   string
		method Method
		target Type
		want   bool
	}{
		{"virtual on declaring", virtual, h.base, true},
		{"virtual on subtype", virtual, h.sub, true},
		{"virtual on unrelated", virtual, h.other, false},
		{"abstract on declaring", abstractMethod, h.base, false},
		{"abstract on subtype", abstractMethod, h.sub, false},
		{"private on declaring", privateMethod, h.base, true},
		{"private on subtype", privateMethod, h.sub, false},
		{"constructor on declaring", constructor, h.base, true},
		{"constructor on subtype", constructor, h.sub, false},
		{"static", staticMethod, h.base, false},
		{"private static", privateStatic, h.base, false},
		{"default on interface", defaultMethod, h.iface, true},
		{"default on implementation", defaultMethod, impl, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.method.IsSpecializableFor(tt.target))
		})
	}
}

func TestIsVisibleTo(t *testing.T) {
	h := newHierarchy()
	hidden := NewLatentType("com/example/Hidden", 0, Object)

	publicMethod := NewLatentMethod("foo", h.base, Void, nil, public, nil)
	protectedMethod := NewLatentMethod("foo", h.base, Void, nil, protected, nil)
	packageMethod := NewLatentMethod("foo", h.base, Void, nil, 0, nil)
	privateMethod := NewLatentMethod("foo", h.base, Void, nil, private, nil)
	hiddenPublic := NewLatentMethod("foo", hidden, Void, nil, public, nil)

	tests := []struct {
		name   string
		method Method
		target Type
		want   bool
	}{
		{"public to other package", publicMethod, h.other, true},
		{"protected to subclass in other package", protectedMethod, h.otherSub, true},
		{"protected to same package", protectedMethod, h.peer, true},
		{"protected to other package", protectedMethod, h.other, false},
		{"package to same package", packageMethod, h.peer, true},
		{"package to subclass in other package", packageMethod, h.otherSub, false},
		{"private to declaring", privateMethod, h.base, true},
		{"private to same package", privateMethod, h.peer, false},
		{"private to subclass", privateMethod, h.sub, false},
		{"public of hidden type to same package", hiddenPublic, h.peer, true},
		{"public of hidden type to other package", hiddenPublic, h.other, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.method.IsVisibleTo(tt.target))
		})
	}
}

func TestIsDefaultMethod(t *testing.T) {
	h := newHierarchy()
	assert.True(t, NewLatentMethod("foo", h.iface, Void, nil, public, nil).IsDefaultMethod())
	assert.False(t, NewLatentMethod("foo", h.iface, Void, nil, public|abstract, nil).IsDefaultMethod())
	assert.False(t, NewLatentMethod("foo", h.iface, Void, nil, public|classfile.AccBridge, nil).IsDefaultMethod())
	assert.False(t, NewLatentMethod("foo", h.base, Void, nil, public, nil).IsDefaultMethod())
}

func TestNames(t *testing.T) {
	h := newHierarchy()

	m := NewLatentMethod("foo", h.base, Void, nil, public, nil)
	assert.True(t, m.IsMethod())
	assert.Equal(t, "foo", m.Name())
	assert.Equal(t, "foo", m.SourceCodeName())

	ctor := h.base.DefineConstructor(nil, public, nil)
	assert.True(t, ctor.IsConstructor())
	assert.False(t, ctor.IsMethod())
	assert.Equal(t, "com.example.Base", ctor.Name())
	assert.Equal(t, "", ctor.SourceCodeName())
	assert.Equal(t, ConstructorInternalName, ctor.InternalName())

	clinit := TypeInitializerOf(h.base)
	assert.True(t, clinit.IsTypeInitializer())
	assert.False(t, clinit.IsMethod())
	assert.Equal(t, TypeInitializerModifiers, clinit.Modifiers())
	assert.True(t, clinit.IsSynthetic())
	assert.Equal(t, "()V", clinit.Descriptor())
	assert.Empty(t, clinit.ExceptionTypes())
}

func TestString(t *testing.T) {
	h := newHierarchy()
	ioException := NewLatentType("java/io/IOException", public, Object)
	inner := NewLatentType("com/example/Base$Inner", public|static, Object)

	tests := []struct {
		name   string
		method Method
		want   string
	}{
		{
			"method",
			NewLatentMethod("bar", h.base, ArrayOf(Int), TypeList{Long, String}, public|static, TypeList{ioException}),
			"public static int[] com.example.Base.bar(long,java.lang.String) throws java.io.IOException",
		},
		{
			"package-private",
			NewLatentMethod("bar", h.base, Void, nil, 0, nil),
			"void com.example.Base.bar()",
		},
		{
			"modifier order",
			NewLatentMethod("bar", h.base, Object, nil, final|native|protected|classfile.AccSynchronized, nil),
			"protected final synchronized native java.lang.Object com.example.Base.bar()",
		},
		{
			"synthetic and bridge are hidden",
			NewLatentMethod("bar", h.base, Void, nil, public|classfile.AccSynthetic|classfile.AccBridge, nil),
			"public void com.example.Base.bar()",
		},
		{
			"constructor",
			NewLatentMethod(ConstructorInternalName, h.base, Void, TypeList{Int, inner}, public, nil),
			"public com.example.Base(int,com.example.Base$Inner)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.method.String())
		})
	}
}

func TestLatentConstructorHasNoReturnOrDefault(t *testing.T) {
	h := newHierarchy()
	ctor := NewLatentMethod(ConstructorInternalName, h.base, Int, nil, public, nil, WithDefaultValue("x"))
	assert.True(t, ctor.ReturnType().Equal(Void))
	assert.Nil(t, ctor.DefaultValue())
	assert.Equal(t, "()V", ctor.Descriptor())
}

func TestDefaultValueAs(t *testing.T) {
	h := newHierarchy()

	m := NewLatentMethod("value", h.iface, String, nil, public|abstract, nil, WithDefaultValue("fallback"))
	s, err := DefaultValueAs[string](m)
	require.NoError(t, err)
	assert.Equal(t, "fallback", s)

	_, err = DefaultValueAs[int32](m)
	assert.ErrorIs(t, err, ErrClassCast)

	none := NewLatentMethod("other", h.iface, Int, nil, public|abstract, nil)
	i, err := DefaultValueAs[int32](none)
	require.NoError(t, err)
	assert.Zero(t, i)
}

func TestAnnotations(t *testing.T) {
	h := newHierarchy()
	deprecated := NewLatentType("java/lang/Deprecated", public|classfile.AccInterface|classfile.AccAnnotation|abstract, nil)
	notNull := NewLatentType("com/example/NotNull", public|classfile.AccInterface|classfile.AccAnnotation|abstract, nil)

	m := NewLatentMethod("foo", h.base, Void, TypeList{Int, String}, public, nil,
		WithAnnotations(Annotation{Type: deprecated}),
		WithParameterAnnotations(1, Annotation{Type: notNull}))

	assert.True(t, m.DeclaredAnnotations().IsPresent(deprecated))
	assert.False(t, m.DeclaredAnnotations().IsPresent(notNull))
	require.Len(t, m.ParameterAnnotations(), 2)
	assert.Empty(t, m.ParameterAnnotations()[0])
	assert.True(t, m.ParameterAnnotations()[1].IsPresent(notNull))

	plain := NewLatentMethod("bar", h.base, Void, TypeList{Int}, public, nil)
	assert.Empty(t, plain.DeclaredAnnotations())
	assert.Len(t, plain.ParameterAnnotations(), 1)
}

func TestRepresents(t *testing.T) {
	h := newHierarchy()
	m := NewLatentMethod("foo", h.base, Int, TypeList{Long}, public, nil)
	assert.True(t, m.Represents(classfile.MethodInfo{Name: "foo", Descriptor: "(J)I"}))
	assert.False(t, m.Represents(classfile.MethodInfo{Name: "foo", Descriptor: "(I)I"}))
	assert.False(t, m.Represents(classfile.MethodInfo{Name: "bar", Descriptor: "(J)I"}))
}
