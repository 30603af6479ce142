package matcher

import (
	"github.com/daimatz/jrebase/pkg/description"
)

// TypeNamed matches a type by binary ("java.lang.String") or internal
// ("java/lang/String") name.
func TypeNamed(name string) Junction[description.Type] {
	return New("named("+name+")", func(t description.Type) bool {
		return t.Name() == name || t.InternalName() == name
	})
}

// IsSubTypeOf matches types assignable to t.
func IsSubTypeOf(t description.Type) Junction[description.Type] {
	return New("isSubTypeOf("+t.Name()+")", func(target description.Type) bool {
		return target.IsAssignableTo(t)
	})
}

// IsSuperTypeOf matches types t is assignable to.
func IsSuperTypeOf(t description.Type) Junction[description.Type] {
	return New("isSuperTypeOf("+t.Name()+")", func(target description.Type) bool {
		return target.IsAssignableFrom(t)
	})
}

func IsInterfaceType() Junction[description.Type] {
	return New("isInterface()", description.Type.IsInterface)
}

// AnnotationType matches annotations whose annotation interface matches m.
func AnnotationType(m Matcher[description.Type]) Junction[description.Annotation] {
	return New("ofAnnotationType("+m.String()+")", func(a description.Annotation) bool {
		return m.Matches(a.AnnotationType())
	})
}
