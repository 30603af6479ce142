package matcher

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/daimatz/jrebase/pkg/description"
)

type method = description.Method

// Named matches methods with the given internal name.
func Named(name string) Junction[method] {
	return New("named("+name+")", func(m method) bool { return m.InternalName() == name })
}

func NameStartsWith(prefix string) Junction[method] {
	return New("nameStartsWith("+prefix+")", func(m method) bool {
		return strings.HasPrefix(m.InternalName(), prefix)
	})
}

func NameEndsWith(suffix string) Junction[method] {
	return New("nameEndsWith("+suffix+")", func(m method) bool {
		return strings.HasSuffix(m.InternalName(), suffix)
	})
}

func NameContains(infix string) Junction[method] {
	return New("nameContains("+infix+")", func(m method) bool {
		return strings.Contains(m.InternalName(), infix)
	})
}

// NameMatches matches internal names against re.
func NameMatches(re *regexp.Regexp) Junction[method] {
	return New("nameMatches("+re.String()+")", func(m method) bool {
		return re.MatchString(m.InternalName())
	})
}

func IsConstructor() Junction[method] {
	return New("isConstructor()", method.IsConstructor)
}

func IsMethod() Junction[method] {
	return New("isMethod()", method.IsMethod)
}

func IsTypeInitializer() Junction[method] {
	return New("isTypeInitializer()", method.IsTypeInitializer)
}

func IsStatic() Junction[method]        { return New("isStatic()", method.IsStatic) }
func IsPublic() Junction[method]        { return New("isPublic()", method.IsPublic) }
func IsPrivate() Junction[method]       { return New("isPrivate()", method.IsPrivate) }
func IsAbstract() Junction[method]      { return New("isAbstract()", method.IsAbstract) }
func IsNative() Junction[method]        { return New("isNative()", method.IsNative) }
func IsSynthetic() Junction[method]     { return New("isSynthetic()", method.IsSynthetic) }
func IsBridge() Junction[method]        { return New("isBridge()", method.IsBridge) }
func IsDefaultMethod() Junction[method] { return New("isDefaultMethod()", method.IsDefaultMethod) }
func IsOverridable() Junction[method]   { return New("isOverridable()", method.IsOverridable) }

// IsVisibleTo matches methods a caller in t may invoke.
func IsVisibleTo(t description.Type) Junction[method] {
	return New("isVisibleTo("+t.Name()+")", func(m method) bool { return m.IsVisibleTo(t) })
}

// IsSpecializableFor matches methods t may invoke with INVOKESPECIAL.
func IsSpecializableFor(t description.Type) Junction[method] {
	return New("isSpecializableFor("+t.Name()+")", func(m method) bool { return m.IsSpecializableFor(t) })
}

// Returns matches methods whose return type matches.
func Returns(m Matcher[description.Type]) Junction[method] {
	return New("returns("+m.String()+")", func(target method) bool { return m.Matches(target.ReturnType()) })
}

// TakesArguments matches methods with exactly these parameter types.
func TakesArguments(types ...description.Type) Junction[method] {
	want := description.TypeList(types)
	return New("takesArguments("+strings.Join(want.InternalNames(), ",")+")", func(m method) bool {
		return m.ParameterTypes().Equal(want)
	})
}

// TakesArgumentCount matches methods with n parameters.
func TakesArgumentCount(n int) Junction[method] {
	return New(fmt.Sprintf("takesArguments(%d)", n), func(m method) bool {
		return len(m.ParameterTypes()) == n
	})
}

func HasDescriptor(descriptor string) Junction[method] {
	return New("hasDescriptor("+descriptor+")", func(m method) bool { return m.Descriptor() == descriptor })
}

// HasSignature matches the unique signature, name plus descriptor.
func HasSignature(uniqueSignature string) Junction[method] {
	return New("hasSignature("+uniqueSignature+")", func(m method) bool {
		return m.UniqueSignature() == uniqueSignature
	})
}

// DeclaredBy matches methods whose declaring type matches.
func DeclaredBy(m Matcher[description.Type]) Junction[method] {
	return New("declaredBy("+m.String()+")", func(target method) bool { return m.Matches(target.DeclaringType()) })
}

// IsAnnotatedWith matches methods declaring an annotation of type t.
func IsAnnotatedWith(t description.Type) Junction[method] {
	return New("isAnnotatedWith("+t.Name()+")", func(m method) bool {
		return m.DeclaredAnnotations().IsPresent(t)
	})
}
