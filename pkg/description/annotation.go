package description

import (
	"github.com/daimatz/jrebase/pkg/classfile"
)

// Annotation is an annotation present on a type, method or parameter.
type Annotation struct {
	Type   Type
	Values map[string]classfile.ElementValue
}

// AnnotationType returns the annotation interface.
func (a Annotation) AnnotationType() Type { return a.Type }

// Value returns the explicitly given value of element name.
func (a Annotation) Value(name string) (classfile.ElementValue, bool) {
	v, ok := a.Values[name]
	return v, ok
}

func (a Annotation) String() string {
	return "@" + a.Type.Name()
}

// AnnotationList is an ordered list of annotations.
type AnnotationList []Annotation

// IsPresent reports whether an annotation of type t is in the list.
func (l AnnotationList) IsPresent(t Type) bool {
	_, ok := l.Of(t)
	return ok
}

// Of returns the annotation of type t.
func (l AnnotationList) Of(t Type) (Annotation, bool) {
	for _, a := range l {
		if a.Type.Equal(t) {
			return a, true
		}
	}
	return Annotation{}, false
}

// emptyAnnotationLists returns n empty lists.
func emptyAnnotationLists(n int) []AnnotationList {
	lists := make([]AnnotationList, n)
	for i := range lists {
		lists[i] = AnnotationList{}
	}
	return lists
}

func loadedAnnotations(annotations []classfile.Annotation, pool *TypePool) AnnotationList {
	list := make(AnnotationList, len(annotations))
	for i, a := range annotations {
		list[i] = Annotation{Type: pool.Lazy(a.Descriptor), Values: a.Values}
	}
	return list
}
