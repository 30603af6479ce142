package description

import (
	"sync"

	"github.com/daimatz/jrebase/pkg/classfile"
	log "github.com/sirupsen/logrus"
)

// lazyType knows its descriptor up front and resolves everything else on
// first use.
type lazyType struct {
	descriptor string
	resolve    func() (Type, error)

	once   sync.Once
	target Type
}

// LazyType returns a reference type whose hierarchy and members are
// resolved by resolve on first use. A failed resolution is logged and the
// type then behaves as having no modifiers, super type or members.
func LazyType(descriptor string, resolve func() (Type, error)) Type {
	return DescribeType(&lazyType{descriptor: descriptor, resolve: resolve})
}

func (l *lazyType) resolved() Type {
	l.once.Do(func() {
		t, err := l.resolve()
		if err != nil {
			log.WithFields(log.Fields{
				"type":  l.descriptor,
				"error": err,
			}).Warn("Could not resolve type, treating it as empty")
			return
		}
		l.target = t
	})
	return l.target
}

func (l *lazyType) Descriptor() string { return l.descriptor }

func (l *lazyType) Modifiers() classfile.AccessFlags {
	if t := l.resolved(); t != nil {
		return t.Modifiers()
	}
	return 0
}

func (l *lazyType) SuperType() Type {
	if t := l.resolved(); t != nil {
		return t.SuperType()
	}
	return nil
}

func (l *lazyType) Interfaces() TypeList {
	if t := l.resolved(); t != nil {
		return t.Interfaces()
	}
	return nil
}

func (l *lazyType) ComponentType() Type { return nil }

func (l *lazyType) DeclaredMethods() MethodList {
	if t := l.resolved(); t != nil {
		return t.DeclaredMethods()
	}
	return nil
}

func (l *lazyType) DeclaredAnnotations() AnnotationList {
	if t := l.resolved(); t != nil {
		return t.DeclaredAnnotations()
	}
	return nil
}
