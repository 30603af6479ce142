package description

import (
	"fmt"
	"strings"
	"sync"

	"github.com/daimatz/jrebase/pkg/classfile"
	"github.com/daimatz/jrebase/pkg/loader"
	log "github.com/sirupsen/logrus"
)

// TypePool describes the classes a loader can provide and caches the
// results.
type TypePool struct {
	loader loader.ClassLoader

	mu    sync.Mutex
	types map[string]Type
}

// NewTypePool creates a pool over cl. cl may be nil, in which case only
// primitive and array types of primitives can be described.
func NewTypePool(cl loader.ClassLoader) *TypePool {
	return &TypePool{loader: cl, types: make(map[string]Type)}
}

// Describe returns the type with the given internal or binary name.
// Primitive keywords and array descriptors are accepted too.
func (p *TypePool) Describe(name string) (Type, error) {
	if t, err := Primitive(name); err == nil {
		return t, nil
	}
	name = loader.InternalName(name)
	if strings.HasPrefix(name, "[") {
		return p.DescribeDescriptor(name)
	}

	p.mu.Lock()
	t, ok := p.types[name]
	p.mu.Unlock()
	if ok {
		return t, nil
	}

	if p.loader == nil {
		return nil, fmt.Errorf("describing %s: no class loader: %w", name, loader.ErrClassNotFound)
	}
	cf, err := p.loader.LoadClass(name)
	if err != nil {
		log.WithFields(log.Fields{"type": name, "error": err}).Debug("Describe failed")
		return nil, fmt.Errorf("describing %s: %w", name, err)
	}
	return p.DescribeClassFile(cf)
}

// DescribeDescriptor returns the type for a field descriptor.
func (p *TypePool) DescribeDescriptor(descriptor string) (Type, error) {
	if err := classfile.ValidateFieldDescriptor(descriptor); err != nil && descriptor != "V" {
		return nil, fmt.Errorf("describing %s: %w", descriptor, err)
	}
	switch descriptor[0] {
	case '[':
		component, err := p.DescribeDescriptor(descriptor[1:])
		if err != nil {
			return nil, err
		}
		return ArrayOf(component), nil
	case 'L':
		return p.Describe(descriptor[1 : len(descriptor)-1])
	default:
		return primitives[descriptor], nil
	}
}

// DescribeClassFile describes a parsed class file and caches it under its
// name. A type already cached under that name is returned instead.
func (p *TypePool) DescribeClassFile(cf *classfile.ClassFile) (Type, error) {
	name, err := cf.ClassName()
	if err != nil {
		return nil, fmt.Errorf("describing class file: %w", err)
	}
	interfaces, err := cf.InterfaceNames()
	if err != nil {
		return nil, fmt.Errorf("describing %s: %w", name, err)
	}

	def := &loadedType{pool: p, cf: cf, name: name, interfaceNames: interfaces}
	t := DescribeType(def)
	def.self = t

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.types[name]; ok {
		return existing, nil
	}
	p.types[name] = t
	return t, nil
}

// Lazy returns a reference to the type of a field descriptor without
// loading it. Primitive and array descriptors of primitives need no loading
// at all.
func (p *TypePool) Lazy(descriptor string) Type {
	switch {
	case len(descriptor) == 1:
		if t, ok := primitives[descriptor]; ok {
			return t
		}
	case strings.HasPrefix(descriptor, "["):
		return ArrayOf(p.Lazy(descriptor[1:]))
	}
	return LazyType(descriptor, func() (Type, error) {
		if p == nil {
			return nil, fmt.Errorf("no type pool for %s", descriptor)
		}
		return p.DescribeDescriptor(descriptor)
	})
}

// loadedType is a class or interface backed by a parsed class file.
type loadedType struct {
	pool           *TypePool
	cf             *classfile.ClassFile
	name           string
	interfaceNames []string
	self           Type

	methodsOnce sync.Once
	methods     MethodList

	annotationsOnce sync.Once
	annotations     AnnotationList
}

func (t *loadedType) Descriptor() string { return "L" + t.name + ";" }

func (t *loadedType) Modifiers() classfile.AccessFlags {
	return t.cf.AccessFlags &^ classfile.AccSuper
}

func (t *loadedType) SuperType() Type {
	super := t.cf.SuperClassName()
	if super == "" || t.cf.AccessFlags.IsInterface() {
		return nil
	}
	return t.pool.Lazy("L" + super + ";")
}

func (t *loadedType) Interfaces() TypeList {
	interfaces := make(TypeList, len(t.interfaceNames))
	for i, name := range t.interfaceNames {
		interfaces[i] = t.pool.Lazy("L" + name + ";")
	}
	return interfaces
}

func (t *loadedType) ComponentType() Type { return nil }

func (t *loadedType) DeclaredMethods() MethodList {
	t.methodsOnce.Do(func() {
		for _, info := range t.cf.Methods {
			var (
				m   Method
				err error
			)
			switch info.Name {
			case TypeInitializerInternalName:
				m = TypeInitializerOf(t.self)
			case ConstructorInternalName:
				m, err = ForLoadedConstructor(t.self, info, t.pool)
			default:
				m, err = ForLoadedMethod(t.self, info, t.pool)
			}
			if err != nil {
				log.WithFields(log.Fields{
					"type":   t.name,
					"method": info.Name + info.Descriptor,
					"error":  err,
				}).Warn("Skipping undescribable method")
				continue
			}
			t.methods = append(t.methods, m)
		}
	})
	return t.methods
}

func (t *loadedType) DeclaredAnnotations() AnnotationList {
	t.annotationsOnce.Do(func() {
		t.annotations = loadedAnnotations(t.cf.Annotations, t.pool)
	})
	return t.annotations
}
