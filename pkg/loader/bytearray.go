package loader

import (
	"fmt"
	"sync"

	"github.com/daimatz/jrebase/pkg/classfile"
	log "github.com/sirupsen/logrus"
)

// Injectable is a class loader that accepts new class definitions.
type Injectable interface {
	ClassLoader
	Define(name string, data []byte) error
}

// ByteArrayClassLoader serves classes from in-memory class file bytes,
// delegating to the parent first.
type ByteArrayClassLoader struct {
	Parent ClassLoader

	mu    sync.Mutex
	bytes map[string][]byte
	cache cache
}

// NewByteArrayClassLoader creates a loader for the given class bytes keyed
// by binary or internal name. parent may be nil.
func NewByteArrayClassLoader(parent ClassLoader, types map[string][]byte) *ByteArrayClassLoader {
	cl := &ByteArrayClassLoader{Parent: parent, bytes: make(map[string][]byte, len(types))}
	for name, data := range types {
		cl.bytes[InternalName(name)] = data
	}
	return cl
}

// Define adds a class definition. Redefining a known class is an error.
func (cl *ByteArrayClassLoader) Define(name string, data []byte) error {
	name = InternalName(name)
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if _, ok := cl.bytes[name]; ok {
		return fmt.Errorf("bytes: %s is already defined", name)
	}
	cl.bytes[name] = data
	log.WithField("class", name).Debug("Defined class")
	return nil
}

func (cl *ByteArrayClassLoader) LoadClass(name string) (*classfile.ClassFile, error) {
	name = InternalName(name)
	if cf, ok := cl.cache.get(name); ok {
		return cf, nil
	}
	if cl.Parent != nil {
		if cf, err := cl.Parent.LoadClass(name); err == nil {
			return cf, nil
		}
	}

	cl.mu.Lock()
	data, ok := cl.bytes[name]
	cl.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("bytes: %s: %w", name, ErrClassNotFound)
	}

	cf, err := classfile.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("bytes: parsing %s: %w", name, err)
	}
	if actual, err := cf.ClassName(); err != nil || actual != name {
		return nil, fmt.Errorf("bytes: class file for %s declares %q", name, actual)
	}
	return cl.cache.put(name, cf), nil
}
