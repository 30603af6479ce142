package loader

import (
	"fmt"

	"github.com/daimatz/jrebase/pkg/classfile"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Strategy materializes class bytes as loaded classes.
type Strategy interface {
	Load(parent ClassLoader, types map[string][]byte) (map[string]*classfile.ClassFile, error)
}

// Wrapper loads the types through a new ByteArrayClassLoader whose parent is
// the given loader.
type Wrapper struct{}

func (Wrapper) Load(parent ClassLoader, types map[string][]byte) (map[string]*classfile.ClassFile, error) {
	return loadAll(NewByteArrayClassLoader(parent, types), types)
}

func (Wrapper) String() string { return "wrapper" }

// Injection defines the types in the given loader itself, which must be
// Injectable.
type Injection struct{}

func (Injection) Load(parent ClassLoader, types map[string][]byte) (map[string]*classfile.ClassFile, error) {
	target, ok := parent.(Injectable)
	if !ok {
		return nil, fmt.Errorf("injection: %T does not accept class definitions", parent)
	}
	names := sortedNames(types)
	for _, name := range names {
		if err := target.Define(name, types[name]); err != nil {
			return nil, fmt.Errorf("injection: %w", err)
		}
	}
	return loadAll(target, types)
}

func (Injection) String() string { return "injection" }

func loadAll(cl ClassLoader, types map[string][]byte) (map[string]*classfile.ClassFile, error) {
	loaded := make(map[string]*classfile.ClassFile, len(types))
	for _, name := range sortedNames(types) {
		cf, err := cl.LoadClass(name)
		if err != nil {
			return nil, err
		}
		loaded[InternalName(name)] = cf
	}
	log.WithField("types", len(loaded)).Debug("Loaded class bytes")
	return loaded, nil
}

func sortedNames(types map[string][]byte) []string {
	names := maps.Keys(types)
	slices.Sort(names)
	return names
}
