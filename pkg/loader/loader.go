// Package loader locates and parses class files by internal name.
package loader

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/daimatz/jrebase/pkg/classfile"
	log "github.com/sirupsen/logrus"
)

// ErrClassNotFound is returned when no loader in the chain knows a class.
var ErrClassNotFound = errors.New("class not found")

// ClassLoader loads .class files by internal name ("java/lang/String").
type ClassLoader interface {
	LoadClass(name string) (*classfile.ClassFile, error)
}

// InternalName converts a binary name ("java.lang.String") to an internal
// name. Internal names are returned unchanged.
func InternalName(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}

// cache is a mutex-guarded map of parsed classes shared by the loaders.
type cache struct {
	mu      sync.Mutex
	classes map[string]*classfile.ClassFile
}

func (c *cache) get(name string) (*classfile.ClassFile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cf, ok := c.classes[name]
	return cf, ok
}

// put stores cf unless another goroutine stored the class first, and returns
// the stored value.
func (c *cache) put(name string, cf *classfile.ClassFile) *classfile.ClassFile {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.classes == nil {
		c.classes = make(map[string]*classfile.ClassFile)
	}
	if existing, ok := c.classes[name]; ok {
		return existing
	}
	c.classes[name] = cf
	return cf
}

// JmodClassLoader loads classes from a JDK jmod file.
type JmodClassLoader struct {
	JmodPath string

	cache   cache
	once    sync.Once
	openErr error
	entries map[string]*zip.File
}

// NewJmodClassLoader creates a new JmodClassLoader.
func NewJmodClassLoader(jmodPath string) *JmodClassLoader {
	return &JmodClassLoader{JmodPath: jmodPath}
}

func (cl *JmodClassLoader) open() error {
	cl.once.Do(func() {
		data, err := os.ReadFile(cl.JmodPath)
		if err != nil {
			cl.openErr = fmt.Errorf("jmod: reading %s: %w", cl.JmodPath, err)
			return
		}
		if len(data) < 4 || !bytes.HasPrefix(data, []byte("JM")) {
			cl.openErr = fmt.Errorf("jmod: %s is not a jmod file", cl.JmodPath)
			return
		}

		zipData := data[4:] // Skip "JM\x01\x00" header
		zr, err := zip.NewReader(bytes.NewReader(zipData), int64(len(zipData)))
		if err != nil {
			cl.openErr = fmt.Errorf("jmod: opening zip: %w", err)
			return
		}
		cl.entries = make(map[string]*zip.File, len(zr.File))
		for _, f := range zr.File {
			if name, ok := strings.CutPrefix(f.Name, "classes/"); ok && strings.HasSuffix(name, ".class") {
				cl.entries[strings.TrimSuffix(name, ".class")] = f
			}
		}
		log.WithFields(log.Fields{"jmod": cl.JmodPath, "classes": len(cl.entries)}).Debug("Opened jmod")
	})
	return cl.openErr
}

func (cl *JmodClassLoader) LoadClass(name string) (*classfile.ClassFile, error) {
	name = InternalName(name)
	if cf, ok := cl.cache.get(name); ok {
		return cf, nil
	}

	if err := cl.open(); err != nil {
		return nil, err
	}

	file, ok := cl.entries[name]
	if !ok {
		return nil, fmt.Errorf("jmod: %s in %s: %w", name, cl.JmodPath, ErrClassNotFound)
	}
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("jmod: opening %s: %w", file.Name, err)
	}
	defer rc.Close()

	cf, err := classfile.Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("jmod: parsing %s: %w", name, err)
	}
	log.WithField("class", name).Debug("Loaded class from jmod")
	return cl.cache.put(name, cf), nil
}

// DirClassLoader loads classes from a class path directory, delegating to
// the parent first.
type DirClassLoader struct {
	ClassPath string
	Parent    ClassLoader

	cache cache
}

// NewDirClassLoader creates a new DirClassLoader. parent may be nil.
func NewDirClassLoader(classPath string, parent ClassLoader) *DirClassLoader {
	return &DirClassLoader{ClassPath: classPath, Parent: parent}
}

func (cl *DirClassLoader) LoadClass(name string) (*classfile.ClassFile, error) {
	name = InternalName(name)
	if cf, ok := cl.cache.get(name); ok {
		return cf, nil
	}
	if cl.Parent != nil {
		if cf, err := cl.Parent.LoadClass(name); err == nil {
			return cf, nil
		}
	}
	path := filepath.Join(cl.ClassPath, filepath.FromSlash(name)+".class")
	cf, err := classfile.ParseFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("dir: %s: %w", name, ErrClassNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("dir: loading %s: %w", name, err)
	}
	return cl.cache.put(name, cf), nil
}

// FindJmod locates java.base.jmod from JAVA_BASE_JMOD, JAVA_HOME or the
// usual Linux install paths. It returns "" when nothing is found.
func FindJmod() string {
	// 1. Explicit env var
	if env := os.Getenv("JAVA_BASE_JMOD"); env != "" {
		return env
	}
	// 2. JAVA_HOME
	if javaHome := os.Getenv("JAVA_HOME"); javaHome != "" {
		p := filepath.Join(javaHome, "jmods", "java.base.jmod")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	// 3. Glob fallback
	matches, _ := filepath.Glob("/usr/lib/jvm/java-*-openjdk-*/jmods/java.base.jmod")
	if len(matches) > 0 {
		return matches[0]
	}
	return ""
}
