package source

import (
	"strings"

	"github.com/daimatz/jrebase/pkg/description"
	log "github.com/sirupsen/logrus"
	sitter "github.com/smacker/go-tree-sitter"
)

// javaLang lists the java.lang types a simple name resolves to when no
// class loader can confirm them.
var javaLang = map[string]bool{
	"AutoCloseable": true, "Boolean": true, "Byte": true, "CharSequence": true,
	"Character": true, "Class": true, "ClassLoader": true, "Cloneable": true,
	"Comparable": true, "Deprecated": true, "Double": true, "Enum": true,
	"Error": true, "Exception": true, "Float": true, "FunctionalInterface": true,
	"IllegalArgumentException": true, "IllegalStateException": true, "Integer": true,
	"InterruptedException": true, "Iterable": true, "Long": true, "Math": true,
	"NullPointerException": true, "Number": true, "Object": true, "Override": true,
	"Record": true, "Runnable": true, "RuntimeException": true, "SafeVarargs": true,
	"Short": true, "String": true, "StringBuilder": true, "SuppressWarnings": true,
	"System": true, "Thread": true, "Throwable": true, "UnsupportedOperationException": true,
	"Void": true,
}

var wellKnown = map[string]description.Type{
	"java/lang/Object":     description.Object,
	"java/lang/String":     description.String,
	"java/lang/Cloneable":  description.Cloneable,
	"java/io/Serializable": description.Serializable,
}

// file holds what every type of a compilation unit resolves names against.
type file struct {
	name        string
	pkg         string
	imports     map[string]string
	wildcards   []string
	topLevel    map[string]*declaration
	pool        *description.TypePool
	placeholder map[string]*description.LatentType
}

// scope is a lexical type scope: the members and type parameters of one
// declaration or method.
type scope struct {
	parent     *scope
	file       *file
	members    map[string]*declaration
	typeParams map[string]description.Type
}

func (s *scope) child() *scope {
	return &scope{parent: s, file: s.file, typeParams: make(map[string]description.Type)}
}

// declareTypeParameters erases each type parameter to its first bound.
func (s *scope) declareTypeParameters(node *sitter.Node, src []byte) {
	for _, param := range namedChildren(node) {
		if param.Type() != "type_parameter" || param.NamedChildCount() == 0 {
			continue
		}
		name := param.NamedChild(0).Content(src)
		s.typeParams[name] = description.Object
		if bound := childOfType(param, "type_bound"); bound != nil {
			for _, t := range namedChildren(bound) {
				if isTypeNode(t) {
					s.typeParams[name] = s.resolve(t, src)
					break
				}
			}
		}
	}
}

// resolve describes a type node.
func (s *scope) resolve(node *sitter.Node, src []byte) description.Type {
	switch node.Type() {
	case "integral_type", "floating_point_type", "boolean_type", "void_type":
		t, err := description.Primitive(node.Content(src))
		if err != nil {
			return s.placeholder(node.Content(src))
		}
		return t
	case "array_type":
		t := s.resolve(node.ChildByFieldName("element"), src)
		for range dimensions(node.ChildByFieldName("dimensions"), src) {
			t = description.ArrayOf(t)
		}
		return t
	case "annotated_type":
		children := namedChildren(node)
		return s.resolve(children[len(children)-1], src)
	default:
		return s.lookup(typeName(node, src))
	}
}

// typeName returns the dotted source name of a class type, without type
// arguments.
func typeName(node *sitter.Node, src []byte) string {
	switch node.Type() {
	case "generic_type":
		return typeName(node.NamedChild(0), src)
	case "scoped_type_identifier":
		children := namedChildren(node)
		last := children[len(children)-1]
		return typeName(children[0], src) + "." + last.Content(src)
	default:
		return node.Content(src)
	}
}

// lookup resolves a simple or dotted type name the way javac does for the
// cases a declaration can meet: type parameters, member types, imports,
// the file package, java.lang and on-demand imports.
func (s *scope) lookup(name string) description.Type {
	head, rest, dotted := strings.Cut(name, ".")
	for sc := s; sc != nil; sc = sc.parent {
		if t, ok := sc.typeParams[name]; ok && !dotted {
			return t
		}
		if d, ok := sc.members[head]; ok {
			if t := d.member(rest); t != nil {
				return t
			}
		}
	}
	f := s.file
	if d, ok := f.topLevel[head]; ok {
		if t := d.member(rest); t != nil {
			return t
		}
	}
	if imported, ok := f.imports[head]; ok {
		return f.describe(joinNested(imported, rest))
	}
	if dotted {
		// fully qualified, try package/Type then package/Outer$Inner
		qualified := strings.ReplaceAll(name, ".", "/")
		if t, ok := f.load(qualified); ok {
			return t
		}
		if i := strings.LastIndex(qualified, "/"); i > 0 {
			if t, ok := f.load(qualified[:i] + "$" + qualified[i+1:]); ok {
				return t
			}
		}
		return f.fallback(qualified)
	}

	candidates := []string{packaged(f.pkg, name), "java/lang/" + name}
	for _, pkg := range f.wildcards {
		candidates = append(candidates, pkg+"/"+name)
	}
	for _, candidate := range candidates {
		if t, ok := f.load(candidate); ok {
			return t
		}
	}
	if javaLang[name] {
		return f.fallback("java/lang/" + name)
	}
	return f.fallback(packaged(f.pkg, name))
}

func packaged(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "/" + name
}

func joinNested(outer, rest string) string {
	if rest == "" {
		return outer
	}
	return outer + "$" + strings.ReplaceAll(rest, ".", "$")
}

// describe loads name or falls back to a placeholder.
func (f *file) describe(internalName string) description.Type {
	if t, ok := f.load(internalName); ok {
		return t
	}
	return f.fallback(internalName)
}

func (f *file) load(internalName string) (description.Type, bool) {
	if f.pool == nil {
		return nil, false
	}
	t, err := f.pool.Describe(internalName)
	if err != nil || t.IsPrimitive() {
		// the pool reads single letter names as primitive descriptors
		return nil, false
	}
	return t, true
}

// fallback returns a well-known stand-in or an empty placeholder type.
func (f *file) fallback(internalName string) description.Type {
	if t, ok := wellKnown[internalName]; ok {
		return t
	}
	if t, ok := f.placeholder[internalName]; ok {
		return t
	}
	log.WithFields(log.Fields{
		"file": f.name,
		"type": internalName,
	}).Warn("Unresolved type, using placeholder")
	t := description.NewLatentType(internalName, 0, nil)
	f.placeholder[internalName] = t
	return t
}

// placeholder is used for nodes the grammar accepted but no rule covers.
func (s *scope) placeholder(name string) description.Type {
	return s.file.fallback(packaged(s.file.pkg, name))
}
