package source

import (
	"github.com/daimatz/jrebase/pkg/classfile"
	"github.com/daimatz/jrebase/pkg/description"
	sitter "github.com/smacker/go-tree-sitter"
)

var keywords = map[string]classfile.AccessFlags{
	"public":       classfile.AccPublic,
	"protected":    classfile.AccProtected,
	"private":      classfile.AccPrivate,
	"static":       classfile.AccStatic,
	"final":        classfile.AccFinal,
	"abstract":     classfile.AccAbstract,
	"native":       classfile.AccNative,
	"synchronized": classfile.AccSynchronized,
	"transient":    classfile.AccTransient,
	"volatile":     classfile.AccVolatile,
	"strictfp":     classfile.AccStrict,
}

const accessMask = classfile.AccPublic | classfile.AccProtected | classfile.AccPrivate

func modifiersOf(node *sitter.Node) *sitter.Node {
	return childOfType(node, "modifiers")
}

// keywordModifiers returns the access flags spelled by a modifiers node.
func keywordModifiers(modifiers *sitter.Node) classfile.AccessFlags {
	var flags classfile.AccessFlags
	if modifiers == nil {
		return flags
	}
	for i := 0; i < int(modifiers.ChildCount()); i++ {
		flags |= keywords[modifiers.Child(i).Type()]
	}
	return flags
}

// members defines the methods of one declaration.
type members struct {
	d            *declaration
	src          []byte
	constructors int
	initializer  bool
	canonical    bool
	accessors    map[string]bool
}

func (m *members) define(node *sitter.Node) {
	switch node.Type() {
	case "method_declaration":
		m.method(node)
	case "constructor_declaration", "compact_constructor_declaration":
		m.constructor(node)
	case "annotation_type_element_declaration":
		m.element(node)
	case "static_initializer":
		if !m.initializer {
			m.d.typ.DefineTypeInitializer()
			m.initializer = true
		}
	}
}

func (m *members) method(node *sitter.Node) {
	sc := m.d.scope.child()
	sc.declareTypeParameters(node.ChildByFieldName("type_parameters"), m.src)

	mods := modifiersOf(node)
	modifiers := keywordModifiers(mods)
	if m.d.typ.IsInterface() {
		if !modifiers.IsPrivate() {
			modifiers |= classfile.AccPublic
		}
		if node.ChildByFieldName("body") == nil && !modifiers.IsStatic() && !modifiers.IsPrivate() {
			modifiers |= classfile.AccAbstract
		}
	}

	returnType := sc.resolve(node.ChildByFieldName("type"), m.src)
	for range dimensions(node.ChildByFieldName("dimensions"), m.src) {
		returnType = description.ArrayOf(returnType)
	}
	params, opts, varargs := m.parameters(sc, node.ChildByFieldName("parameters"))
	if varargs {
		modifiers |= classfile.AccVarargs
	}
	opts = append(opts, description.WithAnnotations(annotationsOf(mods, sc, m.src)...))

	name := node.ChildByFieldName("name").Content(m.src)
	if len(params) == 0 {
		if m.accessors == nil {
			m.accessors = make(map[string]bool)
		}
		m.accessors[name] = true
	}
	m.d.typ.DefineMethod(name, returnType, params, modifiers, m.throws(sc, node), opts...)
}

func (m *members) constructor(node *sitter.Node) {
	sc := m.d.scope.child()
	sc.declareTypeParameters(node.ChildByFieldName("type_parameters"), m.src)

	mods := modifiersOf(node)
	modifiers := keywordModifiers(mods)
	if m.d.kind() == "enum_declaration" {
		modifiers = modifiers&^accessMask | classfile.AccPrivate
	}

	var params description.TypeList
	var opts []description.LatentOption
	var varargs bool
	if node.Type() == "compact_constructor_declaration" {
		params, opts, varargs = m.parameters(m.d.scope, m.d.node.ChildByFieldName("parameters"))
		m.canonical = true
	} else {
		params, opts, varargs = m.parameters(sc, node.ChildByFieldName("parameters"))
		if m.d.kind() == "record_declaration" {
			components, _, _ := m.parameters(m.d.scope, m.d.node.ChildByFieldName("parameters"))
			m.canonical = m.canonical || params.Equal(components)
		}
	}
	if varargs {
		modifiers |= classfile.AccVarargs
	}
	opts = append(opts, description.WithAnnotations(annotationsOf(mods, sc, m.src)...))

	m.d.typ.DefineConstructor(params, modifiers, m.throws(sc, node), opts...)
	m.constructors++
}

// element defines an annotation interface element.
func (m *members) element(node *sitter.Node) {
	sc := m.d.scope
	returnType := sc.resolve(node.ChildByFieldName("type"), m.src)
	for range dimensions(node.ChildByFieldName("dimensions"), m.src) {
		returnType = description.ArrayOf(returnType)
	}
	mods := modifiersOf(node)
	opts := []description.LatentOption{description.WithAnnotations(annotationsOf(mods, sc, m.src)...)}
	if value := node.ChildByFieldName("value"); value != nil {
		if v := elementValue(value, returnType, sc, m.src); v != nil {
			opts = append(opts, description.WithDefaultValue(v))
		}
	}
	name := node.ChildByFieldName("name").Content(m.src)
	m.d.typ.DefineMethod(name, returnType, nil, classfile.AccPublic|classfile.AccAbstract, nil, opts...)
}

// parameters describes a formal_parameters node. The options carry the
// parameter annotations.
func (m *members) parameters(sc *scope, node *sitter.Node) (description.TypeList, []description.LatentOption, bool) {
	var params description.TypeList
	var opts []description.LatentOption
	varargs := false
	for _, p := range namedChildren(node) {
		var t description.Type
		switch p.Type() {
		case "formal_parameter":
			t = sc.resolve(p.ChildByFieldName("type"), m.src)
			for range dimensions(p.ChildByFieldName("dimensions"), m.src) {
				t = description.ArrayOf(t)
			}
		case "spread_parameter":
			for _, child := range namedChildren(p) {
				if isTypeNode(child) {
					t = description.ArrayOf(sc.resolve(child, m.src))
					break
				}
			}
			varargs = true
		default:
			continue
		}
		if t == nil {
			continue
		}
		if annotations := annotationsOf(modifiersOf(p), sc, m.src); len(annotations) > 0 {
			opts = append(opts, description.WithParameterAnnotations(len(params), annotations...))
		}
		params = append(params, t)
	}
	return params, opts, varargs
}

func (m *members) throws(sc *scope, node *sitter.Node) description.TypeList {
	var exceptions description.TypeList
	for _, t := range namedChildren(childOfType(node, "throws")) {
		exceptions = append(exceptions, sc.resolve(t, m.src))
	}
	return exceptions
}

// defineImplicit adds the members javac generates: default constructors,
// the enum factory methods and record members.
func (m *members) defineImplicit() {
	typ := m.d.typ
	access := typ.Modifiers() & accessMask
	switch m.d.kind() {
	case "class_declaration":
		if m.constructors == 0 {
			typ.DefineConstructor(nil, access, nil)
		}
	case "enum_declaration":
		if m.constructors == 0 {
			typ.DefineConstructor(nil, classfile.AccPrivate, nil)
		}
		typ.DefineMethod("values", description.ArrayOf(typ), nil, classfile.AccPublic|classfile.AccStatic, nil)
		typ.DefineMethod("valueOf", typ, description.TypeList{description.String}, classfile.AccPublic|classfile.AccStatic, nil)
	case "record_declaration":
		components := m.d.node.ChildByFieldName("parameters")
		params, opts, varargs := m.parameters(m.d.scope, components)
		if !m.canonical {
			modifiers := access
			if varargs {
				modifiers |= classfile.AccVarargs
			}
			typ.DefineConstructor(params, modifiers, nil, opts...)
		}
		i := 0
		for _, p := range namedChildren(components) {
			if p.Type() != "formal_parameter" && p.Type() != "spread_parameter" {
				continue
			}
			name := componentName(p, m.src)
			if !m.accessors[name] {
				typ.DefineMethod(name, params[i], nil, classfile.AccPublic, nil)
			}
			i++
		}
	}
}

func componentName(p *sitter.Node, src []byte) string {
	if name := p.ChildByFieldName("name"); name != nil {
		return name.Content(src)
	}
	if declarator := childOfType(p, "variable_declarator"); declarator != nil {
		return declarator.ChildByFieldName("name").Content(src)
	}
	return ""
}
