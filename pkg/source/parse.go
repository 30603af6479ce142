// Package source describes the types declared by Java source files as
// latent types, the way they will look once compiled.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/daimatz/jrebase/pkg/classfile"
	"github.com/daimatz/jrebase/pkg/description"
	log "github.com/sirupsen/logrus"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// ErrSyntax is returned for source the Java grammar rejects.
var ErrSyntax = errors.New("syntax error")

// declaration is a type declared in the file.
type declaration struct {
	node   *sitter.Node
	typ    *description.LatentType
	outer  *declaration
	nested map[string]*declaration
	inner  []*declaration // nested, in source order
	scope  *scope
}

// member returns the type reached from d by a dotted member path.
func (d *declaration) member(path string) description.Type {
	if path == "" {
		return d.typ
	}
	head, rest, _ := strings.Cut(path, ".")
	if n, ok := d.nested[head]; ok {
		return n.member(rest)
	}
	return nil
}

func (d *declaration) kind() string { return d.node.Type() }

// Parse parses a Java compilation unit and describes every type it
// declares, nested types following their outer type. Referenced types are
// looked up in pool, which may be nil.
func Parse(ctx context.Context, filename string, src []byte, pool *description.TypePool) ([]*description.LatentType, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	root := tree.RootNode()
	if root.HasError() {
		if node := firstError(root); node != nil {
			p := node.StartPoint()
			return nil, fmt.Errorf("%s:%d:%d: %w", filename, p.Row+1, p.Column+1, ErrSyntax)
		}
		return nil, fmt.Errorf("%s: %w", filename, ErrSyntax)
	}

	f := &file{
		name:        filename,
		imports:     make(map[string]string),
		topLevel:    make(map[string]*declaration),
		pool:        pool,
		placeholder: make(map[string]*description.LatentType),
	}
	var declarations []*declaration
	for _, node := range namedChildren(root) {
		switch node.Type() {
		case "package_declaration":
			f.pkg = strings.ReplaceAll(node.NamedChild(0).Content(src), ".", "/")
		case "import_declaration":
			f.addImport(node, src)
		default:
			if isTypeDeclaration(node) {
				d := declare(node, src, f.pkg, nil)
				f.topLevel[d.simpleName(src)] = d
				declarations = append(declarations, d.flatten()...)
			}
		}
	}

	fileScope := &scope{file: f}
	types := make([]*description.LatentType, 0, len(declarations))
	for _, d := range declarations {
		parent := fileScope
		if d.outer != nil {
			parent = d.outer.scope
		}
		d.scope = parent.child()
		d.scope.members = d.nested
		describeDeclaration(d, src)
		types = append(types, d.typ)
	}
	log.WithFields(log.Fields{
		"file":  filename,
		"types": len(types),
	}).Debug("Parsed source")
	return types, nil
}

func (f *file) addImport(node *sitter.Node, src []byte) {
	var name string
	static, wildcard := false, false
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "static":
			static = true
		case "asterisk":
			wildcard = true
		case "identifier", "scoped_identifier":
			name = child.Content(src)
		}
	}
	if static || name == "" {
		return
	}
	internal := strings.ReplaceAll(name, ".", "/")
	if wildcard {
		f.wildcards = append(f.wildcards, internal)
		return
	}
	simple := internal[strings.LastIndex(internal, "/")+1:]
	f.imports[simple] = internal
}

// declare creates the latent type of a declaration and its nested types.
// Members are described later, once every type of the file is known.
func declare(node *sitter.Node, src []byte, pkg string, outer *declaration) *declaration {
	d := &declaration{node: node, outer: outer, nested: make(map[string]*declaration)}
	name := d.simpleName(src)
	internalName := packaged(pkg, name)
	if outer != nil {
		internalName = outer.typ.InternalName() + "$" + name
	}

	modifiers := keywordModifiers(modifiersOf(node))
	switch node.Type() {
	case "interface_declaration":
		modifiers |= classfile.AccInterface | classfile.AccAbstract
	case "annotation_type_declaration":
		modifiers |= classfile.AccInterface | classfile.AccAbstract | classfile.AccAnnotation
	case "enum_declaration":
		modifiers |= classfile.AccEnum | classfile.AccFinal
	case "record_declaration":
		modifiers |= classfile.AccFinal
	}
	if outer != nil && (node.Type() != "class_declaration" || outer.typ.IsInterface()) {
		// member interfaces, enums and records, and every member of an
		// interface, are implicitly static
		modifiers |= classfile.AccStatic
	}
	if outer != nil && outer.typ.IsInterface() {
		modifiers |= classfile.AccPublic
	}
	d.typ = description.NewLatentType(internalName, modifiers, nil)

	for _, member := range bodyMembers(node) {
		if isTypeDeclaration(member) {
			n := declare(member, src, pkg, d)
			d.nested[n.simpleName(src)] = n
			d.inner = append(d.inner, n)
		}
	}
	return d
}

func (d *declaration) simpleName(src []byte) string {
	return d.node.ChildByFieldName("name").Content(src)
}

// flatten lists d and its nested declarations in source order.
func (d *declaration) flatten() []*declaration {
	out := []*declaration{d}
	for _, n := range d.inner {
		out = append(out, n.flatten()...)
	}
	return out
}

// bodyMembers returns the member nodes of a type body, looking into the
// declarations section of an enum body.
func bodyMembers(node *sitter.Node) []*sitter.Node {
	var members []*sitter.Node
	for _, member := range namedChildren(node.ChildByFieldName("body")) {
		if member.Type() == "enum_body_declarations" {
			members = append(members, namedChildren(member)...)
			continue
		}
		members = append(members, member)
	}
	return members
}

// describeDeclaration resolves the hierarchy of d and defines its members.
func describeDeclaration(d *declaration, src []byte) {
	node := d.node
	sc := d.scope
	sc.declareTypeParameters(node.ChildByFieldName("type_parameters"), src)
	d.typ.Annotate(annotationsOf(modifiersOf(node), sc, src)...)

	switch d.kind() {
	case "class_declaration":
		if super := node.ChildByFieldName("superclass"); super != nil {
			d.typ.SetSuperType(sc.resolve(super.NamedChild(0), src))
		} else {
			d.typ.SetSuperType(description.Object)
		}
	case "enum_declaration":
		d.typ.SetSuperType(sc.lookup("java.lang.Enum"))
	case "record_declaration":
		d.typ.SetSuperType(sc.lookup("java.lang.Record"))
	case "annotation_type_declaration":
		d.typ.AddInterfaces(sc.lookup("java.lang.annotation.Annotation"))
	}

	interfaces := node.ChildByFieldName("interfaces")
	if d.kind() == "interface_declaration" {
		interfaces = childOfType(node, "extends_interfaces")
	}
	if list := childOfType(interfaces, "type_list"); list != nil {
		for _, t := range namedChildren(list) {
			d.typ.AddInterfaces(sc.resolve(t, src))
		}
	}

	m := &members{d: d, src: src}
	for _, member := range bodyMembers(node) {
		m.define(member)
	}
	m.defineImplicit()
}
