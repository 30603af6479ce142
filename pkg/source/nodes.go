package source

import (
	sitter "github.com/smacker/go-tree-sitter"
)

func namedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	children := make([]*sitter.Node, 0, node.NamedChildCount())
	for i := 0; i < int(node.NamedChildCount()); i++ {
		children = append(children, node.NamedChild(i))
	}
	return children
}

// childOfType returns the first named child of the given node type.
func childOfType(node *sitter.Node, nodeType string) *sitter.Node {
	for _, child := range namedChildren(node) {
		if child.Type() == nodeType {
			return child
		}
	}
	return nil
}

func isTypeNode(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	switch node.Type() {
	case "integral_type", "floating_point_type", "void_type", "boolean_type",
		"generic_type", "array_type", "type_identifier", "scoped_type_identifier",
		"annotated_type":
		return true
	default:
		return false
	}
}

func isTypeDeclaration(node *sitter.Node) bool {
	switch node.Type() {
	case "class_declaration", "interface_declaration", "enum_declaration",
		"annotation_type_declaration", "record_declaration":
		return true
	default:
		return false
	}
}

// dimensions counts the bracket pairs of a dimensions node.
func dimensions(node *sitter.Node, src []byte) int {
	if node == nil {
		return 0
	}
	n := 0
	for _, c := range node.Content(src) {
		if c == '[' {
			n++
		}
	}
	return n
}

// firstError returns the first syntax error or missing node below node.
func firstError(node *sitter.Node) *sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.HasError() || child.IsMissing() {
			if found := firstError(child); found != nil {
				return found
			}
		}
	}
	return nil
}
