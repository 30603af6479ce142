package source

import (
	"strconv"
	"strings"

	"github.com/daimatz/jrebase/pkg/classfile"
	"github.com/daimatz/jrebase/pkg/description"
	log "github.com/sirupsen/logrus"
	sitter "github.com/smacker/go-tree-sitter"
)

// annotationsOf describes the annotations of a modifiers node.
func annotationsOf(modifiers *sitter.Node, sc *scope, src []byte) []description.Annotation {
	var annotations []description.Annotation
	for _, node := range namedChildren(modifiers) {
		if node.Type() != "marker_annotation" && node.Type() != "annotation" {
			continue
		}
		t, values := annotation(node, sc, src)
		annotations = append(annotations, description.Annotation{Type: t, Values: values})
	}
	return annotations
}

func annotation(node *sitter.Node, sc *scope, src []byte) (description.Type, map[string]classfile.ElementValue) {
	t := sc.lookup(node.ChildByFieldName("name").Content(src))
	values := make(map[string]classfile.ElementValue)
	for _, arg := range namedChildren(node.ChildByFieldName("arguments")) {
		key, value := "value", arg
		if arg.Type() == "element_value_pair" {
			key = arg.ChildByFieldName("key").Content(src)
			value = arg.ChildByFieldName("value")
		}
		if v := elementValue(value, elementType(t, key), sc, src); v != nil {
			values[key] = v
		}
	}
	return t, values
}

// elementType is the declared type of an annotation element, nil when the
// annotation interface is not known.
func elementType(t description.Type, name string) description.Type {
	for _, m := range t.DeclaredMethods() {
		if m.InternalName() == name && len(m.ParameterTypes()) == 0 {
			return m.ReturnType()
		}
	}
	return nil
}

// elementValue converts a constant expression to an element value of type
// want. want may be nil, literals then keep their source type.
func elementValue(node *sitter.Node, want description.Type, sc *scope, src []byte) classfile.ElementValue {
	if want != nil && want.IsArray() && node.Type() != "element_value_array_initializer" {
		if v := elementValue(node, want.ComponentType(), sc, src); v != nil {
			return []classfile.ElementValue{v}
		}
		return nil
	}

	text := node.Content(src)
	switch node.Type() {
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal":
		return integerValue(text, want)
	case "decimal_floating_point_literal":
		return floatValue(text, want)
	case "true", "false":
		return node.Type() == "true"
	case "character_literal":
		if s, err := strconv.Unquote(text); err == nil && len([]rune(s)) == 1 {
			return uint16([]rune(s)[0])
		}
	case "string_literal":
		if s, err := strconv.Unquote(text); err == nil {
			return s
		}
		return strings.Trim(text, `"`)
	case "class_literal":
		return classfile.ClassValue{Descriptor: sc.resolve(node.NamedChild(0), src).Descriptor()}
	case "field_access":
		owner := sc.lookup(node.ChildByFieldName("object").Content(src))
		return classfile.EnumValue{TypeDescriptor: owner.Descriptor(), Name: node.ChildByFieldName("field").Content(src)}
	case "identifier":
		if want != nil && !want.IsPrimitive() && !want.Equal(description.String) {
			return classfile.EnumValue{TypeDescriptor: want.Descriptor(), Name: text}
		}
	case "unary_expression":
		operand := node.ChildByFieldName("operand")
		if node.ChildByFieldName("operator").Content(src) == "-" && operand != nil {
			return negate(elementValue(operand, want, sc, src))
		}
	case "parenthesized_expression":
		return elementValue(node.NamedChild(0), want, sc, src)
	case "element_value_array_initializer":
		var component description.Type
		if want != nil && want.IsArray() {
			component = want.ComponentType()
		}
		values := []classfile.ElementValue{}
		for _, element := range namedChildren(node) {
			if v := elementValue(element, component, sc, src); v != nil {
				values = append(values, v)
			}
		}
		return values
	case "marker_annotation", "annotation":
		t, values := annotation(node, sc, src)
		return classfile.Annotation{Descriptor: t.Descriptor(), Values: values}
	}
	log.WithFields(log.Fields{
		"node":  node.Type(),
		"value": text,
	}).Debug("Skipping element value")
	return nil
}

func integerValue(text string, want description.Type) classfile.ElementValue {
	text = strings.ReplaceAll(text, "_", "")
	long := strings.HasSuffix(text, "L") || strings.HasSuffix(text, "l")
	text = strings.TrimRight(text, "Ll")
	if len(text) > 1 && text[0] == '0' && text[1] >= '0' && text[1] <= '7' {
		text = "0o" + text[1:]
	}
	v, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		// 0xFFFFFFFF and friends are valid int literals
		u, uerr := strconv.ParseUint(text, 0, 64)
		if uerr != nil {
			return nil
		}
		v = int64(u)
		if !long {
			v = int64(int32(uint32(u)))
		}
	}
	if want == nil {
		if long {
			return v
		}
		return int32(v)
	}
	return convert(float64(v), v, want)
}

func floatValue(text string, want description.Type) classfile.ElementValue {
	text = strings.ReplaceAll(text, "_", "")
	single := strings.HasSuffix(text, "f") || strings.HasSuffix(text, "F")
	text = strings.TrimRight(text, "fFdD")
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	if want == nil {
		if single {
			return float32(v)
		}
		return v
	}
	return convert(v, int64(v), want)
}

// convert narrows a numeric constant to the primitive want.
func convert(f float64, i int64, want description.Type) classfile.ElementValue {
	switch want.Descriptor() {
	case "B":
		return int8(i)
	case "S":
		return int16(i)
	case "C":
		return uint16(i)
	case "I":
		return int32(i)
	case "J":
		return i
	case "F":
		return float32(f)
	case "D":
		return f
	}
	return nil
}

func negate(v classfile.ElementValue) classfile.ElementValue {
	switch v := v.(type) {
	case int8:
		return -v
	case int16:
		return -v
	case int32:
		return -v
	case int64:
		return -v
	case float32:
		return -v
	case float64:
		return -v
	}
	return nil
}
