package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const classMagic = 0xCAFEBABE

// Attribute names the parser decodes. Everything else is kept raw in
// Attributes.
const (
	attrExceptions                         = "Exceptions"
	attrRuntimeVisibleAnnotations          = "RuntimeVisibleAnnotations"
	attrRuntimeVisibleParameterAnnotations = "RuntimeVisibleParameterAnnotations"
	attrAnnotationDefault                  = "AnnotationDefault"
)

// ParseFile opens and parses a .class file from the given path.
func ParseFile(path string) (*ClassFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// ParseBytes parses a class file held in memory.
func ParseBytes(data []byte) (*ClassFile, error) {
	return Parse(bytes.NewReader(data))
}

// Parse reads a .class file from the given reader and returns a ClassFile.
func Parse(r io.Reader) (*ClassFile, error) {
	cf := &ClassFile{}

	// Magic number
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("reading magic number: %w", err)
	}
	if magic != classMagic {
		return nil, fmt.Errorf("invalid magic number: 0x%X (expected 0xCAFEBABE)", magic)
	}

	// Version
	if err := binary.Read(r, binary.BigEndian, &cf.MinorVersion); err != nil {
		return nil, fmt.Errorf("reading minor version: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &cf.MajorVersion); err != nil {
		return nil, fmt.Errorf("reading major version: %w", err)
	}

	// Constant pool
	var cpCount uint16
	if err := binary.Read(r, binary.BigEndian, &cpCount); err != nil {
		return nil, fmt.Errorf("reading constant pool count: %w", err)
	}
	pool, err := parseConstantPool(r, cpCount)
	if err != nil {
		return nil, fmt.Errorf("parsing constant pool: %w", err)
	}
	cf.ConstantPool = pool

	// Access flags, this_class, super_class
	if err := binary.Read(r, binary.BigEndian, &cf.AccessFlags); err != nil {
		return nil, fmt.Errorf("reading access flags: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &cf.ThisClass); err != nil {
		return nil, fmt.Errorf("reading this_class: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &cf.SuperClass); err != nil {
		return nil, fmt.Errorf("reading super_class: %w", err)
	}

	// Interfaces
	var interfacesCount uint16
	if err := binary.Read(r, binary.BigEndian, &interfacesCount); err != nil {
		return nil, fmt.Errorf("reading interfaces count: %w", err)
	}
	cf.Interfaces = make([]uint16, interfacesCount)
	for i := uint16(0); i < interfacesCount; i++ {
		if err := binary.Read(r, binary.BigEndian, &cf.Interfaces[i]); err != nil {
			return nil, fmt.Errorf("reading interface %d: %w", i, err)
		}
	}

	// Fields
	var fieldsCount uint16
	if err := binary.Read(r, binary.BigEndian, &fieldsCount); err != nil {
		return nil, fmt.Errorf("reading fields count: %w", err)
	}
	cf.Fields, err = parseFields(r, cf.ConstantPool, fieldsCount)
	if err != nil {
		return nil, fmt.Errorf("parsing fields: %w", err)
	}

	// Methods
	var methodsCount uint16
	if err := binary.Read(r, binary.BigEndian, &methodsCount); err != nil {
		return nil, fmt.Errorf("reading methods count: %w", err)
	}
	cf.Methods, err = parseMethods(r, cf.ConstantPool, methodsCount)
	if err != nil {
		return nil, fmt.Errorf("parsing methods: %w", err)
	}

	// Class-level attributes
	var attrCount uint16
	if err := binary.Read(r, binary.BigEndian, &attrCount); err != nil {
		return nil, fmt.Errorf("reading class attributes count: %w", err)
	}
	attrs, err := parseAttributeInfos(r, cf.ConstantPool, attrCount)
	if err != nil {
		return nil, fmt.Errorf("parsing class attributes: %w", err)
	}
	for _, attr := range attrs {
		if attr.Name == attrRuntimeVisibleAnnotations {
			cf.Annotations, err = parseAnnotations(attr.Data, cf.ConstantPool)
			if err != nil {
				return nil, fmt.Errorf("parsing class annotations: %w", err)
			}
		}
	}

	return cf, nil
}

type memberHeader struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	AttributesCount uint16
}

func parseMember(r io.Reader, pool []ConstantPoolEntry) (memberHeader, string, string, []AttributeInfo, error) {
	var h memberHeader
	if err := binary.Read(r, binary.BigEndian, &h); err != nil {
		return h, "", "", nil, fmt.Errorf("reading header: %w", err)
	}
	name, err := GetUtf8(pool, h.NameIndex)
	if err != nil {
		return h, "", "", nil, fmt.Errorf("resolving name: %w", err)
	}
	desc, err := GetUtf8(pool, h.DescriptorIndex)
	if err != nil {
		return h, "", "", nil, fmt.Errorf("resolving descriptor: %w", err)
	}
	attrs, err := parseAttributeInfos(r, pool, h.AttributesCount)
	if err != nil {
		return h, "", "", nil, fmt.Errorf("parsing attributes of %s: %w", name, err)
	}
	return h, name, desc, attrs, nil
}

func parseFields(r io.Reader, pool []ConstantPoolEntry, count uint16) ([]FieldInfo, error) {
	fields := make([]FieldInfo, count)
	for i := uint16(0); i < count; i++ {
		h, name, desc, attrs, err := parseMember(r, pool)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		fields[i] = FieldInfo{
			AccessFlags: h.AccessFlags,
			Name:        name,
			Descriptor:  desc,
			Attributes:  attrs,
		}
	}
	return fields, nil
}

func parseMethods(r io.Reader, pool []ConstantPoolEntry, count uint16) ([]MethodInfo, error) {
	methods := make([]MethodInfo, count)
	for i := uint16(0); i < count; i++ {
		h, name, desc, attrs, err := parseMember(r, pool)
		if err != nil {
			return nil, fmt.Errorf("method %d: %w", i, err)
		}

		m := MethodInfo{
			AccessFlags: h.AccessFlags,
			Name:        name,
			Descriptor:  desc,
			Attributes:  attrs,
		}

		for _, attr := range attrs {
			switch attr.Name {
			case attrExceptions:
				m.Exceptions, err = parseExceptions(attr.Data, pool)
			case attrRuntimeVisibleAnnotations:
				m.Annotations, err = parseAnnotations(attr.Data, pool)
			case attrRuntimeVisibleParameterAnnotations:
				m.ParameterAnnotations, err = parseParameterAnnotations(attr.Data, pool)
			case attrAnnotationDefault:
				m.AnnotationDefault, err = parseElementValue(bytes.NewReader(attr.Data), pool)
			}
			if err != nil {
				return nil, fmt.Errorf("parsing %s attribute for method %s: %w", attr.Name, name, err)
			}
		}

		methods[i] = m
	}
	return methods, nil
}

func parseAttributeInfos(r io.Reader, pool []ConstantPoolEntry, count uint16) ([]AttributeInfo, error) {
	attrs := make([]AttributeInfo, count)
	for i := uint16(0); i < count; i++ {
		var nameIndex uint16
		if err := binary.Read(r, binary.BigEndian, &nameIndex); err != nil {
			return nil, fmt.Errorf("reading attribute %d name index: %w", i, err)
		}
		var length uint32
		if err := binary.Read(r, binary.BigEndian, &length); err != nil {
			return nil, fmt.Errorf("reading attribute %d length: %w", i, err)
		}
		data := make([]byte, length)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("reading attribute %d data: %w", i, err)
		}

		name, err := GetUtf8(pool, nameIndex)
		if err != nil {
			return nil, fmt.Errorf("resolving attribute %d name: %w", i, err)
		}

		attrs[i] = AttributeInfo{Name: name, Data: data}
	}
	return attrs, nil
}

func parseExceptions(data []byte, pool []ConstantPoolEntry) ([]string, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("Exceptions data too short")
	}
	n := int(binary.BigEndian.Uint16(data[0:2]))
	if len(data) < 2+2*n {
		return nil, fmt.Errorf("Exceptions truncated: %d entries in %d bytes", n, len(data))
	}
	names := make([]string, n)
	for i := 0; i < n; i++ {
		index := binary.BigEndian.Uint16(data[2+2*i : 4+2*i])
		name, err := GetClassName(pool, index)
		if err != nil {
			return nil, fmt.Errorf("resolving exception %d: %w", i, err)
		}
		names[i] = name
	}
	return names, nil
}

func parseAnnotations(data []byte, pool []ConstantPoolEntry) ([]Annotation, error) {
	r := bytes.NewReader(data)
	var n uint16
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, fmt.Errorf("reading annotation count: %w", err)
	}
	return readAnnotations(r, pool, n)
}

func parseParameterAnnotations(data []byte, pool []ConstantPoolEntry) ([][]Annotation, error) {
	r := bytes.NewReader(data)
	var params uint8
	if err := binary.Read(r, binary.BigEndian, &params); err != nil {
		return nil, fmt.Errorf("reading parameter count: %w", err)
	}
	result := make([][]Annotation, params)
	for i := range result {
		var n uint16
		if err := binary.Read(r, binary.BigEndian, &n); err != nil {
			return nil, fmt.Errorf("reading annotation count of parameter %d: %w", i, err)
		}
		annotations, err := readAnnotations(r, pool, n)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		result[i] = annotations
	}
	return result, nil
}

func readAnnotations(r io.Reader, pool []ConstantPoolEntry, n uint16) ([]Annotation, error) {
	annotations := make([]Annotation, n)
	for i := range annotations {
		a, err := readAnnotation(r, pool)
		if err != nil {
			return nil, fmt.Errorf("annotation %d: %w", i, err)
		}
		annotations[i] = a
	}
	return annotations, nil
}

func readAnnotation(r io.Reader, pool []ConstantPoolEntry) (Annotation, error) {
	var header struct {
		TypeIndex uint16
		Pairs     uint16
	}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return Annotation{}, fmt.Errorf("reading annotation header: %w", err)
	}
	desc, err := GetUtf8(pool, header.TypeIndex)
	if err != nil {
		return Annotation{}, fmt.Errorf("resolving annotation type: %w", err)
	}
	a := Annotation{Descriptor: desc, Values: make(map[string]ElementValue, header.Pairs)}
	for i := uint16(0); i < header.Pairs; i++ {
		var nameIndex uint16
		if err := binary.Read(r, binary.BigEndian, &nameIndex); err != nil {
			return Annotation{}, fmt.Errorf("reading element %d name: %w", i, err)
		}
		name, err := GetUtf8(pool, nameIndex)
		if err != nil {
			return Annotation{}, fmt.Errorf("resolving element %d name: %w", i, err)
		}
		value, err := parseElementValue(r, pool)
		if err != nil {
			return Annotation{}, fmt.Errorf("element %s: %w", name, err)
		}
		a.Values[name] = value
	}
	return a, nil
}

func parseElementValue(r io.Reader, pool []ConstantPoolEntry) (ElementValue, error) {
	var tag uint8
	if err := binary.Read(r, binary.BigEndian, &tag); err != nil {
		return nil, fmt.Errorf("reading element value tag: %w", err)
	}
	switch tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's':
		var index uint16
		if err := binary.Read(r, binary.BigEndian, &index); err != nil {
			return nil, fmt.Errorf("reading const_value_index: %w", err)
		}
		return constantValue(pool, tag, index)

	case 'e':
		var indices [2]uint16
		if err := binary.Read(r, binary.BigEndian, &indices); err != nil {
			return nil, fmt.Errorf("reading enum_const_value: %w", err)
		}
		typeName, err := GetUtf8(pool, indices[0])
		if err != nil {
			return nil, err
		}
		constName, err := GetUtf8(pool, indices[1])
		if err != nil {
			return nil, err
		}
		return EnumValue{TypeDescriptor: typeName, Name: constName}, nil

	case 'c':
		var index uint16
		if err := binary.Read(r, binary.BigEndian, &index); err != nil {
			return nil, fmt.Errorf("reading class_info_index: %w", err)
		}
		desc, err := GetUtf8(pool, index)
		if err != nil {
			return nil, err
		}
		return ClassValue{Descriptor: desc}, nil

	case '@':
		return readAnnotation(r, pool)

	case '[':
		var n uint16
		if err := binary.Read(r, binary.BigEndian, &n); err != nil {
			return nil, fmt.Errorf("reading array length: %w", err)
		}
		values := make([]ElementValue, n)
		for i := range values {
			v, err := parseElementValue(r, pool)
			if err != nil {
				return nil, fmt.Errorf("array element %d: %w", i, err)
			}
			values[i] = v
		}
		return values, nil

	default:
		return nil, fmt.Errorf("unknown element value tag %q", tag)
	}
}

// ClassName returns the internal name of this class.
func (cf *ClassFile) ClassName() (string, error) {
	return GetClassName(cf.ConstantPool, cf.ThisClass)
}

// FindMethod finds a method by name and descriptor.
func (cf *ClassFile) FindMethod(name, descriptor string) *MethodInfo {
	for i := range cf.Methods {
		if cf.Methods[i].Name == name && cf.Methods[i].Descriptor == descriptor {
			return &cf.Methods[i]
		}
	}
	return nil
}

// FindMethodByName finds a method by name only (first match).
func (cf *ClassFile) FindMethodByName(name string) *MethodInfo {
	for i := range cf.Methods {
		if cf.Methods[i].Name == name {
			return &cf.Methods[i]
		}
	}
	return nil
}
