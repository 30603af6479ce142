// Package classfiletest builds class files for tests.
package classfiletest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/daimatz/jrebase/pkg/classfile"
)

const classMagic = 0xCAFEBABE

const (
	attrExceptions                         = "Exceptions"
	attrRuntimeVisibleAnnotations          = "RuntimeVisibleAnnotations"
	attrRuntimeVisibleParameterAnnotations = "RuntimeVisibleParameterAnnotations"
	attrAnnotationDefault                  = "AnnotationDefault"
)

// Builder assembles a minimal class file: constant pool, members and the
// attributes classfile.Parse decodes. Methods carry no Code attribute.
type Builder struct {
	version     uint16
	access      classfile.AccessFlags
	name        string
	super       string
	interfaces  []string
	fields      []classfile.FieldInfo
	methods     []*MethodBuilder
	annotations []classfile.Annotation
}

// MethodBuilder collects the attributes of one method.
type MethodBuilder struct {
	info classfile.MethodInfo
}

// NewBuilder starts a class with the given internal name. An empty super
// produces a class without super class, which only java/lang/Object has.
func NewBuilder(access classfile.AccessFlags, name, super string) *Builder {
	return &Builder{version: 52, access: access, name: name, super: super}
}

// Interface adds a directly implemented interface.
func (b *Builder) Interface(name string) *Builder {
	b.interfaces = append(b.interfaces, name)
	return b
}

// Annotate adds a class annotation.
func (b *Builder) Annotate(a classfile.Annotation) *Builder {
	b.annotations = append(b.annotations, a)
	return b
}

// Field adds a field.
func (b *Builder) Field(access classfile.AccessFlags, name, descriptor string) *Builder {
	b.fields = append(b.fields, classfile.FieldInfo{AccessFlags: access, Name: name, Descriptor: descriptor})
	return b
}

// Method adds a method and returns its builder.
func (b *Builder) Method(access classfile.AccessFlags, name, descriptor string) *MethodBuilder {
	m := &MethodBuilder{info: classfile.MethodInfo{AccessFlags: access, Name: name, Descriptor: descriptor}}
	b.methods = append(b.methods, m)
	return m
}

// Throws adds exception types to the Exceptions attribute.
func (m *MethodBuilder) Throws(names ...string) *MethodBuilder {
	m.info.Exceptions = append(m.info.Exceptions, names...)
	return m
}

// Annotate adds a method annotation.
func (m *MethodBuilder) Annotate(a classfile.Annotation) *MethodBuilder {
	m.info.Annotations = append(m.info.Annotations, a)
	return m
}

// AnnotateParameter adds an annotation to parameter index.
func (m *MethodBuilder) AnnotateParameter(index int, a classfile.Annotation) *MethodBuilder {
	for len(m.info.ParameterAnnotations) <= index {
		m.info.ParameterAnnotations = append(m.info.ParameterAnnotations, nil)
	}
	m.info.ParameterAnnotations[index] = append(m.info.ParameterAnnotations[index], a)
	return m
}

// Default sets the AnnotationDefault value.
func (m *MethodBuilder) Default(v classfile.ElementValue) *MethodBuilder {
	m.info.AnnotationDefault = v
	return m
}

// Bytes encodes the class file.
func (b *Builder) Bytes() ([]byte, error) {
	cp := newPoolWriter()
	body := &bytes.Buffer{}
	w := &errWriter{buf: body}

	thisIndex := cp.class(b.name)
	var superIndex uint16
	if b.super != "" {
		superIndex = cp.class(b.super)
	}

	w.u2(uint16(b.access))
	w.u2(thisIndex)
	w.u2(superIndex)
	w.u2(uint16(len(b.interfaces)))
	for _, name := range b.interfaces {
		w.u2(cp.class(name))
	}

	w.u2(uint16(len(b.fields)))
	for _, f := range b.fields {
		w.u2(uint16(f.AccessFlags))
		w.u2(cp.utf8(f.Name))
		w.u2(cp.utf8(f.Descriptor))
		w.u2(0)
	}

	w.u2(uint16(len(b.methods)))
	for _, m := range b.methods {
		attrs, err := m.attributes(cp)
		if err != nil {
			return nil, fmt.Errorf("method %s%s: %w", m.info.Name, m.info.Descriptor, err)
		}
		w.u2(uint16(m.info.AccessFlags))
		w.u2(cp.utf8(m.info.Name))
		w.u2(cp.utf8(m.info.Descriptor))
		w.u2(uint16(len(attrs)))
		for _, a := range attrs {
			w.attribute(cp, a)
		}
	}

	if len(b.annotations) > 0 {
		data, err := encodeAnnotations(cp, b.annotations)
		if err != nil {
			return nil, fmt.Errorf("class annotations: %w", err)
		}
		w.u2(1)
		w.attribute(cp, classfile.AttributeInfo{Name: attrRuntimeVisibleAnnotations, Data: data})
	} else {
		w.u2(0)
	}
	if w.err != nil {
		return nil, w.err
	}

	out := &bytes.Buffer{}
	head := &errWriter{buf: out}
	head.u4(classMagic)
	head.u2(0)
	head.u2(b.version)
	head.u2(cp.next)
	for _, e := range cp.entries {
		out.Write(e)
	}
	out.Write(body.Bytes())
	if head.err != nil {
		return nil, head.err
	}
	return out.Bytes(), nil
}

func (m *MethodBuilder) attributes(cp *poolWriter) ([]classfile.AttributeInfo, error) {
	var attrs []classfile.AttributeInfo
	if len(m.info.Exceptions) > 0 {
		data := &bytes.Buffer{}
		w := &errWriter{buf: data}
		w.u2(uint16(len(m.info.Exceptions)))
		for _, name := range m.info.Exceptions {
			w.u2(cp.class(name))
		}
		attrs = append(attrs, classfile.AttributeInfo{Name: attrExceptions, Data: data.Bytes()})
	}
	if len(m.info.Annotations) > 0 {
		data, err := encodeAnnotations(cp, m.info.Annotations)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, classfile.AttributeInfo{Name: attrRuntimeVisibleAnnotations, Data: data})
	}
	if len(m.info.ParameterAnnotations) > 0 {
		md, err := classfile.ParseMethodDescriptor(m.info.Descriptor)
		if err != nil {
			return nil, err
		}
		params := m.info.ParameterAnnotations
		for len(params) < len(md.Parameters) {
			params = append(params, nil)
		}
		data := &bytes.Buffer{}
		data.WriteByte(byte(len(params)))
		for _, annotations := range params {
			encoded, err := encodeAnnotations(cp, annotations)
			if err != nil {
				return nil, err
			}
			data.Write(encoded)
		}
		attrs = append(attrs, classfile.AttributeInfo{Name: attrRuntimeVisibleParameterAnnotations, Data: data.Bytes()})
	}
	if m.info.AnnotationDefault != nil {
		data := &bytes.Buffer{}
		if err := encodeElementValue(cp, data, m.info.AnnotationDefault); err != nil {
			return nil, err
		}
		attrs = append(attrs, classfile.AttributeInfo{Name: attrAnnotationDefault, Data: data.Bytes()})
	}
	return attrs, nil
}

func encodeAnnotations(cp *poolWriter, annotations []classfile.Annotation) ([]byte, error) {
	buf := &bytes.Buffer{}
	(&errWriter{buf: buf}).u2(uint16(len(annotations)))
	for _, a := range annotations {
		if err := encodeAnnotation(cp, buf, a); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func encodeAnnotation(cp *poolWriter, buf *bytes.Buffer, a classfile.Annotation) error {
	w := &errWriter{buf: buf}
	w.u2(cp.utf8(a.Descriptor))
	w.u2(uint16(len(a.Values)))
	// element order is not significant, sort for stable output
	names := make([]string, 0, len(a.Values))
	for name := range a.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w.u2(cp.utf8(name))
		if err := encodeElementValue(cp, buf, a.Values[name]); err != nil {
			return fmt.Errorf("element %s of %s: %w", name, a.Descriptor, err)
		}
	}
	return nil
}

func encodeElementValue(cp *poolWriter, buf *bytes.Buffer, v classfile.ElementValue) error {
	w := &errWriter{buf: buf}
	switch v := v.(type) {
	case int8:
		buf.WriteByte('B')
		w.u2(cp.integer(int32(v)))
	case uint16:
		buf.WriteByte('C')
		w.u2(cp.integer(int32(v)))
	case int16:
		buf.WriteByte('S')
		w.u2(cp.integer(int32(v)))
	case bool:
		buf.WriteByte('Z')
		var i int32
		if v {
			i = 1
		}
		w.u2(cp.integer(i))
	case int32:
		buf.WriteByte('I')
		w.u2(cp.integer(v))
	case int64:
		buf.WriteByte('J')
		w.u2(cp.long(v))
	case float32:
		buf.WriteByte('F')
		w.u2(cp.float(v))
	case float64:
		buf.WriteByte('D')
		w.u2(cp.double(v))
	case string:
		buf.WriteByte('s')
		w.u2(cp.utf8(v))
	case classfile.EnumValue:
		buf.WriteByte('e')
		w.u2(cp.utf8(v.TypeDescriptor))
		w.u2(cp.utf8(v.Name))
	case classfile.ClassValue:
		buf.WriteByte('c')
		w.u2(cp.utf8(v.Descriptor))
	case classfile.Annotation:
		buf.WriteByte('@')
		return encodeAnnotation(cp, buf, v)
	case []classfile.ElementValue:
		buf.WriteByte('[')
		w.u2(uint16(len(v)))
		for i, e := range v {
			if err := encodeElementValue(cp, buf, e); err != nil {
				return fmt.Errorf("array element %d: %w", i, err)
			}
		}
	default:
		return fmt.Errorf("unsupported element value %T", v)
	}
	return w.err
}

// poolWriter interns constant pool entries in insertion order.
type poolWriter struct {
	entries [][]byte
	next    uint16
	index   map[string]uint16
}

func newPoolWriter() *poolWriter {
	return &poolWriter{next: 1, index: make(map[string]uint16)}
}

func (p *poolWriter) add(key string, slots uint16, entry []byte) uint16 {
	if i, ok := p.index[key]; ok {
		return i
	}
	i := p.next
	p.entries = append(p.entries, entry)
	p.index[key] = i
	p.next += slots
	return i
}

func (p *poolWriter) utf8(s string) uint16 {
	entry := make([]byte, 3, 3+len(s))
	entry[0] = classfile.TagUtf8
	binary.BigEndian.PutUint16(entry[1:], uint16(len(s)))
	return p.add("u:"+s, 1, append(entry, s...))
}

func (p *poolWriter) class(name string) uint16 {
	nameIndex := p.utf8(name)
	entry := []byte{classfile.TagClass, 0, 0}
	binary.BigEndian.PutUint16(entry[1:], nameIndex)
	return p.add("c:"+name, 1, entry)
}

func (p *poolWriter) integer(v int32) uint16 {
	entry := []byte{classfile.TagInteger, 0, 0, 0, 0}
	binary.BigEndian.PutUint32(entry[1:], uint32(v))
	return p.add(fmt.Sprintf("i:%d", v), 1, entry)
}

func (p *poolWriter) float(v float32) uint16 {
	entry := []byte{classfile.TagFloat, 0, 0, 0, 0}
	binary.BigEndian.PutUint32(entry[1:], math.Float32bits(v))
	return p.add(fmt.Sprintf("f:%x", math.Float32bits(v)), 1, entry)
}

func (p *poolWriter) long(v int64) uint16 {
	entry := make([]byte, 9)
	entry[0] = classfile.TagLong
	binary.BigEndian.PutUint64(entry[1:], uint64(v))
	return p.add(fmt.Sprintf("j:%d", v), 2, entry)
}

func (p *poolWriter) double(v float64) uint16 {
	entry := make([]byte, 9)
	entry[0] = classfile.TagDouble
	binary.BigEndian.PutUint64(entry[1:], math.Float64bits(v))
	return p.add(fmt.Sprintf("d:%x", math.Float64bits(v)), 2, entry)
}

type errWriter struct {
	buf *bytes.Buffer
	err error
}

func (w *errWriter) u2(v uint16) {
	if w.err == nil {
		w.err = binary.Write(w.buf, binary.BigEndian, v)
	}
}

func (w *errWriter) u4(v uint32) {
	if w.err == nil {
		w.err = binary.Write(w.buf, binary.BigEndian, v)
	}
}

func (w *errWriter) attribute(cp *poolWriter, a classfile.AttributeInfo) {
	w.u2(cp.utf8(a.Name))
	w.u4(uint32(len(a.Data)))
	if w.err == nil {
		w.buf.Write(a.Data)
	}
}
