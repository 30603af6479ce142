package classfile

import (
	"fmt"
	"strings"
)

// MethodDescriptor is a method descriptor split into its field descriptors.
type MethodDescriptor struct {
	Parameters []string
	Return     string
}

// ParseMethodDescriptor splits "(IJLjava/lang/String;)V" into its parameter
// and return descriptors.
func ParseMethodDescriptor(descriptor string) (MethodDescriptor, error) {
	if !strings.HasPrefix(descriptor, "(") {
		return MethodDescriptor{}, fmt.Errorf("invalid method descriptor: %s", descriptor)
	}
	end := strings.Index(descriptor, ")")
	if end == -1 {
		return MethodDescriptor{}, fmt.Errorf("invalid method descriptor: %s", descriptor)
	}

	var md MethodDescriptor
	params := descriptor[1:end]
	for i := 0; i < len(params); {
		n, err := fieldDescriptorLength(params[i:])
		if err != nil {
			return MethodDescriptor{}, fmt.Errorf("in %s: %w", descriptor, err)
		}
		md.Parameters = append(md.Parameters, params[i:i+n])
		i += n
	}

	ret := descriptor[end+1:]
	if ret != "V" {
		if err := ValidateFieldDescriptor(ret); err != nil {
			return MethodDescriptor{}, fmt.Errorf("in %s: %w", descriptor, err)
		}
	}
	md.Return = ret
	return md, nil
}

// String reassembles the descriptor.
func (md MethodDescriptor) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, p := range md.Parameters {
		b.WriteString(p)
	}
	b.WriteByte(')')
	b.WriteString(md.Return)
	return b.String()
}

// ValidateFieldDescriptor reports whether descriptor is exactly one field
// descriptor.
func ValidateFieldDescriptor(descriptor string) error {
	n, err := fieldDescriptorLength(descriptor)
	if err != nil {
		return err
	}
	if n != len(descriptor) {
		return fmt.Errorf("trailing characters in field descriptor %s", descriptor)
	}
	return nil
}

// fieldDescriptorLength returns the length of the field descriptor at the
// start of s.
func fieldDescriptorLength(s string) (int, error) {
	i := 0
	for i < len(s) && s[i] == '[' {
		i++
	}
	if i == len(s) {
		return 0, fmt.Errorf("truncated field descriptor %q", s)
	}
	switch s[i] {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return i + 1, nil
	case 'L':
		end := strings.IndexByte(s[i:], ';')
		if end <= 1 {
			return 0, fmt.Errorf("unterminated class descriptor %q", s)
		}
		return i + end + 1, nil
	default:
		return 0, fmt.Errorf("invalid type descriptor char '%c' in %q", s[i], s)
	}
}
