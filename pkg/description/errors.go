package description

import "errors"

var (
	// ErrIllegalArgument is returned for out of range arguments such as an
	// unknown parameter index.
	ErrIllegalArgument = errors.New("illegal argument")
	// ErrClassCast is returned when a value cannot be converted to the
	// requested type.
	ErrClassCast = errors.New("class cast")
)
