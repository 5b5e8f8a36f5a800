// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package libmpv

import "fmt"

// Format tags the representation of a value crossing the library boundary.
// The numbering follows libmpv's client.h.
type Format int

const (
	FormatNone   Format = 0
	FormatString Format = 1
	// 2 is MPV_FORMAT_OSD_STRING in libmpv, reserved here
	FormatFlag   Format = 3
	FormatInt64  Format = 4
	FormatDouble Format = 5
)

func (f Format) String() string {
	switch f {
	case FormatNone:
		return "none"
	case FormatString:
		return "string"
	case FormatFlag:
		return "flag"
	case FormatInt64:
		return "int64"
	case FormatDouble:
		return "double"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// Valid reports whether f is one of the declared tags.
func (f Format) Valid() bool {
	switch f {
	case FormatNone, FormatString, FormatFlag, FormatInt64, FormatDouble:
		return true
	}
	return false
}

// normalize checks that value matches the format and converts the few
// accepted aliases (int, float32) to the canonical Go type for the tag.
func normalize(format Format, value any) (any, error) {
	switch format {
	case FormatString:
		if s, ok := value.(string); ok {
			return s, nil
		}
	case FormatFlag:
		if b, ok := value.(bool); ok {
			return b, nil
		}
	case FormatInt64:
		switch v := value.(type) {
		case int64:
			return v, nil
		case int:
			return int64(v), nil
		}
	case FormatDouble:
		switch v := value.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		}
	default:
		return nil, ErrPropertyFormat
	}
	return nil, fmt.Errorf("%w: %T for %s", ErrFormatMismatch, value, format)
}
