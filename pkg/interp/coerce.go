package interp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cielang/cie/pkg/diagnostics"
)

// CoerceInput converts one raw line of user input into a value of the
// target type. This is the only place externally supplied text becomes a
// typed value. STRING and DATE pass the text through unchanged.
func CoerceInput(typ Type, raw string) (Value, error) {
	switch typ {
	case TypeInteger:
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, coerceError(typ, raw)
		}
		return NewInt(v), nil

	case TypeReal:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, coerceError(typ, raw)
		}
		return NewReal(v), nil

	case TypeBoolean:
		switch strings.ToUpper(strings.TrimSpace(raw)) {
		case "TRUE":
			return NewBool(true), nil
		case "FALSE":
			return NewBool(false), nil
		}
		return nil, coerceError(typ, raw)

	case TypeChar:
		r := []rune(raw)
		if len(r) != 1 {
			return nil, coerceError(typ, raw)
		}
		return NewChar(r[0]), nil

	case TypeString:
		return NewStr(raw), nil

	case TypeDate:
		return NewDate(raw), nil

	default:
		return nil, coerceError(typ, raw)
	}
}

func coerceError(typ Type, raw string) error {
	return &RuntimeError{
		Code:    diagnostics.EInput,
		Message: fmt.Sprintf("cannot read %q as %s", raw, typ),
	}
}
