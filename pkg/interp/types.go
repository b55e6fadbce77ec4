package interp

import "strings"

// Type is the closed enumeration of declarable types.
type Type int

const (
	TypeInvalid Type = iota
	TypeInteger
	TypeReal
	TypeString
	TypeBoolean
	TypeChar
	TypeDate
)

var typeNames = map[Type]string{
	TypeInteger: "INTEGER",
	TypeReal:    "REAL",
	TypeString:  "STRING",
	TypeBoolean: "BOOLEAN",
	TypeChar:    "CHAR",
	TypeDate:    "DATE",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "INVALID"
}

// ParseType resolves a declaration-site type name, case-insensitively.
func ParseType(name string) (Type, bool) {
	switch strings.ToUpper(name) {
	case "INTEGER":
		return TypeInteger, true
	case "REAL":
		return TypeReal, true
	case "STRING":
		return TypeString, true
	case "BOOLEAN":
		return TypeBoolean, true
	case "CHAR":
		return TypeChar, true
	case "DATE":
		return TypeDate, true
	default:
		return TypeInvalid, false
	}
}
