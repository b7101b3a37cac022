package schema

import "fmt"

// NativeType is a scalar storage type understood by the target backend.
// The set is closed: every switch over NativeType in this module is
// exhaustive, and ParseNativeType rejects anything outside it.
type NativeType uint8

// The supported native scalar types.
const (
	TypeInvalid NativeType = iota
	TypeInt
	TypeBigInt
	TypeSmallInt
	TypeTinyInt
	TypeBit
	TypeDecimal
	TypeNumeric
	TypeMoney
	TypeSmallMoney
	TypeFloat
	TypeReal
	TypeChar
	TypeNChar
	TypeVarChar
	TypeNVarChar
	TypeText
	TypeNText
	TypeBinary
	TypeVarBinary
	TypeImage
	TypeDate
	TypeDateTime
	TypeDateTime2
	TypeSmallDateTime
	TypeDateTimeOffset
	TypeTime
	TypeUniqueIdentifier
	TypeXML
	TypeHierarchyID
	endTypes
)

var typeNames = [...]string{
	TypeInvalid:          "invalid",
	TypeInt:              "int",
	TypeBigInt:           "bigint",
	TypeSmallInt:         "smallint",
	TypeTinyInt:          "tinyint",
	TypeBit:              "bit",
	TypeDecimal:          "decimal",
	TypeNumeric:          "numeric",
	TypeMoney:            "money",
	TypeSmallMoney:       "smallmoney",
	TypeFloat:            "float",
	TypeReal:             "real",
	TypeChar:             "char",
	TypeNChar:            "nchar",
	TypeVarChar:          "varchar",
	TypeNVarChar:         "nvarchar",
	TypeText:             "text",
	TypeNText:            "ntext",
	TypeBinary:           "binary",
	TypeVarBinary:        "varbinary",
	TypeImage:            "image",
	TypeDate:             "date",
	TypeDateTime:         "datetime",
	TypeDateTime2:        "datetime2",
	TypeSmallDateTime:    "smalldatetime",
	TypeDateTimeOffset:   "datetimeoffset",
	TypeTime:             "time",
	TypeUniqueIdentifier: "uniqueidentifier",
	TypeXML:              "xml",
	TypeHierarchyID:      "hierarchyid",
}

// String returns the backend name of the type.
func (t NativeType) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return fmt.Sprintf("NativeType(%d)", uint8(t))
}

// Valid reports whether t is one of the supported native types.
func (t NativeType) Valid() bool {
	return t > TypeInvalid && t < endTypes
}

// ParseNativeType maps a backend type name to its NativeType.
// Unrecognized names fail with ErrUnsupportedNativeType.
func ParseNativeType(name string) (NativeType, error) {
	for t := TypeInt; t < endTypes; t++ {
		if typeNames[t] == name {
			return t, nil
		}
	}
	return TypeInvalid, &NativeTypeError{Name: name}
}

// Integer reports whether t is an integer type (bit included).
func (t NativeType) Integer() bool {
	switch t {
	case TypeInt, TypeBigInt, TypeSmallInt, TypeTinyInt, TypeBit:
		return true
	}
	return false
}

// Decimal reports whether t is a fixed-point numeric type.
func (t NativeType) Decimal() bool {
	switch t {
	case TypeDecimal, TypeNumeric, TypeMoney, TypeSmallMoney:
		return true
	}
	return false
}

// Floating reports whether t is a floating-point type.
func (t NativeType) Floating() bool {
	return t == TypeFloat || t == TypeReal
}

// Textual reports whether t stores character data. The xml and
// hierarchyid types are textual on the wire as well.
func (t NativeType) Textual() bool {
	switch t {
	case TypeChar, TypeNChar, TypeVarChar, TypeNVarChar, TypeText, TypeNText, TypeXML, TypeHierarchyID:
		return true
	}
	return false
}

// Binary reports whether t stores raw bytes.
func (t NativeType) Binary() bool {
	switch t {
	case TypeBinary, TypeVarBinary, TypeImage:
		return true
	}
	return false
}

// Temporal reports whether t is a date/time type.
func (t NativeType) Temporal() bool {
	switch t {
	case TypeDate, TypeDateTime, TypeDateTime2, TypeSmallDateTime, TypeDateTimeOffset, TypeTime:
		return true
	}
	return false
}
