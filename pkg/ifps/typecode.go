package ifps

import "fmt"

// TypeCode はIFPSの型テーブルに現れる型コードです
type TypeCode byte

const (
	TCReturnAddress       TypeCode = 0x00
	TCU8                  TypeCode = 0x01
	TCS8                  TypeCode = 0x02
	TCU16                 TypeCode = 0x03
	TCS16                 TypeCode = 0x04
	TCU32                 TypeCode = 0x05
	TCS32                 TypeCode = 0x06
	TCSingle              TypeCode = 0x07
	TCDouble              TypeCode = 0x08
	TCExtended            TypeCode = 0x09
	TCString              TypeCode = 0x0A
	TCRecord              TypeCode = 0x0B
	TCArray               TypeCode = 0x0C
	TCPointer             TypeCode = 0x0D
	TCPChar               TypeCode = 0x0E
	TCResourcePointer     TypeCode = 0x0F
	TCVariant             TypeCode = 0x10
	TCS64                 TypeCode = 0x11
	TCChar                TypeCode = 0x12
	TCWideString          TypeCode = 0x13
	TCWideChar            TypeCode = 0x14
	TCProcPtr             TypeCode = 0x15
	TCStaticArray         TypeCode = 0x16
	TCSet                 TypeCode = 0x17
	TCCurrency            TypeCode = 0x18
	TCClass               TypeCode = 0x19
	TCInterface           TypeCode = 0x1A
	TCNotificationVariant TypeCode = 0x1B
	TCUnicodeString       TypeCode = 0x1C
	TCEnum                TypeCode = 0x81
	TCType                TypeCode = 0x82
	TCExtClass            TypeCode = 0x83
)

var typeCodeNames = map[TypeCode]string{
	TCReturnAddress:       "ReturnAddress",
	TCU8:                  "U08",
	TCS8:                  "S08",
	TCU16:                 "U16",
	TCS16:                 "S16",
	TCU32:                 "U32",
	TCS32:                 "S32",
	TCSingle:              "Single",
	TCDouble:              "Double",
	TCExtended:            "Extended",
	TCString:              "String",
	TCRecord:              "Record",
	TCArray:               "Array",
	TCPointer:             "Pointer",
	TCPChar:               "PChar",
	TCResourcePointer:     "ResourcePointer",
	TCVariant:             "Variant",
	TCS64:                 "S64",
	TCChar:                "Char",
	TCWideString:          "WideString",
	TCWideChar:            "WideChar",
	TCProcPtr:             "ProcPtr",
	TCStaticArray:         "StaticArray",
	TCSet:                 "Set",
	TCCurrency:            "Currency",
	TCClass:               "Class",
	TCInterface:           "Interface",
	TCNotificationVariant: "NotificationVariant",
	TCUnicodeString:       "UnicodeString",
	TCEnum:                "Enum",
	TCType:                "Type",
	TCExtClass:            "ExtClass",
}

// String は型コードの名前を返します
func (tc TypeCode) String() string {
	if name, ok := typeCodeNames[tc]; ok {
		return name
	}
	return fmt.Sprintf("TypeCode(0x%02X)", byte(tc))
}

// Valid は既知の型コードかを返します
func (tc TypeCode) Valid() bool {
	_, ok := typeCodeNames[tc]
	return ok
}

// Width は即値としてエンコードされた場合のバイト幅を返します (可変長は 0)
func (tc TypeCode) Width() int {
	switch tc {
	case TCVariant:
		return 0x10
	case TCChar, TCS8, TCU8:
		return 1
	case TCWideChar, TCS16, TCU16:
		return 2
	case TCWideString, TCUnicodeString, TCInterface, TCClass,
		TCPChar, TCString, TCSingle, TCS32, TCU32:
		return 4
	case TCProcPtr, TCPointer:
		return 0x0C
	case TCCurrency, TCDouble, TCS64:
		return 8
	case TCExtended:
		return 0x0A
	case TCReturnAddress:
		return 0x1C
	default:
		return 0
	}
}
