package ifps

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

func itoa(n int) string { return strconv.Itoa(n) }

// tab は逆アセンブル表示のインデント単位
const tab = "\x20\x20"

// Type はIFPSの型テーブルのエントリです
type Type interface {
	Code() TypeCode
	// Symbol はエクスポートされた型名を返します (無ければ空文字列)
	Symbol() string
	Attributes() []Attribute
	// Display は型の構造を表す文字列を返します
	Display(indent int) string

	setSymbol(string)
	setAttributes([]Attribute)
}

// TypeName は型の表示名を返します (シンボル名、無ければ構造表示)
func TypeName(t Type) string {
	if s := t.Symbol(); s != "" {
		return s
	}
	return t.Display(0)
}

// typeBase は全ての型に共通するフィールドを持ちます
type typeBase struct {
	code   TypeCode
	symbol string
	attrs  []Attribute
}

func (t *typeBase) Code() TypeCode              { return t.code }
func (t *typeBase) Symbol() string              { return t.symbol }
func (t *typeBase) Attributes() []Attribute     { return t.attrs }
func (t *typeBase) setSymbol(s string)          { t.symbol = s }
func (t *typeBase) setAttributes(a []Attribute) { t.attrs = a }

func (t *typeBase) Display(indent int) string {
	return strings.Repeat(tab, indent) + t.code.String()
}

// PrimitiveType は数値・文字列などの単純型です
type PrimitiveType struct {
	typeBase
}

// ClassType は外部クラスへの参照型です
type ClassType struct {
	typeBase
	ClassName string
}

// ProcPtrType は関数ポインタ型です
type ProcPtrType struct {
	typeBase
	Void   bool
	Params []DeclParam
}

// Display は引数の方向を含めて表示します
func (t *ProcPtrType) Display(indent int) string {
	var sb strings.Builder
	sb.WriteString(t.typeBase.Display(indent))
	sb.WriteByte('(')
	for k, p := range t.Params {
		if k > 0 {
			sb.WriteString(", ")
		}
		arg := "Arg" + itoa(k+1)
		if !p.In {
			arg = "*" + arg
		}
		if p.Type != nil {
			arg = TypeName(p.Type) + " " + arg
		}
		sb.WriteString(arg)
	}
	sb.WriteByte(')')
	return sb.String()
}

// InterfaceType はGUIDで識別されるCOMインターフェース型です
type InterfaceType struct {
	typeBase
	GUID uuid.UUID
}

// Display はGUIDを含めて表示します
func (t *InterfaceType) Display(indent int) string {
	return t.typeBase.Display(indent) + "(" + t.GUID.String() + ")"
}

// SetType はビット集合型です
type SetType struct {
	typeBase
	Bits int
}

// SizeInBytes は集合のバイト数を返します
func (t *SetType) SizeInBytes() int {
	return (t.Bits + 7) / 8
}

// Display はビット数を含めて表示します
func (t *SetType) Display(indent int) string {
	return t.typeBase.Display(indent) + "(" + itoa(t.Bits) + ")"
}

// ArrayType は可変長配列型です
type ArrayType struct {
	typeBase
	Elem Type
}

// Display は要素型に [] を付けて表示します
func (t *ArrayType) Display(indent int) string {
	return strings.Repeat(tab, indent) + TypeName(t.Elem) + "[]"
}

// StaticArrayType は固定長配列型です
type StaticArrayType struct {
	typeBase
	Elem Type
	Size int
	// Start は最初の添字 (バージョン23以降のみ格納される)
	Start int
}

// Display は要素型にサイズを付けて表示します
func (t *StaticArrayType) Display(indent int) string {
	return strings.Repeat(tab, indent) + TypeName(t.Elem) + "[" + itoa(t.Size) + "]"
}

// RecordType はレコード(構造体)型です
type RecordType struct {
	typeBase
	Members []Type
}

// Display はメンバ数に応じて1行または複数行で表示します
func (t *RecordType) Display(indent int) string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat(tab, indent))
	sb.WriteString("struct {")
	if t.simple() {
		names := make([]string, len(t.Members))
		for k, m := range t.Members {
			names[k] = TypeName(m)
		}
		sb.WriteString(strings.Join(names, ", "))
	} else {
		for k, m := range t.Members {
			if k > 0 {
				sb.WriteByte(',')
			}
			sb.WriteByte('\n')
			sb.WriteString(m.Display(indent + 1))
		}
		if len(t.Members) > 0 {
			sb.WriteByte('\n')
			sb.WriteString(strings.Repeat(tab, indent))
		}
	}
	sb.WriteByte('}')
	return sb.String()
}

func (t *RecordType) simple() bool {
	if len(t.Members) > 10 {
		return false
	}
	for _, m := range t.Members {
		if !typeSimple(m, true) {
			return false
		}
	}
	return true
}

// typeSimple はネストを考慮して型が1行で表示できるかを判定します
func typeSimple(t Type, nested bool) bool {
	switch tt := t.(type) {
	case *RecordType:
		if nested {
			return false
		}
		return tt.simple()
	case *ArrayType:
		return typeSimple(tt.Elem, nested)
	case *StaticArrayType:
		return typeSimple(tt.Elem, nested)
	default:
		return true
	}
}
