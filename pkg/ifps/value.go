package ifps

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Value は即値オペランドや属性フィールドの型付きの値です。
// Data には型コードに応じて int64 / uint64 / float64 / string /
// *big.Int (Set) / []byte (生データ) / *Function (ProcPtr) が入ります。
type Value struct {
	Type Type
	Data any

	// funcIndex はProcPtr値の1始まりの関数番号。関数テーブルの
	// 読み込み完了後に Data へ解決されます。
	funcIndex int
}

// String は値そのものの表現を返します
func (v Value) String() string {
	switch data := v.Data.(type) {
	case *Function:
		return "&" + data.Reference()
	case string:
		return strconv.Quote(data)
	case []byte:
		return fmt.Sprintf("%x", data)
	case *big.Int:
		return data.String()
	case nil:
		return fmt.Sprintf("&F%X", v.funcIndex-1)
	default:
		return fmt.Sprint(data)
	}
}

// Describe は型コード付きの表現を返します
func (v Value) Describe() string {
	return v.Type.Code().String() + "(" + v.String() + ")"
}

// Attribute は型や関数に付与された属性です
type Attribute struct {
	Name   string
	Fields []*Value
}

// String は属性名とフィールド値の表現を返します
func (a Attribute) String() string {
	if len(a.Fields) == 0 {
		return a.Name
	}
	fields := make([]string, len(a.Fields))
	for k, f := range a.Fields {
		fields[k] = f.Describe()
	}
	return a.Name + "[" + strings.Join(fields, ",") + "]"
}
