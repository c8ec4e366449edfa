package ifps

import (
	"fmt"
	"strings"
)

// VariantKind は変数参照の格納場所です
type VariantKind string

const (
	VariantGlobal   VariantKind = "GlobalVar"
	VariantLocal    VariantKind = "LocalVar"
	VariantArgument VariantKind = "Argument"
)

// Variant はバイトコード中の変数参照です
type Variant struct {
	Index int
	Kind  VariantKind
}

// String は変数参照の表示名を返します
func (v Variant) String() string {
	if v.Index == 0 && v.Kind == VariantArgument {
		return "ReturnValue"
	}
	return fmt.Sprintf("%s%d", string(v.Kind), v.Index)
}

// OperandKind はオペランドの形式です
type OperandKind byte

const (
	OperandVariant      OperandKind = 0
	OperandValue        OperandKind = 1
	OperandIndexedByInt OperandKind = 2
	OperandIndexedByVar OperandKind = 3
)

// Operand はバイトコード命令のオペランドです
type Operand struct {
	Kind         OperandKind
	Variant      Variant // Variant / IndexedBy* 形式
	Value        *Value  // Value 形式
	Index        int     // IndexedByInt 形式
	IndexVariant Variant // IndexedByVar 形式
}

// String はオペランドの表示を返します
func (o Operand) String() string {
	switch o.Kind {
	case OperandValue:
		return o.Value.String()
	case OperandVariant:
		return o.Variant.String()
	case OperandIndexedByInt:
		return fmt.Sprintf("%s[0x%02X]", o.Variant, o.Index)
	case OperandIndexedByVar:
		return fmt.Sprintf("%s[%s]", o.Variant, o.IndexVariant)
	}
	return fmt.Sprintf("Operand(%d)", byte(o.Kind))
}

// Instruction はデコード済みのバイトコード命令1つです
type Instruction struct {
	Offset int
	Opcode Opcode
	Size   int

	// Operands は変数参照・即値のオペランド列
	Operands []Operand
	// Target は分岐命令の絶対オフセット
	Target int
	// Callee は Call 命令の呼び出し先 (関数テーブル読み込み後に解決)
	Callee    *Function
	CallIndex int
	// TypeRef は PushType 命令の型
	TypeRef Type
	// StackVariant / StackTypeIndex は StackType 命令の引数
	StackVariant   Variant
	StackTypeIndex int
	// ArithOp / CompOp はそれぞれ Calculate / Compare 命令の演算子
	ArithOp ArithOp
	CompOp  CompOp
	// Negated は SetFlag 命令のフラグ反転指定
	Negated bool
	// Handlers は PushEH 命令の4つのハンドラの絶対オフセット (-1: なし)
	Handlers [4]int
	// EHKind は PopEH 命令が閉じるブロックの種別
	EHKind EHType

	// JumpTarget は他の命令の分岐先になっているか
	JumpTarget bool
	// Stack は命令実行前のスタック深度 (StackKnown=false の場合は不明)
	Stack      int
	StackKnown bool
}

// operandRep はオペコードごとのオペランド表示を組み立てます
func (i *Instruction) operandRep(labels map[int]string) string {
	ops := make([]string, len(i.Operands))
	for k, op := range i.Operands {
		ops[k] = op.String()
	}

	switch {
	case i.Opcode.Branches():
		label := ""
		if labels != nil {
			label = labels[i.Target]
		}
		if label == "" {
			label = fmt.Sprintf("0x%X", i.Target)
		}
		return strings.Join(append([]string{label}, ops...), ", ")
	case i.Opcode == OpPushEH:
		parts := []string{}
		for k := 3; k >= 0; k-- {
			if i.Handlers[k] < 0 {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s:0x%X", ehHandlerNames[k], i.Handlers[k]))
		}
		return strings.Join(parts, "\x20")
	case i.Opcode == OpPopEH:
		return "End" + i.EHKind.String()
	case i.Opcode == OpSetFlag:
		if i.Negated {
			return "!" + ops[0]
		}
		return ops[0]
	case i.Opcode == OpCompare:
		return fmt.Sprintf("%s := %s %s %s", ops[0], ops[1], i.CompOp, ops[2])
	case i.Opcode == OpCalculate:
		return fmt.Sprintf("%s %s %s", ops[0], i.ArithOp, ops[1])
	case i.Opcode == OpAssign || i.Opcode == OpSetPtr:
		return fmt.Sprintf("%s := %s", ops[0], ops[1])
	case i.Opcode == OpCall:
		if i.Callee != nil {
			return i.Callee.Reference()
		}
		return fmt.Sprintf("F%X", i.CallIndex)
	case i.Opcode == OpPushType:
		return TypeName(i.TypeRef)
	case i.Opcode == OpStackType:
		return fmt.Sprintf("%s, %d", i.StackVariant, i.StackTypeIndex)
	default:
		return strings.Join(ops, ", ")
	}
}

// Pretty は桁揃えした逆アセンブル行を返します
func (i *Instruction) Pretty(labels map[int]string) string {
	return strings.TrimRight(
		fmt.Sprintf("%-*s%s%s", opcodeNameWidth, i.Opcode, tab, i.operandRep(labels)), "\x20")
}

// String は逆アセンブル行を返します
func (i *Instruction) String() string {
	return i.Pretty(nil)
}
