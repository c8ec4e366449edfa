package ifps

import "fmt"

// Opcode はIFPSバイトコードの命令コードです
type Opcode byte

const (
	OpAssign     Opcode = 0x00
	OpCalculate  Opcode = 0x01
	OpPush       Opcode = 0x02
	OpPushVar    Opcode = 0x03
	OpPop        Opcode = 0x04
	OpCall       Opcode = 0x05
	OpJump       Opcode = 0x06
	OpJumpTrue   Opcode = 0x07
	OpJumpFalse  Opcode = 0x08
	OpRet        Opcode = 0x09
	OpStackType  Opcode = 0x0A
	OpPushType   Opcode = 0x0B
	OpCompare    Opcode = 0x0C
	OpCallVar    Opcode = 0x0D
	OpSetPtr     Opcode = 0x0E
	OpBooleanNot Opcode = 0x0F
	OpNeg        Opcode = 0x10
	OpSetFlag    Opcode = 0x11
	OpJumpFlag   Opcode = 0x12
	OpPushEH     Opcode = 0x13
	OpPopEH      Opcode = 0x14
	OpIntegerNot Opcode = 0x15
	OpSetCopyPtr Opcode = 0x16
	OpInc        Opcode = 0x17
	OpDec        Opcode = 0x18
	OpJumpPop1   Opcode = 0x19
	OpJumpPop2   Opcode = 0x1A
	OpNop        Opcode = 0xFF
)

var opcodeNames = map[Opcode]string{
	OpAssign:     "Assign",
	OpCalculate:  "Calculate",
	OpPush:       "Push",
	OpPushVar:    "PushVar",
	OpPop:        "Pop",
	OpCall:       "Call",
	OpJump:       "Jump",
	OpJumpTrue:   "JumpTrue",
	OpJumpFalse:  "JumpFalse",
	OpRet:        "Ret",
	OpStackType:  "StackType",
	OpPushType:   "PushType",
	OpCompare:    "Compare",
	OpCallVar:    "CallVar",
	OpSetPtr:     "SetPtr",
	OpBooleanNot: "BooleanNot",
	OpNeg:        "Neg",
	OpSetFlag:    "SetFlag",
	OpJumpFlag:   "JumpFlag",
	OpPushEH:     "PushEH",
	OpPopEH:      "PopEH",
	OpIntegerNot: "IntegerNot",
	OpSetCopyPtr: "SetCopyPtr",
	OpInc:        "Inc",
	OpDec:        "Dec",
	OpJumpPop1:   "JumpPop1",
	OpJumpPop2:   "JumpPop2",
	OpNop:        "Nop",
}

// opcodeNameWidth は命令名の最大長 (逆アセンブル表示の桁揃え用)
var opcodeNameWidth = func() int {
	w := 0
	for _, name := range opcodeNames {
		if len(name) > w {
			w = len(name)
		}
	}
	return w
}()

// String はオペコードの名前を返します
func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Opcode(0x%02X)", byte(op))
}

// Valid は既知のオペコードかを返します
func (op Opcode) Valid() bool {
	_, ok := opcodeNames[op]
	return ok
}

// Branches は分岐命令かを返します
func (op Opcode) Branches() bool {
	switch op {
	case OpJump, OpJumpTrue, OpJumpFalse, OpJumpFlag, OpJumpPop1, OpJumpPop2:
		return true
	}
	return false
}

// Jumps は無条件分岐かを返します
func (op Opcode) Jumps() bool {
	switch op {
	case OpJump, OpJumpPop1, OpJumpPop2:
		return true
	}
	return false
}

// StackDelta は命令実行によるスタック深度の変化を返します
func (op Opcode) StackDelta() int {
	switch op {
	case OpPush, OpPushVar, OpPushType:
		return +1
	case OpPop, OpJumpPop1:
		return -1
	case OpJumpPop2:
		return -2
	default:
		return 0
	}
}

// ArithOp は Calculate 命令の算術演算子です
type ArithOp byte

const (
	ArithAdd ArithOp = 0
	ArithSub ArithOp = 1
	ArithMul ArithOp = 2
	ArithDiv ArithOp = 3
	ArithMod ArithOp = 4
	ArithShl ArithOp = 5
	ArithShr ArithOp = 6
	ArithAnd ArithOp = 7
	ArithBOr ArithOp = 8
	ArithXor ArithOp = 9
)

// String は複合代入演算子として表示します
func (a ArithOp) String() string {
	glyphs := []string{"+", "-", "*", "/", "%", "<<", ">>", "&", "|", "^"}
	if int(a) < len(glyphs) {
		return glyphs[a] + "="
	}
	return fmt.Sprintf("ArithOp(%d)=", byte(a))
}

// CompOp は Compare 命令の比較演算子です
type CompOp byte

const (
	CompGE CompOp = 0
	CompLE CompOp = 1
	CompGT CompOp = 2
	CompLT CompOp = 3
	CompNE CompOp = 4
	CompEQ CompOp = 5
	CompIn CompOp = 6
	CompIs CompOp = 7
)

// String は比較演算子として表示します
func (c CompOp) String() string {
	glyphs := []string{">=", "<=", ">", "<", "!=", "==", "in", "is"}
	if int(c) < len(glyphs) {
		return glyphs[c]
	}
	return fmt.Sprintf("CompOp(%d)", byte(c))
}

// EHType は例外ハンドラブロックの種別です
type EHType byte

const (
	EHTry           EHType = 0
	EHFinally       EHType = 1
	EHCatch         EHType = 2
	EHSecondFinally EHType = 3
)

// String は種別名を返します
func (e EHType) String() string {
	names := []string{"Try", "Finally", "Catch", "SecondFinally"}
	if int(e) < len(names) {
		return names[e]
	}
	return fmt.Sprintf("EHType(%d)", byte(e))
}

// ehHandlerNames は PushEH の4つのハンドラオフセットの表示名
var ehHandlerNames = [4]string{"Finally", "CatchAt", "SecondFinally", "End"}
