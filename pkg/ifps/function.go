package ifps

import "fmt"

// Function は関数テーブルのエントリです。
// External=true の場合はインポートされた外部シンボルで Body を持ちません。
type Function struct {
	Name       string
	Decl       *DeclSpec
	Body       []*Instruction
	External   bool
	Exported   bool
	Attributes []Attribute

	blocks map[int]*BasicBlock
}

// Reference は呼び出し参照用の短い表示を返します
func (f *Function) Reference() string {
	if f.Decl == nil {
		return f.Name
	}
	return f.Decl.Represent(f.Name, true)
}

// Describe は宣言全体の表示を返します
func (f *Function) Describe() string {
	if f.Decl == nil {
		return "symbol " + f.Name
	}
	return f.Decl.Represent(f.Name, false)
}

// String は呼び出し参照用の表示を返します
func (f *Function) String() string {
	return f.Reference()
}

// Type は呼び出し種別を返します
func (f *Function) Type() CallType {
	if f.Decl == nil {
		return CallSymbol
	}
	return f.Decl.Type()
}

// Variable はグローバル変数テーブルのエントリです
type Variable struct {
	Index    int
	Type     Type
	Name     string // エクスポート名 (無ければ空)
	Exported bool
}

// String は変数の表示を返します
func (v *Variable) String() string {
	name := v.Name
	if name == "" {
		name = Variant{Index: v.Index, Kind: VariantGlobal}.String()
	}
	return name + ": " + TypeName(v.Type)
}

// BasicBlock は関数本体の基本ブロックです
type BasicBlock struct {
	Offset  int
	Body    []*Instruction
	Sources map[int]*BasicBlock
	Targets map[int]*BasicBlock

	// Stack はブロック先頭でのスタック深度 (StackKnown=false の場合は不明)
	Stack      int
	StackKnown bool
}

func newBasicBlock(offset int) *BasicBlock {
	return &BasicBlock{
		Offset:  offset,
		Sources: make(map[int]*BasicBlock),
		Targets: make(map[int]*BasicBlock),
	}
}

// BasicBlocks は関数本体を基本ブロックに分割し、各命令の
// スタック深度を解析して返します。結果はキャッシュされます。
func (f *Function) BasicBlocks() (map[int]*BasicBlock, error) {
	if f.blocks != nil {
		return f.blocks, nil
	}
	if f.Body == nil {
		f.blocks = map[int]*BasicBlock{}
		return f.blocks, nil
	}

	bbs := map[int]*BasicBlock{0: newBasicBlock(0)}
	bb := bbs[0]

	for _, insn := range f.Body {
		if next, ok := bbs[insn.Offset]; ok {
			bb = next
		} else if insn.JumpTarget {
			next = newBasicBlock(insn.Offset)
			bbs[insn.Offset] = next
			next.Sources[bb.Offset] = bb
			bb.Targets[next.Offset] = next
			bb = next
		}
		bb.Body = append(bb.Body, insn)
		if !insn.Opcode.Branches() {
			continue
		}
		targets := []int{insn.Target}
		if !insn.Opcode.Jumps() {
			targets = append(targets, insn.Offset+insn.Size)
		}
		for _, t := range targets {
			bt, ok := bbs[t]
			if !ok {
				bt = newBasicBlock(t)
				bbs[t] = bt
			}
			bb.Targets[t] = bt
			bt.Sources[bb.Offset] = bb
		}
	}

	// 命令を持たないブロックを除去
	for offset, block := range bbs {
		if len(block.Body) > 0 {
			continue
		}
		delete(bbs, offset)
		for _, source := range block.Sources {
			delete(source.Targets, offset)
		}
	}

	if err := f.traceStack(bbs); err != nil {
		return nil, err
	}
	f.blocks = bbs
	return bbs, nil
}

// traceStack はエントリから到達可能なブロックのスタック深度を伝播させ、
// ローカル変数参照が深度を超えていないか検証します
func (f *Function) traceStack(bbs map[int]*BasicBlock) error {
	visited := make(map[int]bool)
	errored := make(map[int]bool)

	var walk func(offset int, stack int, known bool)
	walk = func(offset int, stack int, known bool) {
		if errored[offset] {
			return
		}
		bb, ok := bbs[offset]
		if !ok {
			return
		}
		if bb.StackKnown && (!known || stack != bb.Stack) {
			// 複数の経路で深度が食い違うブロックは不明扱い
			known = false
		}
		if !known {
			errored[offset] = true
		} else if visited[offset] {
			return
		} else {
			visited[offset] = true
		}
		bb.Stack, bb.StackKnown = stack, known
		if known {
			for _, insn := range bb.Body {
				insn.Stack, insn.StackKnown = stack, true
				stack += insn.Opcode.StackDelta()
			}
		}
		for t := range bb.Targets {
			walk(t, stack, known)
		}
	}
	walk(0, 0, true)

	for _, insn := range f.Body {
		if !insn.StackKnown {
			continue
		}
		for k, op := range insn.Operands {
			if op.Kind == OperandValue {
				continue
			}
			if op.Variant.Kind != VariantLocal {
				continue
			}
			if op.Variant.Index <= insn.Stack {
				continue
			}
			return fmt.Errorf(
				"%w: 関数 %s のオフセット 0x%X、オペランド %d (%s) が深度 %d を超過",
				ErrStackDepth, f.Name, insn.Offset, k, op, insn.Stack)
		}
	}
	return nil
}
