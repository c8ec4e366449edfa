package ifps

import (
	"fmt"
	"strings"
)

// Disassembly はスクリプト全体の逆アセンブルテキストを返します。
// 外部クラス・型定義・グローバル変数・外部関数の一覧に続けて、
// 各関数の本体をオフセットとスタック深度付きで出力します。
func (s *Script) Disassembly() (string, error) {
	// スタック深度の注釈を先に計算しておく
	for _, fn := range s.Functions {
		if _, err := fn.BasicBlocks(); err != nil {
			return "", err
		}
	}

	maxOffset := 0
	maxStack := 0
	for _, fn := range s.Functions {
		for _, insn := range fn.Body {
			if insn.Offset > maxOffset {
				maxOffset = insn.Offset
			}
			if insn.StackKnown && insn.Stack > maxStack {
				maxStack = insn.Stack
			}
		}
	}
	if len(s.Types) > maxOffset {
		maxOffset = len(s.Types)
	}
	if len(s.Variables) > maxOffset {
		maxOffset = len(s.Variables)
	}
	offsetWidth := len(fmt.Sprintf("%X", maxOffset))
	stackWidth := len(fmt.Sprintf("%d", maxStack))

	var sb strings.Builder

	if len(s.Types) > 0 {
		breakline := false
		for _, t := range s.Types {
			if cls, ok := t.(*ClassType); ok {
				fmt.Fprintf(&sb, "external Class %s\n", cls.ClassName)
				breakline = true
			}
		}
		if breakline {
			sb.WriteByte('\n')
		}
		for _, t := range s.Types {
			if _, ok := t.(*ClassType); ok {
				continue
			}
			// 名前の付いていない組み込み型は出力しない
			if t.Code() != TCRecord && (t.Symbol() == "" || t.Symbol() == t.Code().String()) {
				continue
			}
			fmt.Fprintf(&sb, "typedef %s = %s\n", t.Symbol(), t.Display(0))
		}
		sb.WriteByte('\n')
	}

	if len(s.Variables) > 0 {
		for _, v := range s.Variables {
			fmt.Fprintf(&sb, "global %s\n", v)
		}
		sb.WriteByte('\n')
	}

	if len(s.Functions) > 0 {
		for _, fn := range s.Functions {
			if fn.Body == nil {
				fmt.Fprintf(&sb, "external %s\n", fn.Describe())
			}
		}
		sb.WriteByte('\n')

		for _, fn := range s.Functions {
			if fn.Body == nil {
				continue
			}
			fmt.Fprintf(&sb, "Begin %s\n", fn.Describe())

			var labelOffsets []int
			for _, insn := range fn.Body {
				if insn.JumpTarget {
					labelOffsets = append(labelOffsets, insn.Offset)
				}
			}
			labelWidth := len(fmt.Sprintf("%d", len(labelOffsets)))
			if labelWidth < 2 {
				labelWidth = 2
			}
			labels := make(map[int]string, len(labelOffsets))
			for k, offset := range labelOffsets {
				labels[offset] = fmt.Sprintf("JumpDestination%0*d", labelWidth, k+1)
			}

			for _, insn := range fn.Body {
				stack := strings.Repeat("?", stackWidth)
				if insn.StackKnown {
					stack = fmt.Sprintf("%*d", stackWidth, insn.Stack)
				}
				if insn.JumpTarget {
					sb.WriteString(labels[insn.Offset] + ":\n")
				}
				fmt.Fprintf(&sb, "%s0x%0*X%s%s%s%s\n",
					tab, offsetWidth, insn.Offset, tab, stack, tab, insn.Pretty(labels))
			}
			fmt.Fprintf(&sb, "End %s\n\n", fn.Type())
		}
	}

	return strings.TrimSpace(sb.String()), nil
}
