// Package ifps はInno Setupのコンパイル済みスクリプト (IFPS / RemObjects
// Pascal Script) の解析と逆アセンブルを提供します。
//
// セットアップから取り出したスクリプトバイナリを Parse に渡すと、
// 型テーブル・関数テーブル・グローバル変数・バイトコードを解析した
// Script が得られます。
package ifps

import (
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

const (
	// Magic はIFPSファイルの先頭4バイト
	Magic = "IFPS"

	// MinVersion / MaxVersion はサポートするファイルバージョンの範囲
	MinVersion = 12
	MaxVersion = 23

	// NoEntry はエントリポイントが無い場合の値
	NoEntry = 0xFFFFFFFF

	// headerSize はヘッダの最小バイト数
	headerSize = 28
)

// 関数エントリのタグビット
const (
	ftagExternal = 0b0001
	ftagExported = 0b0010
	ftagHasAttrs = 0b0100
)

// Script は解析済みのIFPSファイルです
type Script struct {
	Version    uint32
	Entry      uint32
	ImportSize uint32
	Types      []Type
	Functions  []*Function
	Variables  []*Variable

	// Strings は即値・属性から収集した文字列 (出現順、重複なし)
	Strings []string

	enc      encoding.Encoding
	seen     map[string]bool
	procRefs []*Value
}

// Option は Parse の動作を変更します
type Option func(*Script)

// WithEncoding はString/PChar即値のコードページを指定します。
// 既定はUTF-8です。Inno Setup 5系のANSIビルドには
// charmap.Windows1252 などを指定してください。
func WithEncoding(enc encoding.Encoding) Option {
	return func(s *Script) { s.enc = enc }
}

// EntryFunction はエントリポイントの関数を返します (無ければ nil)
func (s *Script) EntryFunction() *Function {
	if s.Entry == NoEntry || int(s.Entry) >= len(s.Functions) {
		return nil
	}
	return s.Functions[s.Entry]
}

// Parse はIFPSスクリプトのバイナリを解析します
func Parse(data []byte, opts ...Option) (*Script, error) {
	s := &Script{
		enc:  unicode.UTF8,
		seen: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := newReader(data)
	if r.Remaining() < headerSize {
		return nil, parseErr("ヘッダ", 0, fmt.Errorf("%w: %d バイトしかありません (最低 %d バイト)", ErrTruncated, r.Remaining(), headerSize))
	}
	magic, _ := r.Read(4)
	if string(magic) != Magic {
		return nil, parseErr("ヘッダ", 0, fmt.Errorf("%w: % x", ErrInvalidMagic, magic))
	}
	s.Version, _ = r.U32()
	countTypes, _ := r.U32()
	countFunctions, _ := r.U32()
	countVariables, _ := r.U32()
	s.Entry, _ = r.U32()
	s.ImportSize, _ = r.U32()
	if s.Version < MinVersion || s.Version > MaxVersion {
		return nil, parseErr("ヘッダ", 4, fmt.Errorf("%w: %d (サポート範囲 [%d,%d])", ErrUnsupportedVersion, s.Version, MinVersion, MaxVersion))
	}

	if err := s.loadTypes(r, int(countTypes)); err != nil {
		return nil, err
	}
	if err := s.loadFunctions(r, int(countFunctions)); err != nil {
		return nil, err
	}
	if err := s.loadVariables(r, int(countVariables)); err != nil {
		return nil, err
	}
	if err := s.resolveFunctionRefs(); err != nil {
		return nil, err
	}
	return s, nil
}

// loadFlags はDLLインポート宣言に遅延ロードフラグが含まれるバージョンか
func (s *Script) loadFlags() bool {
	return s.Version >= 23
}

func (s *Script) typeAt(index uint32) (Type, error) {
	if int(index) >= len(s.Types) {
		return nil, fmt.Errorf("%w: 型 %d (型テーブル %d 件)", ErrBadIndex, index, len(s.Types))
	}
	return s.Types[index], nil
}

func (s *Script) loadTypes(r *reader, count int) error {
	for k := 0; k < count; k++ {
		start := r.Tell()
		t, err := s.loadType(r, k)
		if err != nil {
			return parseErr("型テーブル", start, err)
		}
		s.Types = append(s.Types, t)
		if s.Version >= 21 {
			attrs, err := s.readAttributes(r)
			if err != nil {
				return parseErr("型属性", r.Tell(), err)
			}
			t.setAttributes(attrs)
		}
	}
	return nil
}

func (s *Script) loadType(r *reader, index int) (Type, error) {
	codeByte, err := r.U8()
	if err != nil {
		return nil, err
	}
	// 上位ビットはエクスポートフラグ
	exported := codeByte&0x80 != 0
	code := TypeCode(codeByte &^ 0x80)
	if !code.Valid() {
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnknownTypeCode, codeByte&0x7F)
	}

	var t Type
	switch code {
	case TCClass, TCExtClass:
		name, err := r.Blob()
		if err != nil {
			return nil, err
		}
		t = &ClassType{typeBase: typeBase{code: code}, ClassName: decodeLatin1(name)}
	case TCProcPtr:
		spec, err := r.Blob()
		if err != nil {
			return nil, err
		}
		if len(spec) == 0 {
			return nil, fmt.Errorf("%w: ProcPtr宣言が空です", ErrTruncated)
		}
		pp := &ProcPtrType{typeBase: typeBase{code: code}, Void: spec[0] != 0}
		for _, b := range spec[1:] {
			pp.Params = append(pp.Params, DeclParam{In: b == 0})
		}
		t = pp
	case TCInterface:
		raw, err := r.Read(16)
		if err != nil {
			return nil, err
		}
		guid, err := uuid.FromBytes(raw)
		if err != nil {
			return nil, err
		}
		t = &InterfaceType{typeBase: typeBase{code: code}, GUID: guid}
	case TCSet:
		bits, err := r.U32()
		if err != nil {
			return nil, err
		}
		t = &SetType{typeBase: typeBase{code: code}, Bits: int(bits)}
	case TCStaticArray:
		elemIdx, err := r.U32()
		if err != nil {
			return nil, err
		}
		elem, err := s.typeAt(elemIdx)
		if err != nil {
			return nil, err
		}
		size, err := r.U32()
		if err != nil {
			return nil, err
		}
		sa := &StaticArrayType{typeBase: typeBase{code: code}, Elem: elem, Size: int(size)}
		if s.Version > 22 {
			start, err := r.U32()
			if err != nil {
				return nil, err
			}
			sa.Start = int(start)
		}
		t = sa
	case TCArray:
		elemIdx, err := r.U32()
		if err != nil {
			return nil, err
		}
		elem, err := s.typeAt(elemIdx)
		if err != nil {
			return nil, err
		}
		t = &ArrayType{typeBase: typeBase{code: code}, Elem: elem}
	case TCRecord:
		length, err := r.U32()
		if err != nil {
			return nil, err
		}
		rec := &RecordType{typeBase: typeBase{code: code}}
		for i := 0; i < int(length); i++ {
			memberIdx, err := r.U32()
			if err != nil {
				return nil, err
			}
			member, err := s.typeAt(memberIdx)
			if err != nil {
				return nil, err
			}
			rec.Members = append(rec.Members, member)
		}
		rec.setSymbol(fmt.Sprintf("RECORD%d", index))
		t = rec
	default:
		t = &PrimitiveType{typeBase: typeBase{code: code, symbol: code.String()}}
	}

	if exported {
		symbol, err := r.Blob()
		if err != nil {
			return nil, err
		}
		t.setSymbol(decodeLatin1(symbol))
		if s.Version <= 21 {
			// 古いバージョンは第二の名前を持つが使われない
			if _, err := r.Blob(); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

func (s *Script) readAttributes(r *reader) ([]Attribute, error) {
	count, err := r.U32()
	if err != nil {
		return nil, err
	}
	var attrs []Attribute
	for i := 0; i < int(count); i++ {
		name, err := r.Blob()
		if err != nil {
			return nil, err
		}
		attr := Attribute{Name: decodeLatin1(name)}
		fieldCount, err := r.U32()
		if err != nil {
			return nil, err
		}
		for j := 0; j < int(fieldCount); j++ {
			value, err := s.readValue(r)
			if err != nil {
				return nil, err
			}
			attr.Fields = append(attr.Fields, value)
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

// collectString は即値・属性から取り出した文字列を出現順に記録します
func (s *Script) collectString(str string) {
	if s.seen[str] {
		return
	}
	s.seen[str] = true
	s.Strings = append(s.Strings, str)
}

// readValue は型番号付きの即値を読み込みます
func (s *Script) readValue(r *reader) (*Value, error) {
	typeIdx, err := r.U32()
	if err != nil {
		return nil, err
	}
	t, err := s.typeAt(typeIdx)
	if err != nil {
		return nil, err
	}
	v := &Value{Type: t}

	switch t.Code() {
	case TCU8:
		b, err := r.U8()
		if err != nil {
			return nil, err
		}
		v.Data = int64(b)
	case TCS8:
		b, err := r.I8()
		if err != nil {
			return nil, err
		}
		v.Data = int64(b)
	case TCU16:
		n, err := r.U16()
		if err != nil {
			return nil, err
		}
		v.Data = int64(n)
	case TCS16:
		n, err := r.I16()
		if err != nil {
			return nil, err
		}
		v.Data = int64(n)
	case TCU32:
		n, err := r.U32()
		if err != nil {
			return nil, err
		}
		v.Data = int64(n)
	case TCS32:
		n, err := r.I32()
		if err != nil {
			return nil, err
		}
		v.Data = int64(n)
	case TCS64:
		n, err := r.I64()
		if err != nil {
			return nil, err
		}
		v.Data = n
	case TCSingle:
		f, err := r.F32()
		if err != nil {
			return nil, err
		}
		v.Data = float64(f)
	case TCDouble:
		f, err := r.F64()
		if err != nil {
			return nil, err
		}
		v.Data = f
	case TCExtended:
		f, err := r.Extended()
		if err != nil {
			return nil, err
		}
		v.Data = f
	case TCCurrency:
		n, err := r.U64()
		if err != nil {
			return nil, err
		}
		v.Data = float64(n) / 10000
	case TCString, TCPChar:
		raw, err := r.Blob()
		if err != nil {
			return nil, err
		}
		str, err := decodeString(s.enc, raw)
		if err != nil {
			return nil, err
		}
		v.Data = str
		s.collectString(str)
	case TCWideString, TCUnicodeString:
		count, err := r.U32()
		if err != nil {
			return nil, err
		}
		raw, err := r.Read(int(count) * 2)
		if err != nil {
			return nil, err
		}
		str, err := decodeString(utf16le, raw)
		if err != nil {
			return nil, err
		}
		v.Data = str
		s.collectString(str)
	case TCChar:
		b, err := r.U8()
		if err != nil {
			return nil, err
		}
		str := string(rune(b))
		v.Data = str
		s.collectString(str)
	case TCWideChar:
		n, err := r.U16()
		if err != nil {
			return nil, err
		}
		str := string(rune(n))
		v.Data = str
		s.collectString(str)
	case TCProcPtr:
		n, err := r.U32()
		if err != nil {
			return nil, err
		}
		v.funcIndex = int(n)
		s.procRefs = append(s.procRefs, v)
	case TCSet:
		set, ok := t.(*SetType)
		if !ok {
			return nil, fmt.Errorf("%w: Set型コードと型の不一致", ErrBadIndex)
		}
		raw, err := r.Read(set.SizeInBytes())
		if err != nil {
			return nil, err
		}
		// リトルエンディアンのビットマスク
		le := make([]byte, len(raw))
		for i, b := range raw {
			le[len(raw)-1-i] = b
		}
		v.Data = new(big.Int).SetBytes(le)
	default:
		if size := t.Code().Width(); size > 0 {
			raw, err := r.Read(size)
			if err != nil {
				return nil, err
			}
			v.Data = append([]byte{}, raw...)
		} else {
			return nil, fmt.Errorf("型 %s の即値は読み取れません", TypeName(t))
		}
	}
	return v, nil
}

func (s *Script) loadFunctions(r *reader, count int) error {
	width := len(fmt.Sprintf("%X", count))

	type pendingBody struct {
		fn     *Function
		offset uint32
		length uint32
		void   bool
	}

	for k := 0; k < count; k++ {
		start := r.Tell()
		fn := &Function{Name: fmt.Sprintf("F%0*X", width, k)}
		tags, err := r.U8()
		if err != nil {
			return parseErr("関数テーブル", start, err)
		}
		fn.Exported = tags&ftagExported != 0

		var body *pendingBody
		if tags&ftagExternal != 0 {
			fn.External = true
			name, err := r.Blob8()
			if err != nil {
				return parseErr("関数テーブル", start, err)
			}
			fn.Name = decodeLatin1(name)
			if fn.Exported {
				decl, err := r.Blob()
				if err != nil {
					return parseErr("関数テーブル", start, err)
				}
				if fn.Decl, err = parseDeclF(decl, s.loadFlags()); err != nil {
					return parseErr("インポート宣言", start, err)
				}
			}
		} else {
			offset, err := r.U32()
			if err != nil {
				return parseErr("関数テーブル", start, err)
			}
			length, err := r.U32()
			if err != nil {
				return parseErr("関数テーブル", start, err)
			}
			void := false
			if fn.Exported {
				name, err := r.Blob()
				if err != nil {
					return parseErr("関数テーブル", start, err)
				}
				fn.Name = decodeLatin1(name)
				decl, err := r.Blob()
				if err != nil {
					return parseErr("関数テーブル", start, err)
				}
				if fn.Decl, err = parseDeclE(decl, s.Types); err != nil {
					return parseErr("エクスポート宣言", start, err)
				}
				void = fn.Decl.Void
			}
			body = &pendingBody{fn: fn, offset: offset, length: length, void: void}
		}

		if tags&ftagHasAttrs != 0 {
			attrs, err := s.readAttributes(r)
			if err != nil {
				return parseErr("関数属性", r.Tell(), err)
			}
			fn.Attributes = attrs
		}

		// バイトコードは関数エントリの読み込み後に別領域から読む
		if body != nil {
			pos := r.Tell()
			if err := r.Seek(int(body.offset)); err != nil {
				return parseErr("バイトコード", start, err)
			}
			code, err := r.Read(int(body.length))
			if err != nil {
				return parseErr("バイトコード", int(body.offset), err)
			}
			if fn.Body, err = s.parseBytecode(code, body.void); err != nil {
				return parseErr(fmt.Sprintf("関数 %s のバイトコード", fn.Name), int(body.offset), err)
			}
			if err := r.Seek(pos); err != nil {
				return parseErr("バイトコード", start, err)
			}
		}

		s.Functions = append(s.Functions, fn)
	}
	return nil
}

func (s *Script) loadVariables(r *reader, count int) error {
	for index := 0; index < count; index++ {
		start := r.Tell()
		typeIdx, err := r.U32()
		if err != nil {
			return parseErr("変数テーブル", start, err)
		}
		t, err := s.typeAt(typeIdx)
		if err != nil {
			return parseErr("変数テーブル", start, err)
		}
		v := &Variable{Index: index, Type: t}
		flags, err := r.U8()
		if err != nil {
			return parseErr("変数テーブル", start, err)
		}
		if flags&1 != 0 {
			name, err := r.Blob()
			if err != nil {
				return parseErr("変数テーブル", start, err)
			}
			v.Name = decodeLatin1(name)
			v.Exported = true
		}
		s.Variables = append(s.Variables, v)
	}
	return nil
}

// resolveFunctionRefs はCall命令とProcPtr即値の関数参照を解決します
func (s *Script) resolveFunctionRefs() error {
	for _, fn := range s.Functions {
		for _, insn := range fn.Body {
			if insn.Opcode != OpCall {
				continue
			}
			if insn.CallIndex < 0 || insn.CallIndex >= len(s.Functions) {
				return fmt.Errorf("%w: 関数 %s が呼び出す F%X (関数テーブル %d 件)",
					ErrBadIndex, fn.Name, insn.CallIndex, len(s.Functions))
			}
			insn.Callee = s.Functions[insn.CallIndex]
		}
	}
	for _, v := range s.procRefs {
		idx := v.funcIndex - 1
		if idx < 0 || idx >= len(s.Functions) {
			return fmt.Errorf("%w: ProcPtr即値の F%X (関数テーブル %d 件)",
				ErrBadIndex, idx, len(s.Functions))
		}
		v.Data = s.Functions[idx]
	}
	return nil
}

// readVariant はバイトコード中の変数参照アドレスをデコードします
func readVariant(index uint32, void bool) Variant {
	i := int64(index)
	if i < 0x40000000 {
		return Variant{Index: int(i), Kind: VariantGlobal}
	}
	i -= 0x60000000
	if i >= 0 {
		return Variant{Index: int(i), Kind: VariantLocal}
	}
	if void {
		i = -i
	} else {
		i = ^i
	}
	return Variant{Index: int(i), Kind: VariantArgument}
}

func (s *Script) readOperand(r *reader, void bool) (Operand, error) {
	kindByte, err := r.U8()
	if err != nil {
		return Operand{}, err
	}
	kind := OperandKind(kindByte)
	op := Operand{Kind: kind}

	switch kind {
	case OperandVariant:
		index, err := r.U32()
		if err != nil {
			return op, err
		}
		op.Variant = readVariant(index, void)
	case OperandValue:
		value, err := s.readValue(r)
		if err != nil {
			return op, err
		}
		op.Value = value
	case OperandIndexedByInt, OperandIndexedByVar:
		index, err := r.U32()
		if err != nil {
			return op, err
		}
		op.Variant = readVariant(index, void)
		rawIndex, err := r.U32()
		if err != nil {
			return op, err
		}
		if kind == OperandIndexedByVar {
			op.IndexVariant = readVariant(rawIndex, void)
		} else {
			op.Index = int(rawIndex)
		}
	default:
		return op, fmt.Errorf("%w: オペランド形式 %d", ErrUnknownOpcode, kindByte)
	}
	return op, nil
}

// parseBytecode は関数本体のバイトコードを命令列にデコードします。
// void は宣言が戻り値を持たないかどうかで、引数参照の解釈に影響します。
func (s *Script) parseBytecode(code []byte, void bool) ([]*Instruction, error) {
	r := newReader(code)
	// 長さ0の関数本体もnilではなく空の命令列として扱う
	body := []*Instruction{}
	byOffset := make(map[int]*Instruction)

	readArgs := func(insn *Instruction, n int) error {
		for i := 0; i < n; i++ {
			op, err := s.readOperand(r, void)
			if err != nil {
				return err
			}
			insn.Operands = append(insn.Operands, op)
		}
		return nil
	}

	for !r.EOF() {
		addr := r.Tell()
		opByte, err := r.U8()
		if err != nil {
			return nil, err
		}
		opcode := Opcode(opByte)
		insn := &Instruction{Offset: addr, Opcode: opcode, Target: -1}
		byOffset[addr] = insn

		switch opcode {
		case OpAssign, OpSetPtr, OpSetCopyPtr:
			err = readArgs(insn, 2)
		case OpCallVar, OpInc, OpDec, OpBooleanNot, OpNeg, OpIntegerNot:
			err = readArgs(insn, 1)
		case OpRet, OpNop, OpPop:
			// オペランドなし
		case OpCalculate:
			var operator byte
			if operator, err = r.U8(); err == nil {
				insn.ArithOp = ArithOp(operator)
				err = readArgs(insn, 2)
			}
		case OpPush, OpPushVar:
			err = readArgs(insn, 1)
		case OpJump, OpJumpFlag, OpJumpPop1, OpJumpPop2:
			var target int32
			if target, err = r.I32(); err == nil {
				insn.Target = r.Tell() + int(target)
			}
		case OpCall:
			var index uint32
			if index, err = r.U32(); err == nil {
				insn.CallIndex = int(index)
			}
		case OpJumpTrue, OpJumpFalse:
			var target int32
			if target, err = r.I32(); err == nil {
				if err = readArgs(insn, 1); err == nil {
					// 分岐先は条件オペランドの直後からの相対
					insn.Target = r.Tell() + int(target)
				}
			}
		case OpStackType:
			var index, typeIdx uint32
			if index, err = r.U32(); err == nil {
				insn.StackVariant = readVariant(index, void)
				if typeIdx, err = r.U32(); err == nil {
					insn.StackTypeIndex = int(typeIdx)
				}
			}
		case OpPushType:
			var typeIdx uint32
			if typeIdx, err = r.U32(); err == nil {
				insn.TypeRef, err = s.typeAt(typeIdx)
			}
		case OpCompare:
			var operator byte
			if operator, err = r.U8(); err == nil {
				insn.CompOp = CompOp(operator)
				err = readArgs(insn, 3)
			}
		case OpSetFlag:
			var negated byte
			if err = readArgs(insn, 1); err == nil {
				if negated, err = r.U8(); err == nil {
					insn.Negated = negated != 0
				}
			}
		case OpPushEH:
			var offsets [4]int32
			for k := 0; k < 4 && err == nil; k++ {
				offsets[k], err = r.I32()
			}
			if err == nil {
				for k, a := range offsets {
					if a >= 0 {
						insn.Handlers[k] = int(a) + r.Tell()
					} else {
						insn.Handlers[k] = -1
					}
				}
			}
		case OpPopEH:
			var kind byte
			if kind, err = r.U8(); err == nil {
				insn.EHKind = EHType(kind)
			}
		default:
			return nil, fmt.Errorf("%w: 0x%02X (オフセット 0x%X)", ErrUnknownOpcode, opByte, addr)
		}
		if err != nil {
			return nil, err
		}

		insn.Size = r.Tell() - addr
		body = append(body, insn)
	}

	for k, insn := range body {
		if !insn.Opcode.Branches() {
			continue
		}
		target, ok := byOffset[insn.Target]
		if !ok {
			return nil, fmt.Errorf(
				"%w: 命令 %d (オフセット 0x%X) の %s が 0x%X を指しています",
				ErrBadJumpTarget, k, insn.Offset, insn.Opcode, insn.Target)
		}
		target.JumpTarget = true
	}

	return body, nil
}
