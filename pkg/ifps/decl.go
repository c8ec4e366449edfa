package ifps

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// CallType は呼び出し対象の種別です
type CallType string

const (
	CallSymbol   CallType = "Symbol"
	CallSub      CallType = "Sub"
	CallFunction CallType = "Function"
)

// DeclParam は引数1つの宣言です (In=false は参照渡しの出力引数)
type DeclParam struct {
	In   bool
	Type Type
}

// DeclSpec はエクスポートされた関数の宣言情報です
type DeclSpec struct {
	Void              bool
	Params            []DeclParam
	Name              string
	CallConv          string
	ReturnType        Type
	Module            string
	ClassName         string
	DelayLoad         bool
	AlteredSearchPath bool
	IsProperty        bool
	VTableIndex       int // -1: なし
}

// Type は戻り値の有無による呼び出し種別を返します
func (d *DeclSpec) Type() CallType {
	if d.Void {
		return CallSub
	}
	return CallFunction
}

// callingConvention はインポート宣言内の呼び出し規約バイトを解釈します
func callingConvention(b byte) string {
	switch b {
	case 0:
		return "register"
	case 1:
		return "pascal"
	case 2:
		return "cdecl"
	case 3:
		return "stdcall"
	default:
		return ""
	}
}

// parseDeclF は外部関数のインポート宣言を解析します。
// 宣言は "dll:"、"class:"、"intf:." のいずれかで始まるか、
// 引数の方向フラグのみからなります。
func parseDeclF(data []byte, loadFlags bool) (*DeclSpec, error) {
	r := newReader(data)
	d := &DeclSpec{Void: true, VTableIndex: -1}

	readBool := func() (bool, error) {
		b, err := r.U8()
		return b != 0, err
	}

	readCC := func() error {
		b, err := r.U8()
		if err != nil {
			return err
		}
		d.CallConv = callingConvention(b)
		return nil
	}

	readParams := func() error {
		hasResult, err := readBool()
		if err != nil {
			return err
		}
		d.Void = !hasResult
		rest, err := r.Read(r.Remaining())
		if err != nil {
			return err
		}
		for _, b := range rest {
			d.Params = append(d.Params, DeclParam{In: b == 0})
		}
		return nil
	}

	asciiz := func() (string, error) {
		b, err := r.ReadTerminated(0)
		if err != nil {
			return "", err
		}
		return decodeLatin1(b), nil
	}

	switch {
	case r.ReadIf([]byte("dll:")):
		r.ReadIf([]byte("files:"))
		module, err := asciiz()
		if err != nil {
			return nil, err
		}
		if strings.HasSuffix(strings.ToLower(module), ".dll") {
			module = module[:len(module)-4]
		}
		d.Module = module
		if d.Name, err = asciiz(); err != nil {
			return nil, err
		}
		if err := readCC(); err != nil {
			return nil, err
		}
		if loadFlags {
			if d.DelayLoad, err = readBool(); err != nil {
				return nil, err
			}
			if d.AlteredSearchPath, err = readBool(); err != nil {
				return nil, err
			}
		}
		if err := readParams(); err != nil {
			return nil, err
		}

	case r.ReadIf([]byte("class:")):
		if r.Remaining() == 1 {
			// 型キャストとnil代入の疑似メソッド
			spec, err := r.Peek(1)
			if err != nil {
				return nil, err
			}
			d.Void = false
			d.Params = append(d.Params, DeclParam{In: false})
			switch spec[0] {
			case '+':
				d.Name = "CastToType"
			case '-':
				d.Name = "SetNil"
			}
			d.ClassName = "Class"
			d.CallConv = "pascal"
		} else {
			cls, err := r.ReadTerminated('|')
			if err != nil {
				return nil, err
			}
			d.ClassName = decodeLatin1(cls)
			name, err := r.ReadTerminated('|')
			if err != nil {
				return nil, err
			}
			d.Name = decodeLatin1(name)
			if strings.HasSuffix(d.Name, "@") {
				d.IsProperty = true
				d.Name = d.Name[:len(d.Name)-1]
			}
			if err := readCC(); err != nil {
				return nil, err
			}
			if err := readParams(); err != nil {
				return nil, err
			}
		}

	case r.ReadIf([]byte("intf:.")):
		d.Name = "CoInterface"
		idx, err := r.U32()
		if err != nil {
			return nil, err
		}
		d.VTableIndex = int(idx)
		if err := readCC(); err != nil {
			return nil, err
		}
		if err := readParams(); err != nil {
			return nil, err
		}

	default:
		if err := readParams(); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// parseDeclE はスクリプト内関数のエクスポート宣言を解析します。
// 形式はスペース区切りで、先頭が戻り値の型番号 (負数はなし)、
// 続いて各引数の方向と型番号です。
func parseDeclE(data []byte, types []Type) (*DeclSpec, error) {
	d := &DeclSpec{Void: true, VTableIndex: -1}
	fields := bytes.Split(data, []byte{0x20})

	if rt, err := strconv.Atoi(string(fields[0])); err == nil {
		d.Void = rt < 0
		if !d.Void {
			if rt >= len(types) {
				return nil, fmt.Errorf("%w: 戻り値の型 %d (型テーブル %d 件)", ErrBadIndex, rt, len(types))
			}
			d.ReturnType = types[rt]
		}
	}

	for _, param := range fields[1:] {
		p := DeclParam{In: len(param) > 0 && param[0] == '@'}
		if len(param) > 1 {
			if i, err := strconv.Atoi(string(param[1:])); err == nil {
				if i < 0 || i >= len(types) {
					return nil, fmt.Errorf("%w: 引数の型 %d (型テーブル %d 件)", ErrBadIndex, i, len(types))
				}
				p.Type = types[i]
			}
		}
		d.Params = append(d.Params, p)
	}

	return d, nil
}

// Represent は宣言を文字列として表現します。
// ref=true の場合は呼び出し参照用の短い形式になります。
func (d *DeclSpec) Represent(name string, ref bool) string {
	if d.Name != "" && strings.Contains(d.Name, name) {
		name = d.Name
	}
	spec := name
	if d.VTableIndex >= 0 {
		spec = fmt.Sprintf("%s[%d]", d.Name, d.VTableIndex)
	}
	if d.ClassName != "" {
		spec = d.ClassName + "." + spec
	}
	if d.Module != "" {
		spec = d.Module + "::" + spec
	}
	if ref {
		return spec
	}
	if d.DelayLoad {
		spec = "__delay_load " + spec
	}
	if d.CallConv != "" {
		spec = "__" + d.CallConv + " " + spec
	}
	spec = string(d.Type()) + " " + spec
	args := make([]string, len(d.Params))
	for k, p := range d.Params {
		arg := fmt.Sprintf("%s%d", VariantArgument, k+1)
		if p.Type != nil {
			arg = arg + ": " + TypeName(p.Type)
		}
		if !p.In {
			arg = "*" + arg
		}
		args[k] = arg
	}
	spec = spec + "(" + strings.Join(args, ", ") + ")"
	if d.ReturnType != nil {
		spec = spec + " -> " + d.ReturnType.Code().String()
	}
	return spec
}
