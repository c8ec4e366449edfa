package ifps

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// reader は []byte 上を前進するリトルエンディアンのカーソルです。
// 全ての読み込みは境界チェック付きで、末尾を越える読み込みは
// ErrTruncated を返します (パニックはしません)。
type reader struct {
	data []byte
	pos  int
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

// Tell は現在位置を返します
func (r *reader) Tell() int {
	return r.pos
}

// Seek は絶対位置に移動します
func (r *reader) Seek(pos int) error {
	if pos < 0 || pos > len(r.data) {
		return fmt.Errorf("%w: シーク先 %d (全体 %d バイト)", ErrTruncated, pos, len(r.data))
	}
	r.pos = pos
	return nil
}

// Remaining は残りバイト数を返します
func (r *reader) Remaining() int {
	return len(r.data) - r.pos
}

// EOF は末尾に達しているかを返します
func (r *reader) EOF() bool {
	return r.pos >= len(r.data)
}

// Read は n バイトを読み込んで返します。返るスライスは内部バッファを参照します。
func (r *reader) Read(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, fmt.Errorf("%w: オフセット %d で %d バイトが必要", ErrTruncated, r.pos, n)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Peek は現在位置を動かさずに n バイトを覗き見ます
func (r *reader) Peek(n int) ([]byte, error) {
	if r.pos+n > len(r.data) {
		return nil, fmt.Errorf("%w: オフセット %d で %d バイトが必要", ErrTruncated, r.pos, n)
	}
	return r.data[r.pos : r.pos+n], nil
}

// ReadIf は現在位置が prefix で始まる場合だけ読み進めます
func (r *reader) ReadIf(prefix []byte) bool {
	if r.pos+len(prefix) > len(r.data) {
		return false
	}
	if !bytes.Equal(r.data[r.pos:r.pos+len(prefix)], prefix) {
		return false
	}
	r.pos += len(prefix)
	return true
}

func (r *reader) U8() (byte, error) {
	b, err := r.Read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) U16() (uint16, error) {
	b, err := r.Read(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) U32() (uint32, error) {
	b, err := r.Read(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) U64() (uint64, error) {
	b, err := r.Read(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) I8() (int8, error) {
	v, err := r.U8()
	return int8(v), err
}

func (r *reader) I16() (int16, error) {
	v, err := r.U16()
	return int16(v), err
}

func (r *reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

func (r *reader) I64() (int64, error) {
	v, err := r.U64()
	return int64(v), err
}

func (r *reader) F32() (float32, error) {
	v, err := r.U32()
	return math.Float32frombits(v), err
}

func (r *reader) F64() (float64, error) {
	v, err := r.U64()
	return math.Float64frombits(v), err
}

// Extended は x87 の80ビット拡張倍精度浮動小数点数を読み込みます
func (r *reader) Extended() (float64, error) {
	b, err := r.Read(10)
	if err != nil {
		return 0, err
	}
	lo := binary.LittleEndian.Uint64(b[:8])  // 仮数部 (明示的な整数ビットを含む)
	hi := binary.LittleEndian.Uint16(b[8:])  // 符号1ビット + 指数15ビット
	sign := 1.0
	if hi&0x8000 != 0 {
		sign = -1.0
	}
	exp := int(hi & 0x7FFF)
	switch {
	case exp == 0:
		if lo == 0 {
			return sign * 0, nil
		}
		exp = -16382
	case exp == 0x7FFF:
		if lo == 0 {
			return sign * math.Inf(1), nil
		}
		return math.NaN(), nil
	default:
		exp -= 16383
	}
	// 仮数部は明示的な整数ビットを含む63ビット固定小数
	mantissa := float64(lo) / (1 << 63)
	return sign * math.Ldexp(mantissa, exp), nil
}

// Blob は u32 の長さプレフィックス付きバイト列を読み込みます
func (r *reader) Blob() ([]byte, error) {
	n, err := r.U32()
	if err != nil {
		return nil, err
	}
	return r.Read(int(n))
}

// Blob8 は u8 の長さプレフィックス付きバイト列を読み込みます
func (r *reader) Blob8() ([]byte, error) {
	n, err := r.U8()
	if err != nil {
		return nil, err
	}
	return r.Read(int(n))
}

// ReadTerminated は delim が現れるまで読み込みます (delim は消費して含めない)
func (r *reader) ReadTerminated(delim byte) ([]byte, error) {
	i := bytes.IndexByte(r.data[r.pos:], delim)
	if i < 0 {
		return nil, fmt.Errorf("%w: 終端 %#02x が見つかりません", ErrTruncated, delim)
	}
	b := r.data[r.pos : r.pos+i]
	r.pos += i + 1
	return b, nil
}
