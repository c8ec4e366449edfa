// Package rle はドロッパーから発見されたカスタムRLE圧縮方式のデコーダを提供します。
//
// 制御バイトの最上位ビットでリテラルラン/リピートランを切り替える2オペコード方式です:
//   - 制御バイト C >= 0x80: リテラルラン。続く 0x100-C バイト (1〜128) をそのままコピー
//   - 制御バイト C <= 0x7F: リピートラン。続く1バイトを C 回 (0〜127) 繰り返す
package rle

import (
	"errors"
	"fmt"
	"io"
)

// ErrTruncatedInput はオペコードの途中で入力が尽きた場合のエラー
var ErrTruncatedInput = errors.New("オペコードの途中で入力データが尽きました")

// Decode はRLE圧縮されたデータを展開します。
// 入力は一切変更されず、展開結果を新しいスライスとして返します。
// 入力がオペコードの途中で終わっている場合は ErrTruncatedInput を返し、
// その場合の出力は nil です (部分的な結果は返しません)。
func Decode(src []byte) ([]byte, error) {
	// 展開率は不明だが、入力長以上にはなるのが普通
	dst := make([]byte, 0, len(src))

	for cur := 0; cur < len(src); {
		ctrl := src[cur]
		cur++

		if ctrl >= 0x80 {
			// リテラルラン: 0x100 - ctrl バイトをそのままコピー (1〜128)
			n := 0x100 - int(ctrl)
			if cur+n > len(src) {
				return nil, fmt.Errorf("%w: オフセット %d でリテラル %d バイトが必要", ErrTruncatedInput, cur, n)
			}
			dst = append(dst, src[cur:cur+n]...)
			cur += n
		} else {
			// リピートラン: 次の1バイトを ctrl 回繰り返す
			// カウント0も有効で、繰り返し対象のバイトは必ず消費する
			if cur >= len(src) {
				return nil, fmt.Errorf("%w: オフセット %d で繰り返しバイトが必要", ErrTruncatedInput, cur)
			}
			b := src[cur]
			cur++
			for i := 0; i < int(ctrl); i++ {
				dst = append(dst, b)
			}
		}
	}

	return dst, nil
}

// UnRLE はRLE圧縮されたデータをストリームとして展開します。
// in の EOF までがちょうどオペコードの境界であれば正常終了です。
// エラー時には展開済みの先頭部分が out に書き込まれていることがありますが、
// その内容は診断用であり信頼できません。
func UnRLE(in io.Reader, out io.Writer) error {
	ctrl := make([]byte, 1)
	buf := make([]byte, 128) // リテラルランの最大長

	for {
		if _, err := io.ReadFull(in, ctrl); err != nil {
			if err == io.EOF {
				return nil // オペコード境界でのEOFは正常終了
			}
			return err
		}

		if ctrl[0] >= 0x80 {
			n := 0x100 - int(ctrl[0])
			if _, err := io.ReadFull(in, buf[:n]); err != nil {
				if err == io.EOF || err == io.ErrUnexpectedEOF {
					return fmt.Errorf("%w: リテラル %d バイトが必要", ErrTruncatedInput, n)
				}
				return err
			}
			if _, err := out.Write(buf[:n]); err != nil {
				return err
			}
		} else {
			if _, err := io.ReadFull(in, buf[:1]); err != nil {
				if err == io.EOF || err == io.ErrUnexpectedEOF {
					return fmt.Errorf("%w: 繰り返しバイトが必要", ErrTruncatedInput)
				}
				return err
			}
			for i := 0; i < int(ctrl[0]); i++ {
				if _, err := out.Write(buf[:1]); err != nil {
					return err
				}
			}
		}
	}
}
