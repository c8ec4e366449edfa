package ifps

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncated はデータの途中で入力が尽きた場合のエラー
	ErrTruncated = errors.New("データの途中で入力が尽きました")

	// ErrInvalidMagic はマジックナンバーが一致しない場合のエラー
	ErrInvalidMagic = errors.New("IFPSのマジックナンバーが一致しません")

	// ErrUnsupportedVersion はサポート外のバージョンの場合のエラー
	ErrUnsupportedVersion = errors.New("サポートされていないIFPSバージョンです")

	// ErrUnknownTypeCode は未知の型コードの場合のエラー
	ErrUnknownTypeCode = errors.New("未知の型コードです")

	// ErrUnknownOpcode は未知のオペコードの場合のエラー
	ErrUnknownOpcode = errors.New("未知のオペコードです")

	// ErrBadIndex はテーブル参照が範囲外の場合のエラー
	ErrBadIndex = errors.New("テーブル参照が範囲外です")

	// ErrBadJumpTarget はジャンプ先が命令の境界にない場合のエラー
	ErrBadJumpTarget = errors.New("ジャンプ先が命令の境界にありません")

	// ErrStackDepth はオペランドがスタック深度を超えて参照している場合のエラー
	ErrStackDepth = errors.New("オペランドの参照がスタック深度を超えています")
)

// ParseError は解析中に発生したエラーを位置情報付きで表します
type ParseError struct {
	Op     string // 実行していた解析の段階
	Offset int    // 入力内のオフセット
	Err    error  // 元のエラー
}

// Error はエラーメッセージを返します
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s (オフセット 0x%X): %v", e.Op, e.Offset, e.Err)
}

// Unwrap は元のエラーを返します
func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseErr(op string, offset int, err error) *ParseError {
	return &ParseError{Op: op, Offset: offset, Err: err}
}
