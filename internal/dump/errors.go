package dump

import "errors"

var (
	// ErrNoInput は入力ファイルが指定されていない場合のエラー
	ErrNoInput = errors.New("入力ファイルが指定されていません")

	// ErrReadFile はファイルの読み込みに失敗した場合のエラー
	ErrReadFile = errors.New("ファイルの読み込みに失敗しました")

	// ErrParseScript はスクリプトの解析に失敗した場合のエラー
	ErrParseScript = errors.New("スクリプトの解析に失敗しました")

	// ErrSaveFile はファイルの保存に失敗した場合のエラー
	ErrSaveFile = errors.New("ファイルの保存に失敗しました")

	// ErrUnknownCodepage は未対応のコードページ名が指定された場合のエラー
	ErrUnknownCodepage = errors.New("未対応のコードページです")
)
