package main

import (
	"fmt"
	"os"

	"github.com/shiroemons/go-darkmoon/internal/dump"
)

func main() {
	// コマンドライン引数の解析
	cfg := dump.ParseFlags()

	// バージョン表示の処理
	dump.HandleVersion(cfg.ShowVersion)

	// アプリケーションの実行
	application := dump.New(cfg)
	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "エラー: %v\n", err)
		os.Exit(1)
	}
}
