package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/shiroemons/go-darkmoon/internal/unit"
	"github.com/shiroemons/go-darkmoon/pkg/rle"
)

var (
	unitName   = flag.String("u", "rle", "transform unit to apply (see -l)")
	outputPath = flag.String("o", "", "output file (default: <input>.out)")
	listFlag   = flag.Bool("l", false, "list available units")
	debugFlag  = flag.Bool("d", false, "debug mode (show more info)")
	checkFlag  = flag.Bool("c", false, "self-check (decode, re-encode and compare)")
)

func main() {
	flag.Parse()

	// ユニット一覧の表示
	if *listFlag {
		fmt.Println("利用可能なユニット:")
		for _, name := range unit.Names() {
			fmt.Printf("  %s\n", name)
		}
		return
	}

	// 引数チェック
	args := flag.Args()
	if len(args) < 1 {
		fmt.Println("使用方法: darkmoon [オプション] <入力ファイル>")
		fmt.Println("オプション:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	filename := args[0]

	// デバッグモードの場合、ファイル情報を表示
	if *debugFlag {
		fileInfo, err := os.Stat(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ファイル情報の取得に失敗: %v\n", err)
		} else {
			fmt.Printf("ファイル: %s\n", filename)
			fmt.Printf("サイズ: %d バイト\n", fileInfo.Size())
			fmt.Printf("更新時間: %v\n", fileInfo.ModTime())

			// ファイルの先頭数バイトを表示
			file, err := os.Open(filename)
			if err == nil {
				defer file.Close()
				header := make([]byte, 16)
				n, err := file.Read(header)
				if err == nil && n > 0 {
					fmt.Printf("ファイルヘッダ (hex): ")
					for i := 0; i < n; i++ {
						fmt.Printf("%02x ", header[i])
					}
					fmt.Println()
				}
			}
		}
		fmt.Println()
	}

	u, ok := unit.Lookup(*unitName)
	if !ok {
		fmt.Fprintf(os.Stderr, "エラー: ユニット %q は登録されていません (利用可能: %s)\n",
			*unitName, strings.Join(unit.Names(), ", "))
		os.Exit(1)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "エラー: %v\n", err)
		os.Exit(1)
	}

	result, err := u.Process(data)
	if err != nil {
		if *debugFlag {
			fmt.Fprintf(os.Stderr, "エラー詳細:\n%v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "エラー: %v\n", err)
		}
		os.Exit(1)
	}

	// 展開結果を再圧縮・再展開して一致を確認する
	if *checkFlag && *unitName == "rle" {
		recoded, err := rle.Decode(rle.Encode(result))
		if err != nil || !bytes.Equal(recoded, result) {
			fmt.Fprintln(os.Stderr, "エラー: セルフチェックに失敗しました")
			os.Exit(1)
		}
		fmt.Println("セルフチェック: OK")
	}

	output := *outputPath
	if output == "" {
		output = filename + ".out"
	}
	if err := os.WriteFile(output, result, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "エラー: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%d バイトを %s に書き込みました\n", len(result), output)
}
