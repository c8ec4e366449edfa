// Package dump はifpsdumpコマンドのメインロジックを実装します
package dump

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const Version = "0.1.0"

// Config はアプリケーションの設定を保持します
type Config struct {
	ScriptPath  string
	Codepage    string
	StringsOnly bool
	TablesOnly  bool
	OutputPath  string
	DebugMode   bool
	ShowVersion bool
}

// ParseFlags はコマンドライン引数を解析して設定を返します
func ParseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.Codepage, "c", "utf-8", "string immediates codepage (utf-8, latin1, windows-1252, utf-16)")
	flag.BoolVar(&config.StringsOnly, "s", false, "print only the collected string table")
	flag.BoolVar(&config.TablesOnly, "t", false, "print only the type/function/variable tables")
	flag.StringVar(&config.OutputPath, "o", "", "write output to file instead of stdout")
	flag.BoolVar(&config.DebugMode, "d", false, "enable debug output")
	flag.BoolVar(&config.ShowVersion, "version", false, "show version information")
	flag.BoolVar(&config.ShowVersion, "v", false, "show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "使用方法: %s [オプション] <IFPSスクリプトファイル>\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "オプション:")
		flag.PrintDefaults()
	}

	flag.Parse()
	config.ScriptPath = flag.Arg(0)

	return config
}

// HandleVersion はバージョン表示を処理します
func HandleVersion(showVersion bool) {
	if showVersion {
		fmt.Printf("ifpsdump version %s\n", Version)
		os.Exit(0)
	}
}

// Encoding は設定されたコードページ名をエンコーディングに解決します
func (c *Config) Encoding() (encoding.Encoding, error) {
	switch c.Codepage {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "utf-16", "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCodepage, c.Codepage)
}

// DebugLogger はデバッグ出力を管理します
type DebugLogger struct {
	enabled bool
}

// NewDebugLogger は新しいDebugLoggerを作成します
func NewDebugLogger(enabled bool) *DebugLogger {
	return &DebugLogger{enabled: enabled}
}

// Printf はデバッグモードが有効な場合のみメッセージを表示します
func (d *DebugLogger) Printf(format string, a ...any) {
	if d.enabled {
		fmt.Fprintf(os.Stderr, format, a...)
	}
}
