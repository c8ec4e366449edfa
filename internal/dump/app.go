package dump

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/shiroemons/go-darkmoon/pkg/ifps"
)

// App はアプリケーションのメインロジックを管理します
type App struct {
	config *Config
	logger *DebugLogger
}

// New は新しいAppを作成します
func New(cfg *Config) *App {
	return &App{
		config: cfg,
		logger: NewDebugLogger(cfg.DebugMode),
	}
}

// Run はアプリケーションを実行します
func (a *App) Run() error {
	if a.config.ScriptPath == "" {
		return ErrNoInput
	}

	data, err := os.ReadFile(a.config.ScriptPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadFile, err)
	}
	a.logger.Printf("ファイル: %s (%d バイト)\n", a.config.ScriptPath, len(data))

	enc, err := a.config.Encoding()
	if err != nil {
		return err
	}

	script, err := ifps.Parse(data, ifps.WithEncoding(enc))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrParseScript, err)
	}

	output, err := a.Render(script)
	if err != nil {
		return err
	}

	if a.config.OutputPath != "" {
		if err := os.WriteFile(a.config.OutputPath, []byte(output), 0o644); err != nil {
			return fmt.Errorf("%w: %w", ErrSaveFile, err)
		}
		a.logger.Printf("出力を %s に保存しました\n", a.config.OutputPath)
		return nil
	}

	fmt.Print(output)
	return nil
}

// Render は解析済みスクリプトの表示テキストを生成します
func (a *App) Render(script *ifps.Script) (string, error) {
	var sb strings.Builder

	if a.config.StringsOnly {
		for _, s := range script.Strings {
			sb.WriteString(s)
			sb.WriteByte('\n')
		}
		return sb.String(), nil
	}

	a.renderHeader(&sb, script)
	a.renderTables(&sb, script)

	if !a.config.TablesOnly {
		text, err := script.Disassembly()
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrParseScript, err)
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}

	return sb.String(), nil
}

func (a *App) renderHeader(sb *strings.Builder, script *ifps.Script) {
	fmt.Fprintf(sb, "IFPS バージョン: %d\n", script.Version)
	if entry := script.EntryFunction(); entry != nil {
		fmt.Fprintf(sb, "エントリポイント: %s\n", entry.Reference())
	} else {
		fmt.Fprintln(sb, "エントリポイント: なし")
	}
	fmt.Fprintf(sb, "型: %d  関数: %d  変数: %d\n\n",
		len(script.Types), len(script.Functions), len(script.Variables))
}

func (a *App) renderTables(sb *strings.Builder, script *ifps.Script) {
	if len(script.Types) > 0 {
		table := tablewriter.NewWriter(sb)
		table.SetHeader([]string{"#", "コード", "型"})
		for k, t := range script.Types {
			table.Append([]string{
				fmt.Sprintf("%d", k),
				t.Code().String(),
				ifps.TypeName(t),
			})
		}
		table.Render()
		sb.WriteByte('\n')
	}

	if len(script.Functions) > 0 {
		table := tablewriter.NewWriter(sb)
		table.SetHeader([]string{"#", "名前", "種別", "宣言"})
		for k, fn := range script.Functions {
			kind := "internal"
			if fn.External {
				kind = "external"
			}
			if fn.Exported {
				kind += " exported"
			}
			table.Append([]string{
				fmt.Sprintf("%d", k),
				fn.Name,
				kind,
				fn.Describe(),
			})
		}
		table.Render()
		sb.WriteByte('\n')
	}

	if len(script.Variables) > 0 {
		table := tablewriter.NewWriter(sb)
		table.SetHeader([]string{"#", "変数"})
		for k, v := range script.Variables {
			table.Append([]string{fmt.Sprintf("%d", k), v.String()})
		}
		table.Render()
		sb.WriteByte('\n')
	}

	if len(script.Strings) > 0 {
		table := tablewriter.NewWriter(sb)
		table.SetHeader([]string{"#", "文字列"})
		for k, s := range script.Strings {
			table.Append([]string{fmt.Sprintf("%d", k), s})
		}
		table.Render()
		sb.WriteByte('\n')
	}
}
