package ifps

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisassembly(t *testing.T) {
	script, err := Parse(buildTestScript())
	require.NoError(t, err)

	text, err := script.Disassembly()
	require.NoError(t, err)

	// セクション見出し
	assert.Contains(t, text, "external Class TForm")
	assert.Contains(t, text, "typedef TPoint = struct {U32, String}")
	assert.Contains(t, text, "global GlobalVar0: U32")
	assert.Contains(t, text, "global Position: TPoint")
	assert.Contains(t, text,
		"external Function __stdcall user32::MessageBoxA(Argument1, Argument2, Argument3, Argument4)")

	// 名前の付いていない組み込み型は typedef に現れない
	assert.NotContains(t, text, "typedef U32")
	assert.NotContains(t, text, "typedef String")

	// 関数本体
	assert.Contains(t, text, "Begin Sub Main()")
	assert.Contains(t, text, "End Sub")
	assert.Contains(t, text, "Begin symbol F2")
	assert.Contains(t, text, "End Symbol")

	// 命令行
	assert.Contains(t, text, "GlobalVar0 := 4919")
	assert.Contains(t, text, `"hello"`)
	assert.Contains(t, text, "user32::MessageBoxA")
	assert.Contains(t, text, "JumpDestination01:")

	// セクションの順序
	classAt := strings.Index(text, "external Class")
	typedefAt := strings.Index(text, "typedef")
	globalAt := strings.Index(text, "global ")
	externAt := strings.Index(text, "external Function")
	beginAt := strings.Index(text, "Begin ")
	assert.Less(t, classAt, typedefAt)
	assert.Less(t, typedefAt, globalAt)
	assert.Less(t, globalAt, externAt)
	assert.Less(t, externAt, beginAt)
}

func TestDisassemblyJumpLabel(t *testing.T) {
	script, err := Parse(buildTestScript())
	require.NoError(t, err)

	text, err := script.Disassembly()
	require.NoError(t, err)

	// Jump命令のオペランドはラベル名に解決される
	jumpLine := ""
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "Jump") && !strings.Contains(line, ":") {
			jumpLine = line
			break
		}
	}
	require.NotEmpty(t, jumpLine)
	assert.Contains(t, jumpLine, "JumpDestination01")
}

func TestDisassemblyEmptyScript(t *testing.T) {
	data := cat(
		[]byte(Magic),
		le32(23),
		le32(0), le32(0), le32(0),
		le32(NoEntry),
		le32(0),
	)
	script, err := Parse(data)
	require.NoError(t, err)
	require.Nil(t, script.EntryFunction())

	text, err := script.Disassembly()
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestDisassemblyStackColumn(t *testing.T) {
	script, err := Parse(buildTestScript())
	require.NoError(t, err)

	text, err := script.Disassembly()
	require.NoError(t, err)

	// Push後のCallではスタック深度1が表示される
	found := false
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "Call") && strings.Contains(line, tab+"1"+tab) {
			found = true
			break
		}
	}
	assert.True(t, found, "スタック深度付きのCall行が見つかりません:\n%s", text)
}
