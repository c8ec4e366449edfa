package unit

import (
	"strings"

	"github.com/shiroemons/go-darkmoon/pkg/ifps"
	"github.com/shiroemons/go-darkmoon/pkg/rle"
)

func init() {
	Register(UnitFunc{
		UnitName: "rle",
		Func:     rle.Decode,
	})
	Register(UnitFunc{
		UnitName: "rle-encode",
		Func: func(data []byte) ([]byte, error) {
			return rle.Encode(data), nil
		},
	})
	Register(UnitFunc{
		UnitName: "ifps-strings",
		Func:     ifpsStrings,
	})
}

// ifpsStrings はIFPSスクリプトの文字列テーブルを改行区切りで返します
func ifpsStrings(data []byte) ([]byte, error) {
	script, err := ifps.Parse(data)
	if err != nil {
		return nil, err
	}
	return []byte(strings.Join(script.Strings, "\n")), nil
}
