package rle

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected []byte
	}{
		{
			name:     "空データ",
			input:    []byte{},
			expected: []byte{},
		},
		{
			name:     "連続しないデータはリテラルラン",
			input:    []byte{0x41, 0x42, 0x43},
			expected: []byte{0xFD, 0x41, 0x42, 0x43},
		},
		{
			name:     "4バイト以上の連続はリピートラン",
			input:    []byte{0x00, 0x00, 0x00, 0x00, 0x00},
			expected: []byte{0x05, 0x00},
		},
		{
			name:     "3バイトの連続はリテラルのまま",
			input:    []byte{0x41, 0x41, 0x41},
			expected: []byte{0xFD, 0x41, 0x41, 0x41},
		},
		{
			name:     "リテラルとリピートの混在",
			input:    []byte{0x4D, 0x5A, 0x00, 0x00, 0x00, 0x00, 0x90},
			expected: []byte{0xFE, 0x4D, 0x5A, 0x04, 0x00, 0xFF, 0x90},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Encode(tt.input)
			if !bytes.Equal(got, tt.expected) {
				t.Errorf("Encode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

// 128バイトを超えるリテラルは複数のランに分割される
func TestEncodeLongLiteral(t *testing.T) {
	input := make([]byte, 200)
	for i := range input {
		input[i] = byte(i) // 連続値なのでリピートランは発生しない
	}

	got := Encode(input)

	// 128バイト + 72バイトの2つのリテラルラン
	if got[0] != 0x80 {
		t.Errorf("先頭の制御バイト = %#02x, want 0x80", got[0])
	}
	if got[129] != byte(0x100-72) {
		t.Errorf("2番目の制御バイト = %#02x, want %#02x", got[129], byte(0x100-72))
	}
	if len(got) != 202 {
		t.Errorf("出力長 = %d, want 202", len(got))
	}

	decoded, err := Decode(got)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !bytes.Equal(decoded, input) {
		t.Errorf("ラウンドトリップに失敗")
	}
}

// 127回を超える連続は複数のリピートランに分割される
func TestEncodeLongRun(t *testing.T) {
	input := bytes.Repeat([]byte{0xCC}, 300)

	got := Encode(input)
	decoded, err := Decode(got)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !bytes.Equal(decoded, input) {
		t.Errorf("ラウンドトリップに失敗: 出力長 %d, want %d", len(decoded), len(input))
	}
	if len(got) >= len(input) {
		t.Errorf("連続データが圧縮されていない: %d -> %d", len(input), len(got))
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for trial := 0; trial < 50; trial++ {
		size := rng.Intn(4096)
		input := make([]byte, size)
		for i := range input {
			// 値域を狭めて連続を発生させやすくする
			input[i] = byte(rng.Intn(8))
		}

		decoded, err := Decode(Encode(input))
		if err != nil {
			t.Fatalf("trial %d: Decode() error = %v", trial, err)
		}
		if !bytes.Equal(decoded, input) {
			t.Fatalf("trial %d: ラウンドトリップに失敗 (入力長 %d)", trial, size)
		}
	}
}
