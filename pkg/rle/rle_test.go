package rle

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected []byte
		wantErr  bool
	}{
		{
			name:     "空データ",
			input:    []byte{},
			expected: []byte{},
			wantErr:  false,
		},
		{
			name:     "リテラル1バイト",
			input:    []byte{0xFF, 0x41}, // C=0xFF => N=1
			expected: []byte{0x41},
			wantErr:  false,
		},
		{
			name:     "リテラル3バイト",
			input:    []byte{0xFD, 0x41, 0x42, 0x43},
			expected: []byte{0x41, 0x42, 0x43},
			wantErr:  false,
		},
		{
			name:     "リピート5回",
			input:    []byte{0x05, 0x42},
			expected: []byte{0x42, 0x42, 0x42, 0x42, 0x42},
			wantErr:  false,
		},
		{
			name:     "リピート0回",
			input:    []byte{0x00, 0x99}, // 2バイト消費して何も出力しない
			expected: []byte{},
			wantErr:  false,
		},
		{
			name:     "リピート最大127回",
			input:    []byte{0x7F, 0x00},
			expected: bytes.Repeat([]byte{0x00}, 127),
			wantErr:  false,
		},
		{
			name:     "リテラルとリピートの混在",
			input:    []byte{0xFE, 0x4D, 0x5A, 0x03, 0x00, 0xFF, 0x90},
			expected: []byte{0x4D, 0x5A, 0x00, 0x00, 0x00, 0x90},
			wantErr:  false,
		},
		{
			name:    "リピートの繰り返しバイト欠落",
			input:   []byte{0x05},
			wantErr: true,
		},
		{
			name:    "リピート0回の繰り返しバイト欠落",
			input:   []byte{0x00}, // カウント0でもペイロードは必須
			wantErr: true,
		},
		{
			name:    "リテラル2バイトが両方欠落",
			input:   []byte{0xFE},
			wantErr: true,
		},
		{
			name:    "リテラル2バイトのうち1バイト欠落",
			input:   []byte{0xFE, 0x41},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Decode() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				if !errors.Is(err, ErrTruncatedInput) {
					t.Errorf("Decode() error = %v, want ErrTruncatedInput", err)
				}
				if got != nil {
					t.Errorf("エラー時の出力は nil であるべき: %v", got)
				}
				return
			}
			if !bytes.Equal(got, tt.expected) {
				t.Errorf("Decode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

// 制御バイト 0x80 は最大長128バイトのリテラルラン
func TestDecodeMaxLiteralRun(t *testing.T) {
	payload := make([]byte, 128)
	for i := range payload {
		payload[i] = byte(i)
	}
	input := append([]byte{0x80}, payload...)
	if len(input) != 129 {
		t.Fatalf("入力は129バイトであるべき: %d", len(input))
	}

	got, err := Decode(input)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Decode() = %v, want %v", got, payload)
	}
}

// 完結したチャンク同士の連結は、それぞれの展開結果の連結になる
func TestDecodeConcatenation(t *testing.T) {
	chunk1 := []byte{0xFD, 0x41, 0x42, 0x43}
	chunk2 := []byte{0x04, 0x58}

	out1, err := Decode(chunk1)
	if err != nil {
		t.Fatalf("Decode(chunk1) error = %v", err)
	}
	out2, err := Decode(chunk2)
	if err != nil {
		t.Fatalf("Decode(chunk2) error = %v", err)
	}

	joined, err := Decode(append(append([]byte{}, chunk1...), chunk2...))
	if err != nil {
		t.Fatalf("Decode(chunk1+chunk2) error = %v", err)
	}
	want := append(append([]byte{}, out1...), out2...)
	if !bytes.Equal(joined, want) {
		t.Errorf("Decode(chunk1+chunk2) = %v, want %v", joined, want)
	}
}

// 入力バッファは変更されない
func TestDecodeDoesNotModifyInput(t *testing.T) {
	input := []byte{0xFE, 0x41, 0x42, 0x03, 0x58}
	original := append([]byte{}, input...)

	if _, err := Decode(input); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !bytes.Equal(input, original) {
		t.Errorf("入力が変更された: %v -> %v", original, input)
	}
}

func TestUnRLE(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected []byte
		wantErr  bool
	}{
		{
			name:     "正常データ",
			input:    []byte{0xFE, 0x4D, 0x5A, 0x03, 0x00},
			expected: []byte{0x4D, 0x5A, 0x00, 0x00, 0x00},
			wantErr:  false,
		},
		{
			name:     "空ストリーム",
			input:    []byte{},
			expected: []byte{},
			wantErr:  false,
		},
		{
			name:    "途中で途切れたストリーム",
			input:   []byte{0x80, 0x41},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			err := UnRLE(bytes.NewReader(tt.input), out)
			if (err != nil) != tt.wantErr {
				t.Errorf("UnRLE() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				if !errors.Is(err, ErrTruncatedInput) {
					t.Errorf("UnRLE() error = %v, want ErrTruncatedInput", err)
				}
				return
			}
			if !bytes.Equal(out.Bytes(), tt.expected) {
				t.Errorf("UnRLE() = %v, want %v", out.Bytes(), tt.expected)
			}
		})
	}
}

// 1バイトずつしか返さないReaderでも正しく展開できる
func TestUnRLEOneByteReader(t *testing.T) {
	input := []byte{0xFD, 0x41, 0x42, 0x43, 0x05, 0x2E}
	want := []byte{0x41, 0x42, 0x43, 0x2E, 0x2E, 0x2E, 0x2E, 0x2E}

	out := &bytes.Buffer{}
	r := iotestOneByteReader{r: bytes.NewReader(input)}
	if err := UnRLE(r, out); err != nil {
		t.Fatalf("UnRLE() error = %v", err)
	}
	if !bytes.Equal(out.Bytes(), want) {
		t.Errorf("UnRLE() = %v, want %v", out.Bytes(), want)
	}
}

type iotestOneByteReader struct {
	r *bytes.Reader
}

func (o iotestOneByteReader) Read(p []byte) (int, error) {
	if len(p) > 1 {
		p = p[:1]
	}
	return o.r.Read(p)
}

func TestDecodeStringsInput(t *testing.T) {
	// ASCIIのみのデータをリテラルランで包んだもの
	text := strings.Repeat("AB", 20)
	input := append([]byte{byte(0x100 - len(text))}, []byte(text)...)

	got, err := Decode(input)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if string(got) != text {
		t.Errorf("Decode() = %q, want %q", got, text)
	}
}
