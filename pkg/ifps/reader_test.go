package ifps

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestReaderIntegers(t *testing.T) {
	r := newReader([]byte{
		0x01,
		0x02, 0x03,
		0x04, 0x05, 0x06, 0x07,
		0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	})

	if v, err := r.U8(); err != nil || v != 0x01 {
		t.Errorf("U8() = %v, %v", v, err)
	}
	if v, err := r.U16(); err != nil || v != 0x0302 {
		t.Errorf("U16() = %#x, %v", v, err)
	}
	if v, err := r.U32(); err != nil || v != 0x07060504 {
		t.Errorf("U32() = %#x, %v", v, err)
	}
	if v, err := r.I64(); err != nil || v != -1 {
		t.Errorf("I64() = %v, %v", v, err)
	}
	if !r.EOF() {
		t.Errorf("全て読んだ後は EOF であるべき")
	}
	if _, err := r.U8(); !errors.Is(err, ErrTruncated) {
		t.Errorf("EOF後の読み込みは ErrTruncated であるべき: %v", err)
	}
}

func TestReaderBlob(t *testing.T) {
	r := newReader([]byte{0x03, 0x00, 0x00, 0x00, 'a', 'b', 'c'})
	b, err := r.Blob()
	if err != nil {
		t.Fatalf("Blob() error = %v", err)
	}
	if !bytes.Equal(b, []byte("abc")) {
		t.Errorf("Blob() = %q", b)
	}

	// 長さが残量を超える場合
	r = newReader([]byte{0x10, 0x00, 0x00, 0x00, 'a'})
	if _, err := r.Blob(); !errors.Is(err, ErrTruncated) {
		t.Errorf("Blob() error = %v, want ErrTruncated", err)
	}
}

func TestReaderBlob8(t *testing.T) {
	r := newReader([]byte{0x02, 'o', 'k', 'x'})
	b, err := r.Blob8()
	if err != nil || string(b) != "ok" {
		t.Errorf("Blob8() = %q, %v", b, err)
	}
	if r.Tell() != 3 {
		t.Errorf("Tell() = %d, want 3", r.Tell())
	}
}

func TestReaderTerminated(t *testing.T) {
	r := newReader([]byte("user32.dll\x00rest"))
	b, err := r.ReadTerminated(0)
	if err != nil || string(b) != "user32.dll" {
		t.Errorf("ReadTerminated() = %q, %v", b, err)
	}
	if r.Tell() != 11 {
		t.Errorf("Tell() = %d, want 11", r.Tell())
	}

	r = newReader([]byte("no-delimiter"))
	if _, err := r.ReadTerminated('|'); !errors.Is(err, ErrTruncated) {
		t.Errorf("ReadTerminated() error = %v, want ErrTruncated", err)
	}
}

func TestReaderReadIf(t *testing.T) {
	r := newReader([]byte("dll:rest"))
	if !r.ReadIf([]byte("dll:")) {
		t.Errorf("ReadIf(dll:) = false")
	}
	if r.ReadIf([]byte("class:")) {
		t.Errorf("ReadIf(class:) = true")
	}
	if r.Tell() != 4 {
		t.Errorf("Tell() = %d, want 4", r.Tell())
	}
}

func TestReaderExtended(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected float64
	}{
		{
			// 指数 16383、仮数 0x8000000000000000
			name:     "1.0",
			input:    []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x80, 0xFF, 0x3F},
			expected: 1.0,
		},
		{
			name:     "-2.0",
			input:    []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x80, 0x00, 0xC0},
			expected: -2.0,
		},
		{
			name:     "0.75",
			input:    []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xC0, 0xFE, 0x3F},
			expected: 0.75,
		},
		{
			name:     "+0",
			input:    []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newReader(tt.input)
			got, err := r.Extended()
			if err != nil {
				t.Fatalf("Extended() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("Extended() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestReaderExtendedSpecials(t *testing.T) {
	inf := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xFF, 0x7F}
	r := newReader(inf)
	if got, err := r.Extended(); err != nil || !math.IsInf(got, 1) {
		t.Errorf("Extended(inf) = %v, %v", got, err)
	}

	nan := []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x80, 0xFF, 0x7F}
	r = newReader(nan)
	if got, err := r.Extended(); err != nil || !math.IsNaN(got) {
		t.Errorf("Extended(nan) = %v, %v", got, err)
	}
}

func TestReaderSeek(t *testing.T) {
	r := newReader([]byte{1, 2, 3, 4})
	if err := r.Seek(2); err != nil {
		t.Fatalf("Seek(2) error = %v", err)
	}
	if v, _ := r.U8(); v != 3 {
		t.Errorf("Seek後のU8() = %d, want 3", v)
	}
	if err := r.Seek(5); !errors.Is(err, ErrTruncated) {
		t.Errorf("範囲外Seekのエラー = %v, want ErrTruncated", err)
	}
}
