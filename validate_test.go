package mdattr

import (
	"bytes"
	"strings"
	"testing"
)

func TestValidateInputRejectsInvalidUTF8(t *testing.T) {
	data := []byte{0xff, 0xfe, 0xfd}
	if err := ValidateInput(data); err != ErrInvalidUTF8 {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestValidateInputRejectsBinary(t *testing.T) {
	data := append([]byte("hello"), 0x00)
	if err := ValidateInput(data); err != ErrBinaryInput {
		t.Fatalf("expected ErrBinaryInput, got %v", err)
	}
	noisy := bytes.Repeat([]byte{'a', 0x01}, 64)
	if err := ValidateInput(noisy); err != ErrBinaryInput {
		t.Fatalf("expected ErrBinaryInput for control-heavy input, got %v", err)
	}
}

func TestValidateInputAcceptsText(t *testing.T) {
	text := []byte(strings.Repeat("# Heading\n\n\tIndented ünïcödé text.\r\n", 8))
	if err := ValidateInput(text); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
}

func TestConvertSanitizesInput(t *testing.T) {
	got := Convert("\xef\xbb\xbfa\xffb\x00c\x07d")
	if got.Text() != "abcd" {
		t.Fatalf("sanitized text = %q", got.Text())
	}
	if got := Convert(string([]byte{0x00, 0x01, 0x02, 0x03})); got == nil || got.Len() != 0 {
		t.Fatalf("binary input should convert to empty text, got %q", got.Text())
	}
}
