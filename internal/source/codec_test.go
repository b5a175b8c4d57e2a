package source

import (
	"bytes"
	"testing"
)

func utf16leBytes(s string, bom bool) []byte {
	out := []byte{}
	if bom {
		out = append(out, 0xFF, 0xFE)
	}
	for i := 0; i < len(s); i++ {
		out = append(out, s[i], 0x00)
	}
	return out
}

func utf16beBytes(s string, bom bool) []byte {
	out := []byte{}
	if bom {
		out = append(out, 0xFE, 0xFF)
	}
	for i := 0; i < len(s); i++ {
		out = append(out, 0x00, s[i])
	}
	return out
}

func TestDecodePlainUTF8(t *testing.T) {
	content, enc, hadBOM, err := Decode([]byte("hello\n"))
	if err != nil {
		t.Fatal(err)
	}
	if enc != EncUTF8 || hadBOM {
		t.Fatalf("expected plain utf-8, got %v bom=%v", enc, hadBOM)
	}
	if string(content) != "hello\n" {
		t.Fatalf("content changed: %q", content)
	}
}

func TestDecodeUTF8BOM(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, "hello"...)
	content, enc, hadBOM, err := Decode(raw)
	if err != nil {
		t.Fatal(err)
	}
	if enc != EncUTF8 || !hadBOM {
		t.Fatalf("expected utf-8 with bom, got %v bom=%v", enc, hadBOM)
	}
	if string(content) != "hello" {
		t.Fatalf("BOM must be stripped, got %q", content)
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		raw  []byte
	}{
		{"utf8", []byte("line one\nline two\n")},
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, "text"...)},
		{"utf16le", utf16leBytes("ID-1 text\n", true)},
		{"utf16be", utf16beBytes("ID-1 text\n", true)},
		{"crlf", []byte("a\r\nb\r\n")},
	}

	for _, tc := range cases {
		content, enc, hadBOM, err := Decode(tc.raw)
		if err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		back, err := Encode(content, enc, hadBOM)
		if err != nil {
			t.Fatalf("%s: encode: %v", tc.name, err)
		}
		if !bytes.Equal(back, tc.raw) {
			t.Fatalf("%s: round trip changed bytes:\n  in  % x\n  out % x", tc.name, tc.raw, back)
		}
	}
}

func TestDecodeUTF16Content(t *testing.T) {
	content, enc, hadBOM, err := Decode(utf16leBytes("REQ-1\n", true))
	if err != nil {
		t.Fatal(err)
	}
	if enc != EncUTF16LE || !hadBOM {
		t.Fatalf("expected utf-16le with bom, got %v bom=%v", enc, hadBOM)
	}
	if string(content) != "REQ-1\n" {
		t.Fatalf("expected decoded utf-8 content, got %q", content)
	}
}
