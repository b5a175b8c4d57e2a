package source

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Byte-order marks recognized by Decode. UTF-16 without a BOM is not
// detected; such files are treated as UTF-8.
var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode converts raw file bytes into UTF-8 content, reporting the
// original encoding and whether a BOM was present. The BOM is stripped
// from the returned content; everything else round-trips through Encode
// byte for byte.
func Decode(raw []byte) (content []byte, enc Encoding, hadBOM bool, err error) {
	switch {
	case hasPrefix(raw, bomUTF8):
		return raw[len(bomUTF8):], EncUTF8, true, nil
	case hasPrefix(raw, bomUTF16LE):
		decoded, derr := transcode(raw[len(bomUTF16LE):], unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder())
		if derr != nil {
			return nil, EncUTF16LE, true, fmt.Errorf("decode utf-16le: %w", derr)
		}
		return decoded, EncUTF16LE, true, nil
	case hasPrefix(raw, bomUTF16BE):
		decoded, derr := transcode(raw[len(bomUTF16BE):], unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder())
		if derr != nil {
			return nil, EncUTF16BE, true, fmt.Errorf("decode utf-16be: %w", derr)
		}
		return decoded, EncUTF16BE, true, nil
	default:
		return raw, EncUTF8, false, nil
	}
}

// Encode restores the on-disk representation of UTF-8 content: re-encodes
// into enc and prepends the BOM when the original file carried one.
func Encode(content []byte, enc Encoding, hadBOM bool) ([]byte, error) {
	switch enc {
	case EncUTF8:
		if !hadBOM {
			return content, nil
		}
		out := make([]byte, 0, len(bomUTF8)+len(content))
		out = append(out, bomUTF8...)
		return append(out, content...), nil
	case EncUTF16LE:
		encoded, err := transcode(content, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder())
		if err != nil {
			return nil, fmt.Errorf("encode utf-16le: %w", err)
		}
		out := make([]byte, 0, len(bomUTF16LE)+len(encoded))
		if hadBOM {
			out = append(out, bomUTF16LE...)
		}
		return append(out, encoded...), nil
	case EncUTF16BE:
		encoded, err := transcode(content, unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder())
		if err != nil {
			return nil, fmt.Errorf("encode utf-16be: %w", err)
		}
		out := make([]byte, 0, len(bomUTF16BE)+len(encoded))
		if hadBOM {
			out = append(out, bomUTF16BE...)
		}
		return append(out, encoded...), nil
	}
	return nil, fmt.Errorf("encode: unknown encoding %v", enc)
}

func transcode(b []byte, t transform.Transformer) ([]byte, error) {
	out, _, err := transform.Bytes(t, b)
	return out, err
}

func hasPrefix(b, prefix []byte) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i := range prefix {
		if b[i] != prefix[i] {
			return false
		}
	}
	return true
}
