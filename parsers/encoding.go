package parsers

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

const (
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift_jis"
)

// NormalizeEncoding maps user supplied encoding names onto EncodingUTF8 or
// EncodingShiftJIS. Empty means UTF-8.
func NormalizeEncoding(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return EncodingUTF8, nil
	case "shift_jis", "shift-jis", "sjis", "cp932":
		return EncodingShiftJIS, nil
	default:
		return "", fmt.Errorf("unsupported encoding: %s", name)
	}
}

// NewDecodingReader returns a reader yielding UTF-8 text. A UTF-8 BOM is
// skipped.
func NewDecodingReader(r io.Reader, enc string) io.Reader {
	if enc == EncodingShiftJIS {
		return transform.NewReader(r, japanese.ShiftJIS.NewDecoder())
	}
	return SkipBOM(r)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// NewEncodingWriter converts UTF-8 written to it into enc. Close must be
// called to flush a Shift-JIS writer; it does not close w. Characters
// Shift-JIS cannot represent are replaced rather than failing the export.
func NewEncodingWriter(w io.Writer, enc string) io.WriteCloser {
	if enc == EncodingShiftJIS {
		return transform.NewWriter(w, encoding.ReplaceUnsupported(japanese.ShiftJIS.NewEncoder()))
	}
	return nopWriteCloser{w}
}
