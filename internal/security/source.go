// Package security checks file content before it reaches a parser.
package security

import (
	"bytes"
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// HeaderSize is how much of a file the binary check looks at.
const HeaderSize = 64 * 1024

var (
	// ErrBinary is returned for files whose content is not text.
	ErrBinary = errors.New("file appears to be binary (source extension on binary file)")
	// ErrEncoding is returned for text that is neither UTF-8 nor UTF-16
	// with a byte order mark.
	ErrEncoding = errors.New("file is not valid UTF-8 or UTF-16 text")
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Signatures of binary formats commonly found next to .NET sources.
var magicBytes = [][]byte{
	{0x4D, 0x5A},                                     // PE executable or DLL
	{0x50, 0x4B, 0x03, 0x04},                         // zip, nupkg
	{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, // png
	{0x25, 0x50, 0x44, 0x46, 0x2D},                   // pdf
}

// DecodeSource returns the text of a C# or Visual Basic file. A UTF-8 byte
// order mark is dropped and UTF-16 files with a byte order mark are
// converted to UTF-8. Binary content yields ErrBinary.
func DecodeSource(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		data = data[len(bomUTF8):]
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Bytes(data)
		if err != nil {
			return "", ErrEncoding
		}
		data = decoded
	}

	for _, magic := range magicBytes {
		if bytes.HasPrefix(data, magic) {
			return "", ErrBinary
		}
	}
	header := data
	if len(header) > HeaderSize {
		header = header[:HeaderSize]
	}
	if IsBinary(header) {
		return "", ErrBinary
	}
	if !utf8.Valid(data) {
		return "", ErrEncoding
	}
	return string(data), nil
}

// IsBinary reports whether more than 30% of data are control characters
// other than tab, line feed, form feed and carriage return, or whether it
// holds a NUL byte.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return true
	}
	nonPrintable := 0
	for _, b := range data {
		if b < 9 || (b > 13 && b < 32) || b == 127 {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(len(data)) > 0.3
}
