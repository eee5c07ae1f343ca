// Package dictionaryparser streams MedDRA and WHO Drug distribution files
// into typed records. Parsing is deliberately lenient: a line is kept only
// if its required leading columns parse, everything else is skipped and
// counted so imports never abort on vendor file noise.
package dictionaryparser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Vendor distributions ship with long records but never near this size.
const maxLineSize = 1 * 1024 * 1024

// lineScanner opens path and returns a scanner over its lines plus a close
// function. MedDRA distributions are shipped in a mix of UTF-8 and
// ISO-8859-1, so the first chunk is sniffed and non-UTF-8 files are decoded
// through charmap on the fly instead of being rejected.
func lineScanner(path string) (*bufio.Scanner, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	sniff := make([]byte, 64*1024)
	n, err := io.ReadFull(f, sniff)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		f.Close()
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	sniff = sniff[:n]

	var reader io.Reader = io.MultiReader(bytes.NewReader(sniff), f)
	if !looksLikeUTF8(sniff) {
		reader = charmap.ISO8859_1.NewDecoder().Reader(reader)
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0), maxLineSize)

	return scanner, func() { f.Close() }, nil
}

// looksLikeUTF8 validates the sniffed prefix, tolerating a rune that may
// have been cut at the buffer boundary.
func looksLikeUTF8(b []byte) bool {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		if utf8.Valid(b) {
			return true
		}
		b = b[:len(b)-1]
	}
	return utf8.Valid(b)
}
