package extraction

import (
	"archive/zip"
	"bytes"
	"os"
	"strings"
	"unicode/utf8"
)

// Magic prefixes for container and image formats. Recovered files cannot be
// trusted to carry a meaningful name, so classification starts from bytes.
var magicPrefixes = []struct {
	prefix []byte
	kind   Kind
}{
	{[]byte("%PDF"), KindPDF},
	{[]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, KindLegacyOffice},
	{[]byte{0x89, 'P', 'N', 'G'}, KindImage},
	{[]byte{0xFF, 0xD8, 0xFF}, KindImage},
	{[]byte("GIF8"), KindImage},
	{[]byte("BM"), KindImage},
	{[]byte{0x49, 0x49, 0x2A, 0x00}, KindImage},
	{[]byte{0x4D, 0x4D, 0x00, 0x2A}, KindImage},
	{[]byte(`{\rtf`), KindMarkup},
}

// Sniff classifies a file by content. ZIP containers are opened to
// distinguish office packages from plain archives; text is inspected for
// mailbox headers.
func Sniff(path string) Kind {
	f, err := os.Open(path)
	if err != nil {
		return KindUnknown
	}
	defer f.Close()

	head := make([]byte, 512)
	n, _ := f.Read(head)
	head = head[:n]
	if len(head) == 0 {
		return KindUnknown
	}

	for _, m := range magicPrefixes {
		if bytes.HasPrefix(head, m.prefix) {
			return m.kind
		}
	}

	if bytes.HasPrefix(head, []byte("PK\x03\x04")) {
		return sniffZip(path)
	}

	// tar stores its magic at offset 257
	if info, err := f.Stat(); err == nil && info.Size() > 262 {
		tarMagic := make([]byte, 5)
		if _, err := f.ReadAt(tarMagic, 257); err == nil && bytes.Equal(tarMagic, []byte("ustar")) {
			return KindTar
		}
	}

	lowered := strings.ToLower(string(head))
	if strings.Contains(lowered, "<html") || strings.HasPrefix(lowered, "<!doctype html") {
		return KindMarkup
	}

	if looksTextual(head) {
		if isMailbox(head) {
			return KindMbox
		}
		return KindText
	}
	return KindUnknown
}

func sniffZip(path string) Kind {
	r, err := zip.OpenReader(path)
	if err != nil {
		return KindZip
	}
	defer r.Close()

	var mimetype string
	for _, entry := range r.File {
		switch {
		case entry.Name == "mimetype":
			rc, err := entry.Open()
			if err == nil {
				buf := make([]byte, 128)
				n, _ := rc.Read(buf)
				mimetype = string(buf[:n])
				rc.Close()
			}
		case strings.HasPrefix(entry.Name, "word/"):
			return KindMarkup
		case strings.HasPrefix(entry.Name, "xl/"):
			return KindSpreadsheet
		case strings.HasPrefix(entry.Name, "ppt/"):
			return KindPresentation
		}
	}

	switch {
	case strings.Contains(mimetype, "opendocument.text"):
		return KindMarkup
	case strings.Contains(mimetype, "opendocument.spreadsheet"):
		return KindSpreadsheet
	case strings.Contains(mimetype, "opendocument.presentation"),
		strings.Contains(mimetype, "opendocument.graphics"):
		return KindPresentation
	}
	return KindZip
}

func looksTextual(head []byte) bool {
	if !utf8.Valid(head) {
		// tolerate a byte cut mid-rune at the buffer boundary
		trimmed := head
		for len(trimmed) > 0 && len(head)-len(trimmed) < 4 && !utf8.Valid(trimmed) {
			trimmed = trimmed[:len(trimmed)-1]
		}
		if !utf8.Valid(trimmed) {
			return latin1Textual(head)
		}
		head = trimmed
	}
	control := 0
	for _, b := range head {
		if b < 0x20 && b != '\n' && b != '\r' && b != '\t' {
			control++
		}
	}
	return control*20 < len(head)
}

// latin1Textual accepts legacy single-byte encodings: printable ASCII plus
// high bytes, with few control characters.
func latin1Textual(head []byte) bool {
	control := 0
	for _, b := range head {
		if b < 0x20 && b != '\n' && b != '\r' && b != '\t' {
			control++
		}
	}
	return control*20 < len(head)
}

func isMailbox(head []byte) bool {
	text := string(head)
	if strings.HasPrefix(text, "From ") {
		return true
	}
	for _, marker := range []string{"Received: from ", "Message-ID:", "Message-Id:"} {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
