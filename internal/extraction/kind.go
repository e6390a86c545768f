package extraction

import "strings"

// Kind classifies a recovered file into one of the extraction strategies.
type Kind string

const (
	KindPDF          Kind = "pdf"
	KindLegacyOffice Kind = "legacy_office" // doc and other OLE containers
	KindMarkup       Kind = "markup"        // docx, rtf, odt, html: pandoc territory
	KindSpreadsheet  Kind = "spreadsheet"   // ods, xlsx: CSV intermediate
	KindPresentation Kind = "presentation"  // pptx, odp, odg: rendered then OCRed
	KindImage        Kind = "image"
	KindZip          Kind = "zip"
	KindTar          Kind = "tar"
	KindText         Kind = "text"
	KindMbox         Kind = "mbox"
	KindUnknown      Kind = "unknown"
)

// extKinds maps normalized file extensions (as reported by the metadata
// reader) to extraction kinds. Recovered files frequently carry wrong or
// missing extensions, so this is only consulted for tool-reported types,
// never for the original filename.
var extKinds = map[string]Kind{
	"pdf":  KindPDF,
	"ai":   KindPDF,
	"doc":  KindLegacyOffice,
	"xls":  KindSpreadsheet,
	"ppt":  KindPresentation,
	"docx": KindMarkup,
	"docm": KindMarkup,
	"rtf":  KindMarkup,
	"odt":  KindMarkup,
	"html": KindMarkup,
	"htm":  KindMarkup,
	"ods":  KindSpreadsheet,
	"xlsx": KindSpreadsheet,
	"pptx": KindPresentation,
	"odp":  KindPresentation,
	"odg":  KindPresentation,
	"png":  KindImage,
	"jpg":  KindImage,
	"jpeg": KindImage,
	"gif":  KindImage,
	"bmp":  KindImage,
	"tif":  KindImage,
	"tiff": KindImage,
	"zip":  KindZip,
	"tar":  KindTar,
	"txt":  KindText,
	"mbox": KindMbox,
}

// KindForExtension maps a normalized extension to a Kind.
func KindForExtension(ext string) (Kind, bool) {
	kind, ok := extKinds[NormalizeExt(ext)]
	return kind, ok
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
