// Package services contains shared helpers for the external extraction
// tools reclaim drives: error classification, command execution, and
// context annotations used by structured logging.
//
// Each tool (exiftool, tesseract, pdftotext, soffice, pandoc) gets its own
// subpackage wrapping the binary behind a small client with an injectable
// Executor, so tool substitution in tests never touches the core pipeline.
package services
