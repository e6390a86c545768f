// Package extraction classifies recovered files by content and extracts the
// text and metadata that later inference stages consume. External tools do
// the heavy lifting; this package decides which tool fits which file and
// degrades gracefully when one fails.
package extraction
