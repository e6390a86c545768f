// Package textutil provides text processing utilities for filename
// sanitization, fingerprinting, and similarity.
//
// The primary use cases are:
//   - Turning inferred document titles into safe filesystem tokens,
//     including accent folding and removal of data-carving artifacts
//   - Creating token-based fingerprints from text lines for comparison
//   - Computing cosine similarity between fingerprints to reject
//     near-duplicate boilerplate lines during title inference
//
// Fingerprints use term frequency vectors normalized for efficient
// comparison. The tokenization process lowercases text, splits on
// non-alphanumeric characters, and filters tokens shorter than 3
// characters.
package textutil
