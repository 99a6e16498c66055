// Package chunk splits file contents into overlapping, line-bounded spans
// suitable for independent indexing and retrieval.
package chunk

import "strings"

// Config controls chunk sizing. Sizes are measured in characters; overlap
// is measured in whole lines carried over from the end of one chunk to the
// start of the next.
type Config struct {
	MaxChars     int
	MinChars     int
	OverlapLines int
}

// DefaultConfig returns the standard sizing: 1000 char target, 200 char
// minimum, 5 lines of overlap.
func DefaultConfig() Config {
	return Config{MaxChars: 1000, MinChars: 200, OverlapLines: 5}
}

// Span is a contiguous, 1-based inclusive line range and its verbatim text.
type Span struct {
	StartLine int
	EndLine   int
	Text      string
}

// Chunker splits file content into Spans according to Config.
type Chunker struct {
	cfg Config
}

// New creates a Chunker with the given Config.
func New(cfg Config) *Chunker {
	return &Chunker{cfg: cfg}
}

// Chunk splits content into line-bounded spans.
//
// Algorithm:
//  1. Split content on "\n" into lines.
//  2. Accumulate lines into the current chunk. Each line contributes
//     len(line)+1 characters (the "+1" accounts for its trailing newline).
//  3. When adding the next line would push the current chunk over MaxChars,
//     and the current chunk is non-empty and already at least MinChars,
//     finalize the current chunk as [startLine, i] (the line just before
//     the one that would overflow), then seed the next chunk with the last
//     min(OverlapLines, len(current)) lines of the chunk just finalized.
//  4. After the loop, finalize any remaining accumulated lines as the last
//     chunk, provided it reaches MinChars.
//
// Files whose content never reaches MinChars yield zero chunks. Empty
// content yields zero chunks.
func (c *Chunker) Chunk(content string) []Span {
	if content == "" {
		return nil
	}

	lines := strings.Split(content, "\n")

	var spans []Span
	var cur []string
	curChars := 0
	startLine := 1

	for i, line := range lines {
		lineLen := len(line) + 1

		if curChars+lineLen > c.cfg.MaxChars && len(cur) > 0 && curChars >= c.cfg.MinChars {
			spans = append(spans, c.finalize(startLine, i, cur))

			overlap := c.cfg.OverlapLines
			if overlap > len(cur) {
				overlap = len(cur)
			}
			seed := cur[len(cur)-overlap:]
			startLine = i - (len(seed) - 1)

			cur = append([]string(nil), seed...)
			curChars = 0
			for _, l := range cur {
				curChars += len(l) + 1
			}
		}

		cur = append(cur, line)
		curChars += lineLen
	}

	if len(cur) > 0 && curChars >= c.cfg.MinChars {
		spans = append(spans, c.finalize(startLine, len(lines), cur))
	}

	return spans
}

func (c *Chunker) finalize(startLine, endLine int, lines []string) Span {
	return Span{
		StartLine: startLine,
		EndLine:   endLine,
		Text:      strings.Join(lines, "\n"),
	}
}
