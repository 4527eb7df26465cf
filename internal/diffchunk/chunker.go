// Package diffchunk splits a unified diff into size-bounded chunks so a
// reviewer client can feed them to a model one at a time. The bin-packing
// algorithm is adapted from the teacher's review/chunker.go (ShipItAI); the
// hunk-level sub-splitting for oversized single files is grounded on the
// file/hunk boundary detection in bkyoung's internal/diff/parser.go.
package diffchunk

import (
	"regexp"
	"strings"
)

// DefaultMaxChunkSize is the byte budget for a single chunk's diff content.
const DefaultMaxChunkSize = 80 * 1024

// TokenEstimate approximates the token count of a chunk: ceil(len(s) / 4).
func TokenEstimate(s string) int {
	if len(s) == 0 {
		return 0
	}
	return (len(s) + 3) / 4
}

// FileDiff is one file's worth of unified-diff content.
type FileDiff struct {
	Path    string
	Content string
}

// Chunk is a size-bounded group of whole files, or a group of hunks from a
// single oversized file.
type Chunk struct {
	Files     []FileDiff
	SizeBytes int
	Index     int
	Total     int
}

var fileHeaderRe = regexp.MustCompile(`^diff --git `)
var hunkHeaderRe = regexp.MustCompile(`^@@ `)

// SplitDiffByFile splits a unified diff into per-file content blocks,
// extracting each file's path from its "diff --git a/x b/x" header line.
// Each file's Content is built by re-joining its share of strings.Split's
// lines with "\n" (no forced trailing separator), so concatenating every
// file's Content back together with "\n" between adjacent files exactly
// reproduces the original diff, including whether it ends in a trailing
// newline.
func SplitDiffByFile(diff string) []FileDiff {
	var files []FileDiff
	var path string
	var group []string

	flush := func() {
		if path != "" {
			files = append(files, FileDiff{Path: path, Content: strings.Join(group, "\n")})
		}
		group = nil
	}

	lines := strings.Split(diff, "\n")
	for _, line := range lines {
		if fileHeaderRe.MatchString(line) {
			flush()
			path = extractPath(line)
		}
		group = append(group, line)
	}
	flush()

	return files
}

func extractPath(header string) string {
	fields := strings.Fields(header)
	if len(fields) < 4 {
		return ""
	}
	p := fields[3]
	return strings.TrimPrefix(p, "b/")
}

// splitByHunk breaks a single oversized file's content into hunk-aligned
// sub-chunks, each at most maxChunkSize bytes, by scanning for "@@ " hunk
// boundaries. The file header (everything before the first hunk) is
// prepended to every sub-chunk so the reviewer still sees file context.
func splitByHunk(f FileDiff, maxChunkSize int) []FileDiff {
	lines := strings.Split(f.Content, "\n")

	var header strings.Builder
	firstHunk := -1
	for i, line := range lines {
		if hunkHeaderRe.MatchString(line) {
			firstHunk = i
			break
		}
		header.WriteString(line)
		header.WriteString("\n")
	}
	if firstHunk == -1 {
		// No hunks found; nothing to split on, return as a single piece.
		return []FileDiff{f}
	}

	headerStr := header.String()
	var out []FileDiff
	var cur strings.Builder
	cur.WriteString(headerStr)

	flush := func() {
		content := cur.String()
		if strings.TrimSpace(content) != headerStr && strings.TrimSpace(content) != "" {
			out = append(out, FileDiff{Path: f.Path, Content: content})
		}
		cur.Reset()
		cur.WriteString(headerStr)
	}

	for i := firstHunk; i < len(lines); i++ {
		line := lines[i]
		if hunkHeaderRe.MatchString(line) && cur.Len() > len(headerStr) && cur.Len()+len(line) > maxChunkSize {
			flush()
		}
		cur.WriteString(line)
		cur.WriteString("\n")
	}
	flush()

	if len(out) == 0 {
		return []FileDiff{f}
	}
	return out
}

// ChunkDiff greedily bin-packs whole files into chunks no larger than
// maxChunkSize. A single file that already exceeds maxChunkSize is split at
// hunk boundaries first (per spec, rule: oversized single file → split at
// hunk boundaries), with each resulting piece becoming its own chunk.
// maxChunkSize <= 0 means "don't budget at all": the whole diff is returned
// as a single, unsplit chunk, never re-budgeted to DefaultMaxChunkSize.
func ChunkDiff(diff string, maxChunkSize int) []Chunk {
	if strings.TrimSpace(diff) == "" {
		return nil
	}

	if maxChunkSize <= 0 {
		return []Chunk{{
			Files:     []FileDiff{{Content: diff}},
			SizeBytes: len(diff),
			Index:     0,
			Total:     1,
		}}
	}

	files := SplitDiffByFile(diff)

	var chunks []Chunk
	var current []FileDiff
	var currentSize int

	flushCurrent := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, Chunk{Files: current, SizeBytes: currentSize})
		current = nil
		currentSize = 0
	}

	for _, f := range files {
		if len(f.Content) > maxChunkSize {
			flushCurrent()
			for _, piece := range splitByHunk(f, maxChunkSize) {
				chunks = append(chunks, Chunk{Files: []FileDiff{piece}, SizeBytes: len(piece.Content)})
			}
			continue
		}

		if currentSize > 0 && currentSize+len(f.Content) > maxChunkSize {
			flushCurrent()
		}
		current = append(current, f)
		currentSize += len(f.Content)
	}
	flushCurrent()

	for i := range chunks {
		chunks[i].Index = i
		chunks[i].Total = len(chunks)
	}

	return chunks
}

// ChunkToDiff rejoins a chunk's file contents into a single diff string.
// Adjacent files are joined with "\n" to restore the single newline that
// separated them in the original diff (each FileDiff.Content carries no
// trailing newline of its own); a chunk holding one whole file reproduces
// that file's bytes exactly.
func ChunkToDiff(c Chunk) string {
	var parts []string
	for _, f := range c.Files {
		parts = append(parts, f.Content)
	}
	return strings.Join(parts, "\n")
}
