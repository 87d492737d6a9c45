package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

type opKind byte

const (
	opEqual  opKind = ' '
	opDelete opKind = '-'
	opInsert opKind = '+'
)

// lineOp is a single line of a line-level diff. text keeps its trailing "\n".
type lineOp struct {
	kind opKind
	text string
}

// hunk is a contiguous region of a unified diff.
type hunk struct {
	oldStart, oldLines int
	newStart, newLines int
	ops                []lineOp
}

// lineDiff computes line operations between two normalized texts.
func lineDiff(before, after string) []lineOp {
	dmp := diffmatchpatch.New()
	// No timeout: a cut-short diff would make the output depend on machine speed.
	dmp.DiffTimeout = 0

	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var ops []lineOp
	for _, d := range diffs {
		kind := opEqual
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			kind = opInsert
		case diffmatchpatch.DiffDelete:
			kind = opDelete
		}
		for _, line := range splitLines(d.Text) {
			ops = append(ops, lineOp{kind: kind, text: line})
		}
	}
	return ops
}

// splitLines splits s after every "\n". A trailing empty element is dropped.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// groupHunks splits ops into hunks with context unchanged lines on each side.
// Changes separated by at most 2*context unchanged lines share a hunk.
func groupHunks(ops []lineOp, context int) []hunk {
	n := len(ops)

	// oldAt[k] / newAt[k]: lines of each side consumed before ops[k].
	oldAt := make([]int, n+1)
	newAt := make([]int, n+1)
	for k, op := range ops {
		oldAt[k+1], newAt[k+1] = oldAt[k], newAt[k]
		if op.kind != opInsert {
			oldAt[k+1]++
		}
		if op.kind != opDelete {
			newAt[k+1]++
		}
	}

	var hunks []hunk
	for i := 0; i < n; {
		if ops[i].kind == opEqual {
			i++
			continue
		}

		start := max(0, i-context)
		end := i
		for {
			for end < n && ops[end].kind != opEqual {
				end++
			}
			next := end
			for next < n && ops[next].kind == opEqual {
				next++
			}
			if next < n && next-end <= 2*context {
				end = next
				continue
			}
			break
		}
		stop := min(n, end+context)

		h := hunk{
			oldStart: oldAt[start] + 1,
			oldLines: oldAt[stop] - oldAt[start],
			newStart: newAt[start] + 1,
			newLines: newAt[stop] - newAt[start],
			ops:      ops[start:stop],
		}
		// An empty range points at the line before it, as in "@@ -0,0 +1,2 @@".
		if h.oldLines == 0 {
			h.oldStart--
		}
		if h.newLines == 0 {
			h.newStart--
		}
		hunks = append(hunks, h)
		i = stop
	}
	return hunks
}

// separatorLine opens every file section, ahead of the "---" header.
var separatorLine = strings.Repeat("=", 67)

// filePatch renders the unified-diff fragment for one file. before and after
// must already be normalized. The result carries no trailing whitespace.
func filePatch(file, before, after string) string {
	var sb strings.Builder
	sb.WriteString(separatorLine)
	sb.WriteByte('\n')
	// The header timestamp fields are present but empty.
	fmt.Fprintf(&sb, "--- a/%s\t\n", file)
	fmt.Fprintf(&sb, "+++ b/%s\t\n", file)
	for _, h := range groupHunks(lineDiff(before, after), ContextLines) {
		fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n", h.oldStart, h.oldLines, h.newStart, h.newLines)
		for _, op := range h.ops {
			sb.WriteByte(byte(op.kind))
			sb.WriteString(op.text)
		}
	}
	return strings.TrimRight(sb.String(), " \t\r\n")
}

// CountChanges returns the number of added and removed lines between two
// texts, after normalization.
func CountChanges(before, after string) (additions, deletions int) {
	before, after = NormalizeText(before), NormalizeText(after)
	if before == after {
		return 0, 0
	}
	for _, op := range lineDiff(before, after) {
		switch op.kind {
		case opInsert:
			additions++
		case opDelete:
			deletions++
		}
	}
	return additions, deletions
}
