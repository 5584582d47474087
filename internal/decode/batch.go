package decode

import (
	"strings"

	"singforge/internal/descriptor"
)

// DecodeBatch runs every non-blank, non-comment line of text through the
// protocol dispatcher. Successes and per-line diagnostics accumulate
// independently; one bad line never discards the rest.
//
// Default tags count successes, not lines, so a batch with rejected or
// skipped lines still yields compact sequential proxy-p1..proxy-pN tags.
// Diagnostics keep the 1-based source line so users can find the bad entry.
func DecodeBatch(text string) *descriptor.BatchResult {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	res := &descriptor.BatchResult{}
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		res.Attempted++
		out, err := DecodeLink(line, len(res.Outbounds)+1)
		if err != nil {
			res.Failed++
			res.Diagnostics = append(res.Diagnostics, descriptor.Diagnostic{
				Position: i + 1,
				Input:    descriptor.Snippet(line),
				Message:  err.Error(),
			})
			continue
		}
		res.Succeeded++
		res.Outbounds = append(res.Outbounds, out)
	}
	return res
}
