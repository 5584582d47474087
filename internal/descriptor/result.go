package descriptor

import "strings"

// snippetMax bounds the amount of original input echoed into a Diagnostic.
const snippetMax = 50

// Diagnostic records one rejected input fragment: where it was, what it
// looked like and why it was rejected.
type Diagnostic struct {
	Position int    `json:"position"`
	Input    string `json:"input"`
	Message  string `json:"message"`
}

// BatchResult is the outcome of decoding multi-entry input. It is constructed
// once per decode call and never mutated by downstream consumers. Attempted
// excludes blank and comment lines.
type BatchResult struct {
	Outbounds   []*Outbound
	Diagnostics []Diagnostic
	Attempted   int
	Succeeded   int
	Failed      int
}

// Snippet flattens and truncates raw input for inclusion in a Diagnostic.
func Snippet(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > snippetMax {
		return s[:snippetMax]
	}
	return s
}
