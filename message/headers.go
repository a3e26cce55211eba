package message

import "strings"

// headerLines is an ordered list of raw "Name: Value" header lines.
type headerLines []string

// get returns the value of the first line whose name matches, case-insensitive.
func (h headerLines) get(name string) string {
	for _, line := range h {
		n, v, ok := SplitHeader(line)
		if ok && strings.EqualFold(n, name) {
			return v
		}
	}
	return ""
}

// values returns the values of every line whose name matches.
func (h headerLines) values(name string) []string {
	var out []string
	for _, line := range h {
		n, v, ok := SplitHeader(line)
		if ok && strings.EqualFold(n, name) {
			out = append(out, v)
		}
	}
	return out
}

// SplitHeader splits a "Name: Value" line. The value is trimmed of
// surrounding whitespace.
func SplitHeader(line string) (name, value string, ok bool) {
	name, value, ok = strings.Cut(line, ":")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(name), strings.TrimSpace(value), true
}

// HeaderName returns the name part of a header line, or "" when the line has
// no colon.
func HeaderName(line string) string {
	n, _, _ := SplitHeader(line)
	return n
}
