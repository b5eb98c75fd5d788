package scaffold

import "strings"

// MergeBarrel appends to existing every line of addition it does not already contain.
// Lines are compared trimmed and blank lines are ignored. Existing lines keep their
// order and spelling. Appended lines use CRLF when existing already does. When
// nothing is missing, existing is returned unchanged and added is empty.
func MergeBarrel(existing, addition string) (merged string, added []string) {
	seen := make(map[string]bool)
	for _, line := range splitLines(existing) {
		if line = strings.TrimSpace(line); line != "" {
			seen[line] = true
		}
	}

	for _, line := range splitLines(addition) {
		line = strings.TrimSpace(line)
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		added = append(added, line)
	}
	if len(added) == 0 {
		return existing, nil
	}

	eol := "\n"
	if strings.Contains(existing, "\r\n") {
		eol = "\r\n"
	}

	var b strings.Builder
	b.WriteString(existing)
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		b.WriteString(eol)
	}
	for _, line := range added {
		b.WriteString(line)
		b.WriteString(eol)
	}
	return b.String(), added
}

func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
