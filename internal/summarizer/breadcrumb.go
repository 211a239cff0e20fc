package summarizer

import (
	"regexp"
	"strings"
)

const maxBreadcrumbLines = 5

var bulletRe = regexp.MustCompile(`^(?:[-*•+]|\d+[.)])\s+(.+)$`)

// Breadcrumb digests an extraction block into at most five plain lines:
// the first bullet items that are not headings, with the bullet removed.
func Breadcrumb(block string) string {
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := bulletRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		item := strings.TrimSpace(m[1])
		if item == "" || isBoldHeading(item) {
			continue
		}
		lines = append(lines, item)
		if len(lines) == maxBreadcrumbLines {
			break
		}
	}
	return strings.Join(lines, "\n")
}

// isBoldHeading matches bullets like "- **Decisions:**" that only label a group.
func isBoldHeading(item string) bool {
	t := strings.TrimSuffix(item, ":")
	return len(t) > 4 && strings.HasPrefix(t, "**") && strings.HasSuffix(t, "**") && !strings.Contains(t[2:len(t)-2], "**")
}
