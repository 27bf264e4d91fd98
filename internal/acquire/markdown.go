package acquire

import (
	"regexp"
	"strings"

	"github.com/dgnsrekt/readlater/internal/article"
)

// headingScanLimit is how many non-empty lines are searched for a title
// heading.
const headingScanLimit = 5

var (
	metadataLinePattern = regexp.MustCompile(`^(?:Title|URL Source|Published Time|Markdown Content|Warning|Source):`)
	headingLinePattern  = regexp.MustCompile(`^#{1,6}[ \t]+(.+?)(?:[ \t]+#+)?[ \t]*$`)
)

// SplitMarkdown derives a title and content from proxy text. Attribution
// lines the proxy prepends are dropped first. A heading among the first few
// non-empty lines becomes the title, otherwise the first non-empty line
// does. Everything after the title line is content.
func SplitMarkdown(text string) (title, content string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if metadataLinePattern.MatchString(strings.TrimSpace(line)) {
			continue
		}
		lines = append(lines, line)
	}

	first := -1
	seen := 0
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if first < 0 {
			first = i
		}
		if m := headingLinePattern.FindStringSubmatch(trimmed); m != nil {
			return article.TruncateTitle(m[1]), strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
		}
		seen++
		if seen >= headingScanLimit {
			break
		}
	}

	if first < 0 {
		return "", ""
	}
	return article.TruncateTitle(lines[first]), strings.TrimSpace(strings.Join(lines[first+1:], "\n"))
}
