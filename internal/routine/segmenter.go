package routine

import (
	"regexp"
	"strings"
)

var (
	blankLine = regexp.MustCompile(`(?m)^[ \t]+$`)
	blockSep  = regexp.MustCompile(`\n{2,}`)
)

// Segment делит текст рутины на блоки (дни) по пустым строкам.
// Блоки обрезаются, пустые отбрасываются, порядок сохраняется.
func Segment(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = blankLine.ReplaceAllString(text, "")

	parts := blockSep.Split(strings.TrimSpace(text), -1)
	blocks := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			blocks = append(blocks, p)
		}
	}
	return blocks
}
