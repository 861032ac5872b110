package text

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// HTMLText returns the visible text of an HTML document: the contents of
// text nodes outside of script, style and head elements, separated by
// spaces.
func HTMLText(doc string) string {
	var parts []string
	z := html.NewTokenizer(bytes.NewBufferString(doc))
	skipDepth := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return CollapseSpace(strings.Join(parts, " "))
		case html.TextToken:
			if skipDepth == 0 {
				parts = append(parts, string(z.Text()))
			}
		case html.StartTagToken, html.EndTagToken:
			tn, _ := z.TagName()
			if !hiddenTag(tn) {
				continue
			}
			if tt == html.StartTagToken {
				skipDepth++
			} else if skipDepth > 0 {
				skipDepth--
			}
		}
	}
}

func hiddenTag(name []byte) bool {
	switch string(name) {
	case "script", "style", "head":
		return true
	}
	return false
}
