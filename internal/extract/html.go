package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// HTMLText extracts readable body text from HTML study notes, dropping
// script/style and page chrome and collapsing runs of whitespace.
func HTMLText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	doc.Find("script, style, nav, footer, header, aside").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	text := doc.Find("body").Text()
	text = whitespaceRE.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	if text == "" {
		return "", fmt.Errorf("no content extracted from html")
	}

	return text + "\n", nil
}
