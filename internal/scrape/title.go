package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractTitle returns the text of the document's first <title> element as
// written, or "" when there is none.
func ExtractTitle(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}
	return doc.Find("title").First().Text()
}
