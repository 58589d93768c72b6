package content

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// privacyNoticeHref marks the boilerplate privacy paragraph the API appends
// to every episode description.
const privacyNoticeHref = "omnystudio.com/listener"

// summaryMaxLen caps page-derived summaries; full page text would bloat the
// record header.
const summaryMaxLen = 500

// SanitizeDescription strips the API's HTML description down to plain text,
// removing any paragraph that links to the privacy notice.
func SanitizeDescription(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse description: %w", err)
	}

	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		remove := false
		p.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			if strings.Contains(href, privacyNoticeHref) {
				remove = true
			}
		})
		if remove {
			p.Remove()
		}
	})

	return strings.TrimSpace(doc.Text()), nil
}

// PageSummary recovers a short summary from the episode page itself, for
// episodes whose API description sanitizes to nothing. Prefers the
// readability excerpt, falling back to truncated main text.
func PageSummary(html string) (string, error) {
	article, err := readability.FromReader(strings.NewReader(html), nil)
	if err != nil {
		return "", fmt.Errorf("extract page text: %w", err)
	}

	if excerpt := strings.TrimSpace(article.Excerpt); excerpt != "" {
		return excerpt, nil
	}

	text := strings.Join(strings.Fields(article.TextContent), " ")
	if text == "" {
		return "", errors.New("page text is empty")
	}
	if runes := []rune(text); len(runes) > summaryMaxLen {
		text = strings.TrimSpace(string(runes[:summaryMaxLen])) + "..."
	}
	return text, nil
}
