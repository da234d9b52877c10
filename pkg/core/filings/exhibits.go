package filings

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/phuslu/log"

	"guidance_credibility/pkg/core/sec"
)

// Exhibit is one classified document attached to a filing.
type Exhibit struct {
	Number      string // canonical "99.1" form
	URL         string
	ContentType string
	FileName    string
}

// Exhibit numbers appear as "EX-99.1", "Exhibit 99.1" or bare "99.1"
// depending on the filer.
var (
	exTypedRe = regexp.MustCompile(`(?i)\b(?:EX[-\s]?|EXHIBIT\s+)(\d{1,2}(?:\.\d{1,2})?)\b`)
	exBareRe  = regexp.MustCompile(`\b(99\.\d{1,2})\b`)
)

// Discoverer enumerates exhibits from a filing's index page.
type Discoverer struct {
	client *sec.Client
}

// NewDiscoverer creates a Discoverer over the throttled SEC client.
func NewDiscoverer(client *sec.Client) *Discoverer {
	return &Discoverer{client: client}
}

// Discover fetches the filing index page and classifies each row.
// Order is discovery order. If nothing classifies as an exhibit, a single
// fallback entry for the primary filing document is returned so the caller
// always has one document to try.
func (d *Discoverer) Discover(ctx context.Context, cik10, accession, primaryDoc string) ([]Exhibit, error) {
	base := ArchiveBase(cik10, accession)
	indexURL := fmt.Sprintf("%s/%s-index.html", base, strings.ReplaceAll(accession, "-", ""))

	fallback := []Exhibit{{
		Number:      "",
		URL:         base + "/" + primaryDoc,
		ContentType: contentTypeFor(primaryDoc),
		FileName:    primaryDoc,
	}}

	body, _, err := d.client.GetDocument(ctx, indexURL)
	if err != nil {
		log.Warn().Str("url", indexURL).Err(err).Msg("filing index fetch failed, using primary document")
		return fallback, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		// Malformed index page degrades to the primary document.
		return fallback, nil
	}

	seen := make(map[string]bool)
	exhibits := make([]Exhibit, 0)

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		href, ok := row.Find("a[href]").First().Attr("href")
		if !ok {
			return
		}
		fileName := href
		if i := strings.LastIndex(fileName, "/"); i >= 0 {
			fileName = fileName[i+1:]
		}

		// Type column on EDGAR index pages is the last-but-one cell; fall
		// back to the whole row text and the file name.
		declaredType := strings.TrimSpace(row.Find("td").Eq(3).Text())
		number := classifyExhibit(declaredType, row.Text(), fileName)
		if number == "" {
			return
		}

		url := absoluteURL(base, href)
		key := number + "|" + url
		if seen[key] {
			return
		}
		seen[key] = true
		exhibits = append(exhibits, Exhibit{
			Number:      number,
			URL:         url,
			ContentType: contentTypeFor(fileName),
			FileName:    fileName,
		})
	})

	// Some older index pages carry bare anchors outside a table.
	if len(exhibits) == 0 {
		doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			number := classifyExhibit("", a.Text(), href)
			if number == "" {
				return
			}
			url := absoluteURL(base, href)
			key := number + "|" + url
			if seen[key] {
				return
			}
			seen[key] = true
			fileName := href
			if i := strings.LastIndex(fileName, "/"); i >= 0 {
				fileName = fileName[i+1:]
			}
			exhibits = append(exhibits, Exhibit{
				Number:      number,
				URL:         url,
				ContentType: contentTypeFor(fileName),
				FileName:    fileName,
			})
		})
	}

	if len(exhibits) == 0 {
		return fallback, nil
	}
	return exhibits, nil
}

// classifyExhibit matches exhibit-number patterns against the declared type,
// then the row text, then the file name. Returns the canonical number or "".
func classifyExhibit(declaredType, rowText, fileName string) string {
	for _, s := range []string{declaredType, rowText, fileName} {
		if s == "" {
			continue
		}
		if m := exTypedRe.FindStringSubmatch(s); m != nil {
			return m[1]
		}
		if m := exBareRe.FindStringSubmatch(s); m != nil {
			return m[1]
		}
	}
	return ""
}

func contentTypeFor(fileName string) string {
	lower := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(lower, ".htm"), strings.HasSuffix(lower, ".html"):
		return "text/html"
	case strings.HasSuffix(lower, ".txt"):
		return "text/plain"
	default:
		return "text/html"
	}
}

func absoluteURL(base, href string) string {
	switch {
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "/"):
		return "https://www.sec.gov" + href
	default:
		return base + "/" + href
	}
}
