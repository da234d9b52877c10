package filings

import (
	"context"
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/phuslu/log"

	"guidance_credibility/pkg/core/sec"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Fetcher downloads an exhibit document and reduces it to plain text.
// Fetched text is cached on disk so the exhibit audit trail can point at it.
type Fetcher struct {
	client   *sec.Client
	cacheDir string
}

// NewFetcher creates a Fetcher. An empty cacheDir defaults to
// .cache/exhibits in the current working directory.
func NewFetcher(client *sec.Client, cacheDir string) *Fetcher {
	if cacheDir == "" {
		cacheDir = filepath.Join(".cache", "exhibits")
	}
	os.MkdirAll(cacheDir, 0755)
	return &Fetcher{client: client, cacheDir: cacheDir}
}

// FetchText downloads the document at url and returns its normalized body
// text plus the path of the on-disk text cache entry. A parse failure on one
// document degrades to empty text rather than an error so iteration over the
// remaining exhibits continues.
func (f *Fetcher) FetchText(ctx context.Context, url, contentType string) (text string, cachePath string, err error) {
	cachePath = filepath.Join(f.cacheDir, fmt.Sprintf("%x.txt", md5.Sum([]byte(url))))
	if data, readErr := os.ReadFile(cachePath); readErr == nil {
		return string(data), cachePath, nil
	}

	body, respType, err := f.client.GetDocument(ctx, url)
	if err != nil {
		return "", "", err
	}
	if respType != "" {
		contentType = respType
	}

	if strings.Contains(contentType, "pdf") || strings.HasSuffix(strings.ToLower(url), ".pdf") {
		text = f.extractPDFText(body)
	} else {
		text = HTMLBodyText(string(body))
	}

	if writeErr := os.WriteFile(cachePath, []byte(text), 0644); writeErr != nil {
		log.Warn().Str("path", cachePath).Err(writeErr).Msg("exhibit text cache write failed")
	}
	return text, cachePath, nil
}

// HTMLBodyText reduces an HTML document to collapsed body text.
// Malformed markup degrades to an empty string.
func HTMLBodyText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style").Remove()
	text := doc.Find("body").Text()
	if text == "" {
		text = doc.Text()
	}
	return CollapseWhitespace(text)
}

// CollapseWhitespace folds all whitespace runs to single spaces.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// extractPDFText pulls page content out of a PDF via pdfcpu. pdfcpu works on
// files, so the body is staged in a temp directory. Extraction failures
// degrade to empty text.
func (f *Fetcher) extractPDFText(body []byte) string {
	tempDir, err := os.MkdirTemp("", "gci-pdf-")
	if err != nil {
		return ""
	}
	defer os.RemoveAll(tempDir)

	tempFile := filepath.Join(tempDir, "exhibit.pdf")
	if err := os.WriteFile(tempFile, body, 0644); err != nil {
		return ""
	}

	pdfCtx, err := api.ReadContextFile(tempFile)
	if err != nil {
		log.Warn().Err(err).Msg("PDF parse failed")
		return ""
	}

	outDir := filepath.Join(tempDir, "pages")
	os.MkdirAll(outDir, 0755)
	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(tempFile, outDir, nil, conf); err != nil {
		log.Warn().Int("pages", pdfCtx.PageCount).Err(err).Msg("PDF content extraction failed")
		return ""
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return ""
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			continue
		}
		b.Write(content)
		b.WriteByte('\n')
	}
	return CollapseWhitespace(b.String())
}
