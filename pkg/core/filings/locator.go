// Package filings locates candidate filings for a company and reduces their
// attached exhibit documents to normalized plain text.
package filings

import (
	"fmt"
	"strconv"
	"strings"

	"guidance_credibility/pkg/core/sec"
)

// DefaultFilingLimit caps how many recent filings are walked per ticker.
const DefaultFilingLimit = 8

// Candidate is one filing selected from the submissions index.
type Candidate struct {
	AccessionNumber string
	PrimaryDocument string
	FilingDate      string
}

// CandidateFilings denormalizes the submissions parallel arrays and returns
// the most recent filings of the requested form type, newest first as SEC
// lists them. limit <= 0 means no cap.
func CandidateFilings(subs *sec.Submissions, form string, limit int) []Candidate {
	recent := subs.Filings.Recent
	out := make([]Candidate, 0)
	for i := range recent.Form {
		if recent.Form[i] != form {
			continue
		}
		if i >= len(recent.AccessionNumber) || i >= len(recent.PrimaryDocument) {
			// Truncated parallel arrays; treat the remainder as malformed.
			break
		}
		c := Candidate{
			AccessionNumber: recent.AccessionNumber[i],
			PrimaryDocument: recent.PrimaryDocument[i],
		}
		if i < len(recent.FilingDate) {
			c.FilingDate = recent.FilingDate[i]
		}
		out = append(out, c)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// ArchiveBase returns the EDGAR archive directory URL for a filing.
func ArchiveBase(cik10, accession string) string {
	n, _ := strconv.ParseInt(strings.TrimLeft(cik10, "0"), 10, 64)
	return fmt.Sprintf(sec.ArchivesBaseURL, n, strings.ReplaceAll(accession, "-", ""))
}

// PrimaryDocumentURL returns the URL of a filing's primary document.
func PrimaryDocumentURL(cik10, accession, primaryDoc string) string {
	return ArchiveBase(cik10, accession) + "/" + primaryDoc
}

// ViewerURL returns the inline-viewer URL recorded as a period's source
// filing link.
func ViewerURL(accession string) string {
	return "https://www.sec.gov/ixviewer/doc?action=display&source=" + accession
}
