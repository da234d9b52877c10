package filings

import "testing"

func TestClassifyExhibit(t *testing.T) {
	cases := []struct {
		declared, rowText, fileName, want string
	}{
		{"EX-99.1", "", "press.htm", "99.1"},
		{"EX 99.2", "", "deck.pdf", "99.2"},
		{"Exhibit 10.1", "", "agreement.htm", "10.1"},
		{"", "Press Release dated August 27, 2025 (Exhibit 99.1)", "press.htm", "99.1"},
		{"", "99.1 press release", "press.htm", "99.1"},
		{"", "", "ex991.htm", ""}, // digits run together, not a number
		{"8-K", "primary document", "a8k.htm", ""},
		{"", "", "", ""},
	}
	for _, c := range cases {
		if got := classifyExhibit(c.declared, c.rowText, c.fileName); got != c.want {
			t.Errorf("classifyExhibit(%q, %q, %q) = %q, want %q", c.declared, c.rowText, c.fileName, got, c.want)
		}
	}
}

func TestContentTypeFor(t *testing.T) {
	cases := map[string]string{
		"press.pdf":   "application/pdf",
		"press.htm":   "text/html",
		"press.html":  "text/html",
		"exhibit.txt": "text/plain",
		"unknown.xyz": "text/html",
	}
	for name, want := range cases {
		if got := contentTypeFor(name); got != want {
			t.Errorf("contentTypeFor(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestAbsoluteURL(t *testing.T) {
	base := "https://www.sec.gov/Archives/edgar/data/320193/000032019325000001"
	cases := map[string]string{
		"press.htm":                "https://www.sec.gov/Archives/edgar/data/320193/000032019325000001/press.htm",
		"/Archives/edgar/x.htm":    "https://www.sec.gov/Archives/edgar/x.htm",
		"https://cdn.sec.gov/a.js": "https://cdn.sec.gov/a.js",
	}
	for href, want := range cases {
		if got := absoluteURL(base, href); got != want {
			t.Errorf("absoluteURL(%q) = %q, want %q", href, got, want)
		}
	}
}
