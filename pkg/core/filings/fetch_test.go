package filings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"guidance_credibility/pkg/core/sec"
)

func TestHTMLBodyText(t *testing.T) {
	html := `<html><head><style>body{color:red}</style></head>
		<body><script>track();</script>
		<h1>Q2   Results</h1>
		<p>Revenue of $500 million
		to $520 million.</p></body></html>`

	got := HTMLBodyText(html)
	want := "Q2 Results Revenue of $500 million to $520 million."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	if got := CollapseWhitespace("  a \t b\n\nc  "); got != "a b c" {
		t.Errorf("expected %q, got %q", "a b c", got)
	}
}

func TestFetchTextCachesOnDisk(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body>press release text</body></html>"))
	}))
	defer server.Close()

	client := sec.NewClient(sec.WithRateLimit(time.Millisecond))
	f := NewFetcher(client, t.TempDir())

	text, cachePath, err := f.FetchText(context.Background(), server.URL+"/ex991.htm", "text/html")
	if err != nil {
		t.Fatal(err)
	}
	if text != "press release text" {
		t.Errorf("unexpected text %q", text)
	}
	if _, err := os.Stat(cachePath); err != nil {
		t.Fatalf("expected cache file at %s: %v", cachePath, err)
	}

	// Second fetch is served from disk.
	text2, _, err := f.FetchText(context.Background(), server.URL+"/ex991.htm", "text/html")
	if err != nil {
		t.Fatal(err)
	}
	if text2 != text {
		t.Errorf("cache returned different text %q", text2)
	}
	if hits != 1 {
		t.Errorf("expected 1 upstream hit, got %d", hits)
	}
}
