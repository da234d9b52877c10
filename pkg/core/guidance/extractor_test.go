package guidance

import "testing"

func TestExtractRevenueAndEPS(t *testing.T) {
	text := "For the third quarter of fiscal 2025, we expect revenue of $500 million to $520 million " +
		"and non-GAAP diluted EPS of $1.20 to $1.30. FY2025 Q3 details follow."

	statements := Extract(text, "https://example.com/ex991.htm")
	if len(statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(statements))
	}

	rev := statements[0]
	if rev.Metric != MetricRevenue {
		t.Errorf("expected revenue first, got %s", rev.Metric)
	}
	if rev.Min != 500 || rev.Max != 520 {
		t.Errorf("expected [500, 520], got [%f, %f]", rev.Min, rev.Max)
	}
	if rev.Units != UnitsUSDMillions {
		t.Errorf("expected USD_M units, got %s", rev.Units)
	}
	if rev.Basis != BasisNonGAAP {
		t.Errorf("expected non-GAAP basis, got %q", rev.Basis)
	}
	if rev.SourceURL != "https://example.com/ex991.htm" {
		t.Errorf("unexpected source URL %q", rev.SourceURL)
	}

	eps := statements[1]
	if eps.Metric != MetricEPSDiluted {
		t.Errorf("expected eps_diluted, got %s", eps.Metric)
	}
	if eps.Min != 1.20 || eps.Max != 1.30 {
		t.Errorf("expected [1.20, 1.30], got [%f, %f]", eps.Min, eps.Max)
	}
	if eps.Units != UnitsEPS {
		t.Errorf("expected EPS units, got %s", eps.Units)
	}
}

func TestExtractExpectedToBePhrasing(t *testing.T) {
	// Passive phrasing carries no "expects" form, only "expected".
	text := "Revenue is expected to be $5.2 billion, plus or minus 2%."
	statements := Extract(text, "u")
	if len(statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(statements))
	}
	// 5200 * 0.98 = 5096, 5200 * 1.02 = 5304.
	if statements[0].Min != 5096 || statements[0].Max != 5304 {
		t.Errorf("expected [5096, 5304], got [%f, %f]", statements[0].Min, statements[0].Max)
	}
	if statements[0].Metric != MetricRevenue {
		t.Errorf("expected revenue, got %s", statements[0].Metric)
	}
}

func TestExtractRequiresKeyword(t *testing.T) {
	// A dollar range with no guidance-indicating keyword is not guidance.
	text := "The company repurchased shares for $500 million to $520 million during the quarter."
	if statements := Extract(text, "u"); len(statements) != 0 {
		t.Errorf("expected no statements, got %d", len(statements))
	}
}

func TestExtractMidpointPriority(t *testing.T) {
	text := "Revenue outlook is $5.2 billion, plus or minus 2%."
	statements := Extract(text, "u")
	if len(statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(statements))
	}
	if statements[0].Min != 5096 || statements[0].Max != 5304 {
		t.Errorf("expected [5096, 5304], got [%f, %f]", statements[0].Min, statements[0].Max)
	}
}

func TestExtractEmptyIsValid(t *testing.T) {
	statements := Extract("", "u")
	if statements == nil || len(statements) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", statements)
	}
}

func TestNormalizeText(t *testing.T) {
	got := NormalizeText("revenue  of $5.2–$5.4   billion\n")
	want := "revenue of $5.2-$5.4 billion"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestDeferredToCall(t *testing.T) {
	deferred := "The company will provide its financial guidance on the earnings call today."
	if !DeferredToCall(deferred) {
		t.Error("expected deferral to be detected")
	}
	direct := "We expect revenue of $500 million to $520 million."
	if DeferredToCall(direct) {
		t.Error("direct guidance should not be treated as deferred")
	}
}

func TestInferPeriod(t *testing.T) {
	fy, fp := InferPeriod("guidance for Q3 of FY2025")
	if fy == nil || *fy != 2025 {
		t.Errorf("expected FY 2025, got %v", fy)
	}
	if fp != "Q3" {
		t.Errorf("expected Q3, got %q", fp)
	}

	fy, fp = InferPeriod("full-year FY 2024 outlook")
	if fy == nil || *fy != 2024 {
		t.Errorf("expected FY 2024, got %v", fy)
	}
	if fp != "FY" {
		t.Errorf("expected FY, got %q", fp)
	}

	fy, fp = InferPeriod("revenue of $500 million")
	if fy != nil || fp != "" {
		t.Errorf("expected no period, got %v %q", fy, fp)
	}
}
