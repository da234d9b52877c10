// Package actuals fetches externally reported values from the SEC XBRL
// concept API and aligns them to guided fiscal periods.
package actuals

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/phuslu/log"

	"guidance_credibility/pkg/core/guidance"
	"guidance_credibility/pkg/core/sec"
	"guidance_credibility/pkg/core/store"
)

// mirrorCount is how many recent reported revenue entries are mirrored into
// periods regardless of guidance presence, so a delivered-only view exists
// even when extraction found nothing.
const mirrorCount = 4

// TagForMetric maps a guidance metric to its us-gaap reporting tag.
func TagForMetric(metric string) (string, bool) {
	switch metric {
	case string(guidance.MetricRevenue):
		return "Revenues", true
	case string(guidance.MetricEPSDiluted):
		return "EarningsPerShareDiluted", true
	}
	return "", false
}

// Aligner pulls reported values and stores them against guided periods.
type Aligner struct {
	api      *sec.API
	periods  *store.PeriodRepo
	guidance *store.GuidanceRepo
	actuals  *store.ActualsRepo
}

// NewAligner creates an Aligner.
func NewAligner(api *sec.API, periods *store.PeriodRepo, guidanceRepo *store.GuidanceRepo, actualsRepo *store.ActualsRepo) *Aligner {
	return &Aligner{api: api, periods: periods, guidance: guidanceRepo, actuals: actualsRepo}
}

// PullForCompany aligns actuals to every guided (period, metric) the
// company has, then mirrors the most recent reported revenue entries.
func (a *Aligner) PullForCompany(ctx context.Context, company *store.Company) error {
	guided, err := a.guidance.GuidedMetrics(ctx, company.ID)
	if err != nil {
		return err
	}

	for _, gm := range guided {
		tag, ok := TagForMetric(gm.Metric)
		if !ok {
			continue
		}
		concept, err := a.api.GetCompanyConcept(ctx, company.CIK, tag)
		if err != nil {
			return fmt.Errorf("concept fetch for %s/%s: %w", company.Ticker, tag, err)
		}

		val := alignValue(concept, gm.FY, fpString(gm.FP))
		scaled := scaleActual(gm.Metric, val)
		row := store.ActualRow{
			PeriodID:     gm.PeriodID,
			Metric:       gm.Metric,
			ActualValue:  scaled,
			Units:        unitsForMetric(gm.Metric),
			SourceTag:    "us-gaap:" + tag,
			SourceAPIURL: sec.ConceptURL(company.CIK, tag),
		}
		if err := a.actuals.Upsert(ctx, row); err != nil {
			return err
		}
	}

	return a.mirrorRecentRevenue(ctx, company)
}

// mirrorRecentRevenue upserts the latest reported revenue entries into
// (possibly newly synthesized) periods keyed by the entry's fy/fp.
func (a *Aligner) mirrorRecentRevenue(ctx context.Context, company *store.Company) error {
	concept, err := a.api.GetCompanyConcept(ctx, company.CIK, "Revenues")
	if err != nil {
		// Best-effort degrade path: missing revenue series is not fatal.
		log.Warn().Str("ticker", company.Ticker).Err(err).Msg("revenue mirror skipped")
		return nil
	}

	series := conceptSeries(concept)
	mirrored := 0
	for i := len(series) - 1; i >= 0 && mirrored < mirrorCount; i-- {
		v := series[i]
		if v.Val == nil {
			continue
		}
		var fp *string
		if v.FP != "" {
			u := strings.ToUpper(v.FP)
			fp = &u
		}
		periodID, err := a.periods.Ensure(ctx, store.PeriodKey{
			CompanyID: company.ID,
			FY:        v.FY,
			FP:        fp,
		}, store.PeriodURLs{})
		if err != nil {
			return err
		}
		scaled := scaleActual(string(guidance.MetricRevenue), v.Val)
		row := store.ActualRow{
			PeriodID:     periodID,
			Metric:       string(guidance.MetricRevenue),
			ActualValue:  scaled,
			Units:        string(guidance.UnitsUSDMillions),
			SourceTag:    "us-gaap:Revenues",
			SourceAPIURL: sec.ConceptURL(company.CIK, "Revenues"),
		}
		if err := a.actuals.Upsert(ctx, row); err != nil {
			return err
		}
		mirrored++
	}
	return nil
}

// conceptSeries picks the value series for the units we align on.
func conceptSeries(concept *sec.CompanyConcept) []sec.ConceptValue {
	if s, ok := concept.Units["USD"]; ok {
		return s
	}
	if s, ok := concept.Units["USD/shares"]; ok {
		return s
	}
	return nil
}

// alignValue selects the series entry whose fiscal year and fiscal period
// both match the guided period, case-insensitively on fp. Absent an exact
// match it falls back to the chronologically latest numeric entry.
func alignValue(concept *sec.CompanyConcept, fy *int, fp string) *float64 {
	series := conceptSeries(concept)
	for _, v := range series {
		if fy != nil && (v.FY == nil || *v.FY != *fy) {
			continue
		}
		if fp != "" && !strings.EqualFold(v.FP, fp) {
			continue
		}
		if v.Val != nil {
			return v.Val
		}
	}
	for i := len(series) - 1; i >= 0; i-- {
		if series[i].Val != nil {
			return series[i].Val
		}
	}
	return nil
}

// scaleActual converts raw reported values to canonical units: revenue to
// USD millions rounded to 2 decimals, EPS unchanged.
func scaleActual(metric string, val *float64) *float64 {
	if val == nil {
		return nil
	}
	if metric == string(guidance.MetricRevenue) {
		scaled := math.Round(*val/1e6*100) / 100
		return &scaled
	}
	v := *val
	return &v
}

func unitsForMetric(metric string) string {
	if metric == string(guidance.MetricRevenue) {
		return string(guidance.UnitsUSDMillions)
	}
	return string(guidance.UnitsEPS)
}

func fpString(fp *string) string {
	if fp == nil {
		return ""
	}
	return *fp
}
