package validation

import (
	"time"

	"github.com/orangecx/cxpipe/internal/cleaning"
	"github.com/orangecx/cxpipe/internal/table"
	"github.com/orangecx/cxpipe/pkg/logger"
)

// SuiteConfig parameterizes the quality gate.
type SuiteConfig struct {
	Threshold           float64
	DistributionCeiling float64
	DateMin             time.Time
	DateMax             time.Time
}

// DefaultSuiteConfig returns the standard gate parameters.
func DefaultSuiteConfig() SuiteConfig {
	return SuiteConfig{
		Threshold:           DefaultThreshold,
		DistributionCeiling: 0.99,
		DateMin:             time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		DateMax:             time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC),
	}
}

// Suite runs the configured check catalog over the three clean tables and
// aggregates the results into a certification report. The tables are
// consumed read-only.
type Suite struct {
	config SuiteConfig
	log    *logger.Logger
}

// NewSuite creates a Suite.
func NewSuite(config SuiteConfig, log *logger.Logger) *Suite {
	if config.Threshold <= 0 {
		config.Threshold = DefaultThreshold
	}
	if config.DistributionCeiling <= 0 {
		config.DistributionCeiling = 0.99
	}
	return &Suite{config: config, log: log}
}

// Run validates the three tables and returns the full report.
func (s *Suite) Run(shops, reviews, surveys *table.Table) *Report {
	report := NewReport(s.config.Threshold)

	shopIDs := make(map[string]struct{}, shops.NumRows())
	for _, r := range shops.Rows {
		if v := r["shop_id"]; !v.IsBlank() {
			shopIDs[v.Str] = struct{}{}
		}
	}

	s.validateShops(shops, report)
	s.validateReviews(reviews, shopIDs, report)
	s.validateSurveys(surveys, shopIDs, report)

	for _, r := range report.Results() {
		log := s.log.WithFields(map[string]interface{}{
			"table":     r.Table,
			"dimension": string(r.Dimension),
			"check":     r.Check,
			"pass_rate": r.PassRate(),
		})
		if r.IsPass() {
			log.Debug("Check passed")
		} else {
			log.WithField("failed", r.Failed).Warn("Check failed")
		}
	}

	return report
}

func (s *Suite) validateShops(t *table.Table, report *Report) {
	report.Add(CheckColumnNames(t))

	report.Add(CheckNotNull(t, "shop_id"))
	report.Add(CheckNotNull(t, "mobis_code"))
	report.Add(CheckNotNull(t, "shop_name"))

	report.Add(CheckUnique(t, "shop_id"))
	report.Add(CheckUnique(t, "mobis_code"))

	if t.HasColumn("language") {
		report.Add(CheckInSet(t, "language", set(
			cleaning.LangDutch, cleaning.LangFrench, cleaning.LangBilingual,
		)))
	}
}

func (s *Suite) validateReviews(t *table.Table, shopIDs map[string]struct{}, report *Report) {
	report.Add(CheckColumnNames(t))

	report.Add(CheckNotNull(t, "review_id"))
	report.Add(CheckNotNull(t, "shop_id"))
	report.Add(CheckNotNull(t, "rating"))

	report.Add(CheckUnique(t, "review_id"))
	// Reviews carry the id directly, so nulls count as broken references.
	report.Add(CheckForeignKey(t, "shop_id", shopIDs, false))

	report.Add(CheckRange(t, "rating", 1, 5))
	report.Add(CheckDateRange(t, "review_timestamp", s.config.DateMin, s.config.DateMax))

	report.Add(CheckNotConstant(t, "rating", s.config.DistributionCeiling))
	if t.HasColumn("response_timestamp") {
		report.Add(CheckTemporalOrder(t, "review_timestamp", "response_timestamp"))
	}
}

func (s *Suite) validateSurveys(t *table.Table, shopIDs map[string]struct{}, report *Report) {
	report.Add(CheckColumnNames(t))

	report.Add(CheckNotNull(t, "survey_id"))
	report.Add(CheckNotNull(t, "rating"))
	// shop_id may be null here: unmapped surveys are a valid outcome.

	report.Add(CheckUnique(t, "survey_id"))
	report.Add(CheckForeignKey(t, "shop_id", shopIDs, true))

	report.Add(CheckRange(t, "rating", 1, 5))
	report.Add(CheckDateRange(t, "interaction_date", s.config.DateMin, s.config.DateMax))
	report.Add(CheckDateRange(t, "response_date", s.config.DateMin, s.config.DateMax))

	report.Add(CheckNotConstant(t, "rating", s.config.DistributionCeiling))
	report.Add(CheckTemporalOrder(t, "interaction_date", "response_date"))
}

func set(values ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}
