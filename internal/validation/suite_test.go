package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orangecx/cxpipe/internal/table"
	"github.com/orangecx/cxpipe/pkg/logger"
)

func cleanShops() *table.Table {
	return fixtureTable("dim_shops",
		[]string{"shop_id", "mobis_code", "shop_name", "language"},
		[]string{"a1", "X1", "Shop One", "NL"},
		[]string{"a2", "X2", "Shop Two", "FR"},
		[]string{"a3", "X3", "Shop Three", "BI"})
}

func cleanReviews() *table.Table {
	return fixtureTable("fact_reviews",
		[]string{"review_id", "shop_id", "review_timestamp", "rating", "response_timestamp"},
		[]string{"r1", "a1", "2025-03-10T10:00:00Z", "4", "2025-03-10T11:00:00Z"},
		[]string{"r2", "a2", "2025-04-01T09:00:00Z", "5", ""},
		[]string{"r3", "a3", "2025-05-20T15:30:00Z", "2", "2025-05-20T16:00:00Z"})
}

func cleanSurveys() *table.Table {
	return fixtureTable("fact_surveys",
		[]string{"survey_id", "shop_id", "mobis_code", "interaction_date", "response_date", "rating", "is_mappable"},
		[]string{"s1", "a1", "X1", "2025-03-15", "2025-03-16", "5", "true"},
		[]string{"s2", "", "X9", "2025-04-02", "", "3", "false"},
		[]string{"s3", "a2", "X2", "2025-06-10", "2025-06-11", "1", "true"})
}

func TestSuiteCertifiesCleanTables(t *testing.T) {
	suite := NewSuite(DefaultSuiteConfig(), logger.Nop())
	report := suite.Run(cleanShops(), cleanReviews(), cleanSurveys())

	require.Empty(t, report.Failures(),
		"clean fixtures must produce no failing checks")
	assert.True(t, report.IsCertified())
	assert.InDelta(t, 1.0, report.OverallScore(), 1e-9)
	assert.Equal(t,
		[]string{"dim_shops", "fact_reviews", "fact_surveys"},
		report.Tables())
	assert.Len(t, report.Dimensions(), 4)
}

func TestSuiteFlagsBrokenLinks(t *testing.T) {
	reviews := cleanReviews()
	// Point every review at a shop the dimension does not know.
	for i := range reviews.Rows {
		reviews.Set(i, "shop_id", table.String("ghost"))
	}

	suite := NewSuite(DefaultSuiteConfig(), logger.Nop())
	report := suite.Run(cleanShops(), reviews, cleanSurveys())

	assert.False(t, report.IsCertified())
	assert.Less(t, report.DimensionScore(Uniqueness), DefaultThreshold)

	var found bool
	for _, r := range report.Failures() {
		if r.Table == "fact_reviews" && r.Check == "shop_id FK valid" {
			found = true
			assert.Equal(t, 3, r.Failed)
		}
	}
	assert.True(t, found)
}

func TestSuiteTolerantOfUnmappedSurveys(t *testing.T) {
	// A survey with a null shop_id is valid on its own; the nullable FK
	// check only judges populated values.
	surveys := cleanSurveys()
	suite := NewSuite(DefaultSuiteConfig(), logger.Nop())
	report := suite.Run(cleanShops(), cleanReviews(), surveys)

	for _, r := range report.Results() {
		if r.Table == "fact_surveys" && r.Check == "shop_id FK valid" {
			assert.Equal(t, 2, r.Total)
			assert.True(t, r.IsPass())
			return
		}
	}
	t.Fatal("survey FK check not recorded")
}

func TestSuiteDefaultsAppliedToZeroConfig(t *testing.T) {
	suite := NewSuite(SuiteConfig{}, logger.Nop())
	report := suite.Run(cleanShops(), cleanReviews(), cleanSurveys())
	assert.InDelta(t, DefaultThreshold, report.Threshold, 1e-9)
}
