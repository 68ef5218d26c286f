// Package risk computes heuristic dementia-risk estimates. Nothing here is a
// diagnosis; the numbers blend test performance with coarse demographic
// factors. Both entry points are pure functions so the server can recompute
// them as the authoritative path.
package risk

import (
	"math"
	"strings"

	"dementia-tracker/internal/models"
)

// Fixed blend weights for the per-session assessment.
const (
	TestsWeight = 0.7
	DemoWeight  = 0.3
)

// memorySymptomsBonus is a reserved demographic term with no data-collection
// path yet. It stays at zero until symptom intake exists.
const memorySymptomsBonus = 0

// Profile is the read-only slice of a user record the risk formulas consume.
type Profile struct {
	Age               int
	Gender            string
	FamilyHistory     string
	MedicalConditions string
}

// Assessment is the per-session risk result blended from test performance
// and demographics.
type Assessment struct {
	FinalRisk int     `json:"final_risk"`
	Category  string  `json:"category"`
	TestRisk  int     `json:"test_risk"`
	DemoRisk  int     `json:"demo_risk"`
	AvgScore  float64 `json:"avg_score"`
}

// hasEntry reports whether a free-text profile field carries a real value
// rather than being empty or the literal "none".
func hasEntry(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && !strings.EqualFold(s, "none")
}

func ageFactor(age int) int {
	switch {
	case age >= 75:
		return 30
	case age >= 65:
		return 20
	case age >= 60:
		return 12
	default:
		return 0
	}
}

// Categorize maps a 0-100 risk score onto its tier. Thresholds are inclusive
// on the upper category: 50 is High, 20 is Moderate.
func Categorize(finalRisk int) string {
	switch {
	case finalRisk >= 50:
		return models.RiskCategoryHigh
	case finalRisk >= 20:
		return models.RiskCategoryModerate
	default:
		return models.RiskCategoryLow
	}
}

// Assess computes the per-session risk from this session's normalized scores
// (0-10 scale, usually a single element) and the user's profile. Same inputs
// always yield the same output.
func Assess(scores []float64, profile Profile) Assessment {
	var avg float64
	if len(scores) > 0 {
		var sum float64
		for _, s := range scores {
			sum += s
		}
		avg = sum / float64(len(scores))
	}

	testRisk := (1 - avg/10) * 100

	demoRisk := ageFactor(profile.Age)
	if hasEntry(profile.FamilyHistory) {
		demoRisk += 20
	}
	demoRisk += memorySymptomsBonus
	if demoRisk > 100 {
		demoRisk = 100
	}

	blended := TestsWeight*testRisk + DemoWeight*float64(demoRisk)
	final := int(math.Round(math.Max(0, math.Min(100, blended))))

	return Assessment{
		FinalRisk: final,
		Category:  Categorize(final),
		TestRisk:  int(math.Round(testRisk)),
		DemoRisk:  demoRisk,
		AvgScore:  avg,
	}
}

// CognitiveSummary is a recent-history aggregate consumed by the standalone
// evaluation flow.
type CognitiveSummary struct {
	TotalTests        int
	AveragePercentage float64
}

// Evaluation is the standalone additive risk evaluation with its explanatory
// factor and recommendation lists.
type Evaluation struct {
	RiskScore       int
	RiskCategory    string
	Factors         []string
	Recommendations []string
}

// Evaluate runs the standalone point-based evaluation over a full profile
// and the user's recent cognitive-test aggregate. Unlike Assess it is not
// tied to a single session; the dashboard evaluation flow calls it over the
// last three months of results.
func Evaluate(profile Profile, summary CognitiveSummary) Evaluation {
	score := 0
	var factors, recommendations []string

	switch {
	case profile.Age >= 65:
		score += 25
		factors = append(factors, "Age 65+")
		recommendations = append(recommendations, "Regular cognitive monitoring recommended")
	case profile.Age >= 50:
		score += 15
		factors = append(factors, "Age 50-64")
		recommendations = append(recommendations, "Consider annual cognitive assessments")
	case profile.Age >= 35:
		score += 5
		factors = append(factors, "Age 35-49")
	}

	if hasEntry(profile.FamilyHistory) {
		score += 20
		factors = append(factors, "Family history of dementia")
		recommendations = append(recommendations, "Genetic counseling may be beneficial")
	}

	if hasEntry(profile.MedicalConditions) {
		score += 15
		factors = append(factors, "Existing medical conditions")
		recommendations = append(recommendations, "Regular medical check-ups important")
	}

	if summary.TotalTests > 0 {
		switch {
		case summary.AveragePercentage < 60:
			score += 40
			factors = append(factors, "Low cognitive test scores")
			recommendations = append(recommendations, "Consult healthcare provider for comprehensive evaluation")
		case summary.AveragePercentage < 75:
			score += 25
			factors = append(factors, "Below average cognitive test scores")
			recommendations = append(recommendations, "Consider more frequent testing and lifestyle modifications")
		case summary.AveragePercentage < 85:
			score += 15
			factors = append(factors, "Moderate cognitive test scores")
			recommendations = append(recommendations, "Continue monitoring and maintain healthy lifestyle")
		default:
			score += 5
			factors = append(factors, "Good cognitive test scores")
			recommendations = append(recommendations, "Maintain current healthy habits")
		}
	}

	var category string
	switch {
	case score >= 70:
		category = models.RiskCategoryHigh
		recommendations = append(recommendations,
			"Schedule appointment with neurologist or geriatrician",
			"Consider brain imaging studies if recommended by doctor")
	case score >= 40:
		category = models.RiskCategoryModerate
		recommendations = append(recommendations,
			"Regular monitoring every 3-6 months",
			"Focus on lifestyle modifications")
	default:
		category = models.RiskCategoryLow
		recommendations = append(recommendations,
			"Continue healthy lifestyle habits",
			"Annual cognitive assessment sufficient")
	}

	if score > 100 {
		score = 100
	}
	return Evaluation{
		RiskScore:       score,
		RiskCategory:    category,
		Factors:         factors,
		Recommendations: recommendations,
	}
}
