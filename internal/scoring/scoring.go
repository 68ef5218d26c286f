// Package scoring converts raw trial outcomes into normalized 0-10 results.
// Every function here is pure: the same outcome sequence always produces the
// same result, and no well-formed sequence causes an error.
package scoring

import (
	"math"
	"strings"
	"time"
)

// TrialOutcome is one stimulus-response record. A nil RespondedAt marks a
// timeout, which is always scored as an incorrect answer.
type TrialOutcome struct {
	TrialIndex          int        `json:"trialIndex"`
	PresentedAt         time.Time  `json:"presentedAt"`
	RespondedAt         *time.Time `json:"respondedAt"`
	SelectedValue       string     `json:"selectedValue"`
	IsCorrect           bool       `json:"isCorrect"`
	ResponseTimeSeconds float64    `json:"responseTimeSeconds"`
}

// Metadata carries the test-specific fields persisted alongside a score.
type Metadata struct {
	TotalTrials            int       `json:"totalTrials"`
	CorrectResponses       int       `json:"correctResponses"`
	AvgResponseTimeSeconds float64   `json:"avgResponseTimeSeconds,omitempty"`
	ResponseTimes          []float64 `json:"responseTimes,omitempty"`
	BasePercent            float64   `json:"basePercent,omitempty"`
	PenaltyPercent         float64   `json:"penaltyPercent,omitempty"`
	FinalPercent           float64   `json:"finalPercent,omitempty"`
	TimeTakenSeconds       int       `json:"timeTakenSeconds,omitempty"`
}

// Summary is a scorer's output: the normalized score plus its metadata.
type Summary struct {
	Score    float64
	Metadata Metadata
}

// Round2 rounds to two decimal places, the precision of every stored score.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// PerformanceLevel maps a normalized score onto the coarse tier shown to
// the user: score<4 is Low, 4..7 is Moderate, above 7 is High.
func PerformanceLevel(score float64) string {
	switch {
	case score < 4:
		return "Low"
	case score <= 7:
		return "Moderate"
	default:
		return "High"
	}
}

// Percentage maps a normalized score onto 0-100.
func Percentage(score, maxScore float64) int {
	if maxScore <= 0 {
		return 0
	}
	return int(math.Round(score / maxScore * 100))
}

func countCorrect(outcomes []TrialOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o.IsCorrect {
			n++
		}
	}
	return n
}

// ScorePatternRecognition scores a pattern-recognition session:
// round((correct/total)*10, 2), no time penalty.
func ScorePatternRecognition(outcomes []TrialOutcome) Summary {
	total := len(outcomes)
	correct := countCorrect(outcomes)

	var score float64
	if total > 0 {
		score = Round2(float64(correct) / float64(total) * 10)
	}
	return Summary{
		Score: score,
		Metadata: Metadata{
			TotalTrials:      total,
			CorrectResponses: correct,
		},
	}
}

// ScoreStroop scores a Stroop session. Accuracy sets the base percentage; an
// average response time above two seconds subtracts up to twenty points.
// Timed-out trials count as incorrect but are excluded from the response-time
// average, so a slow-but-responsive run and an unresponsive run are penalized
// through different terms.
func ScoreStroop(outcomes []TrialOutcome) Summary {
	total := len(outcomes)
	correct := countCorrect(outcomes)

	var responseTimes []float64
	for _, o := range outcomes {
		if o.RespondedAt != nil {
			responseTimes = append(responseTimes, o.ResponseTimeSeconds)
		}
	}
	var avgRT float64
	if len(responseTimes) > 0 {
		var sum float64
		for _, rt := range responseTimes {
			sum += rt
		}
		avgRT = sum / float64(len(responseTimes))
	}

	var basePercent float64
	if total > 0 {
		basePercent = float64(correct) / float64(total) * 100
	}
	var penalty float64
	if avgRT > 2 {
		penalty = math.Min(20, (avgRT-2)*10)
	}
	finalPercent := clamp(basePercent-penalty, 0, 100)
	score := Round2(finalPercent / 100 * 10)

	return Summary{
		Score: score,
		Metadata: Metadata{
			TotalTrials:            total,
			CorrectResponses:       correct,
			AvgResponseTimeSeconds: avgRT,
			ResponseTimes:          responseTimes,
			BasePercent:            basePercent,
			PenaltyPercent:         penalty,
			FinalPercent:           finalPercent,
		},
	}
}

// ScoreWordRecall scores a recall session against the study list. Matching
// is order-independent and deliberately lenient on typos; each target word
// counts at most once no matter how many inputs match it, so duplicate or
// overlapping inputs cannot inflate the score.
func ScoreWordRecall(targets, inputs []string) Summary {
	cleaned := make([]string, 0, len(inputs))
	for _, in := range inputs {
		cleaned = append(cleaned, strings.ToLower(strings.TrimSpace(in)))
	}

	matched := make(map[string]bool, len(targets))
	for _, target := range targets {
		targetLower := strings.ToLower(target)
		for _, input := range cleaned {
			if input == "" {
				continue
			}
			if WordMatches(input, targetLower) {
				matched[targetLower] = true
				break
			}
		}
	}

	total := len(targets)
	correct := len(matched)
	var score float64
	if total > 0 {
		score = Round2(float64(correct) / float64(total) * 10)
	}
	return Summary{
		Score: score,
		Metadata: Metadata{
			TotalTrials:      total,
			CorrectResponses: correct,
		},
	}
}

// WordMatches reports whether a typed input counts as a recall of the target
// word. Both arguments must already be lowercased. A match is exact
// equality, substring containment in either direction, or a shared
// three-letter prefix when both strings are longer than three characters.
func WordMatches(input, target string) bool {
	if input == "" {
		return false
	}
	if input == target {
		return true
	}
	if strings.Contains(input, target) || strings.Contains(target, input) {
		return true
	}
	return len(input) > 3 && len(target) > 3 && input[:3] == target[:3]
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
