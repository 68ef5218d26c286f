package scoring

import (
	"math"
	"testing"
	"time"
)

func outcomesWithCorrect(total, correct int) []TrialOutcome {
	now := time.Now()
	out := make([]TrialOutcome, total)
	for i := range out {
		resp := now.Add(time.Second)
		out[i] = TrialOutcome{
			TrialIndex:          i,
			PresentedAt:         now,
			RespondedAt:         &resp,
			IsCorrect:           i < correct,
			ResponseTimeSeconds: 1.0,
		}
	}
	return out
}

func TestScorePatternRecognition(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		correct int
		want    float64
	}{
		{"six of eight", 8, 6, 7.5},
		{"all correct", 8, 8, 10},
		{"none correct", 8, 0, 0},
		{"rounding", 3, 1, 3.33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScorePatternRecognition(outcomesWithCorrect(tt.total, tt.correct))
			if got.Score != tt.want {
				t.Errorf("score = %v, want %v", got.Score, tt.want)
			}
			if got.Metadata.TotalTrials != tt.total || got.Metadata.CorrectResponses != tt.correct {
				t.Errorf("metadata = %d/%d, want %d/%d",
					got.Metadata.CorrectResponses, got.Metadata.TotalTrials, tt.correct, tt.total)
			}
		})
	}
}

func TestScorePatternRecognitionEmpty(t *testing.T) {
	got := ScorePatternRecognition(nil)
	if got.Score != 0 {
		t.Errorf("score = %v, want 0", got.Score)
	}
}

func stroopOutcomes(total, correct int, rt float64) []TrialOutcome {
	out := outcomesWithCorrect(total, correct)
	for i := range out {
		out[i].ResponseTimeSeconds = rt
	}
	return out
}

func TestScoreStroop(t *testing.T) {
	tests := []struct {
		name        string
		total       int
		correct     int
		avgRT       float64
		want        float64
		wantPenalty float64
	}{
		{"fast and accurate", 30, 30, 1.2, 10, 0},
		{"slow run penalized", 30, 24, 3.5, 6.5, 15},
		{"penalty capped at twenty", 30, 30, 9, 8, 20},
		{"no response time under two seconds", 30, 24, 1.9, 8, 0},
		{"clamped at zero", 30, 3, 4, 0, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreStroop(stroopOutcomes(tt.total, tt.correct, tt.avgRT))
			if got.Score != tt.want {
				t.Errorf("score = %v, want %v", got.Score, tt.want)
			}
			if math.Abs(got.Metadata.PenaltyPercent-tt.wantPenalty) > 1e-9 {
				t.Errorf("penalty = %v, want %v", got.Metadata.PenaltyPercent, tt.wantPenalty)
			}
		})
	}
}

func TestScoreStroopExcludesTimeoutsFromAverage(t *testing.T) {
	// 10 answered trials at 1.5s plus 5 timeouts. The average must stay at
	// 1.5s (no penalty); the timeouts only cost accuracy.
	outcomes := stroopOutcomes(10, 10, 1.5)
	now := time.Now()
	for i := 0; i < 5; i++ {
		outcomes = append(outcomes, TrialOutcome{
			TrialIndex:  10 + i,
			PresentedAt: now,
			RespondedAt: nil,
			IsCorrect:   false,
		})
	}

	got := ScoreStroop(outcomes)
	if got.Metadata.AvgResponseTimeSeconds != 1.5 {
		t.Errorf("avg response time = %v, want 1.5", got.Metadata.AvgResponseTimeSeconds)
	}
	if got.Metadata.PenaltyPercent != 0 {
		t.Errorf("penalty = %v, want 0", got.Metadata.PenaltyPercent)
	}
	if len(got.Metadata.ResponseTimes) != 10 {
		t.Errorf("recorded response times = %d, want 10", len(got.Metadata.ResponseTimes))
	}
	// 10/15 correct → 66.67% → 6.67
	if got.Score != 6.67 {
		t.Errorf("score = %v, want 6.67", got.Score)
	}
}

func TestScoreStroopAllTimeouts(t *testing.T) {
	now := time.Now()
	outcomes := make([]TrialOutcome, 5)
	for i := range outcomes {
		outcomes[i] = TrialOutcome{TrialIndex: i, PresentedAt: now}
	}
	got := ScoreStroop(outcomes)
	if got.Score != 0 {
		t.Errorf("score = %v, want 0", got.Score)
	}
	if got.Metadata.AvgResponseTimeSeconds != 0 {
		t.Errorf("avg response time = %v, want 0", got.Metadata.AvgResponseTimeSeconds)
	}
}

func TestScoreWordRecall(t *testing.T) {
	targets := []string{
		"apple", "river", "mountain", "ocean", "forest",
		"sunset", "bridge", "garden", "castle", "star",
	}

	tests := []struct {
		name   string
		inputs []string
		want   float64
	}{
		{"seven exact", []string{"apple", "river", "mountain", "ocean", "forest", "sunset", "bridge"}, 7},
		{"all exact", targets, 10},
		{"nothing recalled", nil, 0},
		{"case and whitespace ignored", []string{"  APPLE ", "River"}, 2},
		{"prefix typo accepted", []string{"mountian", "forrest"}, 2},
		{"substring accepted", []string{"riverbank", "sun"}, 2},
		{"unrelated words", []string{"pizza", "laptop", "keyboard"}, 0},
		{"short words need exact or substring", []string{"sta"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreWordRecall(targets, tt.inputs)
			if got.Score != tt.want {
				t.Errorf("score = %v, want %v", got.Score, tt.want)
			}
		})
	}
}

func TestScoreWordRecallNoDoubleCounting(t *testing.T) {
	targets := []string{"apple", "river"}
	// Three inputs all matching "apple" count once.
	got := ScoreWordRecall(targets, []string{"apple", "apples", "appl"})
	if got.Metadata.CorrectResponses != 1 {
		t.Errorf("correct = %d, want 1", got.Metadata.CorrectResponses)
	}
	if got.Score != 5 {
		t.Errorf("score = %v, want 5", got.Score)
	}
}

func TestWordMatches(t *testing.T) {
	tests := []struct {
		input  string
		target string
		want   bool
	}{
		{"apple", "apple", true},
		{"app", "apple", true},      // substring
		{"appletree", "apple", true}, // containment the other way
		{"appze", "apple", true},     // shared 3-letter prefix, both >3
		{"app", "appetite", true},
		{"sta", "star", true}, // substring, prefix rule alone would not apply
		{"car", "cat", false}, // both too short for the prefix rule
		{"dog", "apple", false},
		{"", "apple", false},
	}
	for _, tt := range tests {
		if got := WordMatches(tt.input, tt.target); got != tt.want {
			t.Errorf("WordMatches(%q, %q) = %v, want %v", tt.input, tt.target, got, tt.want)
		}
	}
}

func TestPerformanceLevel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0, "Low"},
		{3.99, "Low"},
		{4, "Moderate"},
		{7, "Moderate"},
		{7.01, "High"},
		{10, "High"},
	}
	for _, tt := range tests {
		if got := PerformanceLevel(tt.score); got != tt.want {
			t.Errorf("PerformanceLevel(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestPercentage(t *testing.T) {
	if got := Percentage(7.5, 10); got != 75 {
		t.Errorf("Percentage(7.5, 10) = %d, want 75", got)
	}
	if got := Percentage(6.67, 10); got != 67 {
		t.Errorf("Percentage(6.67, 10) = %d, want 67", got)
	}
	if got := Percentage(5, 0); got != 0 {
		t.Errorf("Percentage with zero max = %d, want 0", got)
	}
}
