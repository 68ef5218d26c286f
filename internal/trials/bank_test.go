package trials

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultBankIsValid(t *testing.T) {
	b := Default()
	if err := b.Validate(); err != nil {
		t.Fatalf("default bank invalid: %v", err)
	}
}

func TestDefaultBankShape(t *testing.T) {
	b := Default()
	if got := len(b.Pattern.Trials); got != 8 {
		t.Errorf("pattern trials = %d, want 8", got)
	}
	if got := len(b.WordRecall.Words); got != 10 {
		t.Errorf("recall words = %d, want 10", got)
	}
	if got := len(b.StroopTrials()); got != 30 {
		t.Errorf("stroop trials = %d, want 30", got)
	}
	// The replicated sequence preserves base order in each repeat.
	full := b.StroopTrials()
	for i, pair := range b.Stroop.BasePairs {
		if full[i] != pair || full[i+10] != pair || full[i+20] != pair {
			t.Fatalf("repeat %d does not mirror base pair %v", i, pair)
		}
	}
}

func TestTrialCount(t *testing.T) {
	b := Default()
	tests := []struct {
		testType string
		want     int
	}{
		{"pattern_recognition", 8},
		{"stroop", 30},
		{"word_recall", 10},
		{"unknown", 0},
	}
	for _, tt := range tests {
		if got := b.TrialCount(tt.testType); got != tt.want {
			t.Errorf("TrialCount(%q) = %d, want %d", tt.testType, got, tt.want)
		}
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	b, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Pattern.Trials) != 8 {
		t.Errorf("expected compiled-in defaults, got %d pattern trials", len(b.Pattern.Trials))
	}
}

func TestLoadRejectsInvalidBank(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bank.yaml")
	// Correct answer missing from the options.
	content := []byte(`
pattern_recognition:
  trial_seconds: 15
  feedback_seconds: 3
  trials:
    - pattern: [1, 2, 3]
      options: [4, 5]
      correct_answer: 9
stroop:
  trial_seconds: 5
  feedback_seconds: 2
  repeats: 3
  colors: [red]
  base_pairs:
    - {word: RED, ink: red}
word_recall:
  study_seconds: 3
  delay_seconds: 30
  words: [apple]
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error, got nil")
	}
}

func TestValidateRejectsForeignInk(t *testing.T) {
	b := Default()
	b.Stroop.BasePairs[0].Ink = "purple"
	if err := b.Validate(); err == nil {
		t.Fatal("expected error for ink outside color set")
	}
}
