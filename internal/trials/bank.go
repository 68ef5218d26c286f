// Package trials supplies the fixed, ordered stimulus sets for each test
// type. The reference stimuli are compiled in; a YAML bank file can replace
// them for research variants, but trial order and content are always static
// for a given bank (no per-session randomization).
package trials

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PatternTrial is one numeric-sequence stimulus with its candidate answers.
type PatternTrial struct {
	Pattern       []int  `yaml:"pattern" json:"pattern"`
	Options       []int  `yaml:"options" json:"options"`
	CorrectAnswer int    `yaml:"correct_answer" json:"-"`
	Explanation   string `yaml:"explanation" json:"-"`
}

// StroopTrial is one word/ink pair. The correct answer is always the ink
// color, never the word.
type StroopTrial struct {
	Word string `yaml:"word" json:"word"`
	Ink  string `yaml:"ink" json:"ink"`
}

// PatternConfig holds the pattern-recognition stimulus set and timing.
type PatternConfig struct {
	TrialSeconds    int            `yaml:"trial_seconds"`
	FeedbackSeconds int            `yaml:"feedback_seconds"`
	Trials          []PatternTrial `yaml:"trials"`
}

// StroopConfig holds the Stroop base pairs and timing. The base sequence is
// replicated Repeats times to form the full trial set, so repeated pairs are
// scored as independent trials.
type StroopConfig struct {
	TrialSeconds    int           `yaml:"trial_seconds"`
	FeedbackSeconds int           `yaml:"feedback_seconds"`
	Repeats         int           `yaml:"repeats"`
	Colors          []string      `yaml:"colors"`
	BasePairs       []StroopTrial `yaml:"base_pairs"`
}

// WordRecallConfig holds the study list and phase timing. The recall phase
// has no countdown; it waits for explicit submission.
type WordRecallConfig struct {
	StudySeconds int      `yaml:"study_seconds"`
	DelaySeconds int      `yaml:"delay_seconds"`
	Words        []string `yaml:"words"`
}

// Bank is the full stimulus bank across all test types.
type Bank struct {
	Pattern    PatternConfig    `yaml:"pattern_recognition"`
	Stroop     StroopConfig     `yaml:"stroop"`
	WordRecall WordRecallConfig `yaml:"word_recall"`
}

// Default returns the reference stimulus bank.
func Default() *Bank {
	return &Bank{
		Pattern: PatternConfig{
			TrialSeconds:    15,
			FeedbackSeconds: 3,
			Trials: []PatternTrial{
				{Pattern: []int{2, 4, 6, 8, 10}, Options: []int{12, 14, 16, 18}, CorrectAnswer: 12, Explanation: "Add 2 to each number"},
				{Pattern: []int{1, 3, 6, 10, 15}, Options: []int{21, 25, 28, 30}, CorrectAnswer: 21, Explanation: "Add 2, then 3, then 4, then 5, then 6"},
				{Pattern: []int{2, 6, 12, 20, 30}, Options: []int{42, 44, 46, 48}, CorrectAnswer: 42, Explanation: "Add 4, then 6, then 8, then 10, then 12"},
				{Pattern: []int{1, 2, 4, 8, 16}, Options: []int{24, 28, 32, 36}, CorrectAnswer: 32, Explanation: "Multiply by 2 each time"},
				{Pattern: []int{3, 6, 12, 24, 48}, Options: []int{72, 84, 96, 108}, CorrectAnswer: 96, Explanation: "Multiply by 2 each time"},
				{Pattern: []int{1, 4, 9, 16, 25}, Options: []int{30, 36, 40, 45}, CorrectAnswer: 36, Explanation: "Square numbers"},
				{Pattern: []int{2, 5, 10, 17, 26}, Options: []int{35, 37, 39, 41}, CorrectAnswer: 37, Explanation: "Add 3, then 5, then 7, then 9, then 11"},
				{Pattern: []int{1, 1, 2, 3, 5}, Options: []int{6, 7, 8, 9}, CorrectAnswer: 8, Explanation: "Fibonacci sequence: add previous two numbers"},
			},
		},
		Stroop: StroopConfig{
			TrialSeconds:    5,
			FeedbackSeconds: 2,
			Repeats:         3,
			Colors:          []string{"red", "blue", "green", "yellow"},
			BasePairs: []StroopTrial{
				{Word: "RED", Ink: "blue"},
				{Word: "BLUE", Ink: "red"},
				{Word: "GREEN", Ink: "yellow"},
				{Word: "YELLOW", Ink: "green"},
				{Word: "RED", Ink: "green"},
				{Word: "BLUE", Ink: "yellow"},
				{Word: "GREEN", Ink: "red"},
				{Word: "YELLOW", Ink: "blue"},
				{Word: "RED", Ink: "yellow"},
				{Word: "BLUE", Ink: "green"},
			},
		},
		WordRecall: WordRecallConfig{
			StudySeconds: 3,
			DelaySeconds: 30,
			Words: []string{
				"apple", "river", "mountain", "ocean", "forest",
				"sunset", "bridge", "garden", "castle", "star",
			},
		},
	}
}

// Load reads a trial bank from a YAML file. An empty path returns the
// compiled-in defaults.
func Load(path string) (*Bank, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trial bank file: %w", err)
	}

	var bank Bank
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trial bank YAML: %w", err)
	}
	if err := bank.Validate(); err != nil {
		return nil, fmt.Errorf("invalid trial bank: %w", err)
	}
	return &bank, nil
}

// Validate checks the structural invariants a bank must satisfy before the
// session engine will use it.
func (b *Bank) Validate() error {
	if len(b.Pattern.Trials) == 0 {
		return fmt.Errorf("pattern_recognition: no trials")
	}
	for i, t := range b.Pattern.Trials {
		if len(t.Options) == 0 {
			return fmt.Errorf("pattern_recognition: trial %d has no options", i)
		}
		found := false
		for _, o := range t.Options {
			if o == t.CorrectAnswer {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("pattern_recognition: trial %d correct answer not among options", i)
		}
	}
	if b.Pattern.TrialSeconds <= 0 || b.Pattern.FeedbackSeconds < 0 {
		return fmt.Errorf("pattern_recognition: invalid timing")
	}

	if len(b.Stroop.BasePairs) == 0 {
		return fmt.Errorf("stroop: no base pairs")
	}
	if b.Stroop.Repeats <= 0 {
		return fmt.Errorf("stroop: repeats must be positive")
	}
	colors := make(map[string]bool, len(b.Stroop.Colors))
	for _, c := range b.Stroop.Colors {
		colors[c] = true
	}
	for i, p := range b.Stroop.BasePairs {
		if !colors[p.Ink] {
			return fmt.Errorf("stroop: pair %d ink %q not in color set", i, p.Ink)
		}
	}
	if b.Stroop.TrialSeconds <= 0 || b.Stroop.FeedbackSeconds < 0 {
		return fmt.Errorf("stroop: invalid timing")
	}

	if len(b.WordRecall.Words) == 0 {
		return fmt.Errorf("word_recall: no words")
	}
	if b.WordRecall.StudySeconds <= 0 || b.WordRecall.DelaySeconds < 0 {
		return fmt.Errorf("word_recall: invalid timing")
	}
	return nil
}

// StroopTrials returns the full ordered Stroop trial set: the base sequence
// replicated Repeats times.
func (b *Bank) StroopTrials() []StroopTrial {
	out := make([]StroopTrial, 0, len(b.Stroop.BasePairs)*b.Stroop.Repeats)
	for i := 0; i < b.Stroop.Repeats; i++ {
		out = append(out, b.Stroop.BasePairs...)
	}
	return out
}

// TrialCount returns the number of trials a completed session of the given
// test type must contain.
func (b *Bank) TrialCount(testType string) int {
	switch testType {
	case "pattern_recognition":
		return len(b.Pattern.Trials)
	case "stroop":
		return len(b.Stroop.BasePairs) * b.Stroop.Repeats
	case "word_recall":
		return len(b.WordRecall.Words)
	}
	return 0
}
