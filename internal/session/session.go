// Package session owns the authoritative test-session state machine. The
// client only ever submits raw responses; trial sequencing, timeouts,
// scoring and risk all happen here so a buggy or hostile client cannot
// upload an arbitrary score.
package session

import (
	"errors"
	"time"

	"dementia-tracker/internal/risk"
	"dementia-tracker/internal/scoring"
)

// Phase is a session's top-level state.
type Phase string

const (
	PhaseInstructions Phase = "instructions"
	PhaseRunning      Phase = "running"
	PhaseResults      Phase = "results"
)

// RecallStage subdivides the running phase of a word-recall session.
type RecallStage string

const (
	RecallStageStudy  RecallStage = "study"
	RecallStageDelay  RecallStage = "delay"
	RecallStageRecall RecallStage = "recall"
)

var (
	ErrNotFound        = errors.New("session not found")
	ErrWrongPhase      = errors.New("operation not valid in current session phase")
	ErrInputDisabled   = errors.New("input disabled during feedback")
	ErrUnknownTestType = errors.New("unknown test type")
	ErrNotRecallStage  = errors.New("recall submission only valid in recall stage")
	ErrWrongTestKind   = errors.New("operation not valid for this test type")
)

// session is one live attempt. All fields are guarded by the engine mutex;
// nothing outside this package ever holds a pointer to one.
type session struct {
	id       string
	userID   uint
	testType string
	phase    Phase

	startedAt time.Time
	endedAt   time.Time

	trialIndex  int
	presentedAt time.Time
	inFeedback  bool
	lastOutcome *scoring.TrialOutcome
	outcomes    []scoring.TrialOutcome

	recallStage  RecallStage
	studyIndex   int
	recallInputs []string

	result   *Result
	riskOut  *risk.Assessment
	degraded bool
	saved    bool
	savedID  uint

	// gen invalidates outstanding timer callbacks: every state change that
	// could race a pending timer bumps it, and a firing timer whose captured
	// generation no longer matches is a no-op. This is what guarantees at
	// most one advance per trial.
	gen     uint64
	timer   *time.Timer
	touched time.Time
}

func (s *session) bump() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Result is the immutable normalized outcome computed once on entry to the
// results phase.
type Result struct {
	TestType         string           `json:"test_type"`
	Score            float64          `json:"score"`
	MaxScore         float64          `json:"max_score"`
	Percentage       int              `json:"percentage"`
	PerformanceLevel string           `json:"performance_level"`
	TimeTakenSeconds int              `json:"time_taken_seconds"`
	CompletedAt      time.Time        `json:"completed_at"`
	Metadata         scoring.Metadata `json:"metadata"`
}

// TrialView is the client-facing payload for the current stimulus. Correct
// answers for pattern trials are never included; the Stroop ink is the
// answer but the client needs it to render the stimulus at all.
type TrialView struct {
	Index          int      `json:"index"`
	Total          int      `json:"total"`
	SecondsAllowed int      `json:"seconds_allowed"`
	Pattern        []int    `json:"pattern,omitempty"`
	Options        []int    `json:"options,omitempty"`
	Word           string   `json:"word,omitempty"`
	Ink            string   `json:"ink,omitempty"`
	Colors         []string `json:"colors,omitempty"`
}

// FeedbackView is shown between a response and the next trial while input
// is disabled.
type FeedbackView struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation,omitempty"`
}

// View is the engine's snapshot of a session for the API layer.
type View struct {
	ID          string        `json:"id"`
	TestType    string        `json:"test_type"`
	Phase       Phase         `json:"phase"`
	RecallStage RecallStage   `json:"recall_stage,omitempty"`
	StudyWord   string        `json:"study_word,omitempty"`
	DelaySecs   int           `json:"delay_seconds,omitempty"`
	Trial       *TrialView    `json:"trial,omitempty"`
	Feedback    *FeedbackView `json:"feedback,omitempty"`
}

// ResultsView is the results-phase snapshot. Degraded sessions expose no
// result rather than a fabricated zero score.
type ResultsView struct {
	SessionID string           `json:"session_id"`
	Degraded  bool             `json:"degraded"`
	Result    *Result          `json:"result,omitempty"`
	Risk      *risk.Assessment `json:"risk,omitempty"`
	Saved     bool             `json:"saved"`
	SavedID   uint             `json:"saved_id,omitempty"`
}
