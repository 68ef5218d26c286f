package session

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"go.uber.org/zap"

	"dementia-tracker/internal/models"
	"dementia-tracker/internal/risk"
	"dementia-tracker/internal/trials"
)

type stubProfiles struct {
	profile risk.Profile
	err     error
}

func (s *stubProfiles) GetRiskProfile(uint) (risk.Profile, error) {
	return s.profile, s.err
}

func newTestEngine(t *testing.T, profiles ProfileProvider) *Engine {
	t.Helper()
	if profiles == nil {
		profiles = &stubProfiles{profile: risk.Profile{Age: 30, FamilyHistory: "none"}}
	}
	e := NewEngine(trials.Default(), profiles, zap.NewNop())
	t.Cleanup(e.Close)
	return e
}

// gen returns the session's current timer generation so tests can fire the
// pending callback by hand instead of waiting out real countdowns.
func gen(t *testing.T, e *Engine, id string) uint64 {
	t.Helper()
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[id]
	if !ok {
		t.Fatalf("session %s not found", id)
	}
	return s.gen
}

// finishFeedback fires the pending feedback timer for the session.
func finishFeedback(t *testing.T, e *Engine, id string) {
	t.Helper()
	e.feedbackDone(id, gen(t, e, id))
}

func outcomeCount(t *testing.T, e *Engine, id string) int {
	t.Helper()
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[id]
	if !ok {
		t.Fatalf("session %s not found", id)
	}
	return len(s.outcomes)
}

func TestCreateRejectsUnknownTestType(t *testing.T) {
	e := newTestEngine(t, nil)
	if _, err := e.Create(1, "sudoku"); !errors.Is(err, ErrUnknownTestType) {
		t.Fatalf("err = %v, want ErrUnknownTestType", err)
	}
}

func TestPatternSessionFullFlow(t *testing.T) {
	e := newTestEngine(t, nil)
	now := time.Now()
	e.now = func() time.Time { return now }

	v, err := e.Create(1, models.TestTypePatternRecognition)
	if err != nil {
		t.Fatal(err)
	}
	if v.Phase != PhaseInstructions {
		t.Fatalf("phase = %s, want instructions", v.Phase)
	}

	v, err = e.Start(v.ID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if v.Phase != PhaseRunning || v.Trial == nil {
		t.Fatalf("expected running phase with a trial, got %+v", v)
	}
	if v.Trial.Total != 8 {
		t.Fatalf("total trials = %d, want 8", v.Trial.Total)
	}

	// Answer six of eight correctly.
	bank := trials.Default()
	for i := 0; i < 8; i++ {
		now = now.Add(2 * time.Second)
		answer := bank.Pattern.Trials[i].CorrectAnswer
		if i >= 6 {
			answer = -1
		}
		fv, err := e.Respond(v.ID, 1, strconv.Itoa(answer))
		if err != nil {
			t.Fatalf("trial %d: %v", i, err)
		}
		if fv.Feedback == nil {
			t.Fatalf("trial %d: expected feedback view", i)
		}
		if want := i < 6; fv.Feedback.Correct != want {
			t.Fatalf("trial %d: feedback correct = %v, want %v", i, fv.Feedback.Correct, want)
		}
		finishFeedback(t, e, v.ID)
	}

	rv, err := e.Results(v.ID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if rv.Degraded {
		t.Fatal("unexpected degraded result")
	}
	if rv.Result.Score != 7.5 {
		t.Errorf("score = %v, want 7.5", rv.Result.Score)
	}
	if rv.Result.Percentage != 75 {
		t.Errorf("percentage = %d, want 75", rv.Result.Percentage)
	}
	if rv.Result.PerformanceLevel != "High" {
		t.Errorf("level = %q, want High", rv.Result.PerformanceLevel)
	}
	if rv.Risk == nil {
		t.Fatal("expected risk assessment")
	}
}

func TestTimeoutSynthesizesOutcome(t *testing.T) {
	e := newTestEngine(t, nil)

	v, _ := e.Create(7, models.TestTypePatternRecognition)
	if _, err := e.Start(v.ID, 7); err != nil {
		t.Fatal(err)
	}

	e.trialExpired(v.ID, gen(t, e, v.ID))

	e.mu.Lock()
	s := e.sessions[v.ID]
	if len(s.outcomes) != 1 {
		t.Fatalf("outcomes = %d, want 1", len(s.outcomes))
	}
	o := s.outcomes[0]
	e.mu.Unlock()

	if o.IsCorrect {
		t.Error("timeout outcome must be incorrect")
	}
	if o.RespondedAt != nil {
		t.Error("timeout outcome must have nil RespondedAt")
	}
}

func TestNoDuplicateAdvance(t *testing.T) {
	e := newTestEngine(t, nil)

	v, _ := e.Create(2, models.TestTypePatternRecognition)
	if _, err := e.Start(v.ID, 2); err != nil {
		t.Fatal(err)
	}

	staleGen := gen(t, e, v.ID)
	if _, err := e.Respond(v.ID, 2, "12"); err != nil {
		t.Fatal(err)
	}

	// The trial countdown from before the response fires late; it must not
	// produce a second outcome for the same trial.
	e.trialExpired(v.ID, staleGen)
	if got := outcomeCount(t, e, v.ID); got != 1 {
		t.Fatalf("outcomes = %d, want 1", got)
	}

	// The reverse race: a response already consumed this trial, feedback is
	// showing, further input is rejected.
	if _, err := e.Respond(v.ID, 2, "12"); !errors.Is(err, ErrInputDisabled) {
		t.Fatalf("err = %v, want ErrInputDisabled", err)
	}
	if got := outcomeCount(t, e, v.ID); got != 1 {
		t.Fatalf("outcomes = %d, want 1", got)
	}
}

func TestStroopScoringThroughEngine(t *testing.T) {
	e := newTestEngine(t, nil)
	now := time.Now()
	e.now = func() time.Time { return now }

	v, _ := e.Create(3, models.TestTypeStroop)
	if _, err := e.Start(v.ID, 3); err != nil {
		t.Fatal(err)
	}

	stroop := trials.Default().StroopTrials()
	if len(stroop) != 30 {
		t.Fatalf("stroop trials = %d, want 30", len(stroop))
	}

	// Answer every trial correctly after one second.
	for i := range stroop {
		now = now.Add(1 * time.Second)
		if _, err := e.Respond(v.ID, 3, stroop[i].Ink); err != nil {
			t.Fatalf("trial %d: %v", i, err)
		}
		finishFeedback(t, e, v.ID)
	}

	rv, err := e.Results(v.ID, 3)
	if err != nil {
		t.Fatal(err)
	}
	if rv.Result.Score != 10 {
		t.Errorf("score = %v, want 10", rv.Result.Score)
	}
	if rv.Result.Metadata.PenaltyPercent != 0 {
		t.Errorf("penalty = %v, want 0", rv.Result.Metadata.PenaltyPercent)
	}
	if rv.Result.Metadata.TotalTrials != 30 {
		t.Errorf("total trials = %d, want 30", rv.Result.Metadata.TotalTrials)
	}
}

func TestWordRecallFlow(t *testing.T) {
	e := newTestEngine(t, nil)

	v, _ := e.Create(4, models.TestTypeWordRecall)
	v, err := e.Start(v.ID, 4)
	if err != nil {
		t.Fatal(err)
	}
	if v.RecallStage != RecallStageStudy {
		t.Fatalf("stage = %s, want study", v.RecallStage)
	}
	if v.StudyWord != "apple" {
		t.Fatalf("first study word = %q, want apple", v.StudyWord)
	}

	// Submitting early must be rejected.
	if _, err := e.SubmitRecall(v.ID, 4, []string{"apple"}); !errors.Is(err, ErrNotRecallStage) {
		t.Fatalf("err = %v, want ErrNotRecallStage", err)
	}

	// Walk the study slideshow.
	words := trials.Default().WordRecall.Words
	for range words {
		e.studyExpired(v.ID, gen(t, e, v.ID))
	}
	v, _ = e.Current(v.ID, 4)
	if v.RecallStage != RecallStageDelay {
		t.Fatalf("stage = %s, want delay", v.RecallStage)
	}

	e.delayExpired(v.ID, gen(t, e, v.ID))
	v, _ = e.Current(v.ID, 4)
	if v.RecallStage != RecallStageRecall {
		t.Fatalf("stage = %s, want recall", v.RecallStage)
	}

	rv, err := e.SubmitRecall(v.ID, 4, []string{"apple", "river", "mountain", "ocean", "forest", "sunset", "bridge"})
	if err != nil {
		t.Fatal(err)
	}
	if rv.Result.Score != 7 {
		t.Errorf("score = %v, want 7", rv.Result.Score)
	}
	if rv.Result.PerformanceLevel != "Moderate" {
		t.Errorf("level = %q, want Moderate", rv.Result.PerformanceLevel)
	}
}

func TestRespondRejectedForWordRecall(t *testing.T) {
	e := newTestEngine(t, nil)
	v, _ := e.Create(5, models.TestTypeWordRecall)
	if _, err := e.Start(v.ID, 5); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Respond(v.ID, 5, "apple"); !errors.Is(err, ErrWrongTestKind) {
		t.Fatalf("err = %v, want ErrWrongTestKind", err)
	}
}

func TestOwnershipIsEnforced(t *testing.T) {
	e := newTestEngine(t, nil)
	v, _ := e.Create(10, models.TestTypeStroop)

	if _, err := e.Start(v.ID, 11); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign start err = %v, want ErrNotFound", err)
	}
	if err := e.Discard(v.ID, 11); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign discard err = %v, want ErrNotFound", err)
	}
}

func TestQuitOnlyFromRunning(t *testing.T) {
	e := newTestEngine(t, nil)
	v, _ := e.Create(6, models.TestTypeStroop)

	if err := e.Quit(v.ID, 6); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("quit from instructions err = %v, want ErrWrongPhase", err)
	}

	if _, err := e.Start(v.ID, 6); err != nil {
		t.Fatal(err)
	}
	if err := e.Quit(v.ID, 6); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Current(v.ID, 6); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err after quit = %v, want ErrNotFound", err)
	}
}

func TestRetakeResetsAndRekeys(t *testing.T) {
	e := newTestEngine(t, nil)

	v, _ := e.Create(8, models.TestTypeWordRecall)
	if _, err := e.Start(v.ID, 8); err != nil {
		t.Fatal(err)
	}
	for range trials.Default().WordRecall.Words {
		e.studyExpired(v.ID, gen(t, e, v.ID))
	}
	e.delayExpired(v.ID, gen(t, e, v.ID))
	if _, err := e.SubmitRecall(v.ID, 8, []string{"apple"}); err != nil {
		t.Fatal(err)
	}

	nv, err := e.Retake(v.ID, 8)
	if err != nil {
		t.Fatal(err)
	}
	if nv.ID == v.ID {
		t.Error("retake must issue a fresh session key")
	}
	if nv.Phase != PhaseInstructions {
		t.Errorf("phase = %s, want instructions", nv.Phase)
	}
	if _, err := e.Current(v.ID, 8); !errors.Is(err, ErrNotFound) {
		t.Errorf("old key still resolves after retake")
	}
	if _, err := e.Results(nv.ID, 8); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("retaken session still exposes results: %v", err)
	}
}

func TestResultsBeforeCompletion(t *testing.T) {
	e := newTestEngine(t, nil)
	v, _ := e.Create(9, models.TestTypePatternRecognition)
	if _, err := e.Results(v.ID, 9); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("err = %v, want ErrWrongPhase", err)
	}
}

func TestProfileFailureSkipsRiskOnly(t *testing.T) {
	e := newTestEngine(t, &stubProfiles{err: errors.New("db down")})

	v, _ := e.Create(12, models.TestTypeWordRecall)
	if _, err := e.Start(v.ID, 12); err != nil {
		t.Fatal(err)
	}
	for range trials.Default().WordRecall.Words {
		e.studyExpired(v.ID, gen(t, e, v.ID))
	}
	e.delayExpired(v.ID, gen(t, e, v.ID))

	rv, err := e.SubmitRecall(v.ID, 12, []string{"apple", "river"})
	if err != nil {
		t.Fatal(err)
	}
	if rv.Result == nil {
		t.Fatal("score must survive a profile lookup failure")
	}
	if rv.Risk != nil {
		t.Error("risk must be omitted when the profile is unavailable")
	}
}

func TestMarkSaved(t *testing.T) {
	e := newTestEngine(t, nil)

	v, _ := e.Create(13, models.TestTypeWordRecall)
	if _, err := e.Start(v.ID, 13); err != nil {
		t.Fatal(err)
	}
	if err := e.MarkSaved(v.ID, 13, 99); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("mark before results err = %v, want ErrWrongPhase", err)
	}

	for range trials.Default().WordRecall.Words {
		e.studyExpired(v.ID, gen(t, e, v.ID))
	}
	e.delayExpired(v.ID, gen(t, e, v.ID))
	if _, err := e.SubmitRecall(v.ID, 13, nil); err != nil {
		t.Fatal(err)
	}

	if err := e.MarkSaved(v.ID, 13, 99); err != nil {
		t.Fatal(err)
	}
	rv, _ := e.Results(v.ID, 13)
	if !rv.Saved || rv.SavedID != 99 {
		t.Errorf("saved = %v id = %d, want true/99", rv.Saved, rv.SavedID)
	}
}

func TestSweepExpiresIdleSessions(t *testing.T) {
	e := newTestEngine(t, nil)
	v, _ := e.Create(14, models.TestTypeStroop)

	e.mu.Lock()
	e.sessions[v.ID].touched = time.Now().Add(-idleTimeout - time.Minute)
	e.mu.Unlock()

	e.sweep()
	if _, err := e.Current(v.ID, 14); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after sweep", err)
	}
}
