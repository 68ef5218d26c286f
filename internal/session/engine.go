package session

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dementia-tracker/internal/models"
	"dementia-tracker/internal/risk"
	"dementia-tracker/internal/scoring"
	"dementia-tracker/internal/trials"
)

// ProfileProvider supplies the demographic attributes the risk assessment
// needs. The repository implements it.
type ProfileProvider interface {
	GetRiskProfile(userID uint) (risk.Profile, error)
}

// idleTimeout is how long an untouched session survives before the janitor
// collects it. It covers the 30s recall delay plus generous thinking time.
const idleTimeout = 30 * time.Minute

// Engine holds all live sessions and drives their timers. One instance per
// process; sessions are keyed by UUID and owned exclusively by the engine.
type Engine struct {
	mu       sync.Mutex
	sessions map[string]*session

	bank     *trials.Bank
	profiles ProfileProvider
	log      *zap.Logger

	now  func() time.Time
	stop chan struct{}
}

func NewEngine(bank *trials.Bank, profiles ProfileProvider, log *zap.Logger) *Engine {
	e := &Engine{
		sessions: make(map[string]*session),
		bank:     bank,
		profiles: profiles,
		log:      log,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go e.janitor()
	return e
}

// Close stops the janitor and cancels every outstanding timer.
func (e *Engine) Close() {
	close(e.stop)
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range e.sessions {
		s.bump()
	}
	e.sessions = make(map[string]*session)
}

func (e *Engine) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-e.stop:
			return
		case <-ticker.C:
			e.sweep()
		}
	}
}

func (e *Engine) sweep() {
	cutoff := e.now().Add(-idleTimeout)
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, s := range e.sessions {
		if s.touched.Before(cutoff) {
			s.bump()
			delete(e.sessions, id)
			e.log.Debug("Expired idle session",
				zap.String("sessionID", id), zap.Uint("userID", s.userID))
		}
	}
}

// get looks up a session and verifies ownership. Returns ErrNotFound for a
// foreign session so existence is not leaked across accounts.
func (e *Engine) get(id string, userID uint) (*session, error) {
	s, ok := e.sessions[id]
	if !ok || s.userID != userID {
		return nil, ErrNotFound
	}
	s.touched = e.now()
	return s, nil
}

// Create opens a new session in the instructions phase.
func (e *Engine) Create(userID uint, testType string) (*View, error) {
	if !models.KnownTestType(testType) {
		return nil, ErrUnknownTestType
	}

	s := &session{
		id:       uuid.NewString(),
		userID:   userID,
		testType: testType,
		phase:    PhaseInstructions,
		touched:  e.now(),
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessions[s.id] = s

	e.log.Info("Session created",
		zap.String("sessionID", s.id),
		zap.Uint("userID", userID),
		zap.String("testType", testType))
	return e.view(s), nil
}

// Start moves a session from instructions to running, records startedAt and
// arms the first countdown.
func (e *Engine) Start(id string, userID uint) (*View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.get(id, userID)
	if err != nil {
		return nil, err
	}
	if s.phase != PhaseInstructions {
		return nil, ErrWrongPhase
	}

	s.phase = PhaseRunning
	s.startedAt = e.now()

	if s.testType == models.TestTypeWordRecall {
		s.recallStage = RecallStageStudy
		s.studyIndex = 0
		e.arm(s, time.Duration(e.bank.WordRecall.StudySeconds)*time.Second, e.studyExpired)
	} else {
		e.presentTrial(s, 0)
	}
	return e.view(s), nil
}

// presentTrial exposes trial i and arms its countdown. Caller holds the lock.
func (e *Engine) presentTrial(s *session, i int) {
	s.trialIndex = i
	s.presentedAt = e.now()
	s.inFeedback = false
	s.lastOutcome = nil

	secs := e.bank.Pattern.TrialSeconds
	if s.testType == models.TestTypeStroop {
		secs = e.bank.Stroop.TrialSeconds
	}
	e.arm(s, time.Duration(secs)*time.Second, e.trialExpired)
}

// arm schedules fn against the session's current generation. A later bump
// makes the callback a no-op, so a cancelled timer can never advance state.
func (e *Engine) arm(s *session, d time.Duration, fn func(id string, gen uint64)) {
	s.bump()
	gen := s.gen
	id := s.id
	s.timer = time.AfterFunc(d, func() { fn(id, gen) })
}

// live revalidates a timer callback under the lock. A nil return means the
// timer lost the race with a user event or teardown.
func (e *Engine) live(id string, gen uint64) *session {
	s, ok := e.sessions[id]
	if !ok || s.gen != gen || s.phase != PhaseRunning {
		return nil
	}
	return s
}

// trialExpired synthesizes a timeout outcome for the current trial. A
// timeout is an ordinary trial ending, scored as incorrect, never an error.
func (e *Engine) trialExpired(id string, gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.live(id, gen)
	if s == nil {
		return
	}

	outcome := scoring.TrialOutcome{
		TrialIndex:  s.trialIndex,
		PresentedAt: s.presentedAt,
		RespondedAt: nil,
		IsCorrect:   false,
	}
	s.outcomes = append(s.outcomes, outcome)
	s.lastOutcome = &outcome
	e.log.Debug("Trial timed out",
		zap.String("sessionID", s.id), zap.Int("trial", s.trialIndex))
	e.afterOutcome(s)
}

// Respond records the user's answer for the current trial. Input is
// rejected while feedback is on screen, which closes the double-advance
// window from the user side the same way the generation counter closes it
// from the timer side.
func (e *Engine) Respond(id string, userID uint, value string) (*View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.get(id, userID)
	if err != nil {
		return nil, err
	}
	if s.phase != PhaseRunning {
		return nil, ErrWrongPhase
	}
	if s.testType == models.TestTypeWordRecall {
		return nil, ErrWrongTestKind
	}
	if s.inFeedback {
		return nil, ErrInputDisabled
	}

	now := e.now()
	respondedAt := now
	outcome := scoring.TrialOutcome{
		TrialIndex:          s.trialIndex,
		PresentedAt:         s.presentedAt,
		RespondedAt:         &respondedAt,
		SelectedValue:       value,
		IsCorrect:           e.isCorrect(s, value),
		ResponseTimeSeconds: now.Sub(s.presentedAt).Seconds(),
	}
	s.outcomes = append(s.outcomes, outcome)
	s.lastOutcome = &outcome
	e.afterOutcome(s)
	return e.view(s), nil
}

func (e *Engine) isCorrect(s *session, value string) bool {
	switch s.testType {
	case models.TestTypePatternRecognition:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return false
		}
		return n == e.bank.Pattern.Trials[s.trialIndex].CorrectAnswer
	case models.TestTypeStroop:
		return strings.EqualFold(strings.TrimSpace(value), e.bank.StroopTrials()[s.trialIndex].Ink)
	}
	return false
}

// afterOutcome enters the feedback window, or completes the session when
// the last trial just ended. Caller holds the lock.
func (e *Engine) afterOutcome(s *session) {
	secs := e.bank.Pattern.FeedbackSeconds
	if s.testType == models.TestTypeStroop {
		secs = e.bank.Stroop.FeedbackSeconds
	}
	s.inFeedback = true
	e.arm(s, time.Duration(secs)*time.Second, e.feedbackDone)
}

func (e *Engine) feedbackDone(id string, gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.live(id, gen)
	if s == nil {
		return
	}

	next := s.trialIndex + 1
	if next >= e.bank.TrialCount(s.testType) {
		e.complete(s)
		return
	}
	e.presentTrial(s, next)
}

// studyExpired advances the study slideshow, then the delay countdown, then
// opens the recall stage which waits for explicit submission.
func (e *Engine) studyExpired(id string, gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.live(id, gen)
	if s == nil || s.recallStage != RecallStageStudy {
		return
	}

	s.studyIndex++
	if s.studyIndex < len(e.bank.WordRecall.Words) {
		e.arm(s, time.Duration(e.bank.WordRecall.StudySeconds)*time.Second, e.studyExpired)
		return
	}
	s.recallStage = RecallStageDelay
	e.arm(s, time.Duration(e.bank.WordRecall.DelaySeconds)*time.Second, e.delayExpired)
}

func (e *Engine) delayExpired(id string, gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.live(id, gen)
	if s == nil || s.recallStage != RecallStageDelay {
		return
	}
	s.recallStage = RecallStageRecall
	s.bump()
}

// SubmitRecall accepts the free-text recall list and completes the session.
func (e *Engine) SubmitRecall(id string, userID uint, words []string) (*ResultsView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.get(id, userID)
	if err != nil {
		return nil, err
	}
	if s.phase != PhaseRunning {
		return nil, ErrWrongPhase
	}
	if s.testType != models.TestTypeWordRecall {
		return nil, ErrWrongTestKind
	}
	if s.recallStage != RecallStageRecall {
		return nil, ErrNotRecallStage
	}

	s.recallInputs = words
	e.complete(s)
	return e.resultsView(s), nil
}

// complete transitions to results and computes the normalized result and
// risk assessment exactly once, synchronously. A malformed outcome sequence
// yields a degraded results phase instead of a fabricated zero score.
// Caller holds the lock.
func (e *Engine) complete(s *session) {
	s.bump()
	s.phase = PhaseResults
	s.endedAt = e.now()
	s.inFeedback = false

	var summary scoring.Summary
	switch s.testType {
	case models.TestTypePatternRecognition:
		if len(s.outcomes) != e.bank.TrialCount(s.testType) {
			s.degraded = true
		} else {
			summary = scoring.ScorePatternRecognition(s.outcomes)
		}
	case models.TestTypeStroop:
		if len(s.outcomes) != e.bank.TrialCount(s.testType) {
			s.degraded = true
		} else {
			summary = scoring.ScoreStroop(s.outcomes)
		}
	case models.TestTypeWordRecall:
		summary = scoring.ScoreWordRecall(e.bank.WordRecall.Words, s.recallInputs)
	default:
		s.degraded = true
	}

	if s.degraded {
		e.log.Warn("Session completed degraded",
			zap.String("sessionID", s.id),
			zap.String("testType", s.testType),
			zap.Int("outcomes", len(s.outcomes)))
		return
	}

	timeTaken := int(s.endedAt.Sub(s.startedAt).Seconds())
	summary.Metadata.TimeTakenSeconds = timeTaken
	s.result = &Result{
		TestType:         s.testType,
		Score:            summary.Score,
		MaxScore:         models.MaxScore,
		Percentage:       scoring.Percentage(summary.Score, models.MaxScore),
		PerformanceLevel: scoring.PerformanceLevel(summary.Score),
		TimeTakenSeconds: timeTaken,
		CompletedAt:      s.endedAt,
		Metadata:         summary.Metadata,
	}

	profile, err := e.profiles.GetRiskProfile(s.userID)
	if err != nil {
		// The score stands; only the risk panel is unavailable.
		e.log.Error("Profile lookup failed, risk assessment skipped",
			zap.String("sessionID", s.id), zap.Uint("userID", s.userID), zap.Error(err))
	} else {
		assessment := risk.Assess([]float64{s.result.Score}, profile)
		s.riskOut = &assessment
	}

	e.log.Info("Session completed",
		zap.String("sessionID", s.id),
		zap.Uint("userID", s.userID),
		zap.String("testType", s.testType),
		zap.Float64("score", s.result.Score))
}

// Results returns the results-phase snapshot. The in-memory result survives
// failed saves so the user can retry without re-taking the test.
func (e *Engine) Results(id string, userID uint) (*ResultsView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.get(id, userID)
	if err != nil {
		return nil, err
	}
	if s.phase != PhaseResults {
		return nil, ErrWrongPhase
	}
	return e.resultsView(s), nil
}

// MarkSaved records the stored-record identifier after a successful save.
func (e *Engine) MarkSaved(id string, userID uint, recordID uint) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.get(id, userID)
	if err != nil {
		return err
	}
	if s.phase != PhaseResults {
		return ErrWrongPhase
	}
	s.saved = true
	s.savedID = recordID
	return nil
}

// Retake discards everything and returns to the instructions phase with a
// fresh outcome sequence. The session is re-keyed so a retaken attempt gets
// its own persistence idempotency key.
func (e *Engine) Retake(id string, userID uint) (*View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.get(id, userID)
	if err != nil {
		return nil, err
	}
	if s.phase != PhaseResults {
		return nil, ErrWrongPhase
	}

	s.bump()
	delete(e.sessions, s.id)
	s.id = uuid.NewString()
	e.sessions[s.id] = s
	s.phase = PhaseInstructions
	s.startedAt = time.Time{}
	s.endedAt = time.Time{}
	s.trialIndex = 0
	s.inFeedback = false
	s.lastOutcome = nil
	s.outcomes = nil
	s.recallStage = ""
	s.studyIndex = 0
	s.recallInputs = nil
	s.result = nil
	s.riskOut = nil
	s.degraded = false
	s.saved = false
	s.savedID = 0
	return e.view(s), nil
}

// Quit abandons a running session after explicit confirmation client-side.
// Nothing is persisted and any pending timer is cancelled, so a late tick
// can never touch the discarded state.
func (e *Engine) Quit(id string, userID uint) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.get(id, userID)
	if err != nil {
		return err
	}
	if s.phase != PhaseRunning {
		return ErrWrongPhase
	}
	s.bump()
	delete(e.sessions, id)
	e.log.Info("Session quit",
		zap.String("sessionID", id), zap.Uint("userID", userID))
	return nil
}

// Discard drops a session from any phase without persisting.
func (e *Engine) Discard(id string, userID uint) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.get(id, userID)
	if err != nil {
		return err
	}
	s.bump()
	delete(e.sessions, id)
	return nil
}

// Current returns the running-phase snapshot for polling clients.
func (e *Engine) Current(id string, userID uint) (*View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.get(id, userID)
	if err != nil {
		return nil, err
	}
	return e.view(s), nil
}

// view builds the client snapshot. Caller holds the lock.
func (e *Engine) view(s *session) *View {
	v := &View{
		ID:       s.id,
		TestType: s.testType,
		Phase:    s.phase,
	}
	if s.phase != PhaseRunning {
		return v
	}

	if s.testType == models.TestTypeWordRecall {
		v.RecallStage = s.recallStage
		switch s.recallStage {
		case RecallStageStudy:
			if s.studyIndex < len(e.bank.WordRecall.Words) {
				v.StudyWord = e.bank.WordRecall.Words[s.studyIndex]
			}
		case RecallStageDelay:
			v.DelaySecs = e.bank.WordRecall.DelaySeconds
		}
		return v
	}

	if s.inFeedback {
		v.Feedback = e.feedbackView(s)
		return v
	}

	total := e.bank.TrialCount(s.testType)
	switch s.testType {
	case models.TestTypePatternRecognition:
		t := e.bank.Pattern.Trials[s.trialIndex]
		v.Trial = &TrialView{
			Index:          s.trialIndex,
			Total:          total,
			SecondsAllowed: e.bank.Pattern.TrialSeconds,
			Pattern:        t.Pattern,
			Options:        t.Options,
		}
	case models.TestTypeStroop:
		t := e.bank.StroopTrials()[s.trialIndex]
		v.Trial = &TrialView{
			Index:          s.trialIndex,
			Total:          total,
			SecondsAllowed: e.bank.Stroop.TrialSeconds,
			Word:           t.Word,
			Ink:            t.Ink,
			Colors:         e.bank.Stroop.Colors,
		}
	}
	return v
}

func (e *Engine) feedbackView(s *session) *FeedbackView {
	if s.lastOutcome == nil {
		return nil
	}
	fb := &FeedbackView{Correct: s.lastOutcome.IsCorrect}
	switch s.testType {
	case models.TestTypePatternRecognition:
		t := e.bank.Pattern.Trials[s.lastOutcome.TrialIndex]
		fb.CorrectAnswer = strconv.Itoa(t.CorrectAnswer)
		fb.Explanation = t.Explanation
	case models.TestTypeStroop:
		fb.CorrectAnswer = e.bank.StroopTrials()[s.lastOutcome.TrialIndex].Ink
	}
	return fb
}

func (e *Engine) resultsView(s *session) *ResultsView {
	return &ResultsView{
		SessionID: s.id,
		Degraded:  s.degraded,
		Result:    s.result,
		Risk:      s.riskOut,
		Saved:     s.saved,
		SavedID:   s.savedID,
	}
}
