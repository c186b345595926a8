package session

import (
	"context"
	"log"
	"sync"
	"time"

	"studydesk/internal/models"
)

// QuizState identifies where a quiz session is in its flow.
type QuizState string

const (
	QuizIdle       QuizState = "idle"
	QuizLoading    QuizState = "loading"
	QuizPresenting QuizState = "presenting"
	QuizResults    QuizState = "results"
	QuizReviewing  QuizState = "reviewing"
)

// ReviewThreshold is the score ratio below which the mistake review is
// offered after a quiz pass.
const ReviewThreshold = 0.6

// errorDisplayDelay is how long a generation error stays on screen before
// it is cleared automatically.
const errorDisplayDelay = 5 * time.Second

// QuizSession is the quiz flow state machine. All transitions happen under
// the session mutex; generation runs in the background and commits its
// result only if the session has not moved on in the meantime.
type QuizSession struct {
	mu   sync.Mutex
	gen  Generator
	gate *Gate

	state    QuizState
	material models.Material

	questions []models.QuizQuestion
	index     int
	score     int
	answered  bool
	selected  string
	mistakes  []models.Mistake

	reviewIndex int
	reviewTaken bool

	lastError  string
	statusTick int
	ticker     *statusTicker

	// generation invalidates stale background work: the loading goroutine
	// and the error-clear timer only apply if it still matches.
	generation int

	errorDelay time.Duration
}

// NewQuizSession creates an idle quiz session using the given generator and
// sharing the generation gate with the other flows.
func NewQuizSession(gen Generator, gate *Gate) *QuizSession {
	return &QuizSession{
		gen:        gen,
		gate:       gate,
		state:      QuizIdle,
		errorDelay: errorDisplayDelay,
	}
}

// Start begins a new quiz session over the material. The generation call
// runs in the background; callers observe progress through Snapshot.
func (s *QuizSession) Start(m models.Material) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != QuizIdle {
		return errInvalidAction("start quiz", s.state)
	}
	s.material = m
	return s.beginLoad()
}

// Restart discards the finished session and fetches a fresh quiz over the
// same material.
func (s *QuizSession) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != QuizResults {
		return errInvalidAction("restart quiz", s.state)
	}
	return s.beginLoad()
}

// beginLoad moves to Loading and kicks off generation. Callers hold mu.
func (s *QuizSession) beginLoad() error {
	if !s.gate.TryAcquire() {
		return ErrGenerationInFlight
	}

	s.generation++
	gen := s.generation
	s.state = QuizLoading
	s.questions = nil
	s.lastError = ""
	s.statusTick = 0
	s.ticker = startStatusTicker(s.bumpStatus)

	go s.load(gen, s.material)
	return nil
}

func (s *QuizSession) bumpStatus() {
	s.mu.Lock()
	s.statusTick++
	s.mu.Unlock()
}

// load runs the generation call and commits the outcome.
func (s *QuizSession) load(gen int, m models.Material) {
	questions, err := s.gen.GenerateQuiz(context.Background(), m)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		// The session was exited while we were loading; drop the result.
		return
	}

	s.settleLoad()

	if err != nil {
		log.Printf("ERROR: quiz generation failed: %v", err)
		s.state = QuizIdle
		s.lastError = err.Error()
		time.AfterFunc(s.errorDelay, func() {
			s.clearError(gen)
		})
		return
	}

	s.questions = questions
	s.index = 0
	s.score = 0
	s.answered = false
	s.selected = ""
	s.mistakes = nil
	s.reviewTaken = false
	s.state = QuizPresenting
}

// settleLoad releases the gate and stops the status rotation. Callers hold mu.
func (s *QuizSession) settleLoad() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
	s.gate.Release()
}

// clearError removes a surfaced generation error after its display delay,
// unless the session has moved on.
func (s *QuizSession) clearError(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.state != QuizIdle {
		return
	}
	s.lastError = ""
}

// AnswerOutcome is the result of scoring one selection.
type AnswerOutcome struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
}

// Answer scores the selection against the current question. Exactly one
// evaluation happens per question; further selections are rejected.
func (s *QuizSession) Answer(selected string) (AnswerOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != QuizPresenting {
		return AnswerOutcome{}, errInvalidAction("answer", s.state)
	}
	if s.answered {
		return AnswerOutcome{}, ErrAlreadyAnswered
	}

	q := s.questions[s.index]
	s.answered = true
	s.selected = selected

	outcome := AnswerOutcome{
		Correct:       q.IsCorrect(selected),
		CorrectAnswer: q.CorrectAnswer,
	}
	if outcome.Correct {
		s.score++
	} else {
		s.mistakes = append(s.mistakes, models.Mistake{Question: q, Selected: selected})
	}
	return outcome, nil
}

// Next advances to the following question, or to the results once the last
// question has been answered.
func (s *QuizSession) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != QuizPresenting {
		return errInvalidAction("advance", s.state)
	}
	if !s.answered {
		return ErrNotAnswered
	}

	s.index++
	s.answered = false
	s.selected = ""
	if s.index == len(s.questions) {
		s.state = QuizResults
	}
	return nil
}

// reviewOffered reports whether the mistake review is available. Only when
// the score ratio is below the threshold, at least one mistake was made,
// and the review has not been taken this session. Callers hold mu.
func (s *QuizSession) reviewOffered() bool {
	if s.state != QuizResults || s.reviewTaken || len(s.mistakes) == 0 {
		return false
	}
	return float64(s.score)/float64(len(s.questions)) < ReviewThreshold
}

// StartReview begins the read-only replay of the mistake log.
func (s *QuizSession) StartReview() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.reviewOffered() {
		return errInvalidAction("review mistakes", s.state)
	}
	s.reviewTaken = true
	s.reviewIndex = 0
	s.state = QuizReviewing
	return nil
}

// ReviewNext advances through the mistake log, returning to the results
// after the last entry.
func (s *QuizSession) ReviewNext() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != QuizReviewing {
		return errInvalidAction("advance review", s.state)
	}

	s.reviewIndex++
	if s.reviewIndex == len(s.mistakes) {
		s.state = QuizResults
	}
	return nil
}

// Exit discards the session and returns to idle without calling the
// gateway. Not allowed while a generation call is in flight.
func (s *QuizSession) Exit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == QuizLoading {
		return ErrGenerationInFlight
	}

	s.generation++
	s.state = QuizIdle
	s.questions = nil
	s.index = 0
	s.score = 0
	s.answered = false
	s.selected = ""
	s.mistakes = nil
	s.reviewIndex = 0
	s.reviewTaken = false
	s.lastError = ""
	return nil
}

// QuestionView is the question as presented to the user: the correct
// answer is withheld until the question has been answered.
type QuestionView struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// QuizSnapshot is a point-in-time view of the session for rendering.
type QuizSnapshot struct {
	State         QuizState       `json:"state"`
	StatusMessage string          `json:"status_message,omitempty"`
	Error         string          `json:"error,omitempty"`
	Question      *QuestionView   `json:"question,omitempty"`
	Index         int             `json:"index"`
	Total         int             `json:"total"`
	Score         int             `json:"score"`
	Answered      bool            `json:"answered"`
	Selected      string          `json:"selected,omitempty"`
	CorrectAnswer string          `json:"correct_answer,omitempty"`
	ReviewOffered bool            `json:"review_offered"`
	Mistake       *models.Mistake `json:"mistake,omitempty"`
}

// Snapshot returns the current state of the session.
func (s *QuizSession) Snapshot() QuizSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := QuizSnapshot{
		State: s.state,
		Score: s.score,
		Total: len(s.questions),
		Error: s.lastError,
	}

	switch s.state {
	case QuizLoading:
		snap.StatusMessage = statusMessage(s.statusTick)
	case QuizPresenting:
		q := s.questions[s.index]
		snap.Index = s.index
		snap.Question = &QuestionView{Question: q.Question, Options: q.Options}
		snap.Answered = s.answered
		if s.answered {
			snap.Selected = s.selected
			snap.CorrectAnswer = q.CorrectAnswer
		}
	case QuizResults:
		snap.ReviewOffered = s.reviewOffered()
	case QuizReviewing:
		snap.Index = s.reviewIndex
		snap.Total = len(s.mistakes)
		m := s.mistakes[s.reviewIndex]
		snap.Mistake = &m
	}
	return snap
}
