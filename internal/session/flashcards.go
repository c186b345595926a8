package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"studydesk/internal/gemini"
	"studydesk/internal/models"
)

// FlashcardState identifies where a flashcard session is in its flow.
type FlashcardState string

const (
	FlashcardsIdle       FlashcardState = "idle"
	FlashcardsLoading    FlashcardState = "loading"
	FlashcardsPresenting FlashcardState = "presenting"
	FlashcardsResults    FlashcardState = "results"
)

// FlashcardSession is the flashcard flow state machine. Unlike the quiz,
// loading is cancellable: a cancellation signalled while the request is in
// flight discards any late result without a state transition. If the
// result commits before the signal arrives, the commit wins; whichever
// takes the session mutex first decides the race.
type FlashcardSession struct {
	mu   sync.Mutex
	gen  Generator
	gate *Gate

	state    FlashcardState
	material models.Material

	cards    []models.Flashcard
	index    int
	known    int
	revealed bool

	cancel   context.CancelFunc
	inFlight bool

	loadError  string
	statusTick int
	ticker     *statusTicker
	generation int

	errorDelay time.Duration
}

// NewFlashcardSession creates an idle flashcard session using the given
// generator and sharing the generation gate with the other flows.
func NewFlashcardSession(gen Generator, gate *Gate) *FlashcardSession {
	return &FlashcardSession{
		gen:        gen,
		gate:       gate,
		state:      FlashcardsIdle,
		errorDelay: errorDisplayDelay,
	}
}

// Start begins a new flashcard session over the material. The generation
// call runs in the background and may be cancelled with Cancel while it is
// in flight.
func (s *FlashcardSession) Start(m models.Material) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != FlashcardsIdle {
		return errInvalidAction("start flashcards", s.state)
	}
	if !s.gate.TryAcquire() {
		return ErrGenerationInFlight
	}

	s.generation++
	gen := s.generation
	s.material = m
	s.state = FlashcardsLoading
	s.loadError = ""
	s.statusTick = 0
	s.ticker = startStatusTicker(s.bumpStatus)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.inFlight = true

	go s.load(gen, ctx, m)
	return nil
}

func (s *FlashcardSession) bumpStatus() {
	s.mu.Lock()
	s.statusTick++
	s.mu.Unlock()
}

// load runs the generation call and commits the outcome unless the session
// was cancelled in the meantime.
func (s *FlashcardSession) load(gen int, ctx context.Context, m models.Material) {
	cards, err := s.gen.GenerateFlashcards(ctx, m)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		// Cancelled while in flight: the result arrives into a session that
		// already moved on, and is discarded without a transition.
		return
	}

	s.inFlight = false
	s.settleLoad()
	if s.cancel != nil {
		// The request has settled; release its context.
		s.cancel()
		s.cancel = nil
	}

	if err != nil {
		log.Printf("ERROR: flashcard generation failed: %v", err)
		if errors.Is(err, gemini.ErrNoFlashcardsGenerated) {
			// Unusable but well-formed result: stay on the loading screen
			// with the error shown; Cancel doubles as the exit action.
			s.loadError = err.Error()
			return
		}
		// Transport failure reverts to idle, error shown briefly.
		s.state = FlashcardsIdle
		s.loadError = err.Error()
		time.AfterFunc(s.errorDelay, func() {
			s.clearError(gen)
		})
		return
	}

	s.cards = cards
	s.index = 0
	s.known = 0
	s.revealed = false
	s.state = FlashcardsPresenting
}

// settleLoad stops the status rotation and releases the gate. Callers hold mu.
func (s *FlashcardSession) settleLoad() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
	s.gate.Release()
}

func (s *FlashcardSession) clearError(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.state != FlashcardsIdle {
		return
	}
	s.loadError = ""
}

// Cancel abandons the loading state and returns to idle. While the request
// is still in flight this is the cooperative cancellation signal; after a
// failed generation it doubles as the exit action. No error is surfaced
// either way.
func (s *FlashcardSession) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != FlashcardsLoading {
		return errInvalidAction("cancel", s.state)
	}

	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.inFlight {
		s.inFlight = false
		s.settleLoad()
	}
	s.state = FlashcardsIdle
	s.loadError = ""
	return nil
}

// Reveal toggles the definition of the current card. Reversible, with no
// side effect besides the flip.
func (s *FlashcardSession) Reveal() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != FlashcardsPresenting {
		return errInvalidAction("reveal", s.state)
	}
	s.revealed = !s.revealed
	return nil
}

// Advance moves to the next card. knewIt self-scores the current card; it
// increments the known count and nothing else differs between the two
// advance actions.
func (s *FlashcardSession) Advance(knewIt bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != FlashcardsPresenting {
		return errInvalidAction("advance", s.state)
	}

	if knewIt {
		s.known++
	}
	s.index++
	s.revealed = false
	if s.index == len(s.cards) {
		s.state = FlashcardsResults
	}
	return nil
}

// Restart re-runs the same deck with the counters reset. No gateway call.
func (s *FlashcardSession) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != FlashcardsResults {
		return errInvalidAction("restart flashcards", s.state)
	}
	s.index = 0
	s.known = 0
	s.revealed = false
	s.state = FlashcardsPresenting
	return nil
}

// Exit discards the deck and returns to idle. Use Cancel while loading.
func (s *FlashcardSession) Exit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == FlashcardsLoading {
		return ErrGenerationInFlight
	}

	s.generation++
	s.state = FlashcardsIdle
	s.cards = nil
	s.index = 0
	s.known = 0
	s.revealed = false
	s.loadError = ""
	return nil
}

// CardView is the card as presented: the definition is withheld until
// revealed.
type CardView struct {
	Term       string `json:"term"`
	Definition string `json:"definition,omitempty"`
}

// FlashcardSnapshot is a point-in-time view of the session for rendering.
type FlashcardSnapshot struct {
	State         FlashcardState `json:"state"`
	StatusMessage string         `json:"status_message,omitempty"`
	Error         string         `json:"error,omitempty"`
	Card          *CardView      `json:"card,omitempty"`
	Index         int            `json:"index"`
	Total         int            `json:"total"`
	Known         int            `json:"known"`
	Revealed      bool           `json:"revealed"`
}

// Snapshot returns the current state of the session.
func (s *FlashcardSession) Snapshot() FlashcardSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := FlashcardSnapshot{
		State: s.state,
		Total: len(s.cards),
		Known: s.known,
		Error: s.loadError,
	}

	switch s.state {
	case FlashcardsLoading:
		snap.StatusMessage = statusMessage(s.statusTick)
	case FlashcardsPresenting:
		card := s.cards[s.index]
		snap.Index = s.index
		snap.Revealed = s.revealed
		view := &CardView{Term: card.Term}
		if s.revealed {
			view.Definition = card.Definition
		}
		snap.Card = view
	}
	return snap
}
