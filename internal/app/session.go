package app

import (
	"math/rand"
	"sync"
	"time"

	"learnitquick/internal/domain"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
)

// Timing holds the waits of a round.
type Timing struct {
	// QuestionTime is the countdown given to each question. Zero disables
	// the countdown.
	QuestionTime time.Duration
	// GetReady is the pause before the first question.
	GetReady time.Duration
	// FeedbackDelay is the pause after an answer, before the next question.
	FeedbackDelay time.Duration
}

// DefaultTiming mirrors the pacing of the game screen.
var DefaultTiming = Timing{
	QuestionTime:  15 * time.Second,
	GetReady:      3 * time.Second,
	FeedbackDelay: 1500 * time.Millisecond,
}

const tickInterval = time.Second

// FinishFunc is called exactly once when a round finishes. It may fill in
// profile-derived fields of the summary.
type FinishFunc func(domain.RoundSummary) domain.RoundSummary

// Session drives the round of one player: it owns the round state machine,
// the pending timer and the subscribers receiving round events.
type Session struct {
	id       string
	clock    quartz.Clock
	timing   Timing
	log      zerolog.Logger
	onFinish FinishFunc

	mu          sync.Mutex
	round       *Round
	onScreen    bool
	epoch       uint64
	timer       *quartz.Timer
	subscribers map[chan domain.Event]struct{}
}

// NewSession returns an idle session for player id.
func NewSession(id string, rnd *rand.Rand, clock quartz.Clock, timing Timing, log zerolog.Logger, onFinish FinishFunc) *Session {
	return &Session{
		id:          id,
		clock:       clock,
		timing:      timing,
		log:         log.With().Str("player", id).Logger(),
		onFinish:    onFinish,
		round:       NewRound(rnd, int(timing.QuestionTime/tickInterval)),
		subscribers: make(map[chan domain.Event]struct{}),
	}
}

// ID returns the player id the session belongs to.
func (s *Session) ID() string {
	return s.id
}

// Start begins a round and schedules the first question after the
// get-ready pause.
func (s *Session) Start(mode domain.Mode, difficulty domain.Difficulty, questions []domain.Question, profile domain.Profile) (domain.Leaderboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.round.Start(mode, difficulty, questions, profile); err != nil {
		return domain.Leaderboard{}, err
	}
	s.stopTimerLocked()
	s.onScreen = false
	s.log.Info().
		Str("match", s.round.MatchID()).
		Str("mode", string(mode)).
		Str("difficulty", string(difficulty)).
		Int("questions", len(questions)).
		Msg("round started")

	lb := s.leaderboardLocked()
	s.broadcastLocked(domain.Event{Type: domain.EventRoundStarted, Leaderboard: &lb})

	if s.round.State() == StateFinished {
		s.finishLocked()
		return lb, nil
	}
	if s.timing.GetReady > 0 {
		s.broadcastLocked(domain.Event{Type: domain.EventGetReady, TimeRemaining: int(s.timing.GetReady / tickInterval)})
		s.scheduleLocked(s.timing.GetReady, s.presentLocked)
	} else {
		s.presentLocked()
	}
	return lb, nil
}

// Submit answers the question on screen. It returns false, without
// changing anything, when no question is waiting for an answer, including
// during the get-ready and feedback pauses.
func (s *Session) Submit(value domain.Answer) (domain.AnswerResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.onScreen {
		return domain.AnswerResult{}, false
	}
	res, ok := s.round.submit(value)
	if !ok {
		return domain.AnswerResult{}, false
	}
	s.afterAnswerLocked(res)
	return res, true
}

// Finish ends the active round early with the totals gathered so far.
func (s *Session) Finish() (domain.RoundSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.round.End(); !ok {
		return domain.RoundSummary{}, domain.ErrRoundNotActive
	}
	return s.finishLocked(), nil
}

// Exit abandons the round. Pending timers are invalidated so they can no
// longer touch the session.
func (s *Session) Exit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimerLocked()
	if s.round.State() == StateActive {
		s.log.Info().Str("match", s.round.MatchID()).Msg("round abandoned")
	}
	s.onScreen = false
	s.round.Reset()
}

// State reports the lifecycle stage of the current round.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round.State()
}

// IsIdle reports whether the session holds no running round and nobody is
// subscribed to it.
func (s *Session) IsIdle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round.State() != StateActive && len(s.subscribers) == 0
}

// CurrentQuestion returns the question on screen. Nothing is on screen
// during the get-ready and feedback pauses.
func (s *Session) CurrentQuestion() (domain.QuestionView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.onScreen {
		return domain.QuestionView{}, false
	}
	return s.round.CurrentQuestion()
}

// Leaderboard returns the live standings.
func (s *Session) Leaderboard() domain.Leaderboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leaderboardLocked()
}

// Summary returns the result of the last finished round.
func (s *Session) Summary() (domain.RoundSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round.Summary()
}

// Subscribe returns a channel of round events, starting with the current
// leaderboard. The caller must invoke cancel to release it.
func (s *Session) Subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, 16)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	lb := s.leaderboardLocked()
	s.mu.Unlock()

	ch <- domain.Event{Type: domain.EventLeaderboard, Leaderboard: &lb}

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) presentLocked() {
	q, ok := s.round.CurrentQuestion()
	if !ok {
		return
	}
	s.onScreen = true
	s.broadcastLocked(domain.Event{Type: domain.EventQuestion, Question: &q, TimeRemaining: q.TimeRemaining})
	if s.timing.QuestionTime > 0 {
		s.scheduleLocked(tickInterval, s.tickLocked)
	}
}

func (s *Session) tickLocked() {
	remaining, res, expired := s.round.tick()
	if expired {
		s.afterAnswerLocked(res)
		return
	}
	s.broadcastLocked(domain.Event{Type: domain.EventTick, TimeRemaining: remaining})
	s.scheduleLocked(tickInterval, s.tickLocked)
}

func (s *Session) afterAnswerLocked(res domain.AnswerResult) {
	s.stopTimerLocked()
	s.onScreen = false
	s.round.SimulateBots()

	lb := s.leaderboardLocked()
	s.broadcastLocked(domain.Event{Type: domain.EventAnswerResult, Result: &res})
	s.broadcastLocked(domain.Event{Type: domain.EventLeaderboard, Leaderboard: &lb})

	if s.timing.FeedbackDelay > 0 {
		s.scheduleLocked(s.timing.FeedbackDelay, s.advanceLocked)
	} else {
		s.advanceLocked()
	}
}

func (s *Session) advanceLocked() {
	if s.round.Advance() {
		s.finishLocked()
		return
	}
	s.presentLocked()
}

// finishLocked runs once per round, right after Round.End succeeded.
func (s *Session) finishLocked() domain.RoundSummary {
	s.stopTimerLocked()
	s.onScreen = false
	summary, _ := s.round.Summary()
	if s.onFinish != nil {
		summary = s.onFinish(summary)
		s.round.summary = &summary
	}
	s.log.Info().
		Str("match", summary.MatchID).
		Int("score", summary.Score).
		Int("rank", summary.PlayerRank).
		Int("coins", summary.CoinsEarned).
		Msg("round finished")
	s.broadcastLocked(domain.Event{Type: domain.EventSummary, Summary: &summary})
	return summary
}

// scheduleLocked replaces the pending timer. The callback is dropped if the
// session moved on (another schedule, a stop or an exit) before it ran.
func (s *Session) scheduleLocked(d time.Duration, fn func()) {
	s.stopTimerLocked()
	epoch := s.epoch
	s.timer = s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.epoch != epoch {
			return
		}
		s.timer = nil
		fn()
	})
}

func (s *Session) stopTimerLocked() {
	s.epoch++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) leaderboardLocked() domain.Leaderboard {
	return domain.Leaderboard{
		MatchID:   s.round.MatchID(),
		Entries:   s.round.Leaderboard(),
		UpdatedAt: s.clock.Now(),
	}
}

func (s *Session) broadcastLocked(ev domain.Event) {
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// drop the oldest event so a slow reader never blocks the round
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}
