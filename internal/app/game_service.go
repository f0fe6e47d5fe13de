package app

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"learnitquick/internal/domain"
	"learnitquick/internal/generator"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
)

// SessionRepository abstracts where player sessions live (in-memory, Redis, etc).
type SessionRepository interface {
	GetOrCreate(playerID string, create func() *Session) *Session
	Get(playerID string) (*Session, bool)
	DeleteIfIdle(playerID string)
}

// ProfileStore is the persistence port of the player profile. LoadProfile
// returns domain.ErrProfileNotFound for players that never saved.
type ProfileStore interface {
	LoadProfile(ctx context.Context, playerID string) (domain.Profile, error)
	SaveProfile(ctx context.Context, playerID string, profile domain.Profile) error
}

// Options tunes a GameService.
type Options struct {
	Timing    Timing
	Questions int
	// Seed drives question generation and bot simulation. Zero seeds from
	// the current time.
	Seed int64
	// SaveTimeout bounds profile writes made from timer callbacks.
	SaveTimeout time.Duration
}

// GameService contains the game use cases.
type GameService struct {
	sessions  SessionRepository
	profiles  ProfileStore
	questions *generator.Generator
	clock     quartz.Clock
	log       zerolog.Logger
	opts      Options

	seedMu sync.Mutex
	seeds  *rand.Rand

	// profileLocks serializes load-modify-save of each player's profile.
	profileMu    sync.Mutex
	profileLocks map[string]*sync.Mutex
}

func NewGameService(sessions SessionRepository, profiles ProfileStore, clock quartz.Clock, log zerolog.Logger, opts Options) *GameService {
	if opts.Questions <= 0 {
		opts.Questions = generator.DefaultCount
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = 5 * time.Second
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	seeds := rand.New(rand.NewSource(seed))
	return &GameService{
		sessions:  sessions,
		profiles:  profiles,
		questions: generator.New(rand.New(rand.NewSource(seeds.Int63())), log),
		clock:     clock,
		log:       log.With().Str("component", "game").Logger(),
		opts:      opts,
		seeds:     seeds,

		profileLocks: make(map[string]*sync.Mutex),
	}
}

// StartRound generates a fresh batch of questions and starts a round for
// the player.
func (s *GameService) StartRound(ctx context.Context, playerID string, mode domain.Mode, difficulty domain.Difficulty) (domain.Leaderboard, error) {
	if playerID == "" {
		return domain.Leaderboard{}, domain.ErrMissingPlayer
	}
	if !mode.Valid() {
		s.log.Warn().Str("mode", string(mode)).Msg("unknown mode, using addition")
		mode = domain.ModeAddition
	}
	if !difficulty.Valid() {
		s.log.Warn().Str("difficulty", string(difficulty)).Msg("unknown difficulty, using easy")
		difficulty = domain.Easy
	}

	profile, err := s.Profile(ctx, playerID)
	if err != nil {
		return domain.Leaderboard{}, err
	}

	session := s.session(playerID)
	questions := s.questions.Generate(mode, difficulty, s.opts.Questions)
	return session.Start(mode, difficulty, questions, profile)
}

// SubmitAnswer scores an answer to the player's current question. The
// boolean is false when no question was waiting for an answer.
func (s *GameService) SubmitAnswer(_ context.Context, playerID string, value domain.Answer) (domain.AnswerResult, bool, error) {
	session, ok := s.sessions.Get(playerID)
	if !ok {
		return domain.AnswerResult{}, false, domain.ErrSessionNotFound
	}
	res, accepted := session.Submit(value)
	return res, accepted, nil
}

// CurrentQuestion returns the question the player is looking at.
func (s *GameService) CurrentQuestion(_ context.Context, playerID string) (domain.QuestionView, bool, error) {
	session, ok := s.sessions.Get(playerID)
	if !ok {
		return domain.QuestionView{}, false, domain.ErrSessionNotFound
	}
	q, ok := session.CurrentQuestion()
	return q, ok, nil
}

// FinishRound ends the player's round early and records its totals.
func (s *GameService) FinishRound(_ context.Context, playerID string) (domain.RoundSummary, error) {
	session, ok := s.sessions.Get(playerID)
	if !ok {
		return domain.RoundSummary{}, domain.ErrSessionNotFound
	}
	return session.Finish()
}

// ExitRound abandons the player's round without recording it.
func (s *GameService) ExitRound(_ context.Context, playerID string) {
	session, ok := s.sessions.Get(playerID)
	if !ok {
		return
	}
	session.Exit()
	s.sessions.DeleteIfIdle(playerID)
}

// Subscribe returns a channel that receives round events for a player.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *GameService) Subscribe(_ context.Context, playerID string) (<-chan domain.Event, func(), error) {
	if playerID == "" {
		return nil, nil, domain.ErrMissingPlayer
	}
	ch, cancel := s.session(playerID).Subscribe()
	return ch, cancel, nil
}

// Profile loads the player's persistent profile, or a fresh one for a new
// player.
func (s *GameService) Profile(ctx context.Context, playerID string) (domain.Profile, error) {
	if playerID == "" {
		return domain.Profile{}, domain.ErrMissingPlayer
	}
	profile, err := s.profiles.LoadProfile(ctx, playerID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return domain.NewProfile(), nil
	}
	if err != nil {
		return domain.Profile{}, err
	}
	if profile.PlayerAvatar == "" {
		profile.PlayerAvatar = domain.DefaultAvatar
	}
	return profile, nil
}

// UpdateProfile sets the player's name and avatar. Empty values are left
// unchanged.
func (s *GameService) UpdateProfile(ctx context.Context, playerID, name, avatar string) (domain.Profile, error) {
	if playerID == "" {
		return domain.Profile{}, domain.ErrMissingPlayer
	}
	unlock := s.lockProfile(playerID)
	defer unlock()

	profile, err := s.Profile(ctx, playerID)
	if err != nil {
		return domain.Profile{}, err
	}
	if name != "" {
		profile.PlayerName = name
	}
	if avatar != "" {
		profile.PlayerAvatar = avatar
	}
	if err := s.profiles.SaveProfile(ctx, playerID, profile); err != nil {
		return domain.Profile{}, err
	}
	return profile, nil
}

func (s *GameService) session(playerID string) *Session {
	return s.sessions.GetOrCreate(playerID, func() *Session {
		return NewSession(playerID, s.newRand(), s.clock, s.opts.Timing, s.log, s.recorder(playerID))
	})
}

// recorder adds a finished round to the player's profile.
func (s *GameService) recorder(playerID string) FinishFunc {
	return func(summary domain.RoundSummary) domain.RoundSummary {
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.SaveTimeout)
		defer cancel()
		unlock := s.lockProfile(playerID)
		defer unlock()

		profile, err := s.Profile(ctx, playerID)
		if err != nil {
			s.log.Error().Err(err).Str("player", playerID).Msg("load profile for round totals")
			return summary
		}
		profile.ApplyRound(summary)
		if err := s.profiles.SaveProfile(ctx, playerID, profile); err != nil {
			s.log.Error().Err(err).Str("player", playerID).Msg("save round totals")
			return summary
		}
		summary.TotalCoins = profile.TotalCoins
		return summary
	}
}

func (s *GameService) lockProfile(playerID string) func() {
	s.profileMu.Lock()
	mu, ok := s.profileLocks[playerID]
	if !ok {
		mu = &sync.Mutex{}
		s.profileLocks[playerID] = mu
	}
	s.profileMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

func (s *GameService) newRand() *rand.Rand {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()
	return rand.New(rand.NewSource(s.seeds.Int63()))
}
