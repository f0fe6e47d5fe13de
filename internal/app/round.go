package app

import (
	"math"
	"math/rand"
	"sort"

	"learnitquick/internal/domain"

	"github.com/google/uuid"
)

// State is the lifecycle stage of a round.
type State int

const (
	StateIdle State = iota
	StateActive
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateFinished:
		return "finished"
	default:
		return "idle"
	}
}

const (
	coinsPerCorrect = 10
	streakStep      = 3
	streakBonus     = 2
)

// Round is the scoring state machine of a single quiz round. It owns no
// timers; countdown ticks are fed in through Tick. Round is not safe for
// concurrent use, Session serializes access to it.
type Round struct {
	rnd          *rand.Rand
	questionTime int

	state      State
	matchID    string
	mode       domain.Mode
	difficulty domain.Difficulty
	questions  []domain.Question
	current    int
	answered   bool
	remaining  int

	score     int
	correct   int
	wrong     int
	coins     int
	streak    int
	maxStreak int

	participants []domain.Participant
	summary      *domain.RoundSummary
}

// NewRound returns an idle round. questionTime is the countdown, in ticks,
// given to each question.
func NewRound(rnd *rand.Rand, questionTime int) *Round {
	return &Round{rnd: rnd, questionTime: questionTime}
}

// Start begins a round over questions with a fresh roster of the human
// player and BotCount bots.
func (r *Round) Start(mode domain.Mode, difficulty domain.Difficulty, questions []domain.Question, profile domain.Profile) error {
	if r.state == StateActive {
		return domain.ErrRoundActive
	}
	r.Reset()

	r.matchID = r.newMatchID()
	r.mode = mode
	r.difficulty = difficulty
	r.questions = append([]domain.Question(nil), questions...)
	r.remaining = r.questionTime

	human := domain.Participant{
		ID:          domain.HumanID,
		DisplayName: profile.DisplayName(),
		Avatar:      profile.PlayerAvatar,
	}
	if human.Avatar == "" {
		human.Avatar = domain.DefaultAvatar
	}
	r.participants = append([]domain.Participant{human}, newBots(r.rnd, BotCount)...)

	r.state = StateActive
	if len(r.questions) == 0 {
		r.End()
	}
	return nil
}

// SubmitAnswer scores value against the current question and reports
// whether it was correct. Without a pending question it does nothing.
func (r *Round) SubmitAnswer(value domain.Answer) bool {
	res, ok := r.submit(value)
	return ok && res.Correct
}

func (r *Round) submit(value domain.Answer) (domain.AnswerResult, bool) {
	q, ok := r.pending()
	if !ok {
		return domain.AnswerResult{}, false
	}
	r.answered = true

	res := domain.AnswerResult{
		QuestionID:    q.ID,
		TimedOut:      value == domain.Timeout,
		CorrectAnswer: q.CorrectAnswer,
	}
	if value.String() == q.CorrectAnswer.String() {
		r.streak++
		if r.streak > r.maxStreak {
			r.maxStreak = r.streak
		}
		coins := coinsPerCorrect + (r.streak/streakStep)*streakBonus

		r.score += q.Points
		r.correct++
		r.coins += coins
		if human := r.human(); human != nil {
			human.Score += q.Points
			human.CorrectAnswers++
		}

		res.Correct = true
		res.Awarded = q.Points
		res.Coins = coins
	} else {
		r.wrong++
		r.streak = 0
	}
	res.Streak = r.streak
	res.TotalScore = r.score
	return res, true
}

// SimulateBots rolls the current question for every bot.
func (r *Round) SimulateBots() {
	if r.state != StateActive {
		return
	}
	for i := range r.participants {
		if r.participants[i].IsBot {
			simulateBot(r.rnd, &r.participants[i])
		}
	}
}

// Tick moves the countdown of the pending question one step. When it hits
// zero the timeout answer is submitted and expired is true.
func (r *Round) Tick() (remaining int, expired bool) {
	remaining, _, expired = r.tick()
	return remaining, expired
}

func (r *Round) tick() (int, domain.AnswerResult, bool) {
	if _, ok := r.pending(); !ok {
		return r.remaining, domain.AnswerResult{}, false
	}
	if r.remaining > 0 {
		r.remaining--
	}
	if r.remaining > 0 {
		return r.remaining, domain.AnswerResult{}, false
	}
	res, _ := r.submit(domain.Timeout)
	return 0, res, true
}

// Advance moves past an answered question and ends the round after the
// last one. It reports whether the round finished.
func (r *Round) Advance() bool {
	if r.state != StateActive || !r.answered {
		return false
	}
	r.current++
	r.answered = false
	r.remaining = r.questionTime
	if r.current >= len(r.questions) {
		r.End()
		return true
	}
	return false
}

// End ranks the roster and finishes the round. It only succeeds once per
// round, while the round is active.
func (r *Round) End() (domain.RoundSummary, bool) {
	if r.state != StateActive {
		return domain.RoundSummary{}, false
	}

	ranked := rank(r.participants)
	playerRank := 0
	for _, p := range ranked {
		if p.ID == domain.HumanID {
			playerRank = p.Rank
		}
	}
	r.participants = ranked

	summary := domain.RoundSummary{
		MatchID:        r.matchID,
		Mode:           r.mode,
		Difficulty:     r.difficulty,
		Ranking:        append([]domain.Participant(nil), ranked...),
		PlayerRank:     playerRank,
		Score:          r.score,
		CorrectAnswers: r.correct,
		WrongAnswers:   r.wrong,
		TotalQuestions: len(r.questions),
		Accuracy:       accuracy(r.correct, len(r.questions)),
		MaxStreak:      r.maxStreak,
		CoinsEarned:    r.coins,
	}
	r.summary = &summary
	r.state = StateFinished
	return summary, true
}

// Reset clears every round-scoped field.
func (r *Round) Reset() {
	*r = Round{rnd: r.rnd, questionTime: r.questionTime}
}

// Summary returns the result of the last finished round.
func (r *Round) Summary() (domain.RoundSummary, bool) {
	if r.summary == nil {
		return domain.RoundSummary{}, false
	}
	return *r.summary, true
}

// CurrentQuestion returns the question awaiting an answer, or the one just
// answered before Advance.
func (r *Round) CurrentQuestion() (domain.QuestionView, bool) {
	if r.state != StateActive || r.current >= len(r.questions) {
		return domain.QuestionView{}, false
	}
	q := r.questions[r.current]
	return domain.QuestionView{
		ID:            q.ID,
		Prompt:        q.Prompt,
		Options:       append([]domain.Answer(nil), q.Options...),
		Mode:          q.Mode,
		Index:         r.current,
		Total:         len(r.questions),
		TimeRemaining: r.remaining,
	}, true
}

// Leaderboard returns the roster ordered by score. Ties keep roster order.
func (r *Round) Leaderboard() []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(r.participants))
	for _, p := range r.participants {
		entries = append(entries, domain.LeaderboardEntry{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			Avatar:      p.Avatar,
			Score:       p.Score,
			IsBot:       p.IsBot,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}

// State returns the lifecycle stage of the round.
func (r *Round) State() State { return r.state }

// MatchID identifies the current or last round.
func (r *Round) MatchID() string { return r.matchID }

// Index is the position of the current question in the batch.
func (r *Round) Index() int { return r.current }

// Streak counts consecutive correct answers.
func (r *Round) Streak() int { return r.streak }

// MaxStreak is the longest streak of the round.
func (r *Round) MaxStreak() int { return r.maxStreak }

// Score is the human player's score.
func (r *Round) Score() int { return r.score }

// CoinsEarned is the coin total of the round.
func (r *Round) CoinsEarned() int { return r.coins }

// CorrectAnswers counts the human player's correct answers.
func (r *Round) CorrectAnswers() int { return r.correct }

// WrongAnswers counts wrong answers and timeouts.
func (r *Round) WrongAnswers() int { return r.wrong }

// TimeRemaining is the countdown left on the current question.
func (r *Round) TimeRemaining() int { return r.remaining }

// Questions returns a copy of the round's batch.
func (r *Round) Questions() []domain.Question {
	return append([]domain.Question(nil), r.questions...)
}

// Participants returns a copy of the roster in roster order (ranked order
// once finished).
func (r *Round) Participants() []domain.Participant {
	return append([]domain.Participant(nil), r.participants...)
}

func (r *Round) pending() (domain.Question, bool) {
	if r.state != StateActive || r.answered || r.current >= len(r.questions) {
		return domain.Question{}, false
	}
	return r.questions[r.current], true
}

func (r *Round) human() *domain.Participant {
	for i := range r.participants {
		if r.participants[i].ID == domain.HumanID {
			return &r.participants[i]
		}
	}
	return nil
}

func (r *Round) newMatchID() string {
	id, err := uuid.NewRandomFromReader(r.rnd)
	if err != nil {
		return "match-" + uuid.NewString()
	}
	return "match-" + id.String()
}

// rank orders participants by score, highest first, and numbers them from
// 1. Equal scores keep their roster order.
func rank(participants []domain.Participant) []domain.Participant {
	ranked := append([]domain.Participant(nil), participants...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

func accuracy(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
