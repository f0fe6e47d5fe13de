package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Mode identifies a question archetype.
type Mode string

const (
	ModeTables         Mode = "tables"
	ModeComparison     Mode = "comparison"
	ModeAddition       Mode = "addition"
	ModeSubtraction    Mode = "subtraction"
	ModeMultiplication Mode = "multiplication"
	ModeCarryAddition  Mode = "carry-addition"
	ModeCounting       Mode = "counting"
	ModeNumberSequence Mode = "number-sequence"
)

// Modes lists every supported mode in menu order.
var Modes = []Mode{
	ModeTables,
	ModeComparison,
	ModeAddition,
	ModeSubtraction,
	ModeMultiplication,
	ModeCarryAddition,
	ModeCounting,
	ModeNumberSequence,
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	for _, known := range Modes {
		if m == known {
			return true
		}
	}
	return false
}

// Difficulty widens the numeric ranges used by a mode.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Valid reports whether d is easy, medium or hard.
func (d Difficulty) Valid() bool {
	return d == Easy || d == Medium || d == Hard
}

// Answer is an option value. Numeric and symbolic answers are both held in
// their string form so that 7 and "7" compare equal.
type Answer string

// Timeout is submitted when the question countdown expires. No generated
// answer is negative, so it never matches.
const Timeout Answer = "-1"

// Number builds an Answer from an integer.
func Number(n int) Answer {
	return Answer(strconv.Itoa(n))
}

// Symbol builds an Answer from a symbol such as "<".
func Symbol(s string) Answer {
	return Answer(s)
}

// Int returns the numeric value of the answer, if it has one.
func (a Answer) Int() (int, bool) {
	n, err := strconv.Atoi(string(a))
	return n, err == nil
}

func (a Answer) String() string {
	return string(a)
}

// MarshalJSON writes numeric answers as JSON numbers and symbols as strings.
func (a Answer) MarshalJSON() ([]byte, error) {
	if n, ok := a.Int(); ok {
		return []byte(strconv.Itoa(n)), nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(string(a)); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Answer(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = Answer(n.String())
	if f, err := n.Float64(); err == nil && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		*a = Number(int(f))
	}
	return nil
}

// Question is a generated multiple-choice question.
type Question struct {
	ID            string   `json:"id"`
	Prompt        string   `json:"prompt"`
	Options       []Answer `json:"options"`
	CorrectAnswer Answer   `json:"correctAnswer"`
	Mode          Mode     `json:"mode"`
	Points        int      `json:"points"`
}

// QuestionView is the snapshot sent to the presentation layer. It never
// carries the correct answer.
type QuestionView struct {
	ID            string   `json:"id"`
	Prompt        string   `json:"prompt"`
	Options       []Answer `json:"options"`
	Mode          Mode     `json:"mode"`
	Index         int      `json:"index"`
	Total         int      `json:"total"`
	TimeRemaining int      `json:"timeRemaining"`
}

// HumanID is the reserved participant id of the human player.
const HumanID = "player"

// Participant is either the human player or a simulated bot.
type Participant struct {
	ID             string `json:"id"`
	DisplayName    string `json:"displayName"`
	Avatar         string `json:"avatar"`
	Score          int    `json:"score"`
	CorrectAnswers int    `json:"correctAnswers"`
	IsBot          bool   `json:"isBot"`
	Rank           int    `json:"rank,omitempty"`
}

// LeaderboardEntry is a snapshot-friendly view of a participant.
type LeaderboardEntry struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
	Score       int    `json:"score"`
	IsBot       bool   `json:"isBot"`
}

// Leaderboard captures the roster of a round ordered by score.
type Leaderboard struct {
	MatchID   string             `json:"matchId"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// AnswerResult summarizes the outcome of a single submission.
type AnswerResult struct {
	QuestionID    string `json:"questionId"`
	Correct       bool   `json:"correct"`
	TimedOut      bool   `json:"timedOut"`
	CorrectAnswer Answer `json:"correctAnswer"`
	Awarded       int    `json:"awarded"`
	Coins         int    `json:"coins"`
	Streak        int    `json:"streak"`
	TotalScore    int    `json:"totalScore"`
}

// RoundSummary is emitted once when a round finishes.
type RoundSummary struct {
	MatchID        string        `json:"matchId"`
	Mode           Mode          `json:"mode"`
	Difficulty     Difficulty    `json:"difficulty"`
	Ranking        []Participant `json:"ranking"`
	PlayerRank     int           `json:"playerRank"`
	Score          int           `json:"score"`
	CorrectAnswers int           `json:"correctAnswers"`
	WrongAnswers   int           `json:"wrongAnswers"`
	TotalQuestions int           `json:"totalQuestions"`
	Accuracy       int           `json:"accuracy"`
	MaxStreak      int           `json:"maxStreak"`
	CoinsEarned    int           `json:"coinsEarned"`
	TotalCoins     int           `json:"totalCoins"`
}

// DefaultAvatar is used until the player picks one.
const DefaultAvatar = "🚀"

// Profile is the persistent player record.
type Profile struct {
	PlayerName   string   `json:"playerName"`
	PlayerAvatar string   `json:"playerAvatar"`
	TotalCoins   int      `json:"totalCoins"`
	GamesPlayed  int      `json:"gamesPlayed"`
	TotalCorrect int      `json:"totalCorrect"`
	Achievements []string `json:"achievements"`
}

// NewProfile returns the profile of a player who never played.
func NewProfile() Profile {
	return Profile{PlayerAvatar: DefaultAvatar, Achievements: []string{}}
}

// DisplayName is the name shown on the leaderboard.
func (p Profile) DisplayName() string {
	if p.PlayerName == "" {
		return "You"
	}
	return p.PlayerName
}

// ApplyRound adds the totals of a finished round.
func (p *Profile) ApplyRound(s RoundSummary) {
	p.TotalCoins += s.CoinsEarned
	p.GamesPlayed++
	p.TotalCorrect += s.CorrectAnswers
}

// EventType tags messages pushed to round subscribers.
type EventType string

const (
	EventRoundStarted EventType = "roundStarted"
	EventGetReady     EventType = "getReady"
	EventQuestion     EventType = "question"
	EventTick         EventType = "tick"
	EventAnswerResult EventType = "answerResult"
	EventLeaderboard  EventType = "leaderboard"
	EventSummary      EventType = "summary"
)

// Event is a state change of a round, pushed to subscribers.
type Event struct {
	Type          EventType     `json:"type"`
	Question      *QuestionView `json:"question,omitempty"`
	Result        *AnswerResult `json:"result,omitempty"`
	Leaderboard   *Leaderboard  `json:"leaderboard,omitempty"`
	Summary       *RoundSummary `json:"summary,omitempty"`
	TimeRemaining int           `json:"timeRemaining,omitempty"`
}
