package app

import (
	"math/rand"
	"strconv"
	"testing"

	"learnitquick/internal/domain"
)

func fixedQuestions(n int) []domain.Question {
	qs := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		correct := i + 2
		qs = append(qs, domain.Question{
			ID:            "q" + strconv.Itoa(i),
			Prompt:        strconv.Itoa(i+1) + " + 1 = ?",
			Options:       []domain.Answer{domain.Number(correct - 1), domain.Number(correct), domain.Number(correct + 1), domain.Number(correct + 2)},
			CorrectAnswer: domain.Number(correct),
			Mode:          domain.ModeAddition,
			Points:        10,
		})
	}
	return qs
}

func startedRound(t *testing.T, n int) *Round {
	t.Helper()
	r := NewRound(rand.New(rand.NewSource(7)), 15)
	if err := r.Start(domain.ModeAddition, domain.Easy, fixedQuestions(n), domain.NewProfile()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return r
}

func TestRoundTenCorrectAnswers(t *testing.T) {
	r := startedRound(t, 10)
	for i := 0; i < 10; i++ {
		q, ok := r.CurrentQuestion()
		if !ok {
			t.Fatalf("expected question %d", i)
		}
		if !r.SubmitAnswer(domain.Number(i + 2)) {
			t.Fatalf("expected answer to %s to be correct", q.Prompt)
		}
		r.SimulateBots()
		finished := r.Advance()
		if finished != (i == 9) {
			t.Fatalf("unexpected finished=%v after question %d", finished, i)
		}
	}

	summary, ok := r.Summary()
	if !ok {
		t.Fatalf("expected summary after last question")
	}
	if summary.MaxStreak != 10 || summary.CorrectAnswers != 10 || summary.CoinsEarned != 130 {
		t.Fatalf("expected streak 10, 10 correct, 130 coins, got %+v", summary)
	}
	if summary.Score != 100 || summary.Accuracy != 100 || summary.WrongAnswers != 0 {
		t.Fatalf("unexpected totals %+v", summary)
	}
	if r.State() != StateFinished {
		t.Fatalf("expected finished state, got %s", r.State())
	}
	if len(summary.Ranking) != BotCount+1 {
		t.Fatalf("expected %d ranked participants, got %d", BotCount+1, len(summary.Ranking))
	}
}

func TestRoundCoinBonusFollowsStreak(t *testing.T) {
	r := startedRound(t, 10)
	for i := 0; i < 10; i++ {
		before := r.CoinsEarned()
		r.SubmitAnswer(domain.Number(i + 2))
		streak := r.Streak()
		if streak != i+1 {
			t.Fatalf("expected streak %d, got %d", i+1, streak)
		}
		want := 10 + (streak/3)*2
		if got := r.CoinsEarned() - before; got != want {
			t.Fatalf("question %d: expected %d coins, got %d", i, want, got)
		}
		r.Advance()
	}
}

func TestRoundWrongAnswerResetsStreak(t *testing.T) {
	r := startedRound(t, 10)
	for i := 0; i < 4; i++ {
		r.SubmitAnswer(domain.Number(i + 2))
		r.Advance()
	}
	if r.SubmitAnswer(domain.Number(999)) {
		t.Fatalf("expected wrong answer")
	}
	if r.Streak() != 0 || r.MaxStreak() != 4 || r.WrongAnswers() != 1 {
		t.Fatalf("expected streak reset with max 4, got streak=%d max=%d wrong=%d", r.Streak(), r.MaxStreak(), r.WrongAnswers())
	}
	if r.CoinsEarned() != 10+10+12+12 {
		t.Fatalf("wrong answer must not change coins, got %d", r.CoinsEarned())
	}
}

func TestRoundAnswerComparesStringForms(t *testing.T) {
	r := startedRound(t, 1)
	if !r.SubmitAnswer(domain.Symbol("2")) {
		t.Fatalf("expected \"2\" to match numeric answer 2")
	}
}

func TestRoundSubmitNoOps(t *testing.T) {
	idle := NewRound(rand.New(rand.NewSource(1)), 15)
	if idle.SubmitAnswer(domain.Number(2)) {
		t.Fatalf("idle round must ignore answers")
	}

	r := startedRound(t, 2)
	r.SubmitAnswer(domain.Number(2))
	if r.SubmitAnswer(domain.Number(2)) {
		t.Fatalf("second answer to the same question must be ignored")
	}
	if r.CorrectAnswers() != 1 || r.Score() != 10 {
		t.Fatalf("duplicate answer changed totals: correct=%d score=%d", r.CorrectAnswers(), r.Score())
	}

	r.Advance()
	r.SubmitAnswer(domain.Number(3))
	r.Advance()
	if r.SubmitAnswer(domain.Number(4)) {
		t.Fatalf("finished round must ignore answers")
	}
	if r.Index() != 2 {
		t.Fatalf("expected index 2, got %d", r.Index())
	}
}

func TestRoundAdvanceNeedsAnswer(t *testing.T) {
	r := startedRound(t, 3)
	if r.Advance() || r.Index() != 0 {
		t.Fatalf("advance without an answer must not move the index")
	}
}

func TestRoundTickTimesOut(t *testing.T) {
	r := NewRound(rand.New(rand.NewSource(3)), 3)
	if err := r.Start(domain.ModeAddition, domain.Easy, fixedQuestions(2), domain.NewProfile()); err != nil {
		t.Fatalf("start: %v", err)
	}
	r.SubmitAnswer(domain.Number(2))
	r.Advance()

	if remaining, expired := r.Tick(); remaining != 2 || expired {
		t.Fatalf("expected 2 remaining, got %d expired=%v", remaining, expired)
	}
	r.Tick()
	if remaining, expired := r.Tick(); remaining != 0 || !expired {
		t.Fatalf("expected expiry, got %d expired=%v", remaining, expired)
	}
	if r.Streak() != 0 || r.WrongAnswers() != 1 {
		t.Fatalf("timeout must count as wrong: streak=%d wrong=%d", r.Streak(), r.WrongAnswers())
	}
	if _, expired := r.Tick(); expired {
		t.Fatalf("answered question must not expire twice")
	}
	if !r.Advance() {
		t.Fatalf("expected round to finish after the timed out question")
	}
}

func TestRoundStartWhileActive(t *testing.T) {
	r := startedRound(t, 3)
	if err := r.Start(domain.ModeTables, domain.Hard, fixedQuestions(3), domain.NewProfile()); err != domain.ErrRoundActive {
		t.Fatalf("expected ErrRoundActive, got %v", err)
	}
}

func TestRoundEmptyBatchEndsImmediately(t *testing.T) {
	r := startedRound(t, 0)
	summary, ok := r.Summary()
	if !ok || r.State() != StateFinished {
		t.Fatalf("expected finished round for empty batch")
	}
	if summary.Accuracy != 0 || summary.TotalQuestions != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestRoundEndOnlyOnce(t *testing.T) {
	r := startedRound(t, 3)
	r.SubmitAnswer(domain.Number(2))
	first, ok := r.End()
	if !ok {
		t.Fatalf("expected first end to succeed")
	}
	if first.TotalQuestions != 3 || first.CorrectAnswers != 1 || first.Accuracy != 33 {
		t.Fatalf("unexpected early summary %+v", first)
	}
	if _, ok := r.End(); ok {
		t.Fatalf("second end must fail")
	}
}

func TestRoundResetClearsCounters(t *testing.T) {
	r := startedRound(t, 3)
	r.SubmitAnswer(domain.Number(2))
	r.Reset()
	if r.State() != StateIdle || r.Score() != 0 || r.Streak() != 0 || len(r.Participants()) != 0 {
		t.Fatalf("expected idle round after reset")
	}
	if _, ok := r.Summary(); ok {
		t.Fatalf("reset must drop the summary")
	}
}

func TestRoundRosterUsesProfile(t *testing.T) {
	r := NewRound(rand.New(rand.NewSource(11)), 15)
	profile := domain.Profile{PlayerName: "Mia", PlayerAvatar: "🦄"}
	if err := r.Start(domain.ModeCounting, domain.Medium, fixedQuestions(1), profile); err != nil {
		t.Fatalf("start: %v", err)
	}
	roster := r.Participants()
	if roster[0].ID != domain.HumanID || roster[0].DisplayName != "Mia" || roster[0].Avatar != "🦄" || roster[0].IsBot {
		t.Fatalf("unexpected human participant %+v", roster[0])
	}
	if r.MatchID() == "" {
		t.Fatalf("expected a match id")
	}
}

func TestRankIsStable(t *testing.T) {
	ranked := rank([]domain.Participant{
		{ID: "a", Score: 50},
		{ID: "b", Score: 80},
		{ID: "c", Score: 80},
		{ID: "d", Score: 30},
	})
	want := []string{"b", "c", "a", "d"}
	for i, p := range ranked {
		if p.ID != want[i] || p.Rank != i+1 {
			t.Fatalf("position %d: expected %s rank %d, got %s rank %d", i, want[i], i+1, p.ID, p.Rank)
		}
	}
}

func TestBotsAreDistinct(t *testing.T) {
	bots := newBots(rand.New(rand.NewSource(5)), BotCount)
	names := map[string]bool{}
	avatars := map[string]bool{}
	for i, b := range bots {
		if !b.IsBot || b.ID != "bot-"+strconv.Itoa(i) {
			t.Fatalf("unexpected bot %+v", b)
		}
		if names[b.DisplayName] || avatars[b.Avatar] {
			t.Fatalf("repeated bot name or avatar: %+v", b)
		}
		names[b.DisplayName] = true
		avatars[b.Avatar] = true
	}
}

func TestSimulateBotAwardsPoints(t *testing.T) {
	rnd := rand.New(rand.NewSource(9))
	wins := 0
	for i := 0; i < 1000; i++ {
		bot := domain.Participant{IsBot: true}
		if simulateBot(rnd, &bot) {
			wins++
			if bot.Score < 10 || bot.Score > 14 || bot.CorrectAnswers != 1 {
				t.Fatalf("unexpected bot award %+v", bot)
			}
		} else if bot.Score != 0 {
			t.Fatalf("failed roll must not score, got %+v", bot)
		}
	}
	if wins < 400 || wins > 900 {
		t.Fatalf("bot success rate out of skill range: %d/1000", wins)
	}
}
