package app

import (
	"math/rand"
	"strconv"

	"learnitquick/internal/domain"
)

// BotCount is the number of simulated opponents in every round.
const BotCount = 7

var botNames = []string{
	"Alex", "Jordan", "Taylor", "Morgan", "Casey", "Riley", "Quinn", "Avery",
	"Charlie", "Skyler", "Jamie", "Drew", "Sage", "River", "Phoenix", "Blake",
	"Hayden", "Dakota", "Reese", "Finley", "Emerson", "Rowan", "Parker", "Sawyer",
}

var botAvatars = []string{"🦁", "🐯", "🐻", "🐼", "🐨", "🦊", "🐰", "🐸", "🦄", "🐲", "🦋", "🌟"}

const (
	botSkillMin    = 0.4
	botSkillSpread = 0.5
	botPointsMin   = 10
	botPointsRange = 5
)

// newBots draws count bots whose names and avatars do not repeat.
func newBots(rnd *rand.Rand, count int) []domain.Participant {
	names := rnd.Perm(len(botNames))
	avatars := rnd.Perm(len(botAvatars))
	bots := make([]domain.Participant, 0, count)
	for i := 0; i < count; i++ {
		bots = append(bots, domain.Participant{
			ID:          "bot-" + strconv.Itoa(i),
			DisplayName: botNames[names[i%len(names)]],
			Avatar:      botAvatars[avatars[i%len(avatars)]],
			IsBot:       true,
		})
	}
	return bots
}

// simulateBot rolls one question for a bot. Skill is drawn again on every
// call so bots have no fixed strength.
func simulateBot(rnd *rand.Rand, bot *domain.Participant) bool {
	skill := botSkillMin + rnd.Float64()*botSkillSpread
	if rnd.Float64() >= skill {
		return false
	}
	bot.Score += botPointsMin + rnd.Intn(botPointsRange)
	bot.CorrectAnswers++
	return true
}
