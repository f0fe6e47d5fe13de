// Package generator builds batches of arithmetic questions for a mode and
// difficulty.
package generator

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"learnitquick/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultCount is the number of questions in a round.
const DefaultCount = 10

const (
	basePoints  = 10
	carryPoints = 12
	optionCount = 4
)

var comparisonSymbols = []domain.Answer{"<", "=", ">"}

var countingGlyphs = []string{"🍎", "⭐", "🎈", "🌸", "🐱", "🐶", "🎁", "🌈", "🚀", "🎪"}

var wordProblems = []func(a, b int) string{
	func(a, b int) string {
		return fmt.Sprintf("If you have %d bags with %d apples each, how many apples do you have?", a, b)
	},
	func(a, b int) string { return fmt.Sprintf("%d friends each have %d candies. Total candies?", a, b) },
	func(a, b int) string { return fmt.Sprintf("%d boxes × %d toys = ?", a, b) },
	func(a, b int) string { return fmt.Sprintf("There are %d rows with %d stars each. Total stars?", a, b) },
	func(a, b int) string { return fmt.Sprintf("%d groups of %d = ?", a, b) },
}

// Generator produces questions from a seedable random source. It is safe
// for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
	log zerolog.Logger
}

// New returns a generator drawing from rnd.
func New(rnd *rand.Rand, log zerolog.Logger) *Generator {
	return &Generator{rnd: rnd, log: log.With().Str("component", "generator").Logger()}
}

// NewSeeded returns a generator with a deterministic source and no logging.
// A zero seed uses the current time.
func NewSeeded(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return New(rand.New(rand.NewSource(seed)), zerolog.Nop())
}

// Generate returns count questions for mode at difficulty. Unknown modes
// fall back to addition.
func (g *Generator) Generate(mode domain.Mode, difficulty domain.Difficulty, count int) []domain.Question {
	g.mu.Lock()
	defer g.mu.Unlock()

	build, ok := builders[mode]
	if !ok {
		g.log.Warn().Str("mode", string(mode)).Msg("unknown mode, generating addition questions")
		build = (*Generator).addition
	}
	return g.batch(build, g.levelOf(difficulty), count)
}

// Distractors returns count plausible wrong answers for correct.
func (g *Generator) Distractors(correct, count int) ([]int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return distractors(g.rnd, correct, count)
}

// Tables generates times-table questions.
func (g *Generator) Tables(d domain.Difficulty, count int) []domain.Question {
	return g.Generate(domain.ModeTables, d, count)
}

// Comparison generates "<, = or >" questions.
func (g *Generator) Comparison(d domain.Difficulty, count int) []domain.Question {
	return g.Generate(domain.ModeComparison, d, count)
}

// Subtraction generates subtraction questions with non-negative answers.
func (g *Generator) Subtraction(d domain.Difficulty, count int) []domain.Question {
	return g.Generate(domain.ModeSubtraction, d, count)
}

// Counting generates glyph counting questions.
func (g *Generator) Counting(d domain.Difficulty, count int) []domain.Question {
	return g.Generate(domain.ModeCounting, d, count)
}

type level int

const (
	easy level = iota
	medium
	hard
)

// pick selects the value for the level.
func (l level) pick(e, m, h int) int {
	switch l {
	case medium:
		return m
	case hard:
		return h
	default:
		return e
	}
}

func (g *Generator) levelOf(d domain.Difficulty) level {
	switch d {
	case domain.Easy:
		return easy
	case domain.Medium:
		return medium
	case domain.Hard:
		return hard
	}
	g.log.Warn().Str("difficulty", string(d)).Msg("unknown difficulty, using easy")
	return easy
}

type builder func(g *Generator, l level) domain.Question

var builders = map[domain.Mode]builder{
	domain.ModeTables:         (*Generator).tables,
	domain.ModeComparison:     (*Generator).comparison,
	domain.ModeAddition:       (*Generator).addition,
	domain.ModeSubtraction:    (*Generator).subtraction,
	domain.ModeMultiplication: (*Generator).multiplication,
	domain.ModeCarryAddition:  (*Generator).carryAddition,
	domain.ModeCounting:       (*Generator).counting,
	domain.ModeNumberSequence: (*Generator).numberSequence,
}

func (g *Generator) batch(build builder, l level, count int) []domain.Question {
	if count < 0 {
		count = 0
	}
	questions := make([]domain.Question, 0, count)
	for i := 0; i < count; i++ {
		questions = append(questions, build(g, l))
	}
	return questions
}

// between returns a value in [lo, lo+n).
func (g *Generator) between(lo, n int) int {
	return g.rnd.Intn(n) + lo
}

func (g *Generator) tables(l level) domain.Question {
	maxTable := l.pick(5, 7, 10)
	table := g.between(1, maxTable)
	multiplier := g.between(1, maxTable)
	return g.numeric(domain.ModeTables, fmt.Sprintf("%d × %d = ?", table, multiplier), table*multiplier, basePoints)
}

func (g *Generator) comparison(l level) domain.Question {
	maxNum := l.pick(20, 50, 100)
	a := g.between(1, maxNum)
	b := g.between(1, maxNum)

	correct := domain.Symbol("=")
	switch {
	case a < b:
		correct = domain.Symbol("<")
	case a > b:
		correct = domain.Symbol(">")
	}

	options := make([]domain.Answer, len(comparisonSymbols))
	copy(options, comparisonSymbols)
	return domain.Question{
		ID:            g.id(),
		Prompt:        fmt.Sprintf("%d __ %d", a, b),
		Options:       options,
		CorrectAnswer: correct,
		Mode:          domain.ModeComparison,
		Points:        basePoints,
	}
}

func (g *Generator) addition(l level) domain.Question {
	maxNum := l.pick(10, 20, 50)
	a := g.between(1, maxNum)
	b := g.between(1, maxNum)
	return g.numeric(domain.ModeAddition, fmt.Sprintf("%d + %d = ?", a, b), a+b, basePoints)
}

func (g *Generator) subtraction(l level) domain.Question {
	maxNum := l.pick(15, 30, 50)
	minuend := g.between(5, maxNum)
	subtrahend := g.between(1, minuend)
	return g.numeric(domain.ModeSubtraction, fmt.Sprintf("%d − %d = ?", minuend, subtrahend), minuend-subtrahend, basePoints)
}

func (g *Generator) multiplication(l level) domain.Question {
	maxNum := l.pick(5, 7, 10)
	a := g.between(1, maxNum)
	b := g.between(1, maxNum)
	template := wordProblems[g.rnd.Intn(len(wordProblems))]
	return g.numeric(domain.ModeMultiplication, template(a, b), a*b, basePoints)
}

func (g *Generator) carryAddition(l level) domain.Question {
	var a, b int
	switch l {
	case easy:
		// two digits plus one digit, with the ones column overflowing
		a = g.between(15, 40)
		if a%10 == 0 {
			a += g.between(1, 9)
		}
		ones := a % 10
		b = g.between(10-ones, ones)
	case medium:
		a = g.between(20, 50)
		b = g.between(20, 50)
	default:
		a = g.between(50, 100)
		b = g.between(50, 100)
	}
	return g.numeric(domain.ModeCarryAddition, fmt.Sprintf("%d + %d = ?", a, b), a+b, carryPoints)
}

func (g *Generator) counting(l level) domain.Question {
	glyph := countingGlyphs[g.rnd.Intn(len(countingGlyphs))]
	n := g.between(3, l.pick(10, 15, 20))
	display := strings.TrimSpace(strings.Repeat(glyph+" ", n))
	return g.numeric(domain.ModeCounting, "Count: "+display, n, basePoints)
}

func (g *Generator) numberSequence(l level) domain.Question {
	step := 1
	switch l {
	case medium:
		step = g.between(1, 2)
	case hard:
		step = g.between(2, 3)
	}
	start := g.between(1, 20)

	terms := make([]string, 4)
	for i := range terms {
		terms[i] = strconv.Itoa(start + step*i)
	}
	prompt := fmt.Sprintf("What comes next? %s, ?", strings.Join(terms, ", "))
	return g.numeric(domain.ModeNumberSequence, prompt, start+step*4, basePoints)
}

// numeric assembles a question whose answer is an integer, with three
// distractors shuffled in.
func (g *Generator) numeric(mode domain.Mode, prompt string, correct, points int) domain.Question {
	wrong, err := distractors(g.rnd, correct, optionCount-1)
	if err != nil {
		g.log.Error().Err(err).Int("correct", correct).Str("mode", string(mode)).Msg("short distractor set")
	}

	options := make([]domain.Answer, 0, optionCount)
	options = append(options, domain.Number(correct))
	for _, w := range wrong {
		options = append(options, domain.Number(w))
	}
	g.rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return domain.Question{
		ID:            g.id(),
		Prompt:        prompt,
		Options:       options,
		CorrectAnswer: domain.Number(correct),
		Mode:          mode,
		Points:        points,
	}
}

func (g *Generator) id() string {
	id, err := uuid.NewRandomFromReader(g.rnd)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
