package cli

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"learnitquick/internal/app"
	"learnitquick/internal/config"
	"learnitquick/internal/domain"
	"learnitquick/internal/generator"
	"learnitquick/internal/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type simulateFlags struct {
	mode       string
	difficulty string
	seed       int64
	accuracy   float64
	rounds     int
	questions  int
}

// NewSimulateCmd plays headless rounds with a simulated player.
func NewSimulateCmd(configPath *string) *cobra.Command {
	flags := simulateFlags{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play headless rounds and print their summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(*configPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("seed") && cfg.Game.Seed != 0 {
				flags.seed = cfg.Game.Seed
			}
			if !cmd.Flags().Changed("questions") && cfg.Game.Questions > 0 {
				flags.questions = cfg.Game.Questions
			}
			log := logger.Setup(cfg.Log.Level, cfg.Log.Format)
			return runSimulation(cmd.Context(), cmd.OutOrStdout(), flags, log)
		},
	}
	cmd.Flags().StringVar(&flags.mode, "mode", string(domain.ModeAddition), "game mode")
	cmd.Flags().StringVar(&flags.difficulty, "difficulty", string(domain.Easy), "easy, medium or hard")
	cmd.Flags().Int64Var(&flags.seed, "seed", 0, "random seed, 0 uses the current time")
	cmd.Flags().Float64Var(&flags.accuracy, "accuracy", 0.8, "chance the simulated player answers correctly")
	cmd.Flags().IntVar(&flags.rounds, "rounds", 1, "number of rounds to play")
	cmd.Flags().IntVar(&flags.questions, "questions", generator.DefaultCount, "questions per round")
	return cmd
}

func runSimulation(ctx context.Context, out io.Writer, flags simulateFlags, log zerolog.Logger) error {
	if flags.rounds <= 0 {
		return fmt.Errorf("rounds must be positive, got %d", flags.rounds)
	}
	if flags.accuracy < 0 || flags.accuracy > 1 {
		return fmt.Errorf("accuracy must be within [0,1], got %v", flags.accuracy)
	}
	seed := flags.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	summaries := make([]domain.RoundSummary, flags.rounds)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < flags.rounds; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			summary, err := playRound(seed+int64(i), domain.Mode(flags.mode), domain.Difficulty(flags.difficulty), flags.questions, flags.accuracy, log)
			if err != nil {
				return fmt.Errorf("round %d: %w", i+1, err)
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	coins := 0
	for i, s := range summaries {
		coins += s.CoinsEarned
		fmt.Fprintf(out, "round %d  %s/%s  rank %d/%d  score %d  correct %d/%d  accuracy %d%%  best streak %d  coins %d\n",
			i+1, s.Mode, s.Difficulty, s.PlayerRank, len(s.Ranking), s.Score,
			s.CorrectAnswers, s.TotalQuestions, s.Accuracy, s.MaxStreak, s.CoinsEarned)
	}
	log.Info().Int("rounds", len(summaries)).Int("coins", coins).Int64("seed", seed).Msg("simulation finished")
	return nil
}

// playRound runs one round without timers. The simulated player picks the
// correct option with probability accuracy and a wrong one otherwise.
func playRound(seed int64, mode domain.Mode, difficulty domain.Difficulty, count int, accuracy float64, log zerolog.Logger) (domain.RoundSummary, error) {
	rnd := rand.New(rand.NewSource(seed))
	if !difficulty.Valid() {
		log.Warn().Str("difficulty", string(difficulty)).Msg("unknown difficulty, using easy")
		difficulty = domain.Easy
	}
	gen := generator.New(rand.New(rand.NewSource(rnd.Int63())), log)
	round := app.NewRound(rnd, 0)
	if err := round.Start(mode, difficulty, gen.Generate(mode, difficulty, count), domain.NewProfile()); err != nil {
		return domain.RoundSummary{}, err
	}

	for round.State() == app.StateActive {
		q := round.Questions()[round.Index()]
		round.SubmitAnswer(pickAnswer(rnd, q, accuracy))
		round.SimulateBots()
		round.Advance()
	}
	summary, ok := round.Summary()
	if !ok {
		return domain.RoundSummary{}, domain.ErrRoundNotActive
	}
	return summary, nil
}

func pickAnswer(rnd *rand.Rand, q domain.Question, accuracy float64) domain.Answer {
	if rnd.Float64() < accuracy {
		return q.CorrectAnswer
	}
	wrong := make([]domain.Answer, 0, len(q.Options))
	for _, o := range q.Options {
		if o != q.CorrectAnswer {
			wrong = append(wrong, o)
		}
	}
	if len(wrong) == 0 {
		return domain.Timeout
	}
	return wrong[rnd.Intn(len(wrong))]
}
