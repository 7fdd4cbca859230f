package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/brandbot/internal/db"
	"github.com/jonathan/brandbot/internal/gate"
	"github.com/jonathan/brandbot/internal/generation"
	"github.com/jonathan/brandbot/internal/llm"
	"github.com/jonathan/brandbot/internal/observability"
	"github.com/jonathan/brandbot/internal/orchestrator"
	"github.com/jonathan/brandbot/internal/types"
)

const recordTimeout = 10 * time.Second

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate brand kits locally",
	Long: `Generate a brand kit for each brief given with --brief, or for one brief built from flags.

Briefs run concurrently up to --parallel at a time. All runs share one concurrency
gate, so starting more runs than the tier allows shows the same rejection the API gives.`,
	Example: `  brandbot generate --industry coffee --description "Small-batch roastery"
  brandbot generate --brief acme.yaml --brief lumen.json --tier pro --out kits/`,
	RunE: runGenerate,
}

var (
	genBriefs      []string
	genName        string
	genIndustry    string
	genDescription string
	genColors      []string
	genModern      string
	genBold        string
	genPlayful     string
	genParallel    int
	genOut         string
)

func init() {
	f := generateCmd.Flags()
	f.StringArrayVarP(&genBriefs, "brief", "b", nil, "Brief file (.yaml or .json); repeatable")
	f.StringVarP(&genName, "name", "n", "", "Business name (generated when empty)")
	f.StringVarP(&genIndustry, "industry", "i", "", "Industry")
	f.StringVarP(&genDescription, "description", "d", "", "What the business does")
	f.StringSliceVar(&genColors, "colors", nil, "Preferred colors as hex codes")
	f.StringVar(&genModern, "modern-classic", "", "modern, classic or balanced")
	f.StringVar(&genBold, "bold-subtle", "", "bold, subtle or balanced")
	f.StringVar(&genPlayful, "playful-professional", "", "playful, professional or balanced")
	f.IntVar(&genParallel, "parallel", 0, "Runs in flight at once (default: the tier's limit)")
	f.StringVarP(&genOut, "out", "o", "", "Directory to write each brand kit as YAML")
	rootCmd.AddCommand(generateCmd)
}

// pendingBrief is a brief with the label its log lines are tagged with.
type pendingBrief struct {
	label string
	brief *types.BrandBrief
}

// collectBriefs loads --brief files, or builds one brief from flags.
func collectBriefs() ([]pendingBrief, error) {
	if len(genBriefs) == 0 {
		brief := types.NewBrandBrief()
		brief.BasicInfo = types.BasicInfo{
			BusinessName:        genName,
			Industry:            genIndustry,
			BusinessDescription: genDescription,
		}
		brief.VisualPreferences = types.VisualPreferences{
			ColorPalette: genColors,
			StylePreferences: types.StylePreferences{
				ModernClassic:       genModern,
				BoldSubtle:          genBold,
				PlayfulProfessional: genPlayful,
			},
		}
		if brief.BasicInfo.Industry == "" && brief.BasicInfo.BusinessDescription == "" {
			return nil, fmt.Errorf("either --brief or --industry/--description must be provided")
		}
		if err := brief.Validate(); err != nil {
			return nil, fmt.Errorf("invalid brief: %w", err)
		}
		return []pendingBrief{{brief: brief}}, nil
	}

	out := make([]pendingBrief, 0, len(genBriefs))
	for _, path := range genBriefs {
		brief, err := loadBriefFile(path)
		if err != nil {
			return nil, err
		}
		label := ""
		if len(genBriefs) > 1 {
			label = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		out = append(out, pendingBrief{label: label, brief: brief})
	}
	return out, nil
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	tier, err := gate.ParseTier(cfg.Tier)
	if err != nil {
		return err
	}
	pending, err := collectBriefs()
	if err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()
	svc := generation.NewLLMService(client)

	g, closeGate, err := openGate(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer closeGate()

	var database *db.DB
	if cfg.DatabaseURL != "" {
		database, err = connectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		for _, p := range pending {
			if err := database.CreateBrief(ctx, p.brief); err != nil {
				return err
			}
		}
	}

	printer := observability.NewPrinter(os.Stdout)
	feed := newEventFeed(printer)
	defer feed.stop()

	parallel := genParallel
	if parallel <= 0 {
		parallel = tier.Limit()
	}

	states := make([]orchestrator.State, len(pending))
	var eg errgroup.Group
	eg.SetLimit(parallel)
	for i, p := range pending {
		eg.Go(func() error {
			opts := []orchestrator.Option{
				orchestrator.WithStageTimeout(cfg.StageTimeout()),
				orchestrator.WithNavigateDelay(0),
			}
			if database != nil {
				opts = append(opts, orchestrator.WithStore(database))
			}
			o := orchestrator.New(svc, g, opts...)
			unsubscribe := o.Subscribe(feed.forward(p.label))
			defer unsubscribe()

			state, err := o.Run(ctx, p.brief, tier.Limit())
			states[i] = state
			if database != nil && state.RunID != uuid.Nil && state.Status.Terminal() {
				recordRun(database, state, tier)
			}
			var rej *orchestrator.RejectionError
			if errors.As(err, &rej) {
				// Rejections are reported in the summary, not as a batch failure.
				return nil
			}
			return err
		})
	}
	runErr := eg.Wait()
	feed.stop()

	failed := 0
	for _, st := range states {
		if st.Status != orchestrator.StatusCompleted {
			failed++
			continue
		}
		printer.PrintBrandKit(st.Brief)
		if genOut != "" {
			path, err := writeBrandKit(genOut, st.Brief)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Wrote %s\n", path) //nolint:errcheck
		}
	}
	if len(states) > 1 || failed > 0 {
		printer.PrintRunSummary(states)
	}

	if failed > 0 {
		if len(states) == 1 && runErr != nil {
			return runErr
		}
		return fmt.Errorf("%d of %d runs did not complete", failed, len(states))
	}
	return nil
}

// recordRun stores a finished run. The CLI has no user, so the row has none.
func recordRun(database *db.DB, state orchestrator.State, tier gate.Tier) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if _, err := database.CreateRun(ctx, db.RunInput{
		ID:      state.RunID,
		BriefID: state.Brief.ID,
		Tier:    string(tier),
	}); err != nil {
		log.Printf("[generate] failed to record run %s: %v", state.RunID, err)
		return
	}
	if err := database.FinishRun(ctx, state.RunID, string(state.Status), state.Error, state.Logs); err != nil {
		log.Printf("[generate] failed to finish run %s: %v", state.RunID, err)
	}
}
