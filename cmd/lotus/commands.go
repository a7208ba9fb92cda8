package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/danielpatrickdp/lotus-engine/internal/config"
	"github.com/danielpatrickdp/lotus-engine/internal/director"
	"github.com/danielpatrickdp/lotus-engine/internal/eventsvc"
	"github.com/danielpatrickdp/lotus-engine/internal/generator"
	"github.com/danielpatrickdp/lotus-engine/internal/journal"
	"github.com/danielpatrickdp/lotus-engine/internal/replay"
	"github.com/danielpatrickdp/lotus-engine/internal/rng"
	"github.com/danielpatrickdp/lotus-engine/internal/state"
	"github.com/danielpatrickdp/lotus-engine/internal/tracker"
)

// #region generate

func newGenerateCommand(cfg *config.Config) *cobra.Command {
	var (
		player state.PlayerState
		seed   uint64
		count  int
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate events for a player and print them as JSON",
		RunE: func(_ *cobra.Command, _ []string) error {
			lib, err := loadLibrary(cfg.ContentDir)
			if err != nil {
				return err
			}
			d := director.New(generator.New(lib, cfg.Generator()), nil)
			ctx := tracker.New()
			src := rng.New(seed)

			var events []*generator.GeneratedEvent
			for i := 0; i < count; i++ {
				t, err := d.Next(player, ctx, src)
				if errors.Is(err, director.ErrNoEvent) {
					slog.Warn("no event available", "component", "lotus", "index", i)
					ctx.Advance()
					continue
				}
				if err != nil {
					return err
				}
				ctx.Record(string(t.Event.Domain), t.Event.SituationID)
				events = append(events, t.Event)
			}
			return printJSON(events)
		},
	}
	cmd.Flags().IntVar(&player.Tier, "tier", 0, "player tier (0-4)")
	cmd.Flags().IntVar(&player.LifeStage, "stage", 0, "player life stage (0-4)")
	cmd.Flags().IntVar(&player.SCS, "scs", 50, "social credit score")
	cmd.Flags().IntVar(&player.Finance, "finance", 20, "finance")
	cmd.Flags().IntVar(&player.GuanxiFamily, "guanxi-family", 2, "family guanxi")
	cmd.Flags().IntVar(&player.GuanxiNetwork, "guanxi-network", 1, "network guanxi")
	cmd.Flags().IntVar(&player.GuanxiParty, "guanxi-party", 0, "party guanxi")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&count, "count", 1, "number of consecutive events")
	return cmd
}

// #endregion generate

// #region replay

func newReplayCommand(cfg *config.Config) *cobra.Command {
	var (
		fixturePath string
		logJournal  bool
	)
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Run a simulated session from a fixture and check its expectations",
		RunE: func(_ *cobra.Command, _ []string) error {
			f, err := replay.LoadFixture(fixturePath)
			if err != nil {
				return err
			}
			e, err := openEngine(cfg)
			if err != nil {
				return err
			}
			defer e.Close()

			results, summary, err := replay.Run(e.director, f)
			if err != nil {
				return err
			}

			if logJournal {
				session := uuid.New().String()
				for _, r := range results {
					if r.Action == replay.ActionNoEvent {
						continue
					}
					if _, err := journal.LogTurn(e.db, replayEntry(session, r)); err != nil {
						return err
					}
				}
				fmt.Printf("Journal session: %s\n", session)
			}

			fmt.Printf("Turns: %d  procedural=%d static=%d none=%d wildcards=%d successes=%d\n",
				summary.TotalTurns, summary.Procedural, summary.Static, summary.NoEvents, summary.Wildcards, summary.Successes)
			fmt.Printf("Final: %+v\n", summary.FinalPlayer)

			problems := f.Check(summary)
			for _, p := range problems {
				fmt.Printf("  FAIL %s\n", p)
			}
			if len(problems) > 0 {
				return fmt.Errorf("%d expectation(s) failed", len(problems))
			}
			fmt.Println("PASS")
			return nil
		},
	}
	cmd.Flags().StringVar(&fixturePath, "fixture", "", "path to fixture JSON")
	cmd.Flags().BoolVar(&logJournal, "journal", false, "write every turn to the journal")
	cmd.MarkFlagRequired("fixture")
	return cmd
}

func replayEntry(session string, r replay.ReplayResult) journal.Entry {
	delta, _ := jsonString(r.Delta)
	return journal.Entry{
		SessionID:   session,
		Turn:        r.Turn,
		Source:      r.Action,
		SituationID: r.SituationID,
		Domain:      r.Domain,
		Title:       r.Title,
		Wildcard:    r.Wildcard,
		ChoiceIndex: r.Choice,
		ChoiceText:  r.ChoiceText,
		Risk:        r.Risk,
		Success:     r.Success,
		DeltaJSON:   delta,
		Attempts:    r.Attempts,
	}
}

// #endregion replay

// #region catalog

func newCatalogCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the static fallback catalog",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "import <events.json>",
		Short: "Replace the stored catalog with the events in a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			e, err := openEngine(&config.Config{
				DB:             cfg.DB,
				ContentDir:     cfg.ContentDir,
				MaxAttempts:    cfg.MaxAttempts,
				WildcardChance: cfg.WildcardChance,
			})
			if err != nil {
				return err
			}
			defer e.Close()

			n, err := importCatalog(e.catalog, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d events into %s\n", n, cfg.DB)
			return nil
		},
	})
	return cmd
}

// #endregion catalog

// #region serve

func newServeCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the event engine over gRPC",
		RunE: func(_ *cobra.Command, _ []string) error {
			e, err := openEngine(cfg)
			if err != nil {
				return err
			}
			defer e.Close()

			lis, err := net.Listen("tcp", cfg.GRPCAddr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", cfg.GRPCAddr, err)
			}
			gs := grpc.NewServer()
			eventsvc.RegisterEventServiceServer(gs, eventsvc.NewServer(e.director))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				slog.Info("shutting down", "component", "lotus")
				gs.GracefulStop()
			}()

			slog.Info("event service listening", "component", "lotus", "addr", lis.Addr().String())
			return gs.Serve(lis)
		},
	}
}

// #endregion serve
