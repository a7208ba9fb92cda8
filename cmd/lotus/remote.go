package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/lotus-engine/internal/config"
	"github.com/danielpatrickdp/lotus-engine/internal/eventsvc"
	"github.com/danielpatrickdp/lotus-engine/internal/state"
)

// #region remote

func newRemoteCommand(cfg *config.Config) *cobra.Command {
	var (
		addr    string
		session string
		player  state.PlayerState
		seed    uint64
		count   int
		record  bool
	)
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Talk to a running event service",
	}
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Request events from a running service and print them as JSON",
		RunE: func(c *cobra.Command, _ []string) error {
			if addr == "" {
				addr = cfg.GRPCAddr
			}
			client, err := eventsvc.NewClient(addr)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
			defer cancel()
			return runRemoteGenerate(ctx, c.OutOrStdout(), client, session, seed, player, count, record)
		},
	}
	generate.Flags().StringVar(&addr, "addr", "", "service address (default LOTUS_GRPC_ADDR)")
	generate.Flags().StringVar(&session, "session", "cli", "session id")
	generate.Flags().Uint64Var(&seed, "seed", 1, "random seed, read when the session is new")
	generate.Flags().IntVar(&player.Tier, "tier", 0, "player tier (0-4)")
	generate.Flags().IntVar(&player.LifeStage, "stage", 0, "player life stage (0-4)")
	generate.Flags().IntVar(&player.SCS, "scs", 50, "social credit score")
	generate.Flags().IntVar(&player.Finance, "finance", 20, "finance")
	generate.Flags().IntVar(&count, "count", 1, "number of events")
	generate.Flags().BoolVar(&record, "record", true, "record each event so the next one differs")
	cmd.AddCommand(generate)
	return cmd
}

// remoteEvent is one line of remote generate output.
type remoteEvent struct {
	Source  string `json:"source"`
	Counter uint64 `json:"counter,omitempty"`
	Event   any    `json:"event"`
}

func runRemoteGenerate(ctx context.Context, w io.Writer, client *eventsvc.Client, session string, seed uint64, player state.PlayerState, count int, record bool) error {
	enc := json.NewEncoder(w)
	for i := 0; i < count; i++ {
		ev, source, err := client.Generate(ctx, session, seed, player)
		if err != nil {
			return fmt.Errorf("event %d: %w", i+1, err)
		}
		out := remoteEvent{Source: source, Event: ev}
		if record {
			out.Counter, err = client.Record(ctx, session, string(ev.Domain), ev.SituationID)
			if err != nil {
				return fmt.Errorf("event %d: %w", i+1, err)
			}
		}
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("write event: %w", err)
		}
	}
	return nil
}

// #endregion remote
