package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/lotus-engine/internal/config"
	"github.com/danielpatrickdp/lotus-engine/internal/director"
	"github.com/danielpatrickdp/lotus-engine/internal/journal"
	"github.com/danielpatrickdp/lotus-engine/internal/rng"
	"github.com/danielpatrickdp/lotus-engine/internal/state"
	"github.com/danielpatrickdp/lotus-engine/internal/tracker"
)

// #region play

func newPlayCommand(cfg *config.Config) *cobra.Command {
	var (
		player state.PlayerState
		seed   uint64
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play an interactive session, journaling every turn",
		RunE: func(_ *cobra.Command, _ []string) error {
			e, err := openEngine(cfg)
			if err != nil {
				return err
			}
			defer e.Close()
			return runPlay(e, player, seed)
		},
	}
	cmd.Flags().IntVar(&player.Tier, "tier", 0, "starting tier (0-4)")
	cmd.Flags().IntVar(&player.LifeStage, "stage", 0, "starting life stage (0-4)")
	cmd.Flags().IntVar(&player.SCS, "scs", 50, "starting social credit score")
	cmd.Flags().IntVar(&player.Finance, "finance", 20, "starting finance")
	cmd.Flags().IntVar(&player.GuanxiFamily, "guanxi-family", 2, "starting family guanxi")
	cmd.Flags().IntVar(&player.GuanxiNetwork, "guanxi-network", 1, "starting network guanxi")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	return cmd
}

func runPlay(e *engine, player state.PlayerState, seed uint64) error {
	session := uuid.New().String()
	ctx := tracker.New()
	src := rng.New(seed)

	fmt.Println("Lotus ready.")
	fmt.Printf("  Session: %s | Templates: %d\n", session, e.lib.Len())
	fmt.Println("Pick an option by number ('quit' to exit).")

	scanner := bufio.NewScanner(os.Stdin)
	turnNum, quiet := 0, 0

	for {
		turnNum++
		t, err := e.director.Next(player, ctx, src)
		if errors.Is(err, director.ErrNoEvent) {
			quiet++
			if quiet > tracker.EncounterWindow {
				return fmt.Errorf("no content for tier %d stage %d", player.Tier, player.LifeStage)
			}
			fmt.Println("\nA quiet period. Nothing happens.")
			ctx.Advance()
			continue
		}
		if err != nil {
			return err
		}
		quiet = 0

		printEvent(turnNum, t, player)

		choice, ok := readChoice(scanner, len(t.Event.Choices))
		if !ok {
			break
		}

		res, err := e.director.Resolve(t, choice, player, ctx, src)
		if err != nil {
			return err
		}
		player = res.Player
		fmt.Printf("\n%s\n", res.Text)
		fmt.Printf("[turn %d] roll=%d risk=%d delta=%+v\n", turnNum, res.Roll, res.Choice.Risk, res.Delta)

		entry, err := journalEntry(session, turnNum, t, choice, res)
		if err != nil {
			return err
		}
		if _, err := journal.LogTurn(e.db, entry); err != nil {
			fmt.Fprintf(os.Stderr, "journal error: %v\n", err)
		}
	}

	fmt.Printf("\nSession %s ended after %d turns. Final: %+v\n", session, turnNum-1, player)
	return scanner.Err()
}

func printEvent(turnNum int, t director.Turn, player state.PlayerState) {
	fmt.Printf("\n== Turn %d: %s (%s) ==\n", turnNum, t.Event.Title, t.Source)
	fmt.Printf("tier=%d stage=%d scs=%d finance=%d\n\n", player.Tier, player.LifeStage, player.SCS, player.Finance)
	fmt.Println(t.Event.Description)
	fmt.Println()
	for i, c := range t.Event.Choices {
		fmt.Printf("  %d) %s  [risk %d%%]\n", i+1, c.Text, c.Risk)
	}
}

// readChoice prompts until it reads a valid 1-based option. ok is false on
// quit or end of input.
func readChoice(scanner *bufio.Scanner, n int) (int, bool) {
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return 0, false
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			return 0, false
		}
		i, err := strconv.Atoi(line)
		if err != nil || i < 1 || i > n {
			fmt.Printf("choose 1-%d\n", n)
			continue
		}
		return i - 1, true
	}
}

// #endregion play
