package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/lotus-engine/internal/journal"
	"github.com/danielpatrickdp/lotus-engine/internal/state"
	"github.com/danielpatrickdp/lotus-engine/internal/storage"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to lotus.db")
	session := flag.String("session", "", "session to show (default: most recent)")
	last := flag.Int("last", 20, "show N most recent turns")
	listSessions := flag.Bool("sessions", false, "list sessions and exit")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/lotus.db [--session id] [--last N] [--sessions] [--json]")
		os.Exit(2)
	}

	db, err := storage.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := journal.EnsureSchema(db); err != nil {
		fmt.Fprintf(os.Stderr, "schema: %v\n", err)
		os.Exit(1)
	}

	sessions, err := journal.Sessions(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *listSessions {
		if *jsonOut {
			exitOn(printJSON(sessions))
			return
		}
		for _, s := range sessions {
			fmt.Println(s)
		}
		return
	}

	id := *session
	if id == "" {
		if len(sessions) == 0 {
			fmt.Fprintln(os.Stderr, "no sessions found")
			return
		}
		id = sessions[0]
	}

	entries, err := journal.ListTurns(db, id, *last)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	exitOn(runListMode(id, entries, *jsonOut))
}

func exitOn(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listOutput struct {
	Session string            `json:"session"`
	Turns   []journal.Entry   `json:"turns"`
	Totals  state.StatProfile `json:"totals"`
	Failed  int               `json:"failed"`
}

func runListMode(session string, entries []journal.Entry, jsonOut bool) error {
	if len(entries) == 0 {
		fmt.Fprintf(os.Stderr, "no turns for session %s\n", session)
		return nil
	}

	out := listOutput{Session: session, Turns: entries}
	for _, e := range entries {
		var d state.StatProfile
		if e.DeltaJSON != "" {
			if err := json.Unmarshal([]byte(e.DeltaJSON), &d); err != nil {
				return fmt.Errorf("turn %d delta: %w", e.Turn, err)
			}
		}
		out.Totals = out.Totals.Add(d)
		if !e.Success {
			out.Failed++
		}
	}

	if jsonOut {
		return printJSON(out)
	}
	printListTable(out)
	return nil
}

func printListTable(out listOutput) {
	fmt.Printf("Session %s\n\n", shortID(out.Session))
	fmt.Printf("%5s  %-10s  %-24s  %-8s  %4s  %-7s  %s\n",
		"Turn", "Source", "Situation", "Domain", "Risk", "Result", "Choice")
	fmt.Printf("%5s+-%-10s+-%-24s+-%-8s+-%4s+-%-7s+-%s\n",
		"-----", "----------", "------------------------", "--------", "----", "-------", "--------------------")

	for _, e := range out.Turns {
		situation := e.SituationID
		if situation == "" {
			situation = e.Title
		}
		if e.Wildcard {
			situation += " *"
		}
		result := "ok"
		if !e.Success {
			result = "failed"
		}
		fmt.Printf("%5d  %-10s  %-24s  %-8s  %4d  %-7s  %s\n",
			e.Turn, e.Source, truncate(situation, 24), e.Domain, e.Risk, result, e.ChoiceText)
	}

	fmt.Printf("\nTotals over %d turns (%d failed):\n", len(out.Turns), out.Failed)
	t := out.Totals
	fmt.Printf("  %-15s %+d\n", "scs", t.SCS)
	fmt.Printf("  %-15s %+d\n", "finance", t.Finance)
	fmt.Printf("  %-15s %+d\n", "career_level", t.CareerLevel)
	fmt.Printf("  %-15s %+d\n", "guanxi_family", t.GuanxiFamily)
	fmt.Printf("  %-15s %+d\n", "guanxi_network", t.GuanxiNetwork)
	fmt.Printf("  %-15s %+d\n", "guanxi_party", t.GuanxiParty)
}

// #endregion list-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "~"
}

// #endregion output
