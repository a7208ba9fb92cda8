package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/danielpatrickdp/lotus-engine/internal/catalog"
	"github.com/danielpatrickdp/lotus-engine/internal/config"
	"github.com/danielpatrickdp/lotus-engine/internal/director"
	"github.com/danielpatrickdp/lotus-engine/internal/generator"
	"github.com/danielpatrickdp/lotus-engine/internal/journal"
	"github.com/danielpatrickdp/lotus-engine/internal/library"
	"github.com/danielpatrickdp/lotus-engine/internal/storage"
)

// #region engine

// engine bundles what every command needs: the database and a director
// backed by the catalog stored in it.
type engine struct {
	db       *sqlx.DB
	lib      *library.Library
	gen      *generator.Generator
	catalog  *catalog.Store
	director *director.Director
}

func openEngine(cfg *config.Config) (*engine, error) {
	lib, err := loadLibrary(cfg.ContentDir)
	if err != nil {
		return nil, err
	}
	slog.Info("library loaded", "component", "lotus", "templates", lib.Len(), "warnings", len(lib.Warnings()))

	db, err := storage.Open(cfg.DB)
	if err != nil {
		return nil, err
	}
	store, err := catalog.NewStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := journal.EnsureSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	if cfg.Catalog != "" {
		n, err := store.Count()
		if err != nil {
			db.Close()
			return nil, err
		}
		if n == 0 {
			if _, err := importCatalog(store, cfg.Catalog); err != nil {
				db.Close()
				return nil, err
			}
		}
	}

	gen := generator.New(lib, cfg.Generator())
	return &engine{
		db:       db,
		lib:      lib,
		gen:      gen,
		catalog:  store,
		director: director.New(gen, store),
	}, nil
}

func (e *engine) Close() error {
	return e.db.Close()
}

func loadLibrary(dir string) (*library.Library, error) {
	if dir == "" {
		return library.Default()
	}
	return library.LoadFS(os.DirFS(dir), ".")
}

func importCatalog(store *catalog.Store, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	events, err := catalog.LoadJSON(f)
	if err != nil {
		return 0, err
	}
	if err := store.Import(events); err != nil {
		return 0, err
	}
	slog.Info("catalog imported", "component", "lotus", "path", path, "events", len(events))
	return len(events), nil
}

// #endregion engine

// #region journal

func journalEntry(session string, turnNum int, t director.Turn, choice int, res director.Resolution) (journal.Entry, error) {
	delta, err := jsonString(res.Delta)
	if err != nil {
		return journal.Entry{}, err
	}
	return journal.Entry{
		SessionID:   session,
		Turn:        turnNum,
		Source:      string(t.Source),
		SituationID: t.Event.SituationID,
		Domain:      string(t.Event.Domain),
		Title:       t.Event.Title,
		Wildcard:    t.Event.Wildcard,
		ChoiceIndex: choice,
		ChoiceText:  res.Choice.Text,
		Risk:        res.Choice.Risk,
		Success:     res.Success,
		DeltaJSON:   delta,
		Attempts:    len(t.Attempts),
	}, nil
}

func jsonString(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal json: %w", err)
	}
	return string(data), nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// #endregion journal
