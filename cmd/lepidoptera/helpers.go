// Shared helpers for lepidoptera CLI commands.
package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pburrows/lepidoptera/pkg/store"
)

// openStore resolves the data directory and opens the work-item store with
// the configured pool sizing. The caller must defer s.Close().
func openStore(ctx context.Context) (*store.Store, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	s, err := store.Open(ctx, store.Options{
		DataDir:     dataDir,
		User:        configUser,
		PoolInitial: configPoolInitial,
		PoolMax:     configPoolMax,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return s, nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// truncate shortens s for table display.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// shortID trims a UUID to its first eight characters for table display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
