package main

import (
	"context"
	"fmt"
	"log"

	"github.com/dnbomberos/guardia/internal/config"
	"github.com/dnbomberos/guardia/internal/store"
	"github.com/dnbomberos/guardia/internal/sync"
)

// openService opens the document store and, when a broker is configured,
// dials it. The caller owns the returned service and must Close it.
func openService(ctx context.Context, cfg *config.Config) (*sync.Service, error) {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", cfg.DBPath, err)
	}
	if err := st.InitSchema(); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to initialize store schema: %w", err)
	}

	logger := log.New(log.Writer(), "[sync] ", log.LstdFlags)

	var transport sync.Transport
	if cfg.BrokerURL != "" {
		transport, err = sync.DialBroker(ctx, cfg.BrokerURL, logger)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to reach broker %s: %w", cfg.BrokerURL, err)
		}
	}

	return sync.New(st, transport, logger), nil
}
