package main

import (
	"fmt"

	"agendum/internal/store"
)

func openStore() (*store.DB, *store.ScheduleStore, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("config not loaded")
	}
	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open schedule store: %w", err)
	}
	return db, store.NewScheduleStore(db), nil
}
