package checkers

import (
	"context"
	"time"
)

// Pinger is satisfied by the document engine.
type Pinger interface {
	Ping(ctx context.Context) error
}

type StoreChecker struct {
	store Pinger
}

func NewStoreChecker(store Pinger) *StoreChecker {
	return &StoreChecker{store: store}
}

func (c *StoreChecker) Name() string { return "store" }

func (c *StoreChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return c.store.Ping(ctx)
}
