package services

import (
	"context"
	"log"
	"sync"
	"time"

	"shop-backend/repositories"
)

// CartSweeper deletes expired carts in the background. Reads already treat
// expired carts as absent, so correctness never depends on the sweep
// running promptly; this just reclaims rows.
type CartSweeper struct {
	store    repositories.Store
	carts    repositories.CartRepository
	interval time.Duration

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewCartSweeper(store repositories.Store, carts repositories.CartRepository, interval time.Duration) *CartSweeper {
	return &CartSweeper{
		store:    store,
		carts:    carts,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (s *CartSweeper) Start() {
	s.wg.Add(1)
	go s.loop()
}

func (s *CartSweeper) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *CartSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := s.carts.DeleteExpired(ctx, s.store, time.Now())
	if err != nil {
		log.Printf("cart sweep failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("cart sweep removed %d expired carts", deleted)
	}
}

func (s *CartSweeper) Stop() {
	close(s.stop)
	s.wg.Wait()
}
