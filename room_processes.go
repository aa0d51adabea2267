package server

import (
	"context"
	"time"
)

const (
	eventDelayMin    = 20 * time.Second
	eventDelaySpread = 21 // seconds; yields delays in [20s, 40s]
	botDelayMin      = 5.0
	botDelayMax      = 10.0
)

// runTimer decrements the countdown once per second until the room ends or
// the clock runs out.
func (r *Room) runTimer(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !r.Tick() {
				return
			}
		}
	}
}

// runEvents fires one scripted event every 20-40 seconds.
func (r *Room) runEvents(ctx context.Context) {
	for {
		delay := eventDelayMin + time.Duration(r.randIntn(eventDelaySpread))*time.Second
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
			if !r.TriggerRandomEvent() {
				return
			}
		}
	}
}

// runBot plays the unmanned seat. Higher difficulty shortens the pause
// between moves.
func (r *Room) runBot(ctx context.Context) {
	mod := r.difficulty.Modifier()
	for {
		seconds := (botDelayMin + r.randFloat()*(botDelayMax-botDelayMin)) / mod
		delay := time.Duration(seconds * float64(time.Second))
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
			if !r.BotTurn() {
				return
			}
		}
	}
}

// randIntn and randFloat guard the room's rand source, which is also used
// by the mutation paths under the room lock.
func (r *Room) randIntn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

func (r *Room) randFloat() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}
