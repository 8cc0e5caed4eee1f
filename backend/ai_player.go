package main

import (
	"sync"
	"sync/atomic"
	"time"

	"gameportal/engine"
)

// BotPlayer picks moves with the engine on a worker goroutine so the tick
// loop and HTTP handlers never wait on move selection.
type BotPlayer struct {
	mark       engine.Cell
	difficulty engine.Difficulty
	delay      time.Duration

	selectorMu sync.Mutex
	selector   *engine.Selector

	moveMutex  sync.Mutex
	workerDone chan struct{}
	stop       chan struct{}
	thinking   atomic.Bool
	moveReady  atomic.Bool
	stopSignal atomic.Bool
	readyMove  Move
}

func NewBotPlayer(mark engine.Cell, difficulty engine.Difficulty, selector *engine.Selector, delay time.Duration) *BotPlayer {
	if selector == nil {
		selector = engine.NewSelector(nil)
	}
	return &BotPlayer{mark: mark, difficulty: difficulty, selector: selector, delay: delay}
}

func (b *BotPlayer) IsHuman() bool {
	return false
}

func (b *BotPlayer) Mark() engine.Cell {
	return b.mark
}

func (b *BotPlayer) Difficulty() engine.Difficulty {
	return b.difficulty
}

// ChooseMove selects synchronously at the bot's own difficulty.
func (b *BotPlayer) ChooseMove(state GameState, rules Rules) Move {
	return b.Suggest(state, rules, b.difficulty)
}

// Suggest selects a move for whoever is to move in state.
func (b *BotPlayer) Suggest(state GameState, rules Rules, difficulty engine.Difficulty) Move {
	req := rules.BotRequest(state, difficulty)
	b.selectorMu.Lock()
	index := b.selector.SelectMove(req)
	b.selectorMu.Unlock()
	return Move{Index: index}
}

func (b *BotPlayer) StartThinking(state GameState, rules Rules) {
	if b.thinking.Load() {
		return
	}
	if b.workerDone != nil {
		<-b.workerDone
	}
	b.thinking.Store(true)
	b.moveReady.Store(false)
	b.stopSignal.Store(false)

	stateCopy := state.Clone()
	done := make(chan struct{})
	stop := make(chan struct{})
	b.workerDone = done
	b.stop = stop
	go func() {
		defer close(done)
		defer b.thinking.Store(false)
		started := time.Now()
		move := b.ChooseMove(stateCopy, rules)
		if wait := b.delay - time.Since(started); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-stop:
				timer.Stop()
			}
		}
		if b.stopSignal.Load() {
			b.moveReady.Store(false)
			return
		}
		b.moveMutex.Lock()
		b.readyMove = move
		b.moveMutex.Unlock()
		b.moveReady.Store(true)
	}()
}

// StopThinking discards any in-flight or ready move and waits for the worker.
func (b *BotPlayer) StopThinking() {
	if b.workerDone == nil {
		b.moveReady.Store(false)
		return
	}
	if b.stopSignal.CompareAndSwap(false, true) {
		close(b.stop)
	}
	<-b.workerDone
	b.workerDone = nil
	b.moveReady.Store(false)
}

func (b *BotPlayer) IsThinking() bool {
	return b.thinking.Load()
}

func (b *BotPlayer) HasMoveReady() bool {
	return b.moveReady.Load()
}

func (b *BotPlayer) TakeMove() Move {
	b.moveMutex.Lock()
	defer b.moveMutex.Unlock()
	b.moveReady.Store(false)
	return b.readyMove
}
