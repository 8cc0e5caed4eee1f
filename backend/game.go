package main

import (
	"time"

	"gameportal/engine"
)

type Game struct {
	settings  GameSettings
	rules     Rules
	state     GameState
	history   MoveHistory
	human     IPlayer
	bot       *BotPlayer
	selector  *engine.Selector
	botDelay  time.Duration
	turnStart time.Time
	reported  bool
}

func NewGame(settings GameSettings, selector *engine.Selector, botDelay time.Duration) Game {
	g := Game{selector: selector, botDelay: botDelay}
	g.Reset(settings)
	return g
}

func (g *Game) Reset(settings GameSettings) {
	if g.bot != nil {
		g.bot.StopThinking()
	}
	g.settings = settings
	g.rules = NewRules(settings)
	g.state.Reset(settings)
	g.history.Clear()
	g.createPlayers()
	g.turnStart = time.Now()
	g.reported = false
}

func (g *Game) Start() {
	if g.state.Status == StatusNotStarted {
		g.state.Status = StatusRunning
		g.turnStart = time.Now()
	}
}

func (g *Game) State() GameState {
	return g.state.Clone()
}

func (g *Game) History() MoveHistory {
	return g.history
}

func (g *Game) Settings() GameSettings {
	return g.settings
}

func (g *Game) TurnStartedAtMs() int64 {
	if g.turnStart.IsZero() {
		return 0
	}
	return g.turnStart.UnixMilli()
}

func (g *Game) TryApplyMove(move Move) (bool, string) {
	elapsedMs := float64(time.Since(g.turnStart).Milliseconds())
	return g.applyMove(move, elapsedMs)
}

func (g *Game) applyMove(move Move, elapsedMs float64) (bool, string) {
	ok, reason := g.rules.IsLegal(g.state, move)
	if !ok {
		g.state.LastMessage = "Illegal move: " + reason
		return false, reason
	}
	mark := g.state.ToMove
	isBot := mark == g.bot.Mark()
	g.state.LastMessage = ""
	g.state.Board.Set(move.Index, mark)
	g.state.LastMove = move
	g.state.HasLastMove = true
	g.history.Push(HistoryEntry{Move: move, Mark: mark, IsBot: isBot, ElapsedMs: elapsedMs})

	if line := g.rules.WinningLine(g.state.Board, move); line != nil {
		g.state.WinningLine = line
		if isBot {
			g.state.Status = StatusBotWon
		} else {
			g.state.Status = StatusHumanWon
		}
		return true, ""
	}
	if g.rules.IsDraw(g.state.Board) {
		g.state.Status = StatusDraw
		return true, ""
	}
	g.state.ToMove = mark.Opponent()
	g.turnStart = time.Now()
	return true, ""
}

// Tick advances the bot side. It returns true when a move was applied.
func (g *Game) Tick() bool {
	if g.state.Status != StatusRunning {
		g.bot.StopThinking()
		return false
	}
	if g.CurrentPlayerIsHuman() {
		return false
	}
	if g.bot.HasMoveReady() {
		move := g.bot.TakeMove()
		if move.Index == engine.NoMove {
			return false
		}
		applied, _ := g.TryApplyMove(move)
		return applied
	}
	if !g.bot.IsThinking() {
		g.bot.StartThinking(g.state.Clone(), g.rules)
	}
	return false
}

// Hint asks the hard tier for the human's best reply.
func (g *Game) Hint() (Move, bool) {
	if g.state.Status != StatusRunning || !g.CurrentPlayerIsHuman() {
		return Move{Index: engine.NoMove}, false
	}
	move := g.bot.Suggest(g.state.Clone(), g.rules, engine.Hard)
	return move, move.Index != engine.NoMove
}

func (g *Game) CurrentPlayerIsHuman() bool {
	return g.state.ToMove == g.human.Mark()
}

func (g *Game) BotThinking() bool {
	return g.bot.IsThinking()
}

// TakeOutcome reports a finished game once per reset.
func (g *Game) TakeOutcome() (GameStatus, bool) {
	if !g.state.Status.Finished() || g.reported {
		return g.state.Status, false
	}
	g.reported = true
	return g.state.Status, true
}

// Replay rebuilds the game from a recorded history, keeping the original timings.
func (g *Game) Replay(settings GameSettings, entries []HistoryEntry) (bool, string) {
	g.Reset(settings)
	g.Start()
	for _, entry := range entries {
		if entry.Mark != g.state.ToMove {
			return false, "history out of turn"
		}
		if ok, reason := g.applyMove(entry.Move, entry.ElapsedMs); !ok {
			return false, reason
		}
	}
	return true, ""
}

func (g *Game) Stop() {
	g.bot.StopThinking()
}

func (g *Game) createPlayers() {
	if g.bot != nil {
		g.bot.StopThinking()
	}
	g.human = NewHumanPlayer(g.settings.HumanMark)
	g.bot = NewBotPlayer(g.settings.BotMark(), g.settings.Difficulty, g.selector, g.botDelay)
}
