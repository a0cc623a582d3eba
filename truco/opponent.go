package truco

import (
	"truco-lite/card"
	"truco-lite/truco/bot"
)

// scheduleBotLocked queues one bot turn if it is the bot's move and nothing
// is already queued. The busy flag is the re-entrancy guard: every exit path
// of the queued turn clears it.
func (g *Game) scheduleBotLocked() {
	if g.brain == nil || g.botBusy {
		return
	}
	if g.status != StatusPlaying || g.turn != g.botID {
		return
	}
	g.botBusy = true
	g.after(g.cfg.BotThinkDelay, g.runBotTurn)
}

func (g *Game) runBotTurn() {
	g.mu.Lock()
	defer g.mu.Unlock()

	again := func() (again bool) {
		defer func() {
			if r := recover(); r != nil {
				g.logf("bot turn panic: %v", r)
				again = false
			}
		}()
		if g.status != StatusPlaying || g.turn != g.botID {
			return false
		}
		p, ok := g.players[g.botID]
		if !ok || p.hand.Count() == 0 {
			return false
		}

		view := g.botViewLocked(p)
		d := g.brain.Decide(view)

		if d.Raise {
			if err := g.raiseLocked(g.botID); err == nil {
				return false
			}
			// Raise refused (permission, stake cap): fall through and play.
			d = g.brain.Decide(bot.GameView{
				HandStrengths: view.HandStrengths,
				LeadStrength:  view.LeadStrength,
				Stake:         view.Stake,
			})
		}
		idx := d.CardIndex
		if idx < 0 || idx >= p.hand.Count() {
			idx = 0
		}
		if err := g.playCardLocked(g.botID, idx); err != nil {
			g.logf("bot play failed: %v", err)
			return false
		}
		return g.status == StatusPlaying && g.turn == g.botID
	}()

	g.botBusy = false
	if again {
		g.scheduleBotLocked()
	}
}

func (g *Game) botViewLocked(p *Player) bot.GameView {
	view := bot.GameView{
		LeadStrength: -1,
		Stake:        g.stake,
	}
	for _, c := range p.hand {
		view.HandStrengths = append(view.HandStrengths, card.Strength(c, g.turnUp))
	}
	// The brain answers the card that opened the trick, not later plays.
	if len(g.trick) > 0 {
		view.LeadStrength = card.Strength(g.trick[0].Card, g.turnUp)
	}
	team := g.teams[g.botID]
	view.CanRaise = !g.raiseDisabled && g.stake < MaxStake &&
		(g.canRaiseTeam == TeamNone || g.canRaiseTeam == team)
	return view
}

// scheduleBotResponseLocked answers a pending raise aimed at the bot's team.
// The response task carries the request ID it was scheduled for, so a
// counter-raise landing in between makes it a silent no-op.
func (g *Game) scheduleBotResponseLocked() {
	pr := g.pendingRaise
	if g.brain == nil || pr == nil {
		return
	}
	if g.teams[g.botID] != g.teams[pr.Target] {
		return
	}
	rid := pr.RequestID
	g.after(g.cfg.BotResponseDelay, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.status != StatusAwaitingRaise || g.pendingRaise == nil || g.pendingRaise.RequestID != rid {
			return
		}
		p := g.players[g.botID]
		if p == nil {
			return
		}
		view := g.botViewLocked(p)
		var err error
		if g.brain.RespondRaise(view) {
			err = g.acceptRaiseLocked(g.botID, rid)
		} else {
			err = g.declineRaiseLocked(g.botID, rid)
		}
		if err != nil {
			g.logf("bot raise response failed: %v", err)
		}
	})
}
