package room

import (
	"fmt"
	"testing"

	"github.com/coldnsteel/KOZMIC-KASINO/game"
)

// fakeSource replays a fixed symbol sequence for deterministic spins.
type fakeSource struct {
	seq []game.Symbol
	i   int
}

func (f *fakeSource) Next() game.Symbol {
	s := f.seq[f.i%len(f.seq)]
	f.i++
	return s
}

func TestRoom_Join(t *testing.T) {
	r := NewRoom("TEST01")

	player, err := r.Join("player1", "Ziggy")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	if player.CTok != 1000 {
		t.Errorf("Expected starting balance 1000, got %d", player.CTok)
	}
	if player.Enlightenment != 0 || player.Shots != 0 {
		t.Error("Counters should start at zero")
	}
	if r.PlayerCount() != 1 {
		t.Errorf("Expected player count 1, got %d", r.PlayerCount())
	}
}

func TestRoom_Join_DefaultName(t *testing.T) {
	r := NewRoom("TEST02")

	player, err := r.Join("player1", "")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	if player.Name != "Anonymous Astronaut" {
		t.Errorf("Expected default name, got %q", player.Name)
	}
}

func TestRoom_Join_Full(t *testing.T) {
	r := NewRoom("TEST03")

	for i := 0; i < game.MaxPlayers; i++ {
		if _, err := r.Join(fmt.Sprintf("player%d", i), "p"); err != nil {
			t.Fatalf("Join %d failed: %v", i, err)
		}
	}

	if _, err := r.Join("overflow", "p"); err != ErrRoomFull {
		t.Errorf("Expected ErrRoomFull, got %v", err)
	}
	if r.PlayerCount() != game.MaxPlayers {
		t.Errorf("Full room should hold exactly %d players, got %d", game.MaxPlayers, r.PlayerCount())
	}
}

func TestRoom_Spin_InsufficientBalance(t *testing.T) {
	r := NewRoom("TEST04")
	r.Join("player1", "Ziggy")

	// 余额 40，不够 50 的旋转成本，必须快速失败且不抽取
	r.mutex.Lock()
	r.players[0].CTok = 40
	r.mutex.Unlock()

	src := &fakeSource{seq: []game.Symbol{"🎸", "🎹", "🌟"}}
	if _, err := r.Spin("player1", src); err != ErrInsufficientBalance {
		t.Fatalf("Expected ErrInsufficientBalance, got %v", err)
	}

	if src.i != 0 {
		t.Error("Failed spin must not perform a draw")
	}
	if got := r.Players()[0].CTok; got != 40 {
		t.Errorf("Failed spin must not touch the balance, got %d", got)
	}
}

func TestRoom_Spin_NetBalanceChange(t *testing.T) {
	r := NewRoom("TEST05")
	r.Join("player1", "Ziggy")

	// 安慰奖: 扣 50 赚 25，净 -25
	src := &fakeSource{seq: []game.Symbol{"🎸", "🎹", "🌟"}}
	outcome, err := r.Spin("player1", src)
	if err != nil {
		t.Fatalf("Spin failed: %v", err)
	}

	if outcome.Reward != 25 {
		t.Errorf("Expected consolation reward 25, got %d", outcome.Reward)
	}
	if outcome.Balance != 1000-game.SpinCost+25 {
		t.Errorf("Expected balance %d, got %d", 1000-game.SpinCost+25, outcome.Balance)
	}

	// 大奖: 净 +4950
	jackpot := &fakeSource{seq: []game.Symbol{game.SymbolBrain, game.SymbolBrain, game.SymbolBrain}}
	outcome, err = r.Spin("player1", jackpot)
	if err != nil {
		t.Fatalf("Jackpot spin failed: %v", err)
	}
	if outcome.Reward != 5000 {
		t.Errorf("Expected jackpot reward 5000, got %d", outcome.Reward)
	}
}

func TestRoom_Spin_EnlightenmentBump(t *testing.T) {
	r := NewRoom("TEST06")
	r.Join("player1", "Ziggy")

	src := &fakeSource{seq: []game.Symbol{game.SymbolBrain, game.SymbolRobot, "🌟"}}
	if _, err := r.Spin("player1", src); err != nil {
		t.Fatalf("Spin failed: %v", err)
	}

	if got := r.Players()[0].Enlightenment; got != 15 {
		t.Errorf("Brain and robot together should add 15 enlightenment, got %d", got)
	}
}

func TestRoom_Spin_NotInRoom(t *testing.T) {
	r := NewRoom("TEST07")
	r.Join("player1", "Ziggy")

	src := &fakeSource{seq: []game.Symbol{"🎸"}}
	if _, err := r.Spin("stranger", src); err != ErrPlayerNotInRoom {
		t.Errorf("Expected ErrPlayerNotInRoom, got %v", err)
	}
}

func TestRoom_TakeShot(t *testing.T) {
	r := NewRoom("TEST08")
	r.Join("player1", "Ziggy")

	if err := r.TakeShot("player1"); err != nil {
		t.Fatalf("TakeShot failed: %v", err)
	}
	if err := r.TakeShot("player1"); err != nil {
		t.Fatalf("TakeShot failed: %v", err)
	}

	if got := r.Players()[0].Shots; got != 2 {
		t.Errorf("Expected player shots 2, got %d", got)
	}
	if got := r.GameState().Shots; got != 2 {
		t.Errorf("Expected room shots 2, got %d", got)
	}

	if err := r.TakeShot("stranger"); err != ErrPlayerNotInRoom {
		t.Errorf("Expected ErrPlayerNotInRoom, got %v", err)
	}
}

func TestRoom_Leaderboard_Ordering(t *testing.T) {
	r := NewRoom("TEST09")
	r.Join("a", "Low")
	r.Join("b", "High")
	r.Join("c", "Bottom")

	// 直接调整余额构造 [300, 900, 100]
	r.mutex.Lock()
	r.players[0].CTok = 300
	r.players[1].CTok = 900
	r.players[2].CTok = 100
	r.mutex.Unlock()

	entries := r.Leaderboard()
	expected := []string{"High", "Low", "Bottom"}
	for i, name := range expected {
		if entries[i].Name != name {
			t.Errorf("Position %d: expected %s, got %s", i, name, entries[i].Name)
		}
	}
}

func TestRoom_Leaderboard_TiesKeepJoinOrder(t *testing.T) {
	r := NewRoom("TEST10")
	r.Join("a", "First")
	r.Join("b", "Second")

	entries := r.Leaderboard()
	if entries[0].Name != "First" || entries[1].Name != "Second" {
		t.Errorf("Equal balances should keep join order, got %s then %s",
			entries[0].Name, entries[1].Name)
	}
}

func TestRoom_RemovePlayer(t *testing.T) {
	r := NewRoom("TEST11")
	r.Join("player1", "Ziggy")
	r.Join("player2", "Moon")

	removed, empty := r.RemovePlayer("player1")
	if removed == nil || removed.Name != "Ziggy" {
		t.Fatalf("Expected to remove Ziggy, got %v", removed)
	}
	if empty {
		t.Error("Room with a remaining player must not report empty")
	}

	removed, empty = r.RemovePlayer("player2")
	if removed == nil || !empty {
		t.Error("Removing the last player should report the room empty")
	}

	if removed, _ := r.RemovePlayer("player2"); removed != nil {
		t.Error("Removing an absent player should return nil")
	}
}

func TestRoom_SetEvent(t *testing.T) {
	r := NewRoom("TEST12")
	r.SetEvent("supernova")

	if got := r.GameState().CurrentEvent; got != "supernova" {
		t.Errorf("Expected current event supernova, got %q", got)
	}
}
