package server

import (
	"encoding/json"
	"net"
	"os"
	"sync"
	"testing"

	"github.com/coldnsteel/KOZMIC-KASINO/config"
	"github.com/coldnsteel/KOZMIC-KASINO/game"
	"github.com/coldnsteel/KOZMIC-KASINO/logger"
	"github.com/coldnsteel/KOZMIC-KASINO/models"
	"github.com/coldnsteel/KOZMIC-KASINO/network"
	"github.com/coldnsteel/KOZMIC-KASINO/session"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// MockConnection is a test double for the network.Connection interface.
// 延迟广播从定时器 goroutine 写入，记录要加锁。
type MockConnection struct {
	mutex   sync.Mutex
	emitted []emittedEvent
	acks    []interface{}
}

type emittedEvent struct {
	msgType string
	payload interface{}
}

func (m *MockConnection) Emit(msgType string, payload interface{}) error {
	m.mutex.Lock()
	m.emitted = append(m.emitted, emittedEvent{msgType, payload})
	m.mutex.Unlock()
	return nil
}

func (m *MockConnection) AckReply(ackID uint32, payload interface{}) error {
	m.mutex.Lock()
	m.acks = append(m.acks, payload)
	m.mutex.Unlock()
	return nil
}

func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }
func (m *MockConnection) Close() error                         { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }

func (m *MockConnection) emittedTypes() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	types := make([]string, len(m.emitted))
	for i, ev := range m.emitted {
		types[i] = ev.msgType
	}
	return types
}

func (m *MockConnection) lastAck() interface{} {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if len(m.acks) == 0 {
		return nil
	}
	return m.acks[len(m.acks)-1]
}

// scriptedSource replays a fixed symbol sequence.
type scriptedSource struct {
	symbols []game.Symbol
	i       int
}

func (s *scriptedSource) Next() game.Symbol {
	sym := s.symbols[s.i%len(s.symbols)]
	s.i++
	return sym
}

func newTestServer() *GameServer {
	cfg := &config.Config{
		Server: config.ServerConfig{CORSOrigin: "*"},
	}
	return newGameServer(cfg, nil)
}

func addTestSession(s *GameServer, id string) (*session.Session, *MockConnection) {
	conn := &MockConnection{}
	sess := session.NewSession(id, conn)
	s.sessionManager.Add(sess)
	return sess, conn
}

func mustMarshal(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	return data
}

func joinRoom(t *testing.T, s *GameServer, sess *session.Session, conn *MockConnection, roomCode, name string) models.JoinRoomResponse {
	t.Helper()
	s.handlePacket(sess, &network.Packet{
		Type: network.MsgJoinRoom,
		Ack:  1,
		Data: mustMarshal(t, models.JoinRoomRequest{RoomCode: roomCode, PlayerName: name}),
	})
	ack, ok := conn.lastAck().(models.JoinRoomResponse)
	if !ok {
		t.Fatalf("Expected a JoinRoomResponse ack, got %T", conn.lastAck())
	}
	return ack
}

func TestHandlePacket_CreateAndJoinRoom(t *testing.T) {
	s := newTestServer()
	sess, conn := addTestSession(s, "player1")

	s.handlePacket(sess, &network.Packet{Type: network.MsgCreateRoom, Ack: 1})

	created, ok := conn.lastAck().(models.CreateRoomResponse)
	if !ok || !created.Success {
		t.Fatalf("Expected a successful CreateRoomResponse, got %#v", conn.lastAck())
	}
	if len(created.RoomCode) != game.RoomCodeLength {
		t.Errorf("Expected room code of length %d, got %q", game.RoomCodeLength, created.RoomCode)
	}

	joined := joinRoom(t, s, sess, conn, created.RoomCode, "Ziggy")
	if !joined.Success {
		t.Fatalf("Join should succeed: %s", joined.Message)
	}
	if len(joined.Players) != 1 || joined.Players[0].Name != "Ziggy" {
		t.Errorf("Expected a roster with just Ziggy, got %v", joined.Players)
	}
	if sess.RoomCode() != created.RoomCode {
		t.Errorf("Session room index should be %s, got %q", created.RoomCode, sess.RoomCode())
	}

	types := conn.emittedTypes()
	if len(types) != 2 || types[0] != network.MsgPlayerJoined || types[1] != network.MsgUpdateLeaderboard {
		t.Errorf("Expected playerJoined then updateLeaderboard broadcasts, got %v", types)
	}
}

func TestHandleJoinRoom_UnknownRoom(t *testing.T) {
	s := newTestServer()
	sess, conn := addTestSession(s, "player1")

	ack := joinRoom(t, s, sess, conn, "NOPE42", "Ziggy")
	if ack.Success {
		t.Fatal("Joining an unknown room should fail")
	}
	if ack.Message != "Room not found" {
		t.Errorf("Expected \"Room not found\", got %q", ack.Message)
	}
	if sess.RoomCode() != "" {
		t.Error("Failed join should leave the session roomless")
	}
}

func TestHandleRequestSpin(t *testing.T) {
	s := newTestServer()
	s.symbols = &scriptedSource{symbols: []game.Symbol{"🎸", "🎹", "🥔"}}

	r := s.roomManager.CreateRoom()
	sess1, conn1 := addTestSession(s, "player1")
	sess2, conn2 := addTestSession(s, "player2")
	joinRoom(t, s, sess1, conn1, r.Code, "Ziggy")
	joinRoom(t, s, sess2, conn2, r.Code, "Stardust")

	s.handlePacket(sess1, &network.Packet{
		Type: network.MsgRequestSpin,
		Ack:  2,
		Data: mustMarshal(t, models.SpinRequest{RoomCode: r.Code}),
	})

	ack, ok := conn1.lastAck().(models.SpinResponse)
	if !ok || !ack.Success {
		t.Fatalf("Expected a successful SpinResponse, got %#v", conn1.lastAck())
	}
	if ack.Reward != 25 {
		t.Errorf("Expected consolation reward 25, got %d", ack.Reward)
	}

	types := conn2.emittedTypes()
	if types[len(types)-1] != network.MsgSpinStarted {
		t.Errorf("Room members should see spinStarted immediately, got %v", types)
	}
}

func TestDisconnect_LastPlayerRemovesRoom(t *testing.T) {
	s := newTestServer()

	r := s.roomManager.CreateRoom()
	sess1, conn1 := addTestSession(s, "player1")
	sess2, conn2 := addTestSession(s, "player2")
	joinRoom(t, s, sess1, conn1, r.Code, "Ziggy")
	joinRoom(t, s, sess2, conn2, r.Code, "Stardust")

	s.leaveCurrentRoom(sess1)

	types := conn2.emittedTypes()
	if types[len(types)-2] != network.MsgPlayerLeft || types[len(types)-1] != network.MsgUpdateLeaderboard {
		t.Errorf("Remaining players should see playerLeft then updateLeaderboard, got %v", types)
	}
	if _, exists := s.roomManager.GetRoom(r.Code); !exists {
		t.Fatal("Room should survive while a player remains")
	}

	s.leaveCurrentRoom(sess2)

	if _, exists := s.roomManager.GetRoom(r.Code); exists {
		t.Fatal("Room should be removed when the last player disconnects")
	}

	sess3, conn3 := addTestSession(s, "player3")
	if ack := joinRoom(t, s, sess3, conn3, r.Code, "Major"); ack.Success {
		t.Error("Joining a removed room should fail")
	}
}

func TestDisconnect_JoinDuringRoomRemovalKeepsRoom(t *testing.T) {
	s := newTestServer()

	r := s.roomManager.CreateRoom()
	sess1, conn1 := addTestSession(s, "player1")
	joinRoom(t, s, sess1, conn1, r.Code, "Ziggy")

	// 断线处理先移除玩家再删房间，在这两步之间放进一个新加入
	if _, empty := r.RemovePlayer(sess1.GetID()); !empty {
		t.Fatal("Room should report empty after the last player leaves")
	}
	sess2, conn2 := addTestSession(s, "player2")
	if ack := joinRoom(t, s, sess2, conn2, r.Code, "Stardust"); !ack.Success {
		t.Fatalf("Join before removal should succeed: %s", ack.Message)
	}

	// 删房间那一步必须发现有人进来了并放弃
	if _, ok := s.roomManager.RemoveRoomIfEmpty(r.Code); ok {
		t.Fatal("Removal must back off when a player joined in between")
	}

	if _, exists := s.roomManager.GetRoom(r.Code); !exists {
		t.Fatal("Room with a late joiner must not be removed")
	}
	if r.PlayerCount() != 1 {
		t.Errorf("Expected the late joiner to remain, got %d players", r.PlayerCount())
	}
	if sess2.RoomCode() != r.Code {
		t.Errorf("Late joiner should still be indexed to room %s, got %q", r.Code, sess2.RoomCode())
	}
}
