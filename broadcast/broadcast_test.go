package broadcast

import (
	"net"
	"testing"

	"github.com/coldnsteel/KOZMIC-KASINO/network"
	"github.com/coldnsteel/KOZMIC-KASINO/room"
	"github.com/coldnsteel/KOZMIC-KASINO/session"
)

// MockConnection records every emitted event type.
type MockConnection struct {
	emitted []string
}

func (m *MockConnection) Emit(msgType string, payload interface{}) error {
	m.emitted = append(m.emitted, msgType)
	return nil
}
func (m *MockConnection) AckReply(ackID uint32, payload interface{}) error { return nil }
func (m *MockConnection) ReadPacket() (*network.Packet, error)             { return nil, nil }
func (m *MockConnection) Close() error                                     { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                             { return &net.TCPAddr{} }

func TestBroadcastToRoom_FansOutToAllMembers(t *testing.T) {
	roomManager := room.NewManager()
	sessionManager := session.NewManager()
	b := NewRoomBroadcaster(roomManager, sessionManager)

	r := roomManager.CreateRoom()

	conn1 := &MockConnection{}
	conn2 := &MockConnection{}
	sessionManager.Add(session.NewSession("p1", conn1))
	sessionManager.Add(session.NewSession("p2", conn2))
	r.Join("p1", "One")
	r.Join("p2", "Two")

	if err := b.BroadcastToRoom(r.Code, network.MsgCosmicEvent, "supernova"); err != nil {
		t.Fatalf("BroadcastToRoom failed: %v", err)
	}

	for i, conn := range []*MockConnection{conn1, conn2} {
		if len(conn.emitted) != 1 || conn.emitted[0] != network.MsgCosmicEvent {
			t.Errorf("Member %d: expected one cosmicEvent, got %v", i+1, conn.emitted)
		}
	}
}

func TestBroadcastToRoom_MissingRoomIsNoOp(t *testing.T) {
	b := NewRoomBroadcaster(room.NewManager(), session.NewManager())

	// 延迟广播可能落在已删除的房间上，必须是安静的空操作
	if err := b.BroadcastToRoom("GONE42", network.MsgSpinResult, nil); err != nil {
		t.Fatalf("Broadcast to a missing room should be a no-op, got %v", err)
	}
}

func TestBroadcastToRoom_SkipsDisconnectedSessions(t *testing.T) {
	roomManager := room.NewManager()
	sessionManager := session.NewManager()
	b := NewRoomBroadcaster(roomManager, sessionManager)

	r := roomManager.CreateRoom()
	conn := &MockConnection{}
	sessionManager.Add(session.NewSession("p1", conn))
	r.Join("p1", "One")
	r.Join("p2", "Ghost") // 房间里有名单但会话已不存在

	if err := b.BroadcastToRoom(r.Code, network.MsgPlayerShot, "p1"); err != nil {
		t.Fatalf("BroadcastToRoom failed: %v", err)
	}
	if len(conn.emitted) != 1 {
		t.Errorf("Connected member should still receive the event, got %v", conn.emitted)
	}
}
