// broadcast/broadcast.go
package broadcast

import (
	"github.com/coldnsteel/KOZMIC-KASINO/room"
	"github.com/coldnsteel/KOZMIC-KASINO/session"
)

// Broadcaster 把一个事件扇出给某个房间的全部连接
type Broadcaster interface {
	BroadcastToRoom(roomCode, msgType string, payload interface{}) error
}

// RoomBroadcaster 基于房间成员名单的广播器。房间不存在时静默跳过，
// 延迟广播落在已删除的房间上是合法的空操作。
type RoomBroadcaster struct {
	roomManager    *room.Manager
	sessionManager *session.Manager
}

func NewRoomBroadcaster(roomManager *room.Manager, sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		roomManager:    roomManager,
		sessionManager: sessionManager,
	}
}

func (b *RoomBroadcaster) BroadcastToRoom(roomCode, msgType string, payload interface{}) error {
	r, exists := b.roomManager.GetRoom(roomCode)
	if !exists {
		return nil
	}

	for _, id := range r.PlayerIDs() {
		s, ok := b.sessionManager.Get(id)
		if !ok {
			continue
		}
		if err := s.Emit(msgType, payload); err != nil {
			// 单个连接发送失败不影响其他成员，交给读循环去发现断线
			continue
		}
	}
	return nil
}
