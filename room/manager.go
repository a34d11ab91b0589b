// room/manager.go
package room

import (
	"sync"
	"time"

	"github.com/coldnsteel/KOZMIC-KASINO/game"
	"github.com/coldnsteel/KOZMIC-KASINO/models"
)

const (
	// 空房间的保留时长，超过后由定时清扫移除
	EmptyRoomRetention = 2 * time.Hour
	// 清扫周期
	SweepInterval = time.Hour
)

// Manager 进程级的房间存储，房间码到房间的唯一映射
type Manager struct {
	rooms map[string]*Room
	mutex sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		rooms: make(map[string]*Room),
	}
}

// CreateRoom 生成房间码并建立空房间。房间码碰撞概率很低，
// 但映射里已存在时会重新生成。
func (m *Manager) CreateRoom() *Room {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	code := game.GenerateRoomCode()
	for {
		if _, exists := m.rooms[code]; !exists {
			break
		}
		code = game.GenerateRoomCode()
	}

	room := NewRoom(code)
	m.rooms[code] = room
	return room
}

func (m *Manager) GetRoom(code string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	room, exists := m.rooms[code]
	return room, exists
}

// RemoveRoom 幂等删除：存在则移除并返回，清扫和断线删除可以安全竞争
func (m *Manager) RemoveRoom(code string) (*Room, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	room, exists := m.rooms[code]
	if exists {
		room.close()
		delete(m.rooms, code)
	}
	return room, exists
}

// RemoveRoomIfEmpty 删除空房间。在房间锁内复查空置并标记关闭，
// 关闭前插进来的加入会让删除放弃，关闭后的加入拿到 ErrRoomNotFound，
// 不会有玩家落进已删除的房间。
func (m *Manager) RemoveRoomIfEmpty(code string) (*Room, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	room, exists := m.rooms[code]
	if !exists || !room.closeIfEmpty() {
		return nil, false
	}
	delete(m.rooms, code)
	return room, true
}

// Leaderboard 未知房间返回空切片而不是报错
func (m *Manager) Leaderboard(code string) []models.LeaderboardEntry {
	room, exists := m.GetRoom(code)
	if !exists {
		return []models.LeaderboardEntry{}
	}
	return room.Leaderboard()
}

// Sweep 移除所有空置超过 maxAge 的房间，有玩家的房间不受影响。
// 这是对即时空房删除的兜底。
func (m *Manager) Sweep(maxAge time.Duration) []*Room {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var removed []*Room
	now := time.Now()
	for code, room := range m.rooms {
		if room.closeIfExpired(now, maxAge) {
			delete(m.rooms, code)
			removed = append(removed, room)
		}
	}
	return removed
}

func (m *Manager) RoomCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// TotalPlayers 所有房间的玩家总数，健康检查用
func (m *Manager) TotalPlayers() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	total := 0
	for _, room := range m.rooms {
		total += room.PlayerCount()
	}
	return total
}
