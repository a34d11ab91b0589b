// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/coldnsteel/KOZMIC-KASINO/network"
)

// Session 一条活跃连接。RoomCode 是连接到房间的反向索引，
// 保证"一个连接最多属于一个房间"这一不变量，断线时无需全表扫描。
type Session struct {
	ID        string
	Conn      network.Connection
	CreatedAt time.Time

	roomCode   string
	lastActive time.Time
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		lastActive: now,
	}
}

func (s *Session) GetID() string {
	return s.ID
}

// SetRoom 记录会话当前所在的房间，空串表示不在任何房间
func (s *Session) SetRoom(code string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.roomCode = code
}

func (s *Session) RoomCode() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.roomCode
}

// LastActive 最近一次向该连接写出的时间
func (s *Session) LastActive() time.Time {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.lastActive
}

// touch 定时广播和请求处理会并发写同一个会话，时间戳必须在锁内更新
func (s *Session) touch() {
	s.mutex.Lock()
	s.lastActive = time.Now()
	s.mutex.Unlock()
}

func (s *Session) Emit(msgType string, payload interface{}) error {
	s.touch()
	return s.Conn.Emit(msgType, payload)
}

func (s *Session) AckReply(ackID uint32, payload interface{}) error {
	s.touch()
	return s.Conn.AckReply(ackID, payload)
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager 管理所有活跃会话
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}
