// models/models.go
package models

import (
	"time"
)

// Player 房间内的玩家。ID 是连接会话的 uuid，一个连接同时最多属于一个房间。
type Player struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CTok          int       `json:"ctok"`
	Enlightenment int       `json:"enlightenment"`
	Shots         int       `json:"shots"`
	JoinedAt      time.Time `json:"joinedAt"`
}

// GameState 房间共享子状态
type GameState struct {
	CurrentEvent string    `json:"currentEvent,omitempty"`
	Shots        int       `json:"shots"`
	CreatedAt    time.Time `json:"createdAt"`
}

// LeaderboardEntry 排行榜投影，按 ctok 降序
type LeaderboardEntry struct {
	Name          string `json:"name"`
	CTok          int    `json:"ctok"`
	Enlightenment int    `json:"enlightenment"`
	Shots         int    `json:"shots"`
}

// --- 客户端动作载荷 ---

type JoinRoomRequest struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type SpinRequest struct {
	RoomCode string `json:"roomCode"`
}

type ShotRequest struct {
	RoomCode string `json:"roomCode"`
}

type EventRequest struct {
	RoomCode  string `json:"roomCode"`
	EventType string `json:"eventType"`
}

type EmojiRequest struct {
	RoomCode string `json:"roomCode"`
	Emoji    string `json:"emoji"`
}

// --- 应答 ---

type CreateRoomResponse struct {
	Success  bool   `json:"success"`
	RoomCode string `json:"roomCode,omitempty"`
	Message  string `json:"message,omitempty"`
}

type JoinRoomResponse struct {
	Success  bool      `json:"success"`
	RoomCode string    `json:"roomCode,omitempty"`
	Players  []*Player `json:"players,omitempty"`
	Message  string    `json:"message,omitempty"`
}

type SpinResponse struct {
	Success bool      `json:"success"`
	Results [3]string `json:"results"`
	Reward  int       `json:"reward"`
	Message string    `json:"message,omitempty"`
}

// --- 房间广播载荷 ---

type SpinStartedEvent struct {
	PlayerID string    `json:"playerId"`
	Results  [3]string `json:"results"`
}

type SpinResultEvent struct {
	PlayerID string    `json:"playerId"`
	Results  [3]string `json:"results"`
	Reward   int       `json:"reward"`
	Message  string    `json:"message"`
}

type EmojiEvent struct {
	PlayerID string `json:"playerId"`
	Emoji    string `json:"emoji"`
}
