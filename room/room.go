// room/room.go
package room

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/coldnsteel/KOZMIC-KASINO/game"
	"github.com/coldnsteel/KOZMIC-KASINO/models"
)

// 动作失败原因，错误文本直接作为应答里的 message 返回给客户端
var (
	ErrRoomNotFound        = errors.New("Room not found")
	ErrRoomFull            = errors.New("Room full")
	ErrPlayerNotInRoom     = errors.New("Player not in room")
	ErrInsufficientBalance = errors.New("Insufficient CTOK")
)

// SpinOutcome 一次旋转的完整结算结果
type SpinOutcome struct {
	PlayerID   string
	PlayerName string
	Results    [3]game.Symbol
	Reward     int
	Message    string
	Balance    int // 结算后余额
}

// Room 游戏房间。Players 保持加入顺序，成员变更只通过 Join/RemovePlayer。
// 所有读写都在房间自己的互斥锁下进行，单个动作的多步变更
// （扣费-抽取-入账）对其他动作是原子的。
type Room struct {
	Code      string
	players   []*models.Player
	gameState models.GameState

	maxSeen       int     // 历史最大人数，归档用
	pendingTimers []int64 // 尚未触发的延迟广播
	closed        bool    // 已从存储移除，拒绝新加入
	mutex         sync.Mutex
}

func NewRoom(code string) *Room {
	return &Room{
		Code: code,
		gameState: models.GameState{
			CreatedAt: time.Now(),
		},
	}
}

// Join 把一个新玩家加入房间，初始余额 1000
func (r *Room) Join(playerID, name string) (*models.Player, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return nil, ErrRoomNotFound
	}
	if len(r.players) >= game.MaxPlayers {
		return nil, ErrRoomFull
	}

	if name == "" {
		name = "Anonymous Astronaut"
	}

	player := &models.Player{
		ID:       playerID,
		Name:     name,
		CTok:     1000,
		JoinedAt: time.Now(),
	}
	r.players = append(r.players, player)
	if len(r.players) > r.maxSeen {
		r.maxSeen = len(r.players)
	}
	return player, nil
}

// RemovePlayer 移除玩家，返回被移除的玩家和房间是否因此变空。
// 玩家不在房间时返回 nil, false。
func (r *Room) RemovePlayer(playerID string) (*models.Player, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, p := range r.players {
		if p.ID == playerID {
			r.players = append(r.players[:i], r.players[i+1:]...)
			return p, len(r.players) == 0
		}
	}
	return nil, false
}

// Spin 执行一次服务端权威旋转：校验余额后扣 50、抽取、结算入账、
// 悟性加成。余额不足时快速失败，不产生任何变更。
func (r *Room) Spin(playerID string, src game.SymbolSource) (*SpinOutcome, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	player := r.findPlayer(playerID)
	if player == nil {
		return nil, ErrPlayerNotInRoom
	}

	if player.CTok < game.SpinCost {
		return nil, ErrInsufficientBalance
	}

	player.CTok -= game.SpinCost

	results := game.Draw(src)
	reward, message := game.Evaluate(results)
	player.CTok += reward
	player.Enlightenment += game.EnlightenmentBonus(results)

	return &SpinOutcome{
		PlayerID:   player.ID,
		PlayerName: player.Name,
		Results:    results,
		Reward:     reward,
		Message:    message,
		Balance:    player.CTok,
	}, nil
}

// TakeShot 玩家和房间的干杯计数各加一
func (r *Room) TakeShot(playerID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	player := r.findPlayer(playerID)
	if player == nil {
		return ErrPlayerNotInRoom
	}

	player.Shots++
	r.gameState.Shots++
	return nil
}

// SetEvent 设置当前宇宙事件，事件名不做校验，原样透传
func (r *Room) SetEvent(eventType string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.gameState.CurrentEvent = eventType
}

// Leaderboard 按 ctok 降序投影玩家列表，平局保持加入顺序
func (r *Room) Leaderboard() []models.LeaderboardEntry {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	entries := make([]models.LeaderboardEntry, 0, len(r.players))
	for _, p := range r.players {
		entries = append(entries, models.LeaderboardEntry{
			Name:          p.Name,
			CTok:          p.CTok,
			Enlightenment: p.Enlightenment,
			Shots:         p.Shots,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CTok > entries[j].CTok
	})
	return entries
}

// Players 返回玩家列表的副本（值拷贝），避免并发修改
func (r *Room) Players() []*models.Player {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	players := make([]*models.Player, 0, len(r.players))
	for _, p := range r.players {
		copied := *p
		players = append(players, &copied)
	}
	return players
}

// PlayerIDs 返回当前成员的会话 ID 列表，广播器据此定位连接
func (r *Room) PlayerIDs() []string {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ids := make([]string, 0, len(r.players))
	for _, p := range r.players {
		ids = append(ids, p.ID)
	}
	return ids
}

func (r *Room) PlayerCount() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.players)
}

func (r *Room) GameState() models.GameState {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.gameState
}

// TrackTimer 登记一个归属本房间的延迟广播，房间删除时统一取消
func (r *Room) TrackTimer(timerID int64) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.pendingTimers = append(r.pendingTimers, timerID)
}

// DrainTimers 取出并清空所有登记的延迟广播
func (r *Room) DrainTimers() []int64 {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	ids := r.pendingTimers
	r.pendingTimers = nil
	return ids
}

// ArchiveRecord 生成房间关闭时的归档记录
func (r *Room) ArchiveRecord() *models.GormRoomRecord {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return &models.GormRoomRecord{
		RoomCode:   r.Code,
		Players:    r.maxSeen,
		TotalShots: r.gameState.Shots,
		LastEvent:  r.gameState.CurrentEvent,
		Duration:   int(time.Since(r.gameState.CreatedAt).Seconds()),
	}
}

// closeIfEmpty 在房间锁内复查空置后标记关闭。
// 关闭与加入互斥：要么加入先到、房间保留，要么关闭先到、Join 返回 ErrRoomNotFound。
func (r *Room) closeIfEmpty() bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if len(r.players) > 0 {
		return false
	}
	r.closed = true
	return true
}

// closeIfExpired 空置且超过保留期才关闭，清扫用
func (r *Room) closeIfExpired(now time.Time, maxAge time.Duration) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if len(r.players) > 0 || now.Sub(r.gameState.CreatedAt) <= maxAge {
		return false
	}
	r.closed = true
	return true
}

// close 无条件标记关闭
func (r *Room) close() {
	r.mutex.Lock()
	r.closed = true
	r.mutex.Unlock()
}

// findPlayer 调用方必须持有 r.mutex
func (r *Room) findPlayer(playerID string) *models.Player {
	for _, p := range r.players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}
