// server/server.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/coldnsteel/KOZMIC-KASINO/broadcast"
	"github.com/coldnsteel/KOZMIC-KASINO/config"
	"github.com/coldnsteel/KOZMIC-KASINO/game"
	"github.com/coldnsteel/KOZMIC-KASINO/logger"
	"github.com/coldnsteel/KOZMIC-KASINO/models"
	"github.com/coldnsteel/KOZMIC-KASINO/monitor"
	"github.com/coldnsteel/KOZMIC-KASINO/network"
	"github.com/coldnsteel/KOZMIC-KASINO/persistence"
	"github.com/coldnsteel/KOZMIC-KASINO/room"
	kasino_rpc "github.com/coldnsteel/KOZMIC-KASINO/rpc"
	"github.com/coldnsteel/KOZMIC-KASINO/services"
	"github.com/coldnsteel/KOZMIC-KASINO/session"
	"github.com/coldnsteel/KOZMIC-KASINO/timer"
)

// 延迟广播模拟客户端的转轮动画时长
const spinResultDelay = time.Second

type GameServer struct {
	cfg            config.ServerConfig
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	broadcaster    broadcast.Broadcaster
	timerManager   *timer.Manager
	recordService  *services.RecordService
	monitor        *monitor.Monitor
	rpcServer      *kasino_rpc.Server
	symbols        game.SymbolSource
	httpServer     *http.Server
	shutdownChan   chan struct{}
}

func NewGameServer(cfg *config.Config, db persistence.Database) *GameServer {
	s := newGameServer(cfg, db)

	rpcServer, err := kasino_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer
	rpc.Register(kasino_rpc.NewKasinoService(s.roomManager))

	return s
}

// newGameServer 组装除 RPC 监听之外的全部部件，RPC 绑定端口由 NewGameServer 负责
func newGameServer(cfg *config.Config, db persistence.Database) *GameServer {
	s := &GameServer{
		cfg:            cfg.Server,
		roomManager:    room.NewManager(),
		sessionManager: session.NewManager(),
		timerManager:   timer.NewManager(),
		recordService:  services.NewRecordService(db),
		monitor:        monitor.NewMonitor("kasino"),
		symbols:        game.NewRandSource(),
		shutdownChan:   make(chan struct{}),
	}

	origin := cfg.Server.CORSOrigin
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if origin == "*" {
				return true
			}
			return r.Header.Get("Origin") == origin
		},
	}

	s.broadcaster = broadcast.NewRoomBroadcaster(s.roomManager, s.sessionManager)

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()
	s.monitor.StartServer(s.cfg.MonitorAddress)
	s.startJanitor()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/", http.FileServer(http.Dir(s.cfg.StaticDir)))

	s.httpServer = &http.Server{Addr: s.cfg.HTTPAddress, Handler: mux}

	logger.Log.Infof("Game server listening on %s", s.cfg.HTTPAddress)
	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.timerManager.Stop()
	s.rpcServer.Stop()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}

// startJanitor 定时清扫空置过久的房间（对即时删除的兜底）
func (s *GameServer) startJanitor() {
	s.timerManager.Schedule(room.SweepInterval, room.SweepInterval, func() {
		removed := s.roomManager.Sweep(room.EmptyRoomRetention)
		for _, r := range removed {
			logger.Log.Infof("Janitor removed stale empty room %s", r.Code)
			s.closeRoom(r)
		}
		if len(removed) > 0 {
			s.monitor.AddRoomsSwept(len(removed))
			s.monitor.SetActiveRooms(s.roomManager.RoomCount())
		}
	})
}

func (s *GameServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":       "OK",
		"uptime":       s.monitor.Uptime().Seconds(),
		"rooms":        s.roomManager.RoomCount(),
		"totalPlayers": s.roomManager.TotalPlayers(),
	})
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("Player connected: %s (%s)", sess.GetID(), wsConn.RemoteAddr())

	defer func() {
		logger.Log.Infof("Player disconnected: %s", sess.GetID())
		s.leaveCurrentRoom(sess)
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecOnlinePlayers()
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	// 单条畸形消息不能影响其他连接和房间
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorf("Panic handling %s from session %s: %v", packet.Type, sess.GetID(), r)
		}
	}()

	s.monitor.IncActionsReceived()

	switch packet.Type {
	case network.MsgCreateRoom:
		s.handleCreateRoom(sess, packet)
	case network.MsgJoinRoom:
		s.handleJoinRoom(sess, packet)
	case network.MsgRequestSpin:
		s.handleRequestSpin(sess, packet)
	case network.MsgTakeShot:
		s.handleTakeShot(sess, packet)
	case network.MsgTriggerEvent:
		s.handleTriggerEvent(sess, packet)
	case network.MsgSendEmoji:
		s.handleSendEmoji(sess, packet)
	default:
		logger.Log.Infof("Unknown message type %q from session %s", packet.Type, sess.GetID())
	}
}

func (s *GameServer) handleCreateRoom(sess *session.Session, packet *network.Packet) {
	r := s.roomManager.CreateRoom()
	s.monitor.SetActiveRooms(s.roomManager.RoomCount())

	logger.Log.Infof("Room created: %s", r.Code)

	sess.AckReply(packet.Ack, models.CreateRoomResponse{
		Success:  true,
		RoomCode: r.Code,
	})
}

func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) {
	var req models.JoinRoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		sess.AckReply(packet.Ack, models.JoinRoomResponse{Success: false, Message: "Bad request"})
		return
	}

	r, exists := s.roomManager.GetRoom(req.RoomCode)
	if !exists {
		sess.AckReply(packet.Ack, models.JoinRoomResponse{Success: false, Message: room.ErrRoomNotFound.Error()})
		return
	}

	player, err := r.Join(sess.GetID(), req.PlayerName)
	if err != nil {
		sess.AckReply(packet.Ack, models.JoinRoomResponse{Success: false, Message: err.Error()})
		return
	}

	// 一个连接同时只属于一个房间，加入成功后退出旧房间
	s.leaveCurrentRoom(sess)
	sess.SetRoom(r.Code)

	logger.Log.Infof("%s joined room %s", player.Name, r.Code)

	s.broadcaster.BroadcastToRoom(r.Code, network.MsgPlayerJoined, player)
	s.broadcaster.BroadcastToRoom(r.Code, network.MsgUpdateLeaderboard, r.Leaderboard())

	sess.AckReply(packet.Ack, models.JoinRoomResponse{
		Success:  true,
		RoomCode: r.Code,
		Players:  r.Players(),
	})
}

func (s *GameServer) handleRequestSpin(sess *session.Session, packet *network.Packet) {
	var req models.SpinRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		sess.AckReply(packet.Ack, models.SpinResponse{Success: false, Message: "Bad request"})
		return
	}

	r, exists := s.roomManager.GetRoom(req.RoomCode)
	if !exists {
		sess.AckReply(packet.Ack, models.SpinResponse{Success: false, Message: room.ErrRoomNotFound.Error()})
		return
	}

	outcome, err := r.Spin(sess.GetID(), s.symbols)
	if err != nil {
		sess.AckReply(packet.Ack, models.SpinResponse{Success: false, Message: err.Error()})
		return
	}

	logger.Log.Infof("%s spun %s%s%s in room %s, reward %d",
		outcome.PlayerName, outcome.Results[0], outcome.Results[1], outcome.Results[2],
		r.Code, outcome.Reward)

	s.monitor.ObserveSpin(outcome.Reward)
	s.recordService.RecordSpin(r.Code, outcome)

	s.broadcaster.BroadcastToRoom(r.Code, network.MsgSpinStarted, models.SpinStartedEvent{
		PlayerID: outcome.PlayerID,
		Results:  outcome.Results,
	})

	// 转轮动画结束后再公布结果。延迟广播携带旋转时刻的结算数据，
	// 但排行榜按触发时刻的实际状态计算；房间已删除时广播器自己跳过。
	roomCode := r.Code
	timerID := s.timerManager.Schedule(spinResultDelay, 0, func() {
		s.broadcaster.BroadcastToRoom(roomCode, network.MsgSpinResult, models.SpinResultEvent{
			PlayerID: outcome.PlayerID,
			Results:  outcome.Results,
			Reward:   outcome.Reward,
			Message:  outcome.Message,
		})
		s.broadcaster.BroadcastToRoom(roomCode, network.MsgUpdateLeaderboard, s.roomManager.Leaderboard(roomCode))
	})
	r.TrackTimer(timerID)

	sess.AckReply(packet.Ack, models.SpinResponse{
		Success: true,
		Results: outcome.Results,
		Reward:  outcome.Reward,
		Message: outcome.Message,
	})
}

// handleTakeShot 无应答动作，任何校验失败都静默忽略
func (s *GameServer) handleTakeShot(sess *session.Session, packet *network.Packet) {
	var req models.ShotRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}

	r, exists := s.roomManager.GetRoom(req.RoomCode)
	if !exists {
		return
	}

	if err := r.TakeShot(sess.GetID()); err != nil {
		return
	}

	s.monitor.IncShots()

	s.broadcaster.BroadcastToRoom(r.Code, network.MsgPlayerShot, sess.GetID())
	s.broadcaster.BroadcastToRoom(r.Code, network.MsgUpdateLeaderboard, r.Leaderboard())
}

// handleTriggerEvent 事件名不做校验，原样广播给整个房间
func (s *GameServer) handleTriggerEvent(sess *session.Session, packet *network.Packet) {
	var req models.EventRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}

	r, exists := s.roomManager.GetRoom(req.RoomCode)
	if !exists {
		return
	}

	r.SetEvent(req.EventType)

	logger.Log.Infof("Cosmic event in room %s: %s", r.Code, req.EventType)

	s.broadcaster.BroadcastToRoom(r.Code, network.MsgCosmicEvent, req.EventType)
}

// handleSendEmoji 无状态转发
func (s *GameServer) handleSendEmoji(sess *session.Session, packet *network.Packet) {
	var req models.EmojiRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}

	if _, exists := s.roomManager.GetRoom(req.RoomCode); !exists {
		return
	}

	s.broadcaster.BroadcastToRoom(req.RoomCode, network.MsgReceiveEmoji, models.EmojiEvent{
		PlayerID: sess.GetID(),
		Emoji:    req.Emoji,
	})
}

// leaveCurrentRoom 把会话从它所在的房间移除（断线或换房时）。
// 最后一个玩家离开时立即删除房间。
func (s *GameServer) leaveCurrentRoom(sess *session.Session) {
	roomCode := sess.RoomCode()
	if roomCode == "" {
		return
	}
	sess.SetRoom("")

	r, exists := s.roomManager.GetRoom(roomCode)
	if !exists {
		return
	}

	player, empty := r.RemovePlayer(sess.GetID())
	if player == nil {
		return
	}

	logger.Log.Infof("%s left room %s", player.Name, roomCode)

	if empty {
		// 复查式删除：移除玩家和删除房间之间插进来的加入会让删除放弃
		if removed, ok := s.roomManager.RemoveRoomIfEmpty(roomCode); ok {
			logger.Log.Infof("Room %s deleted (empty)", roomCode)
			s.closeRoom(removed)
			s.monitor.SetActiveRooms(s.roomManager.RoomCount())
			return
		}
	}

	s.broadcaster.BroadcastToRoom(roomCode, network.MsgPlayerLeft, player.ID)
	s.broadcaster.BroadcastToRoom(roomCode, network.MsgUpdateLeaderboard, r.Leaderboard())
}

// closeRoom 取消房间挂着的延迟广播并写归档记录
func (s *GameServer) closeRoom(r *room.Room) {
	for _, id := range r.DrainTimers() {
		s.timerManager.Cancel(id)
	}
	s.recordService.RecordRoomClosed(r.ArchiveRecord())
}
