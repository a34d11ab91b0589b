// rpc/rpc.go
package rpc

import (
	"net"
	"net/rpc"

	"github.com/coldnsteel/KOZMIC-KASINO/logger"
	"github.com/coldnsteel/KOZMIC-KASINO/models"
	"github.com/coldnsteel/KOZMIC-KASINO/room"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// KasinoService 管理侧查询接口，按 net/rpc 方法签名约定导出
type KasinoService struct {
	roomManager *room.Manager
}

func NewKasinoService(rm *room.Manager) *KasinoService {
	return &KasinoService{roomManager: rm}
}

type RoomStatsArgs struct {
	RoomCode string
}

type RoomStatsReply struct {
	Leaderboard  []models.LeaderboardEntry
	CurrentEvent string
	TotalShots   int
}

// GetRoomStats 查询单个房间的排行榜和共享状态
func (ks *KasinoService) GetRoomStats(args *RoomStatsArgs, reply *RoomStatsReply) error {
	r, exists := ks.roomManager.GetRoom(args.RoomCode)
	if !exists {
		return room.ErrRoomNotFound
	}

	state := r.GameState()
	reply.Leaderboard = r.Leaderboard()
	reply.CurrentEvent = state.CurrentEvent
	reply.TotalShots = state.Shots
	return nil
}

type ServerStatsArgs struct{}

type ServerStatsReply struct {
	Rooms        int
	TotalPlayers int
}

// GetServerStats 查询进程级的房间和玩家总数
func (ks *KasinoService) GetServerStats(args *ServerStatsArgs, reply *ServerStatsReply) error {
	reply.Rooms = ks.roomManager.RoomCount()
	reply.TotalPlayers = ks.roomManager.TotalPlayers()
	return nil
}
