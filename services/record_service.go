// services/record_service.go
package services

import (
	"strings"

	"github.com/coldnsteel/KOZMIC-KASINO/logger"
	"github.com/coldnsteel/KOZMIC-KASINO/models"
	"github.com/coldnsteel/KOZMIC-KASINO/persistence"
	"github.com/coldnsteel/KOZMIC-KASINO/room"
)

// RecordService 把旋转和房间归档异步写入审计库。
// db 为 nil 时（未配置数据库）所有方法都是空操作，游戏逻辑不感知差别。
type RecordService struct {
	db persistence.Database
}

func NewRecordService(db persistence.Database) *RecordService {
	return &RecordService{db: db}
}

// RecordSpin 记录一次旋转结算，写入失败只记日志
func (s *RecordService) RecordSpin(roomCode string, outcome *room.SpinOutcome) {
	if s.db == nil {
		return
	}

	record := &models.GormSpinRecord{
		RoomCode:   roomCode,
		PlayerID:   outcome.PlayerID,
		PlayerName: outcome.PlayerName,
		Symbols:    strings.Join(outcome.Results[:], ""),
		Reward:     outcome.Reward,
		Balance:    outcome.Balance,
	}

	go func() {
		if err := s.db.SaveSpinRecord(record); err != nil {
			logger.Log.Warnf("Failed to save spin record for room %s: %v", roomCode, err)
		}
	}()
}

// RecordRoomClosed 记录房间关闭归档
func (s *RecordService) RecordRoomClosed(record *models.GormRoomRecord) {
	if s.db == nil {
		return
	}

	go func() {
		if err := s.db.SaveRoomRecord(record); err != nil {
			logger.Log.Warnf("Failed to save room record for %s: %v", record.RoomCode, err)
		}
	}()
}
