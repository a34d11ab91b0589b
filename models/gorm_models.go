// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormSpinRecord 旋转记录模型（只写审计流水，不参与运行时状态）
type GormSpinRecord struct {
	gorm.Model
	RoomCode   string `gorm:"index;not null"`
	PlayerID   string `gorm:"index;not null"`
	PlayerName string `gorm:"not null"`
	Symbols    string `gorm:"not null"` // 三个符号拼接
	Reward     int    `gorm:"not null"`
	Balance    int    `gorm:"not null"` // 结算后余额
}

// GormRoomRecord 房间关闭时的归档记录
type GormRoomRecord struct {
	gorm.Model
	RoomCode   string `gorm:"index;not null"`
	Players    int    `gorm:"default:0"` // 历史最大人数
	TotalShots int    `gorm:"default:0"`
	LastEvent  string
	Duration   int `gorm:"default:0"` // 房间存活时长(秒)
}
