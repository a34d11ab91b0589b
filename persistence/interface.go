// persistence/interface.go
package persistence

import (
	"github.com/coldnsteel/KOZMIC-KASINO/models"
)

// Database 审计流水存储接口。只写不读：运行时状态完全在内存里，
// 重启后不从这里恢复任何东西。
type Database interface {
	SaveSpinRecord(record *models.GormSpinRecord) error
	SaveRoomRecord(record *models.GormRoomRecord) error
	Close() error
}
