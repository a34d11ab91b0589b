// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"

	"github.com/coldnsteel/KOZMIC-KASINO/models"
)

// PostgreSQL 不依赖ORM的原生 database/sql 实现
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

// initTables 初始化数据库表结构
func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS gorm_spin_records (
            id SERIAL PRIMARY KEY,
            room_code TEXT NOT NULL,
            player_id TEXT NOT NULL,
            player_name TEXT NOT NULL,
            symbols TEXT NOT NULL,
            reward INT NOT NULL,
            balance INT NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            deleted_at TIMESTAMP
        )`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS gorm_room_records (
            id SERIAL PRIMARY KEY,
            room_code TEXT NOT NULL,
            players INT DEFAULT 0,
            total_shots INT DEFAULT 0,
            last_event TEXT,
            duration INT DEFAULT 0,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            deleted_at TIMESTAMP
        )`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_spin_records_room ON gorm_spin_records (room_code)`)
	return err
}

// SaveSpinRecord 保存一次旋转流水
func (p *PostgreSQL) SaveSpinRecord(record *models.GormSpinRecord) error {
	_, err := p.db.Exec(`
        INSERT INTO gorm_spin_records (room_code, player_id, player_name, symbols, reward, balance)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		record.RoomCode, record.PlayerID, record.PlayerName,
		record.Symbols, record.Reward, record.Balance,
	)
	return err
}

// SaveRoomRecord 保存房间归档记录
func (p *PostgreSQL) SaveRoomRecord(record *models.GormRoomRecord) error {
	_, err := p.db.Exec(`
        INSERT INTO gorm_room_records (room_code, players, total_shots, last_event, duration)
        VALUES ($1, $2, $3, $4, $5)`,
		record.RoomCode, record.Players, record.TotalShots,
		record.LastEvent, record.Duration,
	)
	return err
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
