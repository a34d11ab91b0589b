// game/symbols.go
package game

import (
	"crypto/rand"
	"math/big"
)

// Symbol 老虎机符号
type Symbol = string

// 宇宙符号表，抽取时每个位置独立等概率
var CosmicSymbols = []Symbol{"🎸", "🎹", "🥔", "🌟", "🤖", "🦙", "🕳️", "🧠"}

// 特殊符号
const (
	SymbolPotato Symbol = "🥔"
	SymbolRobot  Symbol = "🤖"
	SymbolBrain  Symbol = "🧠"
)

const (
	SpinCost   = 50
	MaxPlayers = 8

	RoomCodeLength  = 6
	roomCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateRoomCode 生成一个短的、可口头分享的房间码。
// 不保证全局唯一，调用方（room.Manager）冲突时需要重新生成。
func GenerateRoomCode() string {
	code := make([]byte, RoomCodeLength)
	max := big.NewInt(int64(len(roomCodeCharset)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand 在正常平台上不会失败
			panic("room code generation: " + err.Error())
		}
		code[i] = roomCodeCharset[n.Int64()]
	}
	return string(code)
}
