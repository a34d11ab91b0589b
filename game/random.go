// game/random.go
package game

import (
	"math/rand"
)

// SymbolSource 抽象随机符号来源，测试时可注入确定性序列
type SymbolSource interface {
	Next() Symbol
}

// RandSource 生产环境实现，基于 math/rand 全局源（goroutine 安全）
type RandSource struct{}

func NewRandSource() *RandSource {
	return &RandSource{}
}

func (s *RandSource) Next() Symbol {
	return CosmicSymbols[rand.Intn(len(CosmicSymbols))]
}

// Draw 独立抽取三个符号
func Draw(src SymbolSource) [3]Symbol {
	return [3]Symbol{src.Next(), src.Next(), src.Next()}
}
