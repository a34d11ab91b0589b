// game/evaluate.go
package game

import (
	"fmt"
)

// Evaluate 对一次抽取结果进行赔付计算。纯函数，内部没有任何随机性。
//
// 优先级:
//  1. 三个符号完全相同 -> 大奖（🥔/🤖/🧠 有提升档位，其余统一 1000）
//  2. 含有奖励符号（先查 🤖 再查 🧠，命中即止，不叠加）
//  3. 安慰奖 25
func Evaluate(results [3]Symbol) (reward int, message string) {
	if results[0] == results[1] && results[1] == results[2] {
		switch results[0] {
		case SymbolPotato:
			return 2000, "🥔 TRIPLE POTATO ENLIGHTENMENT! +2000 CTOK!"
		case SymbolRobot:
			return 3000, "🤖 MACHINE CONSCIOUSNESS ACHIEVED! +3000 CTOK!"
		case SymbolBrain:
			return 5000, "🧠 ULTIMATE BRAIN JACKPOT! +5000 CTOK!"
		default:
			return 1000, fmt.Sprintf("✨ TRIPLE %s! Cosmic alignment! +1000 CTOK!", results[0])
		}
	}

	if contains(results, SymbolRobot) {
		return 100, "🤖 MACHINE CONSCIOUSNESS BONUS! +100 CTOK!"
	}

	if contains(results, SymbolBrain) {
		return 50, "🧠 BRAIN POWER BONUS! +50 CTOK + WISDOM!"
	}

	return 25, "Close call! +25 CTOK consolation"
}

// EnlightenmentBonus 计算一次抽取带来的悟性加成。
// 只看符号是否出现，与赔付档位无关；🧠 和 🤖 同时出现时叠加。
func EnlightenmentBonus(results [3]Symbol) int {
	bonus := 0
	if contains(results, SymbolBrain) {
		bonus += 10
	}
	if contains(results, SymbolRobot) {
		bonus += 5
	}
	return bonus
}

func contains(results [3]Symbol, s Symbol) bool {
	return results[0] == s || results[1] == s || results[2] == s
}
