package handoff

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"

	"github.com/fjod/kasikota/internal/clock"
)

// StoreCode prefixes every order number.
const StoreCode = "KK"

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// OrderNumbers generates display-only order references such as KK-4821-Q7Z.
// They are not unique and must never be used as a storage key.
type OrderNumbers struct {
	clock clock.Clock

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewOrderNumbers(clk clock.Clock, src rand.Source) *OrderNumbers {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &OrderNumbers{
		clock: clk,
		rnd:   rand.New(src),
	}
}

func (g *OrderNumbers) Next() string {
	ms := strconv.FormatInt(g.clock.Now().UnixMilli(), 10)
	if len(ms) < 4 {
		ms = strings.Repeat("0", 4-len(ms)) + ms
	}

	g.mu.Lock()
	var suffix [3]byte
	for i := range suffix {
		suffix[i] = base36[g.rnd.IntN(len(base36))]
	}
	g.mu.Unlock()

	return fmt.Sprintf("%s-%s-%s", StoreCode, ms[len(ms)-4:], suffix[:])
}
