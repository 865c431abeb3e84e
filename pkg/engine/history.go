package engine

import (
	"github.com/ChizhovVadim/counteruci/pkg/common"
)

// historyTable is a butterfly table indexed by side, from and to squares.
type historyTable [2][64][64]int32

func sideIndex(white bool) int {
	if white {
		return 1
	}
	return 0
}

func (h *historyTable) read(white bool, m common.Move) int {
	return int(h[sideIndex(white)][m.From()][m.To()])
}

// update applies a bonus (or malus when negative) with gravity towards zero,
// so that the entry stays within [-div, div].
func (h *historyTable) update(white bool, m common.Move, delta, div int) {
	var v = &h[sideIndex(white)][m.From()][m.To()]
	*v += int32(delta - int(*v)*common.Abs(delta)/div)
}

func (h *historyTable) clear() {
	*h = historyTable{}
}

func (t *thread) updateHistory(white bool, quietsSearched []common.Move, bestMove common.Move, depth int) {
	var c = &t.engine.Config
	var div = common.Max(1, c.HistQDiv)
	var bonus = c.historyBonus(depth)
	var malus = c.historyMalus(depth)
	for _, m := range quietsSearched {
		if m == bestMove {
			t.history.update(white, m, bonus, div)
		} else {
			t.history.update(white, m, -malus, div)
		}
	}
}

func (t *thread) updateKiller(move common.Move, height int) {
	if t.stack[height].killer1 != move {
		t.stack[height].killer2 = t.stack[height].killer1
		t.stack[height].killer1 = move
	}
}
