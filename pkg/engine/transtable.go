package engine

import (
	"sync/atomic"

	"github.com/ChizhovVadim/counteruci/pkg/common"
)

const (
	boundLower = 1 << iota
	boundUpper
)

const boundExact = boundLower | boundUpper

// dateMask keeps search dates in 11 bits. Date 0 means never written.
const dateMask = 0x7ff

// transEntry is 16 bytes. gate is taken with CAS by readers and writers;
// a busy entry is treated as a miss.
type transEntry struct {
	gate  int32
	lock  uint32
	move  common.Move
	date  uint16
	score int16
	depth int8
	bound uint8
}

func (entry *transEntry) tryLock() bool {
	return atomic.CompareAndSwapInt32(&entry.gate, 0, 1)
}

func (entry *transEntry) unlock() {
	atomic.StoreInt32(&entry.gate, 0)
}

// transBucket holds a depth-preferred slot and an always-replace slot.
type transBucket [2]transEntry

type transTable struct {
	megabytes int
	buckets   []transBucket
	mask      uint64
	date      uint16
}

func newTransTable(megabytes int) *transTable {
	var n = 1
	for limit := megabytes * 1024 * 1024 / 32; n*2 <= limit; {
		n *= 2
	}
	return &transTable{
		megabytes: megabytes,
		buckets:   make([]transBucket, n),
		mask:      uint64(n - 1),
	}
}

func (tt *transTable) Size() int {
	return tt.megabytes
}

// IncDate starts a new search. Entries of older searches become
// replaceable.
func (tt *transTable) IncDate() {
	tt.date = (tt.date + 1) & dateMask
	if tt.date == 0 {
		tt.date = 1
	}
}

func (tt *transTable) Clear() {
	tt.date = 0
	for i := range tt.buckets {
		tt.buckets[i] = transBucket{}
	}
}

// HashFull is the permille of the first 1000 entries written during the
// current search.
func (tt *transTable) HashFull() int {
	var total, used = 0, 0
	for i := 0; i < len(tt.buckets) && total < 1000; i++ {
		for j := range tt.buckets[i] {
			var entry = &tt.buckets[i][j]
			total++
			if !entry.tryLock() {
				continue
			}
			if entry.bound != 0 && entry.date == tt.date {
				used++
			}
			entry.unlock()
		}
	}
	return used * 1000 / total
}

func (tt *transTable) bucket(key uint64) (*transBucket, uint32) {
	return &tt.buckets[key&tt.mask], uint32(key >> 32)
}

func (tt *transTable) Read(key uint64) (depth, score, bound int, move common.Move, ok bool) {
	var bucket, lock = tt.bucket(key)
	for i := range bucket {
		var entry = &bucket[i]
		if !entry.tryLock() {
			continue
		}
		if entry.bound != 0 && entry.lock == lock {
			entry.date = tt.date
			depth, score, bound = int(entry.depth), int(entry.score), int(entry.bound)
			move = entry.move
			ok = true
		}
		entry.unlock()
		if ok {
			return
		}
	}
	return
}

// Update stores a result. An entry of the same position is overwritten
// unless it is much deeper. Otherwise the depth-preferred slot takes
// results of at least its depth or of a newer search, and the other slot
// takes the rest. A busy bucket drops the result.
func (tt *transTable) Update(key uint64, depth, score, bound int, move common.Move) {
	var bucket, lock = tt.bucket(key)
	if !bucket[0].tryLock() {
		return
	}
	defer bucket[0].unlock()
	if !bucket[1].tryLock() {
		return
	}
	defer bucket[1].unlock()

	var entry *transEntry
	for i := range bucket {
		if bucket[i].bound != 0 && bucket[i].lock == lock {
			entry = &bucket[i]
			break
		}
	}
	if entry != nil {
		if depth < int(entry.depth)-3 && bound != boundExact {
			return
		}
		if move == common.MoveEmpty {
			move = entry.move
		}
	} else if first := &bucket[0]; first.bound == 0 || first.date != tt.date || depth >= int(first.depth) {
		entry = first
	} else {
		entry = &bucket[1]
	}

	entry.lock = lock
	entry.move = move
	entry.date = tt.date
	entry.score = int16(score)
	entry.depth = int8(depth)
	entry.bound = uint8(bound)
}
