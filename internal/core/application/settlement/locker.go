package settlement

import (
	"hash/fnv"
	"sort"
	"sync"
)

const lockStripes = 64

// orderLocker serializes settlements and cancellations per order id via
// lock striping. Callers lock the whole set of ids a settlement touches
// in one call; stripes are always acquired in ascending order so two
// overlapping settlements cannot deadlock.
type orderLocker struct {
	stripes [lockStripes]sync.Mutex
}

func newOrderLocker() *orderLocker {
	return &orderLocker{}
}

// lock acquires the stripes covering the given ids and returns the
// function releasing them.
func (l *orderLocker) lock(ids ...string) func() {
	indexes := make([]int, 0, len(ids))
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		idx := stripeIndex(id)
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	for _, idx := range indexes {
		l.stripes[idx].Lock()
	}
	return func() {
		for i := len(indexes) - 1; i >= 0; i-- {
			l.stripes[indexes[i]].Unlock()
		}
	}
}

func stripeIndex(id string) int {
	h := fnv.New32a()
	h.Write([]byte(id))
	return int(h.Sum32() % lockStripes)
}
