package holographic

// indexArena assigns matrix rows to words in insertion order.
// Assignments are permanent; there is no removal.
type indexArena struct {
	capacity int
	byWord   map[string]int
	words    []string
}

func newIndexArena(capacity int) *indexArena {
	return &indexArena{
		capacity: capacity,
		byWord:   make(map[string]int, capacity),
		words:    make([]string, 0, capacity),
	}
}

// assign returns the row for word, allocating one if there is room.
// ok is false when the arena is full and word has no row.
func (a *indexArena) assign(word string) (idx int, ok bool) {
	if idx, ok := a.byWord[word]; ok {
		return idx, true
	}
	if len(a.words) >= a.capacity {
		return -1, false
	}
	idx = len(a.words)
	a.byWord[word] = idx
	a.words = append(a.words, word)
	return idx, true
}

func (a *indexArena) lookup(word string) (int, bool) {
	idx, ok := a.byWord[word]
	return idx, ok
}

func (a *indexArena) word(idx int) string {
	return a.words[idx]
}

func (a *indexArena) len() int {
	return len(a.words)
}

func (a *indexArena) full() bool {
	return len(a.words) >= a.capacity
}
