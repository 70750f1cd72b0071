package verlet

// arena stores records by id in insertion order. Removal leaves a hole that
// is squeezed out once holes outnumber live records, so lookup and removal
// stay O(1) amortized without renumbering anything.
type arena[T any] struct {
	next  int
	slots []*T
	ids   []int
	index map[int]int
	holes int
}

func newArena[T any]() *arena[T] {
	return &arena[T]{index: make(map[int]int)}
}

// alloc hands out the next id. Ids are never reused.
func (a *arena[T]) alloc() int {
	a.next++
	return a.next
}

func (a *arena[T]) put(id int, v *T) {
	a.index[id] = len(a.slots)
	a.slots = append(a.slots, v)
	a.ids = append(a.ids, id)
}

func (a *arena[T]) get(id int) (*T, bool) {
	i, ok := a.index[id]
	if !ok {
		return nil, false
	}
	return a.slots[i], true
}

func (a *arena[T]) remove(id int) (*T, bool) {
	i, ok := a.index[id]
	if !ok {
		return nil, false
	}
	v := a.slots[i]
	a.slots[i] = nil
	delete(a.index, id)
	a.holes++
	if a.holes > len(a.index) {
		a.compact()
	}
	return v, true
}

func (a *arena[T]) compact() {
	n := 0
	for i, v := range a.slots {
		if v == nil {
			continue
		}
		a.slots[n] = v
		a.ids[n] = a.ids[i]
		a.index[a.ids[n]] = n
		n++
	}
	clear(a.slots[n:])
	a.slots = a.slots[:n]
	a.ids = a.ids[:n]
	a.holes = 0
}

func (a *arena[T]) len() int { return len(a.index) }

// each visits live records in insertion order.
func (a *arena[T]) each(fn func(*T)) {
	for _, v := range a.slots {
		if v != nil {
			fn(v)
		}
	}
}

func (a *arena[T]) items() []*T {
	out := make([]*T, 0, len(a.index))
	a.each(func(v *T) { out = append(out, v) })
	return out
}
