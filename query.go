package zaiko

// matches reports whether def passes the chunk filter for (required,
// exclude): a superset of required and disjoint from exclude, across
// all three mask kinds (spec.md §4.6 "Chunk filter").
func matches(def, required, exclude Definition) bool {
	return def.ContainsAll(required) && !def.ContainsAny(exclude)
}

// snapshot captures every chunk currently matching (required, exclude)
// in ChunkMap insertion order, along with each chunk's version at
// capture time — the basis for both deterministic iteration order
// (spec.md §4.6 "Determinism") and mutation detection (spec.md §5).
func snapshot(w *World, required, exclude Definition) (chunks []*Chunk, versions []uint32) {
	for _, c := range w.chunks.IterChunks() {
		if c.Len() == 0 {
			continue
		}
		if matches(c.definition, required, exclude) {
			chunks = append(chunks, c)
			versions = append(versions, c.version)
		}
	}
	return chunks, versions
}

// advance walks (chunkIdx, row) forward to the next live row across
// chunks, checking the current chunk's version against its snapshot on
// every call and again for each newly-entered chunk. Returns false at end of iteration or on a version
// mismatch; in the latter case lastErr is set to ConcurrentModification
// unless the World is configured to panic instead (spec.md §5).
func advance(w *World, chunks []*Chunk, versions []uint32, chunkIdx, row int) (newChunkIdx, newRow int, ok bool, err error) {
	for {
		if chunkIdx >= len(chunks) {
			return chunkIdx, row, false, nil
		}
		c := chunks[chunkIdx]
		if c.version != versions[chunkIdx] {
			if w.options.DebugConcurrentModification {
				panic("zaiko: query iterator observed a chunk modified since snapshot")
			}
			return chunkIdx, row, false, newErr(ConcurrentModification, "")
		}
		row++
		if row >= c.Len() {
			chunkIdx++
			row = -1
			continue
		}
		return chunkIdx, row, true, nil
	}
}

// ---------------------------------------------------------------
// Query1: one required component type.
// ---------------------------------------------------------------

// Query1 is a fluent, value-returning (spec.md §4.6) builder over a
// (required, exclude) Definition pair for one typed component. Builder
// methods are idempotent: setting the same bit twice is a no-op.
type Query1[T1 any] struct {
	id1      uint8
	required Definition
	exclude  Definition
}

// NewQuery1 creates a Query1 requiring component T1.
func NewQuery1[T1 any](schema *Schema) (Query1[T1], error) {
	id1, err := ComponentID[T1](schema)
	if err != nil {
		return Query1[T1]{}, err
	}
	q := Query1[T1]{id1: id1}
	q.required.Components.Set(id1)
	return q, nil
}

func (q Query1[T1]) WithComponent(id uint8) Query1[T1]    { q.required.Components.Set(id); return q }
func (q Query1[T1]) WithoutComponent(id uint8) Query1[T1] { q.exclude.Components.Set(id); return q }
func (q Query1[T1]) WithArray(id uint8) Query1[T1]        { q.required.Arrays.Set(id); return q }
func (q Query1[T1]) WithoutArray(id uint8) Query1[T1]     { q.exclude.Arrays.Set(id); return q }
func (q Query1[T1]) WithTag(id uint8) Query1[T1]          { q.required.Tags.Set(id); return q }
func (q Query1[T1]) WithoutTag(id uint8) Query1[T1]       { q.exclude.Tags.Set(id); return q }

// ExcludeDisabled adds (or removes) the reserved Disabled tag to the
// exclude mask.
func (q Query1[T1]) ExcludeDisabled(enable bool) Query1[T1] {
	if enable {
		q.exclude.Tags.Set(DisabledTag)
	} else {
		q.exclude.Tags.Clear(DisabledTag)
	}
	return q
}

// Iter snapshots matching chunks and returns a stateful iterator.
func (q Query1[T1]) Iter(w *World) *QueryIter1[T1] {
	it := &QueryIter1[T1]{world: w, id1: q.id1, chunkIdx: 0, row: -1, required: q.required, exclude: q.exclude}
	it.chunks, it.versions = snapshot(w, q.required, q.exclude)
	return it
}

// QueryIter1 iterates the rows captured by Query1.Iter.
type QueryIter1[T1 any] struct {
	world             *World
	id1               uint8
	required, exclude Definition
	chunks            []*Chunk
	versions          []uint32
	chunkIdx          int
	row               int
	lastErr           error
}

// Next advances to the next matching row. Returns false at the end of
// iteration, or on a version mismatch (see Err).
func (it *QueryIter1[T1]) Next() bool {
	ci, r, ok, err := advance(it.world, it.chunks, it.versions, it.chunkIdx, it.row)
	it.chunkIdx, it.row, it.lastErr = ci, r, err
	return ok
}

// Entity returns the entity at the iterator's current row.
func (it *QueryIter1[T1]) Entity() Entity { return it.chunks[it.chunkIdx].EntityAt(it.row) }

// Get returns a mutable reference to the current row's T1.
func (it *QueryIter1[T1]) Get() *T1 { return Component[T1](it.chunks[it.chunkIdx], it.id1, it.row) }

// Err returns the ConcurrentModification error if Next stopped because
// of a version mismatch (nil otherwise, including a clean end-of-data).
func (it *QueryIter1[T1]) Err() error { return it.lastErr }

// Reset re-snapshots the matching chunks from the current world state,
// for iterator reuse.
func (it *QueryIter1[T1]) Reset() {
	it.chunks, it.versions = snapshot(it.world, it.required, it.exclude)
	it.chunkIdx, it.row, it.lastErr = 0, -1, nil
}

// Dispose releases the iterator's snapshot buffer. Safe to call
// mid-iteration; cancellation leaves the World consistent (spec.md §5).
func (it *QueryIter1[T1]) Dispose() { it.chunks, it.versions = nil, nil }

// ---------------------------------------------------------------
// Query2: two required component types.
// ---------------------------------------------------------------

type Query2[T1, T2 any] struct {
	id1, id2 uint8
	required Definition
	exclude  Definition
}

func NewQuery2[T1, T2 any](schema *Schema) (Query2[T1, T2], error) {
	id1, err := ComponentID[T1](schema)
	if err != nil {
		return Query2[T1, T2]{}, err
	}
	id2, err := ComponentID[T2](schema)
	if err != nil {
		return Query2[T1, T2]{}, err
	}
	q := Query2[T1, T2]{id1: id1, id2: id2}
	q.required.Components.Set(id1)
	q.required.Components.Set(id2)
	return q, nil
}

func (q Query2[T1, T2]) WithComponent(id uint8) Query2[T1, T2]    { q.required.Components.Set(id); return q }
func (q Query2[T1, T2]) WithoutComponent(id uint8) Query2[T1, T2] { q.exclude.Components.Set(id); return q }
func (q Query2[T1, T2]) WithArray(id uint8) Query2[T1, T2]        { q.required.Arrays.Set(id); return q }
func (q Query2[T1, T2]) WithoutArray(id uint8) Query2[T1, T2]     { q.exclude.Arrays.Set(id); return q }
func (q Query2[T1, T2]) WithTag(id uint8) Query2[T1, T2]          { q.required.Tags.Set(id); return q }
func (q Query2[T1, T2]) WithoutTag(id uint8) Query2[T1, T2]       { q.exclude.Tags.Set(id); return q }
func (q Query2[T1, T2]) ExcludeDisabled(enable bool) Query2[T1, T2] {
	if enable {
		q.exclude.Tags.Set(DisabledTag)
	} else {
		q.exclude.Tags.Clear(DisabledTag)
	}
	return q
}

func (q Query2[T1, T2]) Iter(w *World) *QueryIter2[T1, T2] {
	it := &QueryIter2[T1, T2]{world: w, id1: q.id1, id2: q.id2, chunkIdx: 0, row: -1, required: q.required, exclude: q.exclude}
	it.chunks, it.versions = snapshot(w, q.required, q.exclude)
	return it
}

type QueryIter2[T1, T2 any] struct {
	world             *World
	id1, id2          uint8
	required, exclude Definition
	chunks            []*Chunk
	versions          []uint32
	chunkIdx, row     int
	lastErr           error
}

func (it *QueryIter2[T1, T2]) Next() bool {
	ci, r, ok, err := advance(it.world, it.chunks, it.versions, it.chunkIdx, it.row)
	it.chunkIdx, it.row, it.lastErr = ci, r, err
	return ok
}
func (it *QueryIter2[T1, T2]) Entity() Entity { return it.chunks[it.chunkIdx].EntityAt(it.row) }
func (it *QueryIter2[T1, T2]) Get() (*T1, *T2) {
	c := it.chunks[it.chunkIdx]
	return Component[T1](c, it.id1, it.row), Component[T2](c, it.id2, it.row)
}
func (it *QueryIter2[T1, T2]) Err() error { return it.lastErr }
func (it *QueryIter2[T1, T2]) Reset() {
	it.chunks, it.versions = snapshot(it.world, it.required, it.exclude)
	it.chunkIdx, it.row, it.lastErr = 0, -1, nil
}
func (it *QueryIter2[T1, T2]) Dispose() { it.chunks, it.versions = nil, nil }

// ---------------------------------------------------------------
// Query3: three required component types.
// ---------------------------------------------------------------

type Query3[T1, T2, T3 any] struct {
	id1, id2, id3 uint8
	required      Definition
	exclude       Definition
}

func NewQuery3[T1, T2, T3 any](schema *Schema) (Query3[T1, T2, T3], error) {
	id1, err := ComponentID[T1](schema)
	if err != nil {
		return Query3[T1, T2, T3]{}, err
	}
	id2, err := ComponentID[T2](schema)
	if err != nil {
		return Query3[T1, T2, T3]{}, err
	}
	id3, err := ComponentID[T3](schema)
	if err != nil {
		return Query3[T1, T2, T3]{}, err
	}
	q := Query3[T1, T2, T3]{id1: id1, id2: id2, id3: id3}
	q.required.Components.Set(id1)
	q.required.Components.Set(id2)
	q.required.Components.Set(id3)
	return q, nil
}

func (q Query3[T1, T2, T3]) WithComponent(id uint8) Query3[T1, T2, T3] {
	q.required.Components.Set(id)
	return q
}
func (q Query3[T1, T2, T3]) WithoutComponent(id uint8) Query3[T1, T2, T3] {
	q.exclude.Components.Set(id)
	return q
}
func (q Query3[T1, T2, T3]) WithTag(id uint8) Query3[T1, T2, T3]    { q.required.Tags.Set(id); return q }
func (q Query3[T1, T2, T3]) WithoutTag(id uint8) Query3[T1, T2, T3] { q.exclude.Tags.Set(id); return q }
func (q Query3[T1, T2, T3]) WithArray(id uint8) Query3[T1, T2, T3]  { q.required.Arrays.Set(id); return q }
func (q Query3[T1, T2, T3]) WithoutArray(id uint8) Query3[T1, T2, T3] {
	q.exclude.Arrays.Set(id)
	return q
}
func (q Query3[T1, T2, T3]) ExcludeDisabled(enable bool) Query3[T1, T2, T3] {
	if enable {
		q.exclude.Tags.Set(DisabledTag)
	} else {
		q.exclude.Tags.Clear(DisabledTag)
	}
	return q
}

func (q Query3[T1, T2, T3]) Iter(w *World) *QueryIter3[T1, T2, T3] {
	it := &QueryIter3[T1, T2, T3]{world: w, id1: q.id1, id2: q.id2, id3: q.id3, chunkIdx: 0, row: -1, required: q.required, exclude: q.exclude}
	it.chunks, it.versions = snapshot(w, q.required, q.exclude)
	return it
}

type QueryIter3[T1, T2, T3 any] struct {
	world             *World
	id1, id2, id3     uint8
	required, exclude Definition
	chunks            []*Chunk
	versions          []uint32
	chunkIdx, row     int
	lastErr           error
}

func (it *QueryIter3[T1, T2, T3]) Next() bool {
	ci, r, ok, err := advance(it.world, it.chunks, it.versions, it.chunkIdx, it.row)
	it.chunkIdx, it.row, it.lastErr = ci, r, err
	return ok
}
func (it *QueryIter3[T1, T2, T3]) Entity() Entity { return it.chunks[it.chunkIdx].EntityAt(it.row) }
func (it *QueryIter3[T1, T2, T3]) Get() (*T1, *T2, *T3) {
	c := it.chunks[it.chunkIdx]
	return Component[T1](c, it.id1, it.row), Component[T2](c, it.id2, it.row), Component[T3](c, it.id3, it.row)
}
func (it *QueryIter3[T1, T2, T3]) Err() error { return it.lastErr }
func (it *QueryIter3[T1, T2, T3]) Reset() {
	it.chunks, it.versions = snapshot(it.world, it.required, it.exclude)
	it.chunkIdx, it.row, it.lastErr = 0, -1, nil
}
func (it *QueryIter3[T1, T2, T3]) Dispose() { it.chunks, it.versions = nil, nil }

// ---------------------------------------------------------------
// Query4: four required component types.
// ---------------------------------------------------------------

type Query4[T1, T2, T3, T4 any] struct {
	id1, id2, id3, id4 uint8
	required           Definition
	exclude            Definition
}

func NewQuery4[T1, T2, T3, T4 any](schema *Schema) (Query4[T1, T2, T3, T4], error) {
	id1, err := ComponentID[T1](schema)
	if err != nil {
		return Query4[T1, T2, T3, T4]{}, err
	}
	id2, err := ComponentID[T2](schema)
	if err != nil {
		return Query4[T1, T2, T3, T4]{}, err
	}
	id3, err := ComponentID[T3](schema)
	if err != nil {
		return Query4[T1, T2, T3, T4]{}, err
	}
	id4, err := ComponentID[T4](schema)
	if err != nil {
		return Query4[T1, T2, T3, T4]{}, err
	}
	q := Query4[T1, T2, T3, T4]{id1: id1, id2: id2, id3: id3, id4: id4}
	q.required.Components.Set(id1)
	q.required.Components.Set(id2)
	q.required.Components.Set(id3)
	q.required.Components.Set(id4)
	return q, nil
}

func (q Query4[T1, T2, T3, T4]) WithComponent(id uint8) Query4[T1, T2, T3, T4] {
	q.required.Components.Set(id)
	return q
}
func (q Query4[T1, T2, T3, T4]) WithoutComponent(id uint8) Query4[T1, T2, T3, T4] {
	q.exclude.Components.Set(id)
	return q
}
func (q Query4[T1, T2, T3, T4]) WithTag(id uint8) Query4[T1, T2, T3, T4] {
	q.required.Tags.Set(id)
	return q
}
func (q Query4[T1, T2, T3, T4]) WithoutTag(id uint8) Query4[T1, T2, T3, T4] {
	q.exclude.Tags.Set(id)
	return q
}
func (q Query4[T1, T2, T3, T4]) WithArray(id uint8) Query4[T1, T2, T3, T4] {
	q.required.Arrays.Set(id)
	return q
}
func (q Query4[T1, T2, T3, T4]) WithoutArray(id uint8) Query4[T1, T2, T3, T4] {
	q.exclude.Arrays.Set(id)
	return q
}
func (q Query4[T1, T2, T3, T4]) ExcludeDisabled(enable bool) Query4[T1, T2, T3, T4] {
	if enable {
		q.exclude.Tags.Set(DisabledTag)
	} else {
		q.exclude.Tags.Clear(DisabledTag)
	}
	return q
}

func (q Query4[T1, T2, T3, T4]) Iter(w *World) *QueryIter4[T1, T2, T3, T4] {
	it := &QueryIter4[T1, T2, T3, T4]{world: w, id1: q.id1, id2: q.id2, id3: q.id3, id4: q.id4, chunkIdx: 0, row: -1, required: q.required, exclude: q.exclude}
	it.chunks, it.versions = snapshot(w, q.required, q.exclude)
	return it
}

type QueryIter4[T1, T2, T3, T4 any] struct {
	world              *World
	id1, id2, id3, id4 uint8
	required, exclude  Definition
	chunks             []*Chunk
	versions           []uint32
	chunkIdx, row      int
	lastErr            error
}

func (it *QueryIter4[T1, T2, T3, T4]) Next() bool {
	ci, r, ok, err := advance(it.world, it.chunks, it.versions, it.chunkIdx, it.row)
	it.chunkIdx, it.row, it.lastErr = ci, r, err
	return ok
}
func (it *QueryIter4[T1, T2, T3, T4]) Entity() Entity { return it.chunks[it.chunkIdx].EntityAt(it.row) }
func (it *QueryIter4[T1, T2, T3, T4]) Get() (*T1, *T2, *T3, *T4) {
	c := it.chunks[it.chunkIdx]
	return Component[T1](c, it.id1, it.row), Component[T2](c, it.id2, it.row),
		Component[T3](c, it.id3, it.row), Component[T4](c, it.id4, it.row)
}
func (it *QueryIter4[T1, T2, T3, T4]) Err() error { return it.lastErr }
func (it *QueryIter4[T1, T2, T3, T4]) Reset() {
	it.chunks, it.versions = snapshot(it.world, it.required, it.exclude)
	it.chunkIdx, it.row, it.lastErr = 0, -1, nil
}
func (it *QueryIter4[T1, T2, T3, T4]) Dispose() { it.chunks, it.versions = nil, nil }
