package zaiko

// ChunkMap maps Definition -> *Chunk with stable insertion-ordered
// iteration, used both for entity routing and for Query enumeration.
// Definition is already a comparable Go value, so — per SPEC_FULL.md
// §13 — this follows the teacher's own idiom (a builtin map plus a
// parallel ordered slice, `world.go`'s `archetypes`/`archetypesList`)
// rather than hand-rolling an open-addressed probing table: the
// builtin map already gives expected O(1) lookup and at most one chunk
// per Definition (I5).
type ChunkMap struct {
	byDefinition map[Definition]*Chunk
	ordered      []*Chunk
	schema       *Schema
}

// newChunkMap creates a ChunkMap with its reserved empty-Definition
// default chunk already present.
func newChunkMap(schema *Schema) *ChunkMap {
	cm := &ChunkMap{
		byDefinition: make(map[Definition]*Chunk, 32),
		ordered:      make([]*Chunk, 0, 32),
		schema:       schema,
	}
	cm.GetOrCreate(Empty)
	return cm
}

// GetOrCreate returns the chunk for def, creating and appending it to
// the ordered list on first use.
func (cm *ChunkMap) GetOrCreate(def Definition) *Chunk {
	if c, ok := cm.byDefinition[def]; ok {
		return c
	}
	c := newChunk(cm.schema, def)
	cm.byDefinition[def] = c
	cm.ordered = append(cm.ordered, c)
	return c
}

// Get returns the chunk for def if it already exists.
func (cm *ChunkMap) Get(def Definition) (*Chunk, bool) {
	c, ok := cm.byDefinition[def]
	return c, ok
}

// IterChunks returns the live chunks in ChunkMap insertion order,
// stable for query enumeration (spec.md §4.4).
func (cm *ChunkMap) IterChunks() []*Chunk {
	return cm.ordered
}
