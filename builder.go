package zaiko

// CreateEntityWith1 creates an entity already carrying component T1,
// placed directly into its final chunk with no intermediate move —
// the "single chunk move" spec.md §4.5 requires for
// create_entity_with, here reduced to zero moves since the entity
// never visits the default chunk. Grounded on the teacher's
// Builder[T].NewEntity (builder.go), generalized to a small fixed
// arity family per spec.md §9's generic-arity-collapse guidance.
func CreateEntityWith1[T1 any](w *World, v1 T1) (Entity, error) {
	w.guardReentrant()
	id1, err := ComponentID[T1](w.schema)
	if err != nil {
		return Entity{}, err
	}
	def := Definition{}
	def.Components.Set(id1)
	e, c, row := w.placeNewEntity(def)
	*Component[T1](c, id1, row) = v1
	w.fireLifecycle(e, false)
	return e, nil
}

// CreateEntityWith2 creates an entity carrying components T1 and T2 in
// one placement.
func CreateEntityWith2[T1, T2 any](w *World, v1 T1, v2 T2) (Entity, error) {
	w.guardReentrant()
	id1, err := ComponentID[T1](w.schema)
	if err != nil {
		return Entity{}, err
	}
	id2, err := ComponentID[T2](w.schema)
	if err != nil {
		return Entity{}, err
	}
	def := Definition{}
	def.Components.Set(id1)
	def.Components.Set(id2)
	e, c, row := w.placeNewEntity(def)
	*Component[T1](c, id1, row) = v1
	*Component[T2](c, id2, row) = v2
	w.fireLifecycle(e, false)
	return e, nil
}

// CreateEntityWith3 creates an entity carrying components T1, T2, T3.
func CreateEntityWith3[T1, T2, T3 any](w *World, v1 T1, v2 T2, v3 T3) (Entity, error) {
	w.guardReentrant()
	id1, err := ComponentID[T1](w.schema)
	if err != nil {
		return Entity{}, err
	}
	id2, err := ComponentID[T2](w.schema)
	if err != nil {
		return Entity{}, err
	}
	id3, err := ComponentID[T3](w.schema)
	if err != nil {
		return Entity{}, err
	}
	def := Definition{}
	def.Components.Set(id1)
	def.Components.Set(id2)
	def.Components.Set(id3)
	e, c, row := w.placeNewEntity(def)
	*Component[T1](c, id1, row) = v1
	*Component[T2](c, id2, row) = v2
	*Component[T3](c, id3, row) = v3
	w.fireLifecycle(e, false)
	return e, nil
}

// CreateEntityWith4 creates an entity carrying components T1..T4.
func CreateEntityWith4[T1, T2, T3, T4 any](w *World, v1 T1, v2 T2, v3 T3, v4 T4) (Entity, error) {
	w.guardReentrant()
	id1, err := ComponentID[T1](w.schema)
	if err != nil {
		return Entity{}, err
	}
	id2, err := ComponentID[T2](w.schema)
	if err != nil {
		return Entity{}, err
	}
	id3, err := ComponentID[T3](w.schema)
	if err != nil {
		return Entity{}, err
	}
	id4, err := ComponentID[T4](w.schema)
	if err != nil {
		return Entity{}, err
	}
	def := Definition{}
	def.Components.Set(id1)
	def.Components.Set(id2)
	def.Components.Set(id3)
	def.Components.Set(id4)
	e, c, row := w.placeNewEntity(def)
	*Component[T1](c, id1, row) = v1
	*Component[T2](c, id2, row) = v2
	*Component[T3](c, id3, row) = v3
	*Component[T4](c, id4, row) = v4
	w.fireLifecycle(e, false)
	return e, nil
}

// placeNewEntity allocates an id and places it directly into the chunk
// for def, without visiting the default chunk first.
func (w *World) placeNewEntity(def Definition) (Entity, *Chunk, int) {
	e := w.allocEntity()
	c := w.chunks.GetOrCreate(def)
	row := c.addRow(e)
	s := &w.slots[e.ID]
	s.chunk = c
	s.row = row
	s.occupied = true
	return e, c, row
}

// Batch1 precomputes the chunk for a single component type and creates
// many entities against it without per-entity map lookups, grounded on
// the teacher's Batch[T1] (batch.go).
type Batch1[T1 any] struct {
	world *World
	chunk *Chunk
	id1   uint8
}

// NewBatch1 creates a Batch1 for component T1, pre-creating its chunk.
func NewBatch1[T1 any](w *World) (*Batch1[T1], error) {
	id1, err := ComponentID[T1](w.schema)
	if err != nil {
		return nil, err
	}
	def := Definition{}
	def.Components.Set(id1)
	return &Batch1[T1]{world: w, chunk: w.chunks.GetOrCreate(def), id1: id1}, nil
}

// CreateEntities creates count entities with T1 zero-valued.
func (b *Batch1[T1]) CreateEntities(count int) []Entity {
	if count <= 0 {
		return nil
	}
	w := b.world
	w.guardReentrant()
	out := make([]Entity, count)
	for i := 0; i < count; i++ {
		e := w.allocEntity()
		row := b.chunk.addRow(e)
		s := &w.slots[e.ID]
		s.chunk = b.chunk
		s.row = row
		s.occupied = true
		out[i] = e
		w.fireLifecycle(e, false)
	}
	return out
}

// CreateEntitiesWithValue creates count entities, all set to value.
func (b *Batch1[T1]) CreateEntitiesWithValue(count int, value T1) []Entity {
	entities := b.CreateEntities(count)
	for _, e := range entities {
		s := b.world.slots[e.ID]
		*Component[T1](b.chunk, b.id1, s.row) = value
	}
	return entities
}
