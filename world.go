// Package zaiko implements an archetype-based Entity Component System:
// entities are grouped into chunks by exact component/array/tag
// composition, giving dense, cache-friendly storage and O(1) archetype
// routing on every composition change.
//
// Features:
//   - Archetype storage with up to 256 component, array and tag types.
//   - A fixed 256-bit BitMask for archetype membership and filtering.
//   - Unsafe pointer access into a chunk's interleaved component row.
//   - Swap-remove row deletion; atomic cross-chunk moves.
//   - Weak cross-entity references and parent/child tracking.
//   - Generic Query1..Query4 and CreateEntityWith1..4 families.
package zaiko

// slot is one entry in the World's entity table: where the entity
// lives (chunk + row), its generation for stale-handle detection, its
// parent (a weak Entity reference, zero ID meaning none) and its dense
// reference list. Slot 0 is reserved and never occupied.
type slot struct {
	chunk      *Chunk
	row        int
	generation uint32
	occupied   bool
	parent     Entity
	references []Entity
}

// WorldOptions configures a new World (SPEC_FULL.md §10, matching the
// teacher's WorldOptions{InitialCapacity} shape, extended with the
// Schema the World must own and the debug toggle spec.md §5 leaves
// implementation-configurable).
type WorldOptions struct {
	// Schema is the type registry this World routes all composition
	// changes through. If nil, NewWorld allocates a fresh one.
	Schema *Schema
	// InitialCapacity presizes the entity slot table.
	InitialCapacity int
	// DebugConcurrentModification makes Query iterators panic on a
	// version mismatch instead of returning a recoverable error
	// (spec.md §5: "fatal / debug-only, implementation-configurable").
	DebugConcurrentModification bool
}

// World is the authoritative entity lifecycle: slot table, free-id
// stack, ChunkMap, Schema handle and the three change-notification
// listener lists (spec.md §4.5). A World is single-owner and not
// internally synchronized — see spec.md §5's Non-goal on concurrent
// mutation.
type World struct {
	schema  *Schema
	chunks  *ChunkMap
	slots   []slot
	freeIDs []uint32
	nextID  uint32

	// Resources is a type-indexed singleton store for host-level
	// globals; see resources.go.
	Resources Resources

	listen  listeners
	options WorldOptions
}

// NewWorld creates a World with the given options.
func NewWorld(opts WorldOptions) *World {
	schema := opts.Schema
	if schema == nil {
		schema = NewSchema()
	}
	cap := opts.InitialCapacity
	if cap <= 0 {
		cap = 64
	}
	w := &World{
		schema:  schema,
		chunks:  newChunkMap(schema),
		slots:   make([]slot, 1, cap+1), // slot 0 reserved
		freeIDs: make([]uint32, 0, cap),
		options: opts,
	}
	return w
}

// Schema returns the World's Schema handle.
func (w *World) Schema() *Schema { return w.schema }

// IsValid reports whether e currently names a live entity: its slot is
// occupied and its generation matches.
func (w *World) IsValid(e Entity) bool {
	if e.ID == 0 || int(e.ID) >= len(w.slots) {
		return false
	}
	s := &w.slots[e.ID]
	return s.occupied && s.generation == e.Generation
}

func (w *World) allocEntity() Entity {
	var id uint32
	if n := len(w.freeIDs); n > 0 {
		id = w.freeIDs[n-1]
		w.freeIDs = w.freeIDs[:n-1]
	} else {
		w.nextID++
		id = w.nextID
	}
	if int(id) >= len(w.slots) {
		grown := make([]slot, int(id)+1)
		copy(grown, w.slots)
		w.slots = grown
	}
	gen := w.slots[id].generation + 1
	if gen == 0 {
		gen = 1
	}
	w.slots[id] = slot{generation: gen}
	return Entity{ID: id, Generation: gen}
}

// CreateEntity creates a new entity with no components, arrays or
// tags, resident in the reserved empty-Definition chunk.
func (w *World) CreateEntity() Entity {
	w.guardReentrant()
	e := w.allocEntity()
	c := w.chunks.GetOrCreate(Empty)
	row := c.addRow(e)
	s := &w.slots[e.ID]
	s.chunk = c
	s.row = row
	s.occupied = true
	w.fireLifecycle(e, false)
	return e
}

// DestroyEntity removes e from its chunk (swap-remove), clears its
// slot, and recycles its id. Fires EntityCreatedOrDestroyed with
// destroyed=true.
func (w *World) DestroyEntity(e Entity) error {
	w.guardReentrant()
	if !w.IsValid(e) {
		return newErr(EntityNotFound, "")
	}
	s := &w.slots[e.ID]
	moved, didMove := s.chunk.removeRow(s.row)
	if didMove {
		w.slots[moved.ID].row = s.row
	}
	gen := s.generation
	*s = slot{generation: gen}
	w.freeIDs = append(w.freeIDs, e.ID)
	w.fireLifecycle(e, true)
	return nil
}

// DestroyEntities is a convenience loop over DestroyEntity; entities
// already invalid are skipped rather than erroring.
func (w *World) DestroyEntities(entities []Entity) {
	for _, e := range entities {
		if w.IsValid(e) {
			_ = w.DestroyEntity(e)
		}
	}
}

// moveRow relocates the row for entity e from oldChunk/oldRow to the
// chunk for newDef, copying every component and array column the two
// Definitions have in common. The target row is allocated and fully
// populated, and the slot table is repointed, before the source row is
// swap-removed — so an observer never sees e absent from both chunks
// or present in both (spec.md §4.5 "Move atomicity").
func (w *World) moveRow(e Entity, oldChunk *Chunk, oldRow int, newDef Definition) (*Chunk, int) {
	newChunk := w.chunks.GetOrCreate(newDef)
	newRow := newChunk.addRow(e)
	memCopyRow(newChunk, newRow, oldChunk, oldRow, w.schema)
	moveArrays(newChunk, newRow, oldChunk, oldRow)

	s := &w.slots[e.ID]
	s.chunk = newChunk
	s.row = newRow

	moved, didMove := oldChunk.removeRow(oldRow)
	if didMove {
		w.slots[moved.ID].row = oldRow
	}
	return newChunk, newRow
}

// --- Components ---

// AddComponent adds component T to e with the given value. If e
// already carries T, the reference policy is overwrite-and-bump
// (spec.md §13 Open Question resolution): the existing value is
// overwritten in place and the chunk's version still bumps, with no
// chunk move.
func AddComponent[T any](w *World, e Entity, value T) (*T, error) {
	w.guardReentrant()
	if !w.IsValid(e) {
		return nil, newErr(EntityNotFound, "")
	}
	id, err := ComponentID[T](w.schema)
	if err != nil {
		return nil, err
	}
	s := &w.slots[e.ID]
	old := s.chunk
	if old.definition.Components.Contains(id) {
		ptr := Component[T](old, id, s.row)
		*ptr = value
		old.version++
		w.fireData(e, ComponentType, id, Written)
		return ptr, nil
	}
	newDef := old.definition.WithComponent(id)
	newChunk, newRow := w.moveRow(e, old, s.row, newDef)
	ptr := Component[T](newChunk, id, newRow)
	*ptr = value
	w.fireData(e, ComponentType, id, Added)
	return ptr, nil
}

// RemoveComponent removes component T from e, moving it to the chunk
// for the resulting Definition. ComponentMissing if e does not carry T.
func RemoveComponent[T any](w *World, e Entity) error {
	w.guardReentrant()
	if !w.IsValid(e) {
		return newErr(EntityNotFound, "")
	}
	id, err := ComponentID[T](w.schema)
	if err != nil {
		return err
	}
	s := &w.slots[e.ID]
	old := s.chunk
	if !old.definition.Components.Contains(id) {
		return newErr(ComponentMissing, "")
	}
	newDef := old.definition.WithoutComponent(id)
	w.moveRow(e, old, s.row, newDef)
	w.fireData(e, ComponentType, id, Removed)
	return nil
}

// GetComponent returns a mutable reference to e's component T, valid
// until e's next composition change or destruction (spec.md §6).
func GetComponent[T any](w *World, e Entity) (*T, error) {
	if !w.IsValid(e) {
		return nil, newErr(EntityNotFound, "")
	}
	id, err := ComponentID[T](w.schema)
	if err != nil {
		return nil, err
	}
	s := &w.slots[e.ID]
	if !s.chunk.definition.Components.Contains(id) {
		return nil, newErr(ComponentMissing, "")
	}
	return Component[T](s.chunk, id, s.row), nil
}

// HasComponent reports whether e currently carries component T.
func HasComponent[T any](w *World, e Entity) (bool, error) {
	if !w.IsValid(e) {
		return false, newErr(EntityNotFound, "")
	}
	id, err := ComponentID[T](w.schema)
	if err != nil {
		return false, err
	}
	return w.slots[e.ID].chunk.definition.Components.Contains(id), nil
}

// --- Tags ---

// AddTag adds tag T to e. Idempotent: adding an already-present tag is
// a no-op, matching the overwrite-and-bump policy's spirit for a
// zero-sized type (there is nothing to overwrite).
func AddTag[T any](w *World, e Entity) error {
	w.guardReentrant()
	if !w.IsValid(e) {
		return newErr(EntityNotFound, "")
	}
	id, err := TagID[T](w.schema)
	if err != nil {
		return err
	}
	s := &w.slots[e.ID]
	old := s.chunk
	if old.definition.Tags.Contains(id) {
		return nil
	}
	newDef := old.definition.WithTag(id)
	w.moveRow(e, old, s.row, newDef)
	return nil
}

// RemoveTag removes tag T from e. Idempotent if not present.
func RemoveTag[T any](w *World, e Entity) error {
	w.guardReentrant()
	if !w.IsValid(e) {
		return newErr(EntityNotFound, "")
	}
	id, err := TagID[T](w.schema)
	if err != nil {
		return err
	}
	s := &w.slots[e.ID]
	old := s.chunk
	if !old.definition.Tags.Contains(id) {
		return nil
	}
	newDef := old.definition.WithoutTag(id)
	w.moveRow(e, old, s.row, newDef)
	return nil
}

// HasTag reports whether e currently carries tag T.
func HasTag[T any](w *World, e Entity) (bool, error) {
	if !w.IsValid(e) {
		return false, newErr(EntityNotFound, "")
	}
	id, err := TagID[T](w.schema)
	if err != nil {
		return false, err
	}
	return w.slots[e.ID].chunk.definition.Tags.Contains(id), nil
}

// --- Arrays ---

// CreateArray gives e a dynamic array of element type T with length n,
// moving it to the chunk for the resulting Definition (or resizing in
// place, overwrite-and-bump, if e already carries this array type).
func CreateArray[T any](w *World, e Entity, n int) ([]T, error) {
	w.guardReentrant()
	if !w.IsValid(e) {
		return nil, newErr(EntityNotFound, "")
	}
	id, err := ArrayID[T](w.schema)
	if err != nil {
		return nil, err
	}
	s := &w.slots[e.ID]
	old := s.chunk
	if old.definition.Arrays.Contains(id) {
		old.resizeArray(id, s.row, n)
		w.fireData(e, ArrayType, id, Written)
		return Array[T](old, id, s.row), nil
	}
	newDef := old.definition.WithArray(id)
	newChunk, newRow := w.moveRow(e, old, s.row, newDef)
	newChunk.resizeArray(id, newRow, n)
	w.fireData(e, ArrayType, id, Added)
	return Array[T](newChunk, id, newRow), nil
}

// ResizeArray changes the length of e's array T to n, preserving the
// retained prefix byte-for-byte (spec.md scenario 5).
func ResizeArray[T any](w *World, e Entity, n int) error {
	w.guardReentrant()
	if !w.IsValid(e) {
		return newErr(EntityNotFound, "")
	}
	id, err := ArrayID[T](w.schema)
	if err != nil {
		return err
	}
	s := &w.slots[e.ID]
	if !s.chunk.definition.Arrays.Contains(id) {
		return newErr(ArrayMissing, "")
	}
	s.chunk.resizeArray(id, s.row, n)
	w.fireData(e, ArrayType, id, Written)
	return nil
}

// DestroyArray removes e's array T entirely, moving it to the chunk
// for the resulting Definition.
func DestroyArray[T any](w *World, e Entity) error {
	w.guardReentrant()
	if !w.IsValid(e) {
		return newErr(EntityNotFound, "")
	}
	id, err := ArrayID[T](w.schema)
	if err != nil {
		return err
	}
	s := &w.slots[e.ID]
	old := s.chunk
	if !old.definition.Arrays.Contains(id) {
		return newErr(ArrayMissing, "")
	}
	newDef := old.definition.WithoutArray(id)
	w.moveRow(e, old, s.row, newDef)
	w.fireData(e, ArrayType, id, Removed)
	return nil
}

// GetArray returns e's current array T, or ArrayMissing if absent.
func GetArray[T any](w *World, e Entity) ([]T, error) {
	if !w.IsValid(e) {
		return nil, newErr(EntityNotFound, "")
	}
	id, err := ArrayID[T](w.schema)
	if err != nil {
		return nil, err
	}
	s := &w.slots[e.ID]
	if !s.chunk.definition.Arrays.Contains(id) {
		return nil, newErr(ArrayMissing, "")
	}
	return Array[T](s.chunk, id, s.row), nil
}

// --- Hierarchy & references ---

// SetParent sets child's parent, rejecting the change if it would
// create a cycle in the ancestor chain. Passing the zero Entity clears
// the parent.
func (w *World) SetParent(child, parent Entity) error {
	w.guardReentrant()
	if !w.IsValid(child) {
		return newErr(EntityNotFound, "child")
	}
	if parent.ID != 0 {
		if !w.IsValid(parent) {
			return newErr(EntityNotFound, "parent")
		}
		for anc := parent; anc.ID != 0; anc = w.slots[anc.ID].parent {
			if anc.ID == child.ID {
				return newErr(CycleRejected, "")
			}
		}
	}
	cs := &w.slots[child.ID]
	oldParent := cs.parent
	cs.parent = parent
	w.fireParent(child, oldParent, parent)
	return nil
}

// GetParent returns child's parent and whether that parent is
// currently a live entity (a stale/destroyed parent is reported as
// invalid without being cleared — references are weak, spec.md §3).
func (w *World) GetParent(child Entity) (Entity, bool) {
	if !w.IsValid(child) {
		return Entity{}, false
	}
	p := w.slots[child.ID].parent
	if p.ID == 0 {
		return Entity{}, false
	}
	return p, w.IsValid(p)
}

// AddReference appends target to source's reference list and returns
// a dense, 1-based handle stable for the slot's lifetime.
func (w *World) AddReference(source, target Entity) (int, error) {
	w.guardReentrant()
	if !w.IsValid(source) {
		return 0, newErr(EntityNotFound, "source")
	}
	s := &w.slots[source.ID]
	s.references = append(s.references, target)
	return len(s.references), nil
}

// GetReference resolves handle against source's reference list. The
// returned entity may no longer be valid; callers must check IsValid
// themselves (weak reference semantics, spec.md §3).
func (w *World) GetReference(source Entity, handle int) (Entity, error) {
	if !w.IsValid(source) {
		return Entity{}, newErr(EntityNotFound, "source")
	}
	s := &w.slots[source.ID]
	if handle < 1 || handle > len(s.references) {
		return Entity{}, newErr(IndexOutOfRange, "")
	}
	return s.references[handle-1], nil
}
