package zaiko

import "unsafe"

// arrayColumn is the dynamic per-entity sequence storage for one array
// type within a chunk. Unlike the component row, array length varies
// per entity, so each row gets its own growable byte buffer rather than
// a fixed-stride slot.
type arrayColumn struct {
	elemSize uintptr
	rows     [][]byte // rows[i] holds entities[i]'s elements, len a multiple of elemSize
}

// len reports the current element count of row, 0 if the row has never
// been populated or was resized down to nothing.
func (c *arrayColumn) len(row int) int {
	if row >= len(c.rows) || len(c.rows[row]) == 0 {
		return 0
	}
	return len(c.rows[row]) / int(c.elemSize)
}

func (c *arrayColumn) ensureRow(row int) {
	for len(c.rows) <= row {
		c.rows = append(c.rows, nil)
	}
}

// Chunk is the column store for every live entity sharing one
// Definition. Component storage is a single interleaved byte row per
// entity (AoS, spec.md §4.3/§13): chunk.row[r*rowSize : (r+1)*rowSize]
// holds every component byte for row r, laid out per chunkOffsets.
type Chunk struct {
	definition Definition
	entities   []Entity
	row        []byte // len == len(entities) * rowSize
	rowSize    uintptr
	offsets    [maxTypesPerSet]int // per-chunk byte offset of each component id, -1 if absent
	arrays     [maxTypesPerSet]*arrayColumn
	version    uint32
}

func newChunk(schema *Schema, def Definition) *Chunk {
	offsets, rowSize := schema.chunkOffsets(def.Components)
	c := &Chunk{
		definition: def,
		offsets:    offsets,
		rowSize:    rowSize,
	}
	for id := 0; id < maxTypesPerSet; id++ {
		if def.Arrays.Contains(uint8(id)) {
			c.arrays[id] = &arrayColumn{elemSize: schema.ArraySize(uint8(id))}
		}
	}
	return c
}

// Len returns the number of live rows in the chunk.
func (c *Chunk) Len() int { return len(c.entities) }

// Definition returns the chunk's archetype identity.
func (c *Chunk) Definition() Definition { return c.definition }

// Version returns the chunk's structural-mutation counter.
func (c *Chunk) Version() uint32 { return c.version }

// EntityAt returns the entity occupying row r.
func (c *Chunk) EntityAt(r int) Entity { return c.entities[r] }

// addRow appends a new zeroed row for e and returns its index. Bumps version.
func (c *Chunk) addRow(e Entity) int {
	row := len(c.entities)
	c.entities = append(c.entities, e)
	c.row = append(c.row, make([]byte, c.rowSize)...)
	for id := 0; id < maxTypesPerSet; id++ {
		if c.arrays[id] != nil {
			c.arrays[id].ensureRow(row)
		}
	}
	c.version++
	return row
}

// removeRow implements the only supported removal: swap the last row
// into r (entity id, every component byte range, every array column),
// then shorten by one. Returns the entity that was moved into r (the
// zero Entity if r was already the last row). Bumps version.
func (c *Chunk) removeRow(r int) (moved Entity, didMove bool) {
	last := len(c.entities) - 1
	if r < 0 || r > last {
		return Entity{}, false
	}
	if r < last {
		moved = c.entities[last]
		didMove = true
		c.entities[r] = moved
		if c.rowSize > 0 {
			copy(c.row[uintptr(r)*c.rowSize:(uintptr(r)+1)*c.rowSize], c.row[uintptr(last)*c.rowSize:(uintptr(last)+1)*c.rowSize])
		}
		for id := 0; id < maxTypesPerSet; id++ {
			if a := c.arrays[id]; a != nil {
				if last < len(a.rows) {
					a.rows[r] = a.rows[last]
				}
			}
		}
	}
	c.entities = c.entities[:last]
	c.row = c.row[:uintptr(last)*c.rowSize]
	for id := 0; id < maxTypesPerSet; id++ {
		if a := c.arrays[id]; a != nil && last < len(a.rows) {
			a.rows = a.rows[:last]
		}
	}
	c.version++
	return moved, didMove
}

// componentPtr returns an unsafe pointer to component id's bytes at row r,
// or nil if the chunk does not carry that component.
func (c *Chunk) componentPtr(row int, id uint8) unsafe.Pointer {
	off := c.offsets[id]
	if off < 0 {
		return nil
	}
	if len(c.row) == 0 {
		return nil
	}
	return unsafe.Pointer(&c.row[uintptr(row)*c.rowSize+uintptr(off)])
}

// Component returns a mutable reference to component T at row, using
// the chunk's precomputed offset. Writing through the returned pointer
// is an in-place data write and does not bump version (spec.md §9
// open-question resolution: structural changes bump, pure writes
// don't). Panics if the chunk does not carry T — callers resolve the
// component id via the Schema before calling, same as the teacher's
// unchecked pointer arithmetic in api.go/operations.go.
func Component[T any](c *Chunk, id uint8, row int) *T {
	p := c.componentPtr(row, id)
	if p == nil {
		panic("zaiko: chunk does not carry this component")
	}
	return (*T)(p)
}

// Array returns the dynamic slice of T stored for array type id at row.
func Array[T any](c *Chunk, id uint8, row int) []T {
	a := c.arrays[id]
	if a == nil {
		return nil
	}
	n := a.len(row)
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&a.rows[row][0])), n)
}

// resizeArray changes the element count of array id at row to n,
// zero-extending or truncating (truncation preserves the retained
// prefix byte-for-byte, per spec.md scenario 5). Bumps version.
func (c *Chunk) resizeArray(id uint8, row int, n int) {
	a := c.arrays[id]
	if a == nil {
		return
	}
	a.ensureRow(row)
	newLen := n * int(a.elemSize)
	cur := a.rows[row]
	if newLen <= len(cur) {
		a.rows[row] = cur[:newLen]
	} else {
		grown := make([]byte, newLen)
		copy(grown, cur)
		a.rows[row] = grown
	}
	c.version++
}

// memCopyRow copies the component bytes for the intersection of srcOffsets
// and dst's own offsets, row-for-row, used when moving an entity between
// chunks (add/remove component or tag). Only components present in both
// chunks are copied; newly gained components are left zeroed, dropped
// components are simply not carried over.
func memCopyRow(dst *Chunk, dstRow int, src *Chunk, srcRow int, schema *Schema) {
	for id := 0; id < maxTypesPerSet; id++ {
		so := src.offsets[id]
		do := dst.offsets[id]
		if so < 0 || do < 0 {
			continue
		}
		size := schema.compLayouts[id].size
		if size == 0 {
			continue
		}
		srcBytes := src.row[uintptr(srcRow)*src.rowSize+uintptr(so) : uintptr(srcRow)*src.rowSize+uintptr(so)+size]
		dstBytes := dst.row[uintptr(dstRow)*dst.rowSize+uintptr(do) : uintptr(dstRow)*dst.rowSize+uintptr(do)+size]
		copy(dstBytes, srcBytes)
	}
}

// moveArrays carries over every array column present in both the old
// and new chunk's Definition for one row transplant.
func moveArrays(dst *Chunk, dstRow int, src *Chunk, srcRow int) {
	for id := 0; id < maxTypesPerSet; id++ {
		sa := src.arrays[id]
		da := dst.arrays[id]
		if sa == nil || da == nil {
			continue
		}
		da.ensureRow(dstRow)
		if srcRow < len(sa.rows) {
			da.rows[dstRow] = sa.rows[srcRow]
		}
	}
}
