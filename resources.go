package zaiko

import "reflect"

// Resources is a type-indexed singleton store for host-level globals a
// World's external collaborators need without going through the
// component system (spec.md §6 "Entity facades"/"Programs" — e.g. a
// shared RNG or time source, attached once per World rather than per
// entity). Unlike the teacher's standalone, free-list-backed Resources
// (returning a reusable int handle so a caller can hold many resources
// of unrelated shape), zaiko resources are addressed purely by type and
// live on the World that owns them: setting a resource of a type that
// is already present overwrites it, the same overwrite-and-bump spirit
// AddComponent applies to components (SPEC_FULL.md §13), rather than
// the teacher's panic-on-duplicate-type contract.
type Resources struct {
	byType map[reflect.Type]any
}

// SetResource attaches res to w, overwriting any resource of the same
// type already present.
func SetResource[T any](w *World, res *T) {
	if res == nil {
		panic("zaiko: cannot set a nil resource")
	}
	if w.Resources.byType == nil {
		w.Resources.byType = make(map[reflect.Type]any, 4)
	}
	w.Resources.byType[reflect.TypeOf((*T)(nil))] = res
}

// Resource retrieves the resource of type T attached to w, if any.
func Resource[T any](w *World) (*T, bool) {
	v, ok := w.Resources.byType[reflect.TypeOf((*T)(nil))]
	if !ok {
		return nil, false
	}
	res, ok := v.(*T)
	return res, ok
}

// HasResource reports whether w currently carries a resource of type T.
func HasResource[T any](w *World) bool {
	_, ok := Resource[T](w)
	return ok
}

// RemoveResource detaches the resource of type T from w, if present.
func RemoveResource[T any](w *World) {
	if w.Resources.byType == nil {
		return
	}
	delete(w.Resources.byType, reflect.TypeOf((*T)(nil)))
}
