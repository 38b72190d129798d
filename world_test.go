package zaiko

import "testing"

type worldTestPos struct{ X, Y float64 }
type worldTestVel struct{ DX, DY float64 }
type worldTestDisabled struct{}

func newTestWorld() *World {
	return NewWorld(WorldOptions{})
}

func TestCreateDestroyEntityRecyclesIDAndBumpsGeneration(t *testing.T) {
	w := newTestWorld()
	e1 := w.CreateEntity()
	if !w.IsValid(e1) {
		t.Fatalf("expected freshly created entity to be valid")
	}
	if err := w.DestroyEntity(e1); err != nil {
		t.Fatalf("unexpected error destroying entity: %v", err)
	}
	if w.IsValid(e1) {
		t.Errorf("expected destroyed entity to be invalid")
	}

	e2 := w.CreateEntity()
	if e2.ID != e1.ID {
		t.Fatalf("expected id %d to be recycled, got %d", e1.ID, e2.ID)
	}
	if e2.Generation == e1.Generation {
		t.Errorf("expected generation to advance on recycle, both are %d", e1.Generation)
	}
	if w.IsValid(e1) {
		t.Errorf("expected the stale handle e1 to remain invalid after id recycling (P6)")
	}
}

func TestDestroyEntityUnknownReturnsEntityNotFound(t *testing.T) {
	w := newTestWorld()
	bogus := Entity{ID: 99, Generation: 1}
	if err := w.DestroyEntity(bogus); err == nil {
		t.Fatalf("expected EntityNotFound for an unknown entity")
	} else if k, ok := ErrorKind(err); !ok || k != EntityNotFound {
		t.Errorf("expected EntityNotFound, got %v", err)
	}
}

func TestAddComponentMovesToNewChunkAndPreservesExisting(t *testing.T) {
	w := newTestWorld()
	RegisterComponent[worldTestPos](w.schema)
	RegisterComponent[worldTestVel](w.schema)

	e := w.CreateEntity()
	if _, err := AddComponent(w, e, worldTestPos{X: 1, Y: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := AddComponent(w, e, worldTestVel{DX: 3, DY: 4}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pos, err := GetComponent[worldTestPos](w, e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *pos != (worldTestPos{X: 1, Y: 2}) {
		t.Errorf("expected Position preserved across the move to the two-component chunk, got %+v", *pos)
	}
	vel, err := GetComponent[worldTestVel](w, e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *vel != (worldTestVel{DX: 3, DY: 4}) {
		t.Errorf("expected Velocity set, got %+v", *vel)
	}
}

func TestAddComponentOverwriteAndBumpPolicy(t *testing.T) {
	w := newTestWorld()
	RegisterComponent[worldTestPos](w.schema)
	e := w.CreateEntity()
	AddComponent(w, e, worldTestPos{X: 1, Y: 1})
	before, _ := GetComponent[worldTestPos](w, e)
	chunkBefore := w.slots[e.ID].chunk

	AddComponent(w, e, worldTestPos{X: 9, Y: 9})
	after, err := GetComponent[worldTestPos](w, e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *after != (worldTestPos{X: 9, Y: 9}) {
		t.Errorf("expected second AddComponent to overwrite the value, got %+v", *after)
	}
	if w.slots[e.ID].chunk != chunkBefore {
		t.Errorf("expected re-adding the same component type not to move the entity to a new chunk")
	}
	_ = before
}

func TestRemoveComponentMissingReturnsComponentMissing(t *testing.T) {
	w := newTestWorld()
	RegisterComponent[worldTestPos](w.schema)
	e := w.CreateEntity()
	if err := RemoveComponent[worldTestPos](w, e); err == nil {
		t.Fatalf("expected ComponentMissing")
	} else if k, ok := ErrorKind(err); !ok || k != ComponentMissing {
		t.Errorf("expected ComponentMissing, got %v", err)
	}
}

func TestAddRemoveTagIsIdempotent(t *testing.T) {
	w := newTestWorld()
	RegisterTag[worldTestDisabled](w.schema)
	e := w.CreateEntity()
	if err := AddTag[worldTestDisabled](w, e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := AddTag[worldTestDisabled](w, e); err != nil {
		t.Fatalf("expected adding an already-present tag to be a no-op, got %v", err)
	}
	has, _ := HasTag[worldTestDisabled](w, e)
	if !has {
		t.Errorf("expected tag present")
	}
	if err := RemoveTag[worldTestDisabled](w, e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := RemoveTag[worldTestDisabled](w, e); err != nil {
		t.Fatalf("expected removing an absent tag to be a no-op, got %v", err)
	}
}

func TestCreateResizeDestroyArray(t *testing.T) {
	w := newTestWorld()
	RegisterArray[int64](w.schema)
	e := w.CreateEntity()

	arr, err := CreateArray[int64](w, e, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	arr[0], arr[1], arr[2] = 1, 2, 3

	if err := ResizeArray[int64](w, e, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	grown, err := GetArray[int64](w, e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(grown) != 5 || grown[0] != 1 || grown[1] != 2 || grown[2] != 3 {
		t.Fatalf("expected resize to preserve the prefix, got %v", grown)
	}

	if err := DestroyArray[int64](w, e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := GetArray[int64](w, e); err == nil {
		t.Fatalf("expected ArrayMissing after DestroyArray")
	} else if k, ok := ErrorKind(err); !ok || k != ArrayMissing {
		t.Errorf("expected ArrayMissing, got %v", err)
	}
}

func TestSetParentRejectsCycle(t *testing.T) {
	w := newTestWorld()
	grandparent := w.CreateEntity()
	parent := w.CreateEntity()
	child := w.CreateEntity()

	if err := w.SetParent(parent, grandparent); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.SetParent(child, parent); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.SetParent(grandparent, child); err == nil {
		t.Fatalf("expected CycleRejected when closing the ancestor loop")
	} else if k, ok := ErrorKind(err); !ok || k != CycleRejected {
		t.Errorf("expected CycleRejected, got %v", err)
	}
}

func TestGetParentIsWeakAndDoesNotClearOnDestroy(t *testing.T) {
	w := newTestWorld()
	parent := w.CreateEntity()
	child := w.CreateEntity()
	w.SetParent(child, parent)

	w.DestroyEntity(parent)

	got, valid := w.GetParent(child)
	if valid {
		t.Errorf("expected destroyed parent to be reported invalid")
	}
	if got != parent {
		t.Errorf("expected the weak reference to still name the original parent handle, got %v want %v", got, parent)
	}
}

func TestAddReferenceAndGetReference(t *testing.T) {
	w := newTestWorld()
	source := w.CreateEntity()
	target := w.CreateEntity()

	handle, err := w.AddReference(source, target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if handle != 1 {
		t.Errorf("expected first handle to be 1, got %d", handle)
	}
	got, err := w.GetReference(source, handle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != target {
		t.Errorf("expected resolved reference to equal target, got %v", got)
	}

	if _, err := w.GetReference(source, handle+1); err == nil {
		t.Fatalf("expected IndexOutOfRange for an unissued handle")
	} else if k, ok := ErrorKind(err); !ok || k != IndexOutOfRange {
		t.Errorf("expected IndexOutOfRange, got %v", err)
	}
}

func TestListenersFireInRegistrationOrderAfterMutation(t *testing.T) {
	w := newTestWorld()
	var order []string
	w.OnEntityCreatedOrDestroyed(func(w *World, e Entity, destroyed bool) {
		order = append(order, "first")
		if !w.IsValid(e) && !destroyed {
			t.Errorf("expected the entity to already be valid by the time the listener fires")
		}
	})
	w.OnEntityCreatedOrDestroyed(func(w *World, e Entity, destroyed bool) {
		order = append(order, "second")
	})
	w.CreateEntity()
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("expected listeners to fire in registration order, got %v", order)
	}
}

func TestReentrantMutationFromListenerPanics(t *testing.T) {
	w := newTestWorld()
	w.OnEntityCreatedOrDestroyed(func(w *World, e Entity, destroyed bool) {
		if !destroyed {
			w.CreateEntity()
		}
	})
	defer func() {
		if recover() == nil {
			t.Errorf("expected re-entrant world mutation from a listener to panic")
		}
	}()
	w.CreateEntity()
}
