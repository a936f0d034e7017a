package looseend

import "testing"

type fakeFetcher struct {
	postpone      []Action
	undo          []Action
	postponeIdx   int
	undoIdx       int
	finishedPostp bool
	finishedUndo  bool
}

func (f *fakeFetcher) FirstPostpone() (*Action, bool, error) {
	f.postponeIdx = 0
	return f.NextPostpone()
}

func (f *fakeFetcher) NextPostpone() (*Action, bool, error) {
	if f.postponeIdx >= len(f.postpone) {
		return nil, false, nil
	}
	a := f.postpone[f.postponeIdx]
	f.postponeIdx++
	return &a, true, nil
}

func (f *fakeFetcher) FinishPostpone() error {
	f.finishedPostp = true
	return nil
}

func (f *fakeFetcher) FirstUndo() (*Action, bool, error) {
	f.undoIdx = 0
	return f.NextUndo()
}

func (f *fakeFetcher) NextUndo() (*Action, bool, error) {
	if f.undoIdx >= len(f.undo) {
		return nil, false, nil
	}
	a := f.undo[f.undoIdx]
	f.undoIdx++
	return &a, true, nil
}

func (f *fakeFetcher) FinishUndo() error {
	f.finishedUndo = true
	return nil
}

func TestRunPostponeDrainsInOrder(t *testing.T) {
	var ran []ActionType
	d := NewDispatcher()
	d.Register(1, func(a Action) error { ran = append(ran, a.Type); return nil })
	d.Register(2, func(a Action) error { ran = append(ran, a.Type); return nil })

	f := &fakeFetcher{postpone: []Action{{Type: 1}, {Type: 2}, {Type: 1}}}
	n, err := RunPostpone(f, d)
	if err != nil {
		t.Fatalf("RunPostpone: %v", err)
	}
	if n != 3 {
		t.Fatalf("ran %d actions, want 3", n)
	}
	if !f.finishedPostp {
		t.Fatal("FinishPostpone was not called")
	}
	want := []ActionType{1, 2, 1}
	for i, w := range want {
		if ran[i] != w {
			t.Fatalf("ran[%d] = %d, want %d", i, ran[i], w)
		}
	}
}

func TestRunPostponeEmptyIsNoOpButStillFinishes(t *testing.T) {
	d := NewDispatcher()
	f := &fakeFetcher{}
	n, err := RunPostpone(f, d)
	if err != nil {
		t.Fatalf("RunPostpone: %v", err)
	}
	if n != 0 {
		t.Fatalf("ran %d actions, want 0", n)
	}
	if !f.finishedPostp {
		t.Fatal("FinishPostpone was not called on an empty drain")
	}
}

func TestDispatchUnregisteredActionFails(t *testing.T) {
	d := NewDispatcher()
	f := &fakeFetcher{undo: []Action{{Type: 99}}}
	if _, err := RunUndo(f, d); err == nil {
		t.Fatal("expected error for unregistered action type")
	}
}

func TestRunUndoUsesUndoFetchPair(t *testing.T) {
	d := NewDispatcher()
	d.Register(1, func(a Action) error { return nil })
	f := &fakeFetcher{undo: []Action{{Type: 1}}, postpone: []Action{{Type: 1}}}
	n, err := RunUndo(f, d)
	if err != nil {
		t.Fatalf("RunUndo: %v", err)
	}
	if n != 1 {
		t.Fatalf("ran %d actions, want 1", n)
	}
	if !f.finishedUndo || f.finishedPostp {
		t.Fatal("RunUndo must finish the undo side, not postpone")
	}
}
