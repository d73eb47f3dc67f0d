package registry

import (
	"reflect"
	"sync"
	"testing"
)

func collect(r *Registry[func() string]) []string {
	var out []string
	r.Each(func(fn func() string) {
		out = append(out, fn())
	})
	return out
}

func named(name string) func() string {
	return func() string { return name }
}

// TestRegisterOrder tests that dispatch follows insertion order
func TestRegisterOrder(t *testing.T) {
	t.Parallel()

	var r Registry[func() string]
	r.Register(named("a"))
	r.Register(named("b"))
	r.Register(named("c"))

	got := collect(&r)
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("dispatch order = %v, want %v", got, want)
	}
}

// TestUnregisterPreservesOrder tests that removing a middle entry keeps the rest in order
func TestUnregisterPreservesOrder(t *testing.T) {
	t.Parallel()

	var r Registry[func() string]
	r.Register(named("a"))
	removeB := r.Register(named("b"))
	r.Register(named("c"))

	removeB()

	got := collect(&r)
	want := []string{"a", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("after unregister = %v, want %v", got, want)
	}
}

// TestUnregisterIdempotent tests that a second call does not remove a later registration at the same index
func TestUnregisterIdempotent(t *testing.T) {
	t.Parallel()

	var r Registry[func() string]
	r.Register(named("a"))
	removeB := r.Register(named("b"))

	removeB()
	r.Register(named("late"))
	removeB()

	got := collect(&r)
	want := []string{"a", "late"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("after double unregister = %v, want %v", got, want)
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}

// TestSameCallbackRegisteredTwice tests that each registration is removed independently
func TestSameCallbackRegisteredTwice(t *testing.T) {
	t.Parallel()

	var r Registry[func() string]
	fn := named("x")
	first := r.Register(fn)
	r.Register(fn)

	first()

	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

// TestMutationDuringDispatch tests that a dispatch pass sees a stable snapshot
func TestMutationDuringDispatch(t *testing.T) {
	t.Parallel()

	var r Registry[func() string]
	var removeSelf func()
	removeSelf = r.Register(func() string {
		removeSelf()
		r.Register(named("added"))
		return "self"
	})
	r.Register(named("b"))

	got := collect(&r)
	want := []string{"self", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("first pass = %v, want %v", got, want)
	}

	got = collect(&r)
	want = []string{"b", "added"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("second pass = %v, want %v", got, want)
	}
}

// TestConcurrentRegister tests that concurrent registration and removal leave a consistent list
func TestConcurrentRegister(t *testing.T) {
	t.Parallel()

	var r Registry[func() string]
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			remove := r.Register(named("tmp"))
			r.Snapshot()
			remove()
		}()
	}
	wg.Wait()

	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}
