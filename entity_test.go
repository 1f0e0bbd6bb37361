package spatial

import (
	"slices"
	"testing"
)

func TestEntityArenaReuse(t *testing.T) {
	var arena entityArena

	a := arena.spawn()
	b := arena.spawn()
	if a.ID != 1 || b.ID != 2 {
		t.Fatalf("expected sequential IDs, got %v and %v", a, b)
	}

	if !arena.release(a) {
		t.Fatal("release of a live entity failed")
	}
	if arena.release(a) {
		t.Error("second release of the same handle succeeded")
	}
	if arena.alive(a) {
		t.Error("released handle still alive")
	}

	c := arena.spawn()
	if c.ID != a.ID {
		t.Errorf("expected slot %d to be reused, got %v", a.ID, c)
	}
	if c.Generation != a.Generation+1 {
		t.Errorf("expected generation %d, got %d", a.Generation+1, c.Generation)
	}
	if arena.alive(a) {
		t.Error("stale handle resolved to the reused slot")
	}
	if arena.live != 2 {
		t.Errorf("expected 2 live entities, got %d", arena.live)
	}
}

func TestEntityArenaAll(t *testing.T) {
	var arena entityArena
	var spawned []Entity
	for range 5 {
		spawned = append(spawned, arena.spawn())
	}
	arena.release(spawned[1])
	arena.release(spawned[3])

	got := slices.Collect(arena.all())
	want := []Entity{spawned[0], spawned[2], spawned[4]}
	if !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestEntityHandles(t *testing.T) {
	tests := []struct {
		name   string
		entity Entity
		isNil  bool
		str    string
	}{
		{"nil", NilEntity, true, "0:0"},
		{"first", Entity{ID: 1}, false, "1:0"},
		{"reused", Entity{ID: 7, Generation: 3}, false, "7:3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.entity.IsNil() != tt.isNil {
				t.Errorf("IsNil() = %v, want %v", tt.entity.IsNil(), tt.isNil)
			}
			if tt.entity.String() != tt.str {
				t.Errorf("String() = %q, want %q", tt.entity.String(), tt.str)
			}
		})
	}

	var arena entityArena
	if arena.alive(NilEntity) {
		t.Error("nil entity reported alive")
	}
	if arena.alive(Entity{ID: 42}) {
		t.Error("unknown entity reported alive")
	}
}
