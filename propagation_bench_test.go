package spatial

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	nRoots  = 100
	nDepth  = 4
	nFanout = 4
)

func buildBenchHierarchy(b *testing.B) *storage {
	sto := newTestStorage()
	level, err := sto.NewEntities(nRoots, TransformComponent)
	if err != nil {
		b.Fatal(err)
	}
	for range nDepth {
		var next []Entity
		for _, parent := range level {
			children, err := sto.NewEntities(nFanout, TransformComponent)
			if err != nil {
				b.Fatal(err)
			}
			for _, child := range children {
				TransformComponent.GetFromEntity(sto, child).Position = mgl32.Vec3{1, 0, 0}
				if err := sto.SetParent(child, parent); err != nil {
					b.Fatal(err)
				}
			}
			next = append(next, children...)
		}
		level = next
	}
	return sto
}

func BenchmarkPropagate(b *testing.B) {
	b.StopTimer()
	sto := buildBenchHierarchy(b)
	p := newPropagator(slog.New(slog.NewTextHandler(io.Discard, nil)))
	b.StartTimer()

	for i := 0; i < b.N; i++ {
		p.Propagate(sto, uint64(i+1))
	}
}

func BenchmarkPropagateSkipped(b *testing.B) {
	b.StopTimer()
	sto := buildBenchHierarchy(b)
	p := newCapturingPropagator(&bytes.Buffer{})
	p.Propagate(sto, 1)
	b.StartTimer()

	for i := 0; i < b.N; i++ {
		p.Propagate(sto, 1)
	}
}

func BenchmarkToSector(b *testing.B) {
	m, _ := NewSectorMapper(DefaultSectorSize)
	pos := mgl64.Vec3{2.5e18, -1.3e18, 7.7e20}
	for i := 0; i < b.N; i++ {
		m.ToSector(pos)
	}
}
