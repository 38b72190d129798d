// Profiling:
// go build ./cmd/profile/churn
// go tool pprof -http=":8000" -nodefraction=0.001 ./churn mem.pprof
package main

import (
	"github.com/edwinsyarief/zaiko"
	"github.com/pkg/profile"
)

type position struct {
	X, Y float64
}

type velocity struct {
	X, Y float64
}

func main() {
	rounds := 50
	iters := 2000
	numEntities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, iters, numEntities)
	p.Stop()
}

// run exercises the churn path the teacher's profile/entities/main.go
// targets for a single archetype (batch-create, query, drain), extended
// with an add-component chunk split every iteration so the profile also
// covers moveRow and Query's version-snapshot path under structural
// change (spec.md §4.5/§4.6).
func run(rounds, iters, numEntities int) {
	for range rounds {
		schema := zaiko.NewSchema()
		zaiko.RegisterComponent[position](schema)
		zaiko.RegisterComponent[velocity](schema)

		w := zaiko.NewWorld(zaiko.WorldOptions{Schema: schema, InitialCapacity: numEntities})
		batch, err := zaiko.NewBatch1[position](w)
		if err != nil {
			panic(err)
		}
		query, err := zaiko.NewQuery1[position](schema)
		if err != nil {
			panic(err)
		}

		for range iters {
			entities := batch.CreateEntities(numEntities)
			for i, e := range entities {
				if i%2 == 0 {
					_, _ = zaiko.AddComponent(w, e, velocity{X: 1, Y: 1})
				}
			}

			it := query.Iter(w)
			for it.Next() {
				pos := it.Get()
				pos.X += 1
				pos.Y += 1
			}
			it.Dispose()

			w.DestroyEntities(entities)
		}
	}
}
