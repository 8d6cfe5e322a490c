package modules

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/specialistvlad/bemgo/internal/scheduler"
)

func TestRuntimeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1357)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	// Property: a shared dependency's factory runs once no matter how many
	// requests and dependents reference it.
	properties.Property("factory runs once per declaration", prop.ForAll(
		func(requests int, dependents int) bool {
			loop := scheduler.New()
			rt := New(loop)

			calls := 0
			rt.Define("shared", nil, func(provide Provide, _ []any) {
				calls++
				provide(&calls, nil)
			})
			names := make([]string, 0, dependents)
			for i := range dependents {
				name := fmt.Sprintf("dep%d", i)
				names = append(names, name, "shared")
				rt.Define(name, []string{"shared"}, func(provide Provide, deps []any) {
					provide(deps[0], nil)
				})
			}

			var seen []any
			for range requests {
				rt.Require(names, func(exports []any) { seen = append(seen, exports...) }, func(error) {})
			}
			if err := loop.RunPending(); err != nil {
				return false
			}

			if calls != 1 || len(seen) != requests*len(names) {
				return false
			}
			for _, e := range seen {
				if e != seen[0] {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 10),
		gen.IntRange(1, 6),
	))

	// Property: exports reach the factory in declared order even when some
	// dependencies provide on a later tick.
	properties.Property("exports follow declared order", prop.ForAll(
		func(order []int) bool {
			loop := scheduler.New()
			rt := New(loop)

			for i := range 8 {
				rt.Define(fmt.Sprintf("m%d", i), nil, func(provide Provide, _ []any) {
					if i%2 == 1 {
						loop.Schedule(func() error {
							provide(i, nil)
							return nil
						})
						return
					}
					provide(i, nil)
				})
			}
			deps := make([]string, len(order))
			for i, idx := range order {
				deps[i] = fmt.Sprintf("m%d", idx)
			}

			var got []any
			rt.Define("top", deps, func(provide Provide, d []any) {
				got = d
				provide(nil, nil)
			})
			rt.RequireOne("top", func(any) {}, func(error) {})
			if err := loop.RunPending(); err != nil {
				return false
			}

			if len(got) != len(order) {
				return false
			}
			for i, idx := range order {
				if got[i] != idx {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(8, gen.IntRange(0, 7)),
	))

	properties.TestingRun(t)
}
