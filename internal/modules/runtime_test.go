package modules

import (
	"errors"
	"testing"

	"github.com/specialistvlad/bemgo/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRuntime returns a runtime driven by a loop the test drains by hand.
func newTestRuntime(t *testing.T, opts ...Option) (*Runtime, *scheduler.Loop) {
	t.Helper()
	loop := scheduler.New()
	return New(loop, opts...), loop
}

// provideValue returns a factory that provides v with no dependencies used.
func provideValue(v any) Factory {
	return func(provide Provide, _ []any) {
		provide(v, nil)
	}
}

func failOnError(t *testing.T) func(error) {
	t.Helper()
	return func(err error) {
		t.Errorf("unexpected resolution error: %v", err)
	}
}

type greeter struct{}

func (greeter) Hello() string { return "hi" }

func TestRequire_Greeter(t *testing.T) {
	rt, loop := newTestRuntime(t)
	rt.Define("greeter", nil, provideValue(greeter{}))

	calls := 0
	rt.RequireOne("greeter", func(g any) {
		calls++
		assert.Equal(t, "hi", g.(greeter).Hello())
	}, failOnError(t))

	assert.Zero(t, calls, "require must not resolve synchronously")
	require.NoError(t, loop.RunPending())
	assert.Equal(t, 1, calls)
}

func TestRequire_MemoizesFactory(t *testing.T) {
	rt, loop := newTestRuntime(t)
	factoryCalls := 0
	rt.Define("m", nil, func(provide Provide, _ []any) {
		factoryCalls++
		provide(&struct{ n int }{n: 1}, nil)
	})

	var got []any
	rt.Require([]string{"m", "m"}, func(exports []any) { got = exports }, failOnError(t))
	rt.Require([]string{"m"}, func(exports []any) { got = append(got, exports...) }, failOnError(t))
	require.NoError(t, loop.RunPending())

	assert.Equal(t, 1, factoryCalls)
	require.Len(t, got, 3)
	assert.Same(t, got[0], got[1])
	assert.Same(t, got[0], got[2])
	assert.Equal(t, StateResolved, rt.State("m"))
}

func TestRequire_PassesDependencyExports(t *testing.T) {
	rt, loop := newTestRuntime(t)
	rt.Define("a", nil, provideValue("A"))
	var fbDeps []any
	rt.Define("b", []string{"a"}, func(provide Provide, deps []any) {
		fbDeps = deps
		provide("B", nil)
	})

	var got any
	rt.RequireOne("b", func(e any) { got = e }, failOnError(t))
	require.NoError(t, loop.RunPending())

	assert.Equal(t, []any{"A"}, fbDeps)
	assert.Equal(t, "B", got)
}

func TestRequire_ExportsFollowDeclaredOrder(t *testing.T) {
	rt, loop := newTestRuntime(t)

	// "slow" provides on a later tick, "fast" provides immediately.
	rt.Define("slow", nil, func(provide Provide, _ []any) {
		loop.Schedule(func() error {
			provide("slow", nil)
			return nil
		})
	})
	rt.Define("fast", nil, provideValue("fast"))
	var deps []any
	rt.Define("top", []string{"slow", "fast"}, func(provide Provide, d []any) {
		deps = d
		provide(nil, nil)
	})

	rt.RequireOne("top", func(any) {}, failOnError(t))
	require.NoError(t, loop.RunPending())
	assert.Equal(t, []any{"slow", "fast"}, deps)
}

func TestRequire_DeferredDefine(t *testing.T) {
	rt, loop := newTestRuntime(t)

	var got any
	rt.RequireOne("z", func(e any) { got = e }, failOnError(t))
	rt.Define("z", nil, provideValue("zed"))

	require.NoError(t, loop.RunPending())
	assert.Equal(t, "zed", got)
}

func TestRequire_CircularDependency(t *testing.T) {
	rt, loop := newTestRuntime(t)
	rt.Define("x", []string{"y"}, provideValue("x"))
	rt.Define("y", []string{"x"}, provideValue("y"))

	succeeded := false
	var gotErr error
	rt.Require([]string{"x"}, func([]any) { succeeded = true }, func(err error) { gotErr = err })
	require.NoError(t, loop.RunPending())

	assert.False(t, succeeded)
	require.Error(t, gotErr)
	assert.ErrorIs(t, gotErr, ErrCircularDependency)
	assert.Contains(t, gotErr.Error(), "x -> y -> x")

	var resolveErr *ResolveError
	require.ErrorAs(t, gotErr, &resolveErr)
	assert.Equal(t, []string{"x", "y", "x"}, resolveErr.Path)

	// Failure leaves both declarations retryable rather than stuck.
	assert.Equal(t, StateNotResolved, rt.State("x"))
	assert.Equal(t, StateNotResolved, rt.State("y"))
}

func TestRequire_CycleWithoutTrackingStalls(t *testing.T) {
	rt, loop := newTestRuntime(t, WithCircularDependencyTracking(false))
	rt.Define("x", []string{"y"}, provideValue("x"))
	rt.Define("y", []string{"x"}, provideValue("y"))

	called := false
	rt.Require([]string{"x"}, func([]any) { called = true }, func(error) { called = true })
	require.NoError(t, loop.RunPending())

	assert.False(t, called)
	assert.Equal(t, StateInResolving, rt.State("x"))
	assert.Equal(t, StateInResolving, rt.State("y"))
}

func TestRequire_DiamondDependencyIsNotACycle(t *testing.T) {
	rt, loop := newTestRuntime(t)
	var pendingProvide Provide
	dCalls := 0
	rt.Define("d", nil, func(provide Provide, _ []any) {
		dCalls++
		pendingProvide = provide
	})
	rt.Define("b", []string{"d"}, provideValue("b"))
	rt.Define("c", []string{"d"}, provideValue("c"))
	rt.Define("a", []string{"b", "c"}, func(provide Provide, deps []any) {
		provide(deps, nil)
	})

	var got any
	rt.RequireOne("a", func(e any) { got = e }, failOnError(t))
	require.NoError(t, loop.RunPending())
	require.NotNil(t, pendingProvide)
	assert.Nil(t, got)
	assert.Equal(t, StateInResolving, rt.State("d"))

	pendingProvide("d", nil)
	assert.Equal(t, 1, dCalls)
	assert.Equal(t, []any{"b", "c"}, got)
}

func TestRequire_ModuleNotFound(t *testing.T) {
	rt, loop := newTestRuntime(t)
	rt.Define("a", []string{"missing"}, provideValue("a"))

	var topErr, depErr error
	rt.RequireOne("nope", func(any) { t.Error("unexpected success") }, func(err error) { topErr = err })
	rt.RequireOne("a", func(any) { t.Error("unexpected success") }, func(err error) { depErr = err })
	require.NoError(t, loop.RunPending())

	assert.ErrorIs(t, topErr, ErrModuleNotFound)
	assert.EqualError(t, topErr, `Required module "nope" can't be resolved`)
	assert.ErrorIs(t, depErr, ErrModuleNotFound)
	assert.EqualError(t, depErr, `Module "a": can't resolve dependence "missing"`)
}

func TestRequire_RetryAfterMissingModuleIsDefined(t *testing.T) {
	rt, loop := newTestRuntime(t)
	rt.Define("a", []string{"late"}, func(provide Provide, deps []any) {
		provide("a+"+deps[0].(string), nil)
	})

	var firstErr error
	rt.RequireOne("a", func(any) {}, func(err error) { firstErr = err })
	require.NoError(t, loop.RunPending())
	require.ErrorIs(t, firstErr, ErrModuleNotFound)
	assert.Equal(t, StateNotResolved, rt.State("a"))

	rt.Define("late", nil, provideValue("late"))
	var got any
	rt.RequireOne("a", func(e any) { got = e }, failOnError(t))
	require.NoError(t, loop.RunPending())
	assert.Equal(t, "a+late", got)
}

func TestRequire_FactoryError(t *testing.T) {
	rt, loop := newTestRuntime(t)
	boom := errors.New("boom")
	rt.Define("bad", nil, func(provide Provide, _ []any) { provide(nil, boom) })
	rt.Define("user", []string{"bad"}, provideValue("user"))

	var errs []error
	rt.RequireOne("user", func(any) {}, func(err error) { errs = append(errs, err) })
	rt.RequireOne("bad", func(any) {}, func(err error) { errs = append(errs, err) })
	require.NoError(t, loop.RunPending())

	require.Len(t, errs, 2)
	assert.ErrorIs(t, errs[0], boom)
	assert.ErrorIs(t, errs[1], boom)
	assert.Equal(t, StateNotResolved, rt.State("bad"))
	assert.Equal(t, StateNotResolved, rt.State("user"))
}

func TestRequire_ProvideTwice(t *testing.T) {
	rt, loop := newTestRuntime(t)
	rt.Define("twice", nil, func(provide Provide, _ []any) {
		provide("first", nil)
		provide("second", nil)
	})

	var got any
	var gotErr error
	rt.RequireOne("twice", func(e any) { got = e }, func(err error) { gotErr = err })
	require.NoError(t, loop.RunPending())

	assert.Equal(t, "first", got)
	assert.ErrorIs(t, gotErr, ErrDeclarationAlreadyProvided)
	assert.Equal(t, StateResolved, rt.State("twice"))

	// The committed resolution is untouched.
	var again any
	rt.RequireOne("twice", func(e any) { again = e }, failOnError(t))
	require.NoError(t, loop.RunPending())
	assert.Equal(t, "first", again)
}

func TestRequire_NestedProvideTwiceSurfacesFromScheduler(t *testing.T) {
	rt, loop := newTestRuntime(t)
	rt.Define("d", nil, func(provide Provide, _ []any) {
		provide("first", nil)
		provide("second", nil)
	})
	rt.Define("x", []string{"d"}, func(provide Provide, deps []any) {
		provide("x+"+deps[0].(string), nil)
	})

	var got any
	var gotErr error
	rt.RequireOne("x", func(e any) { got = e }, func(err error) { gotErr = err })
	err := loop.RunPending()

	assert.Equal(t, "x+first", got)
	assert.NoError(t, gotErr)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeclarationAlreadyProvided)
	assert.Contains(t, err.Error(), `"d"`)
	assert.Equal(t, StateResolved, rt.State("d"))
	assert.Equal(t, StateResolved, rt.State("x"))

	// The committed resolution is untouched.
	var again any
	rt.RequireOne("x", func(e any) { again = e }, failOnError(t))
	require.NoError(t, loop.RunPending())
	assert.Equal(t, "x+first", again)
}

func TestRequire_DependentsNotifiedInSubscriptionOrder(t *testing.T) {
	rt, loop := newTestRuntime(t)
	var pendingProvide Provide
	rt.Define("slow", nil, func(provide Provide, _ []any) {
		pendingProvide = provide
	})

	var order []int
	for i := 1; i <= 3; i++ {
		rt.RequireOne("slow", func(e any) {
			assert.Equal(t, "done", e)
			order = append(order, i)
		}, failOnError(t))
	}
	require.NoError(t, loop.RunPending())
	require.NotNil(t, pendingProvide)
	assert.Empty(t, order)

	pendingProvide("done", nil)
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestRequire_MultipleDeclarationsChain(t *testing.T) {
	rt, loop := newTestRuntime(t)
	rt.Define("m", nil, provideValue("v1"))
	var f2Deps []any
	rt.Define("m", nil, func(provide Provide, deps []any) {
		f2Deps = deps
		provide(deps[len(deps)-1].(string)+"+v2", nil)
	})

	var got any
	rt.RequireOne("m", func(e any) { got = e }, failOnError(t))
	require.NoError(t, loop.RunPending())

	assert.Equal(t, []any{"v1"}, f2Deps)
	assert.Equal(t, "v1+v2", got)
}

func TestRequire_MultipleDeclarationsChainAfterOwnDeps(t *testing.T) {
	rt, loop := newTestRuntime(t)
	rt.Define("dep", nil, provideValue("dep"))
	rt.Define("m", nil, provideValue("v1"))
	var f2Deps []any
	rt.Define("m", []string{"dep"}, func(provide Provide, deps []any) {
		f2Deps = deps
		provide("v2", nil)
	})

	rt.RequireOne("m", func(any) {}, failOnError(t))
	require.NoError(t, loop.RunPending())
	assert.Equal(t, []any{"dep", "v1"}, f2Deps)
}

func TestRequire_MultipleDeclarationsDisallowed(t *testing.T) {
	rt, loop := newTestRuntime(t)
	rt.SetOptions(WithMultipleDeclarations(false))
	rt.Define("m", nil, provideValue("v1"))
	rt.Define("m", nil, provideValue("v2"))

	var gotErr error
	rt.RequireOne("m", func(any) { t.Error("unexpected success") }, func(err error) { gotErr = err })
	require.NoError(t, loop.RunPending())

	assert.ErrorIs(t, gotErr, ErrMultipleDeclarations)
	assert.EqualError(t, gotErr, `Multiple declarations of module "m" have been detected`)
}

func TestRequire_RequestsQueuedDuringWaveRunNextTick(t *testing.T) {
	rt, loop := newTestRuntime(t)
	rt.Define("a", nil, provideValue("a"))

	var order []string
	rt.RequireOne("a", func(any) {
		order = append(order, "outer")
		rt.RequireOne("a", func(any) { order = append(order, "inner") }, failOnError(t))
		assert.Equal(t, []string{"outer"}, order, "nested require must wait for the next wave")
	}, failOnError(t))
	rt.RequireOne("a", func(any) { order = append(order, "sibling") }, failOnError(t))

	require.NoError(t, loop.RunPending())
	assert.Equal(t, []string{"outer", "sibling", "inner"}, order)
}

func TestRequire_UnhandledErrorSurfacesFromScheduler(t *testing.T) {
	rt, loop := newTestRuntime(t)
	rt.RequireOne("ghost", func(any) {}, nil)

	err := loop.RunPending()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModuleNotFound)
}

func TestRequire_EmptyNames(t *testing.T) {
	rt, loop := newTestRuntime(t)
	var got []any
	called := false
	rt.Require(nil, func(e []any) { called = true; got = e }, failOnError(t))
	require.NoError(t, loop.RunPending())
	assert.True(t, called)
	assert.Empty(t, got)
}

func TestRequire_SiblingRequestsAreIsolated(t *testing.T) {
	rt, loop := newTestRuntime(t)
	rt.Define("ok", nil, provideValue("ok"))

	var okGot any
	var badErr error
	rt.RequireOne("missing", func(any) {}, func(err error) { badErr = err })
	rt.RequireOne("ok", func(e any) { okGot = e }, failOnError(t))
	require.NoError(t, loop.RunPending())

	assert.Error(t, badErr)
	assert.Equal(t, "ok", okGot)
}

func TestState_Lifecycle(t *testing.T) {
	rt, loop := newTestRuntime(t)
	assert.Equal(t, StateNotDefined, rt.State("a"))
	assert.False(t, rt.IsDefined("a"))

	var provideA Provide
	rt.Define("a", nil, func(provide Provide, _ []any) { provideA = provide })
	assert.True(t, rt.IsDefined("a"))
	assert.Equal(t, StateNotResolved, rt.State("a"))

	rt.RequireOne("a", func(any) {}, failOnError(t))
	require.NoError(t, loop.RunPending())
	assert.Equal(t, StateInResolving, rt.State("a"))

	provideA("done", nil)
	assert.Equal(t, StateResolved, rt.State("a"))
}

func TestStat_GroupsByState(t *testing.T) {
	rt, loop := newTestRuntime(t)
	rt.Define("a", nil, provideValue("a"))
	rt.Define("b", nil, func(Provide, []any) {})
	rt.Define("c", nil, provideValue("c"))

	rt.Require([]string{"a", "b"}, func([]any) {}, failOnError(t))
	require.NoError(t, loop.RunPending())

	stat := rt.Stat()
	assert.Equal(t, []string{"a"}, stat[StateResolved])
	assert.Equal(t, []string{"b"}, stat[StateInResolving])
	assert.Equal(t, []string{"c"}, stat[StateNotResolved])
}

func TestOptions_Merge(t *testing.T) {
	rt, _ := newTestRuntime(t)
	assert.Equal(t, DefaultOptions(), rt.Options())

	rt.SetOptions(WithCircularDependencyTracking(false))
	rt.SetOptions(WithMultipleDeclarations(false))
	assert.Equal(t, Options{}, rt.Options())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "NOT_DEFINED", StateNotDefined.String())
	assert.Equal(t, "NOT_RESOLVED", StateNotResolved.String())
	assert.Equal(t, "IN_RESOLVING", StateInResolving.String())
	assert.Equal(t, "RESOLVED", StateResolved.String())
	assert.Equal(t, "UNKNOWN", State(42).String())
}

func TestRuntimes_AreIndependent(t *testing.T) {
	rt1, _ := newTestRuntime(t)
	rt2, _ := newTestRuntime(t)
	rt1.Define("only-in-1", nil, provideValue(1))
	assert.True(t, rt1.IsDefined("only-in-1"))
	assert.False(t, rt2.IsDefined("only-in-1"))
}
