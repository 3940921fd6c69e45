package repokit

import (
	"context"
	"testing"

	"pricepaid/internal/platform/store"
	"pricepaid/internal/platform/testkit"
)

// fakeQ is a minimal Queryer double, identity is all the tests need
type fakeQ struct{}

func (fakeQ) Exec(context.Context, string, ...any) (store.CommandTag, error) {
	return nil, nil
}
func (fakeQ) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (fakeQ) QueryRow(context.Context, string, ...any) store.Row        { return nil }

type fakeRepo struct{ q Queryer }

func TestBindFunc_AdaptsPlainFunction(t *testing.T) {
	t.Parallel()

	var b Binder[fakeRepo] = BindFunc[fakeRepo](func(q Queryer) fakeRepo {
		return fakeRepo{q: q}
	})

	q := fakeQ{}
	got := b.Bind(q)
	if got.q != Queryer(q) {
		t.Fatal("BindFunc must hand the queryer through to the builder")
	}
}

func TestRequireQueryer_PassesNonNil(t *testing.T) {
	t.Parallel()

	q := fakeQ{}
	if got := RequireQueryer(q); got != Queryer(q) {
		t.Fatal("RequireQueryer must return the same queryer")
	}
}

func TestRequireQueryer_PanicsOnNil(t *testing.T) {
	t.Parallel()

	testkit.MustPanic(t, func() { RequireQueryer(nil) })
}

func TestMustBind_BindsThroughTheGuard(t *testing.T) {
	t.Parallel()

	b := BindFunc[fakeRepo](func(q Queryer) fakeRepo { return fakeRepo{q: q} })

	q := fakeQ{}
	got := MustBind[fakeRepo](b, q)
	if got.q != Queryer(q) {
		t.Fatal("MustBind must bind against the validated queryer")
	}

	testkit.MustPanic(t, func() { MustBind[fakeRepo](b, nil) })
}
