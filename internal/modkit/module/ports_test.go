package module

import (
	"strings"
	"testing"

	phttp "pricepaid/internal/platform/net/http"
)

// StatusPort is a tiny interface a port bundle can carry
type StatusPort interface {
	Ready() bool
}

type statusImpl struct{ ok bool }

func (s statusImpl) Ready() bool { return s.ok }

// fakeModule is a small module double for tests
type fakeModule struct {
	name  string
	ports any
}

func (m fakeModule) Name() string             { return m.name }
func (m fakeModule) Ports() any               { return m.ports }
func (m fakeModule) MountRoutes(phttp.Router) {}

func TestPortsOf_NilBundle(t *testing.T) {
	t.Parallel()

	m := fakeModule{name: "empty", ports: nil}
	if _, ok := PortsOf[StatusPort](m); ok {
		t.Fatal("expected ok=false when Ports() is nil")
	}
}

func TestPortsOf_DirectMatch(t *testing.T) {
	t.Parallel()

	m := fakeModule{name: "direct", ports: StatusPort(statusImpl{ok: true})}

	got, ok := PortsOf[StatusPort](m)
	if !ok {
		t.Fatal("expected ok=true for a direct interface match")
	}
	if !got.Ready() {
		t.Fatal("wrong port surfaced")
	}
}

func TestPortsOf_ExportedBundleField(t *testing.T) {
	t.Parallel()

	type Ports struct {
		Status StatusPort
		Extra  int
	}
	m := fakeModule{name: "bundle", ports: Ports{Status: statusImpl{ok: true}, Extra: 1}}

	got, ok := PortsOf[StatusPort](m)
	if !ok {
		t.Fatal("expected ok=true when the bundle carries an exported field")
	}
	if !got.Ready() {
		t.Fatal("wrong port surfaced from the bundle")
	}
}

func TestPortsOf_UnexportedBundleFieldIgnored(t *testing.T) {
	t.Parallel()

	type ports struct {
		status StatusPort
	}
	m := fakeModule{name: "hidden", ports: ports{status: statusImpl{}}}

	if _, ok := PortsOf[StatusPort](m); ok {
		t.Fatal("expected ok=false when only an unexported field implements T")
	}
}

func TestMustPortsOf_ReturnsValue(t *testing.T) {
	t.Parallel()

	m := fakeModule{name: "ok", ports: StatusPort(statusImpl{ok: true})}
	if got := MustPortsOf[StatusPort](m); !got.Ready() {
		t.Fatal("MustPortsOf returned the wrong port")
	}
}

func TestMustPortsOf_PanicsWithModuleName(t *testing.T) {
	t.Parallel()

	m := fakeModule{name: "dataset", ports: nil}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic when the port is missing")
		}
		msg, _ := r.(string)
		if !strings.Contains(msg, "dataset") {
			t.Fatalf("panic should name the module, got %q", msg)
		}
	}()

	_ = MustPortsOf[StatusPort](m)
}
