package credential

import (
	"errors"
	"reflect"
	"testing"
)

func TestRegistry_RegisterAndCreate(t *testing.T) {
	r := NewRegistry()
	store := NewMemoryStore(Record{Service: "stripe"})

	if err := r.Register("static", func(map[string]any) (Store, error) { return store, nil }); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, err := r.Create(" static ", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got != store {
		t.Errorf("Create returned %v, want registered store", got)
	}
}

func TestRegistry_Errors(t *testing.T) {
	r := NewRegistry()
	factory := func(map[string]any) (Store, error) { return NewMemoryStore(), nil }

	if err := r.Register("", factory); !errors.Is(err, ErrInvalidRegistration) {
		t.Errorf("Register(\"\") error = %v, want ErrInvalidRegistration", err)
	}
	if err := r.Register("memory", nil); !errors.Is(err, ErrInvalidRegistration) {
		t.Errorf("Register(nil) error = %v, want ErrInvalidRegistration", err)
	}

	_ = r.Register("memory", factory)
	if err := r.Register("memory", factory); !errors.Is(err, ErrStoreRegistered) {
		t.Errorf("duplicate Register error = %v, want ErrStoreRegistered", err)
	}

	if _, err := r.Create("redis", nil); !errors.Is(err, ErrStoreNotRegistered) {
		t.Errorf("Create(unknown) error = %v, want ErrStoreNotRegistered", err)
	}
}

func TestDefaultRegistry(t *testing.T) {
	if got, want := DefaultRegistry.List(), []string{"memory", "postgres"}; !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}

	store, err := DefaultRegistry.Create("memory", nil)
	if err != nil {
		t.Fatalf("Create(memory): %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Errorf("Create(memory) = %T, want *MemoryStore", store)
	}

	if _, err := DefaultRegistry.Create("postgres", map[string]any{}); !errors.Is(err, ErrMissingDSN) {
		t.Errorf("Create(postgres) without dsn error = %v, want ErrMissingDSN", err)
	}
	if _, err := DefaultRegistry.Create("postgres", map[string]any{"dsn": "postgres://localhost/creds", "table": "bad table"}); !errors.Is(err, ErrInvalidTable) {
		t.Errorf("Create(postgres) with bad table error = %v, want ErrInvalidTable", err)
	}
}
