// Package persist stores the last selected role under a single durable key.
//
// The Adapter is the only thing the wizard talks to. It sits on a small
// key-value backend (JSON file, SQLite or memory) and turns every storage
// failure into "nothing stored": a broken state directory must never keep the
// screen from coming up.
package persist

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/workbench/pkg/debug"
	"github.com/vanderheijden86/workbench/pkg/metrics"
	"github.com/vanderheijden86/workbench/pkg/wizard"
)

// Key is the durable key holding the selected role.
const Key = "userType"

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// ErrUnknownBackend is returned by Open for unsupported backend names.
var ErrUnknownBackend = errors.New("unknown store backend")

// KV is a minimal durable key-value store.
type KV interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)
	// Set stores value under key. Setting the current value is a no-op.
	Set(key, value string) error
	// Delete removes key. Deleting an absent key is a no-op.
	Delete(key string) error
	Close() error
}

// Open returns the backend named by backend. path is the file or database
// location and is ignored by the memory backend.
func Open(backend, path string) (KV, error) {
	switch backend {
	case "", BackendFile:
		if path == "" {
			return nil, fmt.Errorf("file store: empty path")
		}
		return NewFileKV(path), nil
	case BackendSQLite:
		if path == "" {
			return nil, fmt.Errorf("sqlite store: empty path")
		}
		return OpenSQLite(path)
	case BackendMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// Adapter implements wizard.Store on top of a KV. A nil KV behaves as empty
// storage that accepts and drops writes.
type Adapter struct {
	kv KV
}

var _ wizard.Store = (*Adapter)(nil)

// NewAdapter wraps kv.
func NewAdapter(kv KV) *Adapter {
	return &Adapter{kv: kv}
}

// Load returns the stored role, or RoleNone when nothing valid is stored or
// the backend fails.
func (a *Adapter) Load() wizard.Role {
	if a == nil || a.kv == nil {
		return wizard.RoleNone
	}
	defer metrics.Timer(metrics.StoreLoad)()

	v, ok, err := a.kv.Get(Key)
	if err != nil {
		debug.Log("persist: load %s: %v", Key, err)
		return wizard.RoleNone
	}
	if !ok {
		return wizard.RoleNone
	}
	role, valid := wizard.ParseRole(v)
	debug.LogIf(!valid, "persist: ignoring unknown %s value %q", Key, v)
	if !valid {
		return wizard.RoleNone
	}
	return role
}

// Save records role. Saving RoleNone clears the key.
func (a *Adapter) Save(role wizard.Role) {
	if !role.Selectable() {
		a.Clear()
		return
	}
	if a == nil || a.kv == nil {
		return
	}
	defer metrics.Timer(metrics.StoreWrite)()

	if err := a.kv.Set(Key, role.String()); err != nil {
		debug.Log("persist: save %s=%s: %v", Key, role, err)
	}
}

// Clear forgets the stored role.
func (a *Adapter) Clear() {
	if a == nil || a.kv == nil {
		return
	}
	defer metrics.Timer(metrics.StoreWrite)()

	if err := a.kv.Delete(Key); err != nil {
		debug.Log("persist: clear %s: %v", Key, err)
	}
}

// Close releases the backend.
func (a *Adapter) Close() error {
	if a == nil || a.kv == nil {
		return nil
	}
	return a.kv.Close()
}
