package tracking

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/dshills/piecetree/internal/engine/piecetree"
)

// ErrCheckpointNotFound is returned for unknown checkpoint IDs or names.
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// CheckpointID uniquely identifies a checkpoint within a process.
type CheckpointID uint64

var checkpointIDCounter atomic.Uint64

// NewCheckpointID returns a fresh checkpoint ID.
func NewCheckpointID() CheckpointID {
	return CheckpointID(checkpointIDCounter.Add(1))
}

// Checkpoint is a named document state.
type Checkpoint struct {
	ID        CheckpointID
	Name      string
	Timestamp time.Time
	// Revision is the document revision the checkpoint was taken at.
	Revision uint64

	snap *piecetree.Snapshot
}

// Snapshot returns the checkpoint's content. It stays valid until the
// checkpoint is removed from its Manager.
func (c *Checkpoint) Snapshot() *piecetree.Snapshot { return c.snap }

// Len returns the byte length of the checkpointed content.
func (c *Checkpoint) Len() uint64 { return c.snap.Len() }

// Age returns how long ago the checkpoint was created.
func (c *Checkpoint) Age() time.Duration { return time.Since(c.Timestamp) }

// Manager stores checkpoints by ID and name.
type Manager struct {
	mu     sync.RWMutex
	byID   map[CheckpointID]*Checkpoint
	byName map[string]*Checkpoint
	now    func() time.Time
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{
		byID:   make(map[CheckpointID]*Checkpoint),
		byName: make(map[string]*Checkpoint),
		now:    time.Now,
	}
}

// Create stores snap as a checkpoint and takes ownership of it. A
// checkpoint with the same non-empty name is replaced.
func (m *Manager) Create(name string, snap *piecetree.Snapshot, revision uint64) CheckpointID {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.byName[name]; ok && name != "" {
		m.removeLocked(old)
	}
	cp := &Checkpoint{
		ID:        NewCheckpointID(),
		Name:      name,
		Timestamp: m.now(),
		Revision:  revision,
		snap:      snap,
	}
	m.byID[cp.ID] = cp
	if name != "" {
		m.byName[name] = cp
	}
	return cp.ID
}

func (m *Manager) removeLocked(cp *Checkpoint) {
	delete(m.byID, cp.ID)
	if m.byName[cp.Name] == cp {
		delete(m.byName, cp.Name)
	}
	cp.snap.Release()
}

// Get returns the checkpoint with the given ID.
func (m *Manager) Get(id CheckpointID) (*Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp, ok := m.byID[id]
	if !ok {
		return nil, errors.Wrapf(ErrCheckpointNotFound, "id %d", id)
	}
	return cp, nil
}

// GetByName returns the checkpoint with the given name.
func (m *Manager) GetByName(name string) (*Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp, ok := m.byName[name]
	if !ok {
		return nil, errors.Wrapf(ErrCheckpointNotFound, "name %q", name)
	}
	return cp, nil
}

// Delete removes a checkpoint by ID.
func (m *Manager) Delete(id CheckpointID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cp, ok := m.byID[id]; ok {
		m.removeLocked(cp)
	}
}

// DeleteByName removes a checkpoint by name.
func (m *Manager) DeleteByName(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cp, ok := m.byName[name]; ok {
		m.removeLocked(cp)
	}
}

// List returns all checkpoints, oldest first.
func (m *Manager) List() []*Checkpoint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Checkpoint, 0, len(m.byID))
	for _, cp := range m.byID {
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Names returns the checkpoint names in creation order.
func (m *Manager) Names() []string {
	var names []string
	for _, cp := range m.List() {
		if cp.Name != "" {
			names = append(names, cp.Name)
		}
	}
	return names
}

// Count returns the number of checkpoints.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

// Clear removes all checkpoints.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cp := range m.byID {
		cp.snap.Release()
	}
	m.byID = make(map[CheckpointID]*Checkpoint)
	m.byName = make(map[string]*Checkpoint)
}

// PruneKeepN removes the oldest checkpoints so that at most n remain and
// returns how many were removed.
func (m *Manager) PruneKeepN(n int) int {
	all := m.List()
	if len(all) <= n {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for _, cp := range all[:len(all)-n] {
		if _, ok := m.byID[cp.ID]; ok {
			m.removeLocked(cp)
			removed++
		}
	}
	return removed
}
