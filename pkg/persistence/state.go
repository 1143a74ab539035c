package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sigobj/beaconfence/pkg/fence"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// ErrUnsupportedVersion is returned for state files written by a newer format.
var ErrUnsupportedVersion = errors.New("unsupported state file version")

// FenceState is the on-disk document.
type FenceState struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	// Fences holds one record per monitored identity.
	Fences []FenceRecord `json:"fences,omitempty"`
}

// FenceRecord is one persisted identity.
type FenceRecord struct {
	// Key is the region key for human inspection. It is not read back.
	Key string `json:"key,omitempty"`

	// Data is the opaque binary identity, base64 in JSON.
	Data []byte `json:"data"`
}

// LoadOptions controls decoding of persisted identities.
type LoadOptions struct {
	// Lenient recovers readable fields of corrupt records instead of
	// failing the load. Unreadable fields get default values.
	Lenient bool
}

// FenceStore manages persistence of fences to a JSON file.
type FenceStore struct {
	mu   sync.Mutex
	path string
}

// NewFenceStore creates a new fence store.
func NewFenceStore(path string) *FenceStore {
	return &FenceStore{path: path}
}

// Path returns the state file path.
func (s *FenceStore) Path() string {
	return s.path
}

// Save persists the identities to disk, replacing previous content.
func (s *FenceStore) Save(ids []fence.Identity) error {
	state := &FenceState{
		Version: StateVersion,
		SavedAt: time.Now(),
		Fences:  make([]FenceRecord, 0, len(ids)),
	}
	for _, id := range ids {
		data, err := id.MarshalBinary()
		if err != nil {
			return fmt.Errorf("encode %s: %w", id.Key(), err)
		}
		state.Fences = append(state.Fences, FenceRecord{Key: id.Key(), Data: data})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Ensure parent directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// Load reads the identities from disk.
// Returns nil, nil if the file doesn't exist.
// A corrupt record fails the load with a *fence.CorruptDataError unless
// opts.Lenient is set.
func (s *FenceStore) Load(opts LoadOptions) ([]fence.Identity, error) {
	state, err := s.LoadState()
	if err != nil || state == nil {
		return nil, err
	}

	ids := make([]fence.Identity, 0, len(state.Fences))
	for i, rec := range state.Fences {
		id, err := fence.UnmarshalIdentity(rec.Data)
		if err != nil {
			if !opts.Lenient {
				return nil, fmt.Errorf("fence %d: %w", i, err)
			}
			id = fence.UnmarshalIdentityLenient(rec.Data)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// LoadState reads the raw state document.
// Returns nil, nil if the file doesn't exist.
func (s *FenceStore) LoadState() (*FenceState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &FenceState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}
	if state.Version > StateVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, state.Version)
	}

	return state, nil
}

// Clear removes the state file.
func (s *FenceStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
