package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"bluecherry-cli/pkg/models"
)

const (
	keyAccountIDs     = "account_ids"
	keyActiveAccount  = "active_account"
	accountKeyPrefix  = "account_"
	selectedKeyPrefix = "selected_cameras_"

	DefaultFreshIDAttempts = 10
)

// ErrIDsExhausted is returned by FreshID when every attempt collided.
var ErrIDsExhausted = errors.New("reached max retry count")

func accountKey(id string) string  { return accountKeyPrefix + id }
func selectedKey(id string) string { return selectedKeyPrefix + id }

// AccountStore persists server profiles and the active-profile pointer.
//
// The id index (account_ids) and the records (account_{id}) are separate
// keys. A new id is written to the index before its record, so an
// interrupted Put leaves an index entry without a record; List skips such
// entries and Get reports them as missing.
type AccountStore struct {
	kv     KV
	newID  func() string
	logger zerolog.Logger

	// Serializes read-modify-write cycles on the index within this process.
	mu sync.Mutex
}

func NewAccountStore(kv KV, logger zerolog.Logger) *AccountStore {
	return &AccountStore{
		kv:     kv,
		newID:  uuid.NewString,
		logger: logger.With().Str("component", "store").Logger(),
	}
}

// SetIDGenerator replaces the uuid v4 generator used by FreshID.
func (s *AccountStore) SetIDGenerator(fn func() string) {
	s.newID = fn
}

// Close releases the underlying backend.
func (s *AccountStore) Close() error {
	return s.kv.Close()
}

func (s *AccountStore) ids(ctx context.Context) ([]string, error) {
	data, err := s.kv.Get(ctx, keyAccountIDs)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "get", Key: keyAccountIDs, Err: err}
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, &StorageError{Op: "decode", Key: keyAccountIDs, Err: err}
	}
	return ids, nil
}

func (s *AccountStore) setIDs(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return &StorageError{Op: "encode", Key: keyAccountIDs, Err: err}
	}
	if err := s.kv.Set(ctx, keyAccountIDs, data); err != nil {
		return &StorageError{Op: "set", Key: keyAccountIDs, Err: err}
	}
	return nil
}

// List returns the profiles in index order.
func (s *AccountStore) List(ctx context.Context) ([]models.AccountEntry, error) {
	ids, err := s.ids(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]models.AccountEntry, 0, len(ids))
	for _, id := range ids {
		rec, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			s.logger.Debug().Str("account_id", id).Msg("skipping index entry without record")
			continue
		}
		entries = append(entries, models.AccountEntry{ID: id, Record: *rec})
	}
	return entries, nil
}

// Get returns the profile or nil when no record exists for id.
func (s *AccountStore) Get(ctx context.Context, id string) (*models.AccountRecord, error) {
	data, err := s.kv.Get(ctx, accountKey(id))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "get", Key: accountKey(id), Err: err}
	}

	var rec models.AccountRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &StorageError{Op: "decode", Key: accountKey(id), Err: err}
	}
	rec = rec.Upgrade()
	rec.ID = id
	return &rec, nil
}

// Put upserts the profile. The first write of an id also appends it to the
// index.
func (s *AccountStore) Put(ctx context.Context, id string, rec models.AccountRecord) error {
	if id == "" {
		return errors.New("account id is required")
	}

	rec = rec.Upgrade()
	rec.ID = id
	data, err := json.Marshal(rec)
	if err != nil {
		return &StorageError{Op: "encode", Key: accountKey(id), Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.ids(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(ids, id) {
		if err := s.setIDs(ctx, append(ids, id)); err != nil {
			return err
		}
	}

	if err := s.kv.Set(ctx, accountKey(id), data); err != nil {
		return &StorageError{Op: "set", Key: accountKey(id), Err: err}
	}
	return nil
}

// Remove deletes the profile, its camera grid and, if it is the active one,
// the active pointer. It returns false when id is not in the index.
func (s *AccountStore) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.ids(ctx)
	if err != nil {
		return false, err
	}
	idx := slices.Index(ids, id)
	if idx == -1 {
		return false, nil
	}

	if err := s.setIDs(ctx, slices.Delete(ids, idx, idx+1)); err != nil {
		return false, err
	}
	for _, key := range []string{accountKey(id), selectedKey(id)} {
		if err := s.kv.Delete(ctx, key); err != nil {
			return false, &StorageError{Op: "delete", Key: key, Err: err}
		}
	}

	active, err := s.GetActive(ctx)
	if err != nil {
		return false, err
	}
	if active == id {
		if _, _, err := s.ClearActive(ctx); err != nil {
			return false, err
		}
	}
	return true, nil
}

// FreshID returns a generated id not used by any stored profile, trying at
// most maxAttempts times.
func (s *AccountStore) FreshID(ctx context.Context, maxAttempts int) (string, error) {
	ids, err := s.ids(ctx)
	if err != nil {
		return "", err
	}

	for ; maxAttempts > 0; maxAttempts-- {
		id := s.newID()
		if id == "" || slices.Contains(ids, id) {
			continue
		}
		rec, err := s.Get(ctx, id)
		if err != nil {
			return "", err
		}
		if rec == nil {
			return id, nil
		}
	}
	return "", ErrIDsExhausted
}

// GetActive returns the active profile id, "" when none is set.
func (s *AccountStore) GetActive(ctx context.Context) (string, error) {
	data, err := s.kv.Get(ctx, keyActiveAccount)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", &StorageError{Op: "get", Key: keyActiveAccount, Err: err}
	}
	return string(data), nil
}

func (s *AccountStore) SetActive(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("account id is required")
	}
	if err := s.kv.Set(ctx, keyActiveAccount, []byte(id)); err != nil {
		return &StorageError{Op: "set", Key: keyActiveAccount, Err: err}
	}
	return nil
}

// ClearActive removes the active pointer and returns the id it held. ok is
// false when nothing was active.
func (s *AccountStore) ClearActive(ctx context.Context) (previous string, ok bool, err error) {
	previous, err = s.GetActive(ctx)
	if err != nil || previous == "" {
		return "", false, err
	}
	if err := s.kv.Delete(ctx, keyActiveAccount); err != nil {
		return "", false, &StorageError{Op: "delete", Key: keyActiveAccount, Err: err}
	}
	return previous, true, nil
}

// ActiveEntry resolves the active pointer against list. Stale pointers
// resolve to nil.
func (s *AccountStore) ActiveEntry(ctx context.Context, list []models.AccountEntry) (*models.AccountEntry, error) {
	active, err := s.GetActive(ctx)
	if err != nil || active == "" {
		return nil, err
	}
	for i := range list {
		if list[i].ID == active {
			e := list[i]
			return &e, nil
		}
	}
	return nil, nil
}

// FindByServerUUID returns the first stored profile whose server uuid matches.
func (s *AccountStore) FindByServerUUID(ctx context.Context, serverUUID string) (*models.AccountEntry, error) {
	if serverUUID == "" {
		return nil, nil
	}
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].Record.ServerUUID == serverUUID {
			e := list[i]
			return &e, nil
		}
	}
	return nil, nil
}

// SelectedDevices returns the saved camera grid of a profile, empty if none.
func (s *AccountStore) SelectedDevices(ctx context.Context, id string) (models.DeviceGrid, error) {
	var grid models.DeviceGrid
	data, err := s.kv.Get(ctx, selectedKey(id))
	if errors.Is(err, ErrNotFound) {
		return grid, nil
	}
	if err != nil {
		return grid, &StorageError{Op: "get", Key: selectedKey(id), Err: err}
	}
	if err := json.Unmarshal(data, &grid); err != nil {
		return models.DeviceGrid{}, &StorageError{Op: "decode", Key: selectedKey(id), Err: err}
	}
	return grid, nil
}

// SetSelectedDevice assigns deviceID ("" clears) to a grid slot and saves it.
func (s *AccountStore) SetSelectedDevice(ctx context.Context, id string, layout models.Layout, index int, deviceID string) (models.DeviceGrid, error) {
	grid, err := s.SelectedDevices(ctx, id)
	if err != nil {
		return grid, err
	}
	grid, err = grid.With(layout, index, deviceID)
	if err != nil {
		return grid, fmt.Errorf("select camera: %w", err)
	}

	data, err := json.Marshal(grid)
	if err != nil {
		return grid, &StorageError{Op: "encode", Key: selectedKey(id), Err: err}
	}
	if err := s.kv.Set(ctx, selectedKey(id), data); err != nil {
		return grid, &StorageError{Op: "set", Key: selectedKey(id), Err: err}
	}
	return grid, nil
}
