package fakesessionrepo

import (
	"errors"
	"sync"

	"github.com/jrsteele09/regulus-console/session"
)

var _ session.Repo = (*FakeRepo)(nil)

// FakeRepo keeps credential entries in memory.
type FakeRepo struct {
	entries map[string]string
	lock    sync.RWMutex

	// FailSave and FailDelete force the next matching operations to fail
	FailSave   bool
	FailDelete bool
}

func NewFakeRepo() *FakeRepo {
	return &FakeRepo{
		entries: make(map[string]string),
	}
}

func (r *FakeRepo) Load() (map[string]string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	entries := make(map[string]string, len(r.entries))
	for k, v := range r.entries {
		entries[k] = v
	}
	return entries, nil
}

func (r *FakeRepo) Save(entries map[string]string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.FailSave {
		return errors.New("save failed")
	}
	for k, v := range entries {
		r.entries[k] = v
	}
	return nil
}

func (r *FakeRepo) Delete(keys ...string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.FailDelete {
		return errors.New("delete failed")
	}
	for _, k := range keys {
		delete(r.entries, k)
	}
	return nil
}

// Len returns the number of stored entries.
func (r *FakeRepo) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.entries)
}
