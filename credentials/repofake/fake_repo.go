package fakecredentialsrepo

import (
	"sync"

	"github.com/jrsteele09/kogase-admin/credentials"
)

var _ credentials.Repo = (*FakeRepo)(nil)

// FakeRepo is an in-memory credentials.Repo. SetError makes every following
// operation fail, to exercise storage failure paths.
type FakeRepo struct {
	values map[string]string
	err    error
	lock   sync.RWMutex
}

func NewFakeRepo() *FakeRepo {
	return &FakeRepo{
		values: make(map[string]string),
	}
}

func (r *FakeRepo) Get(key string) (string, bool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if r.err != nil {
		return "", false, r.err
	}
	v, ok := r.values[key]
	return v, ok, nil
}

func (r *FakeRepo) SetMany(values map[string]string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.err != nil {
		return r.err
	}
	for k, v := range values {
		r.values[k] = v
	}
	return nil
}

func (r *FakeRepo) Delete(keys ...string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.err != nil {
		return r.err
	}
	for _, k := range keys {
		delete(r.values, k)
	}
	return nil
}

func (r *FakeRepo) SetError(err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.err = err
}

// Keys returns a snapshot of the stored keys
func (r *FakeRepo) Keys() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()

	keys := make([]string, 0, len(r.values))
	for k := range r.values {
		keys = append(keys, k)
	}
	return keys
}
