package fakes

import (
	"context"
	"errors"
	"sync"
)

// ErrStorageUnavailable is returned by every UnavailableStorage call.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Op is one recorded storage call.
type Op struct {
	Method string
	Keys   []string
}

// RecordingStorage is an in-memory store that records every call.
type RecordingStorage struct {
	mu     sync.Mutex
	values map[string]string
	ops    []Op
}

func NewRecordingStorage(seed map[string]string) *RecordingStorage {
	values := make(map[string]string, len(seed))
	for k, v := range seed {
		values[k] = v
	}
	return &RecordingStorage{values: values}
}

func (r *RecordingStorage) Get(_ context.Context, key string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, Op{Method: "get", Keys: []string{key}})
	value, ok := r.values[key]
	return value, ok, nil
}

func (r *RecordingStorage) Set(_ context.Context, key string, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, Op{Method: "set", Keys: []string{key}})
	r.values[key] = value
	return nil
}

func (r *RecordingStorage) Delete(_ context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, Op{Method: "delete", Keys: append([]string(nil), keys...)})
	for _, key := range keys {
		delete(r.values, key)
	}
	return nil
}

// Values returns a copy of the stored values.
func (r *RecordingStorage) Values() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Writes counts set and delete calls.
func (r *RecordingStorage) Writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, op := range r.ops {
		if op.Method != "get" {
			count++
		}
	}
	return count
}

func (r *RecordingStorage) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// UnavailableStorage fails every call, like a disabled or full store.
type UnavailableStorage struct{}

func (UnavailableStorage) Get(context.Context, string) (string, bool, error) {
	return "", false, ErrStorageUnavailable
}

func (UnavailableStorage) Set(context.Context, string, string) error {
	return ErrStorageUnavailable
}

func (UnavailableStorage) Delete(context.Context, ...string) error {
	return ErrStorageUnavailable
}
