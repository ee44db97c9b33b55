// Copyright 2025 The LunarDB Security Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package admission admits the first N distinct identifiers and refuses
// every new identifier after that.
//
// This is a one-shot capacity gate, not a rate limiter: the admitted set
// never shrinks, there is no time window and no reset. Once the set is
// full, members keep passing and every new identifier is refused forever.
package admission

import "errors"

// ErrCapacityExceeded is returned by Admit when the tracker is full.
var ErrCapacityExceeded = errors.New("admission capacity exceeded")

// Tracker is an in-memory admission gate. It is not safe for concurrent
// use; callers serialize access per tracker.
type Tracker struct {
	capacity int
	admitted map[string]struct{}
}

// New creates a tracker admitting at most capacity distinct identifiers.
// A capacity below one admits nothing.
func New(capacity int) *Tracker {
	if capacity < 0 {
		capacity = 0
	}
	return &Tracker{
		capacity: capacity,
		admitted: make(map[string]struct{}),
	}
}

// Check reports whether id is admitted, admitting it if there is room.
// With capacity 2, checking A, B, C, A, B, C returns
// true, true, false, true, true, false.
func (t *Tracker) Check(id string) bool {
	if _, ok := t.admitted[id]; ok {
		return true
	}
	if len(t.admitted) >= t.capacity {
		return false
	}
	t.admitted[id] = struct{}{}
	return true
}

// Admit is Check returning ErrCapacityExceeded on rejection.
func (t *Tracker) Admit(id string) error {
	if !t.Check(id) {
		return ErrCapacityExceeded
	}
	return nil
}

// Len returns the number of distinct admitted identifiers.
func (t *Tracker) Len() int {
	return len(t.admitted)
}

// Capacity returns the configured capacity.
func (t *Tracker) Capacity() int {
	return t.capacity
}
