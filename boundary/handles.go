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

package boundary

import (
	"sync"

	"github.com/Kazooki123/lunardb-security/guard/admission"
	"github.com/Kazooki123/lunardb-security/guard/statement"
)

// Handle is an opaque token for an object owned by the Engine. Zero is the
// null handle.
type Handle uintptr

// Kind names the object type behind a handle.
type Kind string

const (
	KindStatement Kind = "statement"
	KindTracker   Kind = "tracker"
)

// arena owns every live object. Tokens increase monotonically and are
// never reused within a process.
type arena struct {
	mu      sync.Mutex
	next    Handle
	objects map[Handle]any
}

func newArena() *arena {
	return &arena{objects: make(map[Handle]any)}
}

func (a *arena) insert(obj any) Handle {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.next++
	a.objects[a.next] = obj
	return a.next
}

func (a *arena) statement(h Handle) (*statement.Template, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	tmpl, ok := a.objects[h].(*statement.Template)
	return tmpl, ok
}

func (a *arena) tracker(h Handle) (*admission.Tracker, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	tr, ok := a.objects[h].(*admission.Tracker)
	return tr, ok
}

// remove deletes h if it holds an object of kind k.
func (a *arena) remove(h Handle, k Kind) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	obj, ok := a.objects[h]
	if !ok || kindOf(obj) != k {
		return false
	}
	delete(a.objects, h)
	return true
}

func (a *arena) count(k Kind) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, obj := range a.objects {
		if kindOf(obj) == k {
			n++
		}
	}
	return n
}

func kindOf(obj any) Kind {
	switch obj.(type) {
	case *statement.Template:
		return KindStatement
	case *admission.Tracker:
		return KindTracker
	default:
		return ""
	}
}
