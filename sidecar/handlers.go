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

package sidecar

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Kazooki123/lunardb-security/boundary"
	"github.com/Kazooki123/lunardb-security/guard/admission"
)

// TextRequest carries a single piece of text. A null Text is passed on as
// a NULL pointer.
type TextRequest struct {
	Text *string `json:"text"`
}

// DecisionResponse is the answer to a yes/no check.
type DecisionResponse struct {
	Safe bool `json:"safe"`
}

// TextResponse carries transformed text.
type TextResponse struct {
	Text string `json:"text"`
}

// StatementRequest builds, binds and executes a template in one call.
type StatementRequest struct {
	Query  *string  `json:"query"`
	Params []string `json:"params"`
}

// AdmissionRequest asks a named tracker to admit ID.
type AdmissionRequest struct {
	ID *string `json:"id"`
}

// AdmissionResponse reports whether ID was admitted.
type AdmissionResponse struct {
	Tracker  string `json:"tracker"`
	Admitted bool   `json:"admitted"`
}

// ErrorResponse is returned for malformed requests.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

var (
	errEmptyBody    = errors.New("request body is empty")
	errTrackerLimit = errors.New("tracker limit reached")
)

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   serviceName,
		"timestamp": time.Now().UTC(),
		"handles": map[string]int{
			string(boundary.KindStatement): s.engine.Live(boundary.KindStatement),
			string(boundary.KindTracker):   s.engine.Live(boundary.KindTracker),
		},
	})
}

// textDecision adapts a boolean engine check to an endpoint.
func (s *Server) textDecision(check func([]byte) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TextRequest
		if !s.decode(w, r, &req) {
			return
		}
		s.writeJSON(w, r, http.StatusOK, DecisionResponse{Safe: check(textBytes(req.Text))})
	}
}

func (s *Server) sanitizeHandler(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !s.decode(w, r, &req) {
		return
	}
	out, ok := s.engine.Sanitize(textBytes(req.Text))
	if !ok {
		s.sendError(w, r, "text is required", http.StatusBadRequest, nil)
		return
	}
	s.writeJSON(w, r, http.StatusOK, TextResponse{Text: out})
}

func (s *Server) statementHandler(w http.ResponseWriter, r *http.Request) {
	var req StatementRequest
	if !s.decode(w, r, &req) {
		return
	}
	h := s.engine.CreateStatement(textBytes(req.Query))
	if h == 0 {
		s.sendError(w, r, "query is empty or too long", http.StatusUnprocessableEntity, nil)
		return
	}
	defer s.engine.DestroyStatement(h)

	for _, p := range req.Params {
		s.engine.BindParameter(h, []byte(p))
	}
	out, ok := s.engine.ExecuteStatement(h)
	if !ok {
		s.sendError(w, r, "statement unavailable", http.StatusInternalServerError, nil)
		return
	}
	s.writeJSON(w, r, http.StatusOK, TextResponse{Text: out})
}

func (s *Server) admissionHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["tracker"]

	var req AdmissionRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.ID == nil {
		s.sendError(w, r, "id is required", http.StatusBadRequest, nil)
		return
	}

	admitted, err := s.admit(r, name, *req.ID)
	switch {
	case errors.Is(err, errTrackerLimit):
		s.sendError(w, r, err.Error(), http.StatusForbidden, err)
		return
	case err != nil:
		s.sendError(w, r, "admission store unavailable", http.StatusServiceUnavailable, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, AdmissionResponse{Tracker: name, Admitted: admitted})
}

// admit runs id through the named tracker. A full tracker is a refusal,
// not an error.
func (s *Server) admit(r *http.Request, name, id string) (bool, error) {
	if s.redis == nil {
		h, err := s.trackerHandle(name)
		if err != nil {
			return false, err
		}
		return s.engine.CheckAdmission(h, []byte(id)), nil
	}

	tracker, err := s.sharedTracker(name)
	if err != nil {
		return false, err
	}
	err = tracker.Admit(r.Context(), id)
	if errors.Is(err, admission.ErrCapacityExceeded) {
		return false, nil
	}
	return err == nil, err
}

// trackerHandle returns the engine handle for a named tracker, creating it
// on first use while fewer than MaxTrackers exist.
func (s *Server) trackerHandle(name string) (boundary.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.trackers[name]; ok {
		return h, nil
	}
	if len(s.trackers) >= s.cfg.MaxTrackers {
		return 0, errTrackerLimit
	}
	h := s.engine.CreateTracker(uint64(s.cfg.TrackerCapacity))
	s.trackers[name] = h
	return h, nil
}

func (s *Server) sharedTracker(name string) (*admission.RedisTracker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.shared[name]; ok {
		return t, nil
	}
	if len(s.shared) >= s.cfg.MaxTrackers {
		return nil, errTrackerLimit
	}
	t := admission.NewRedisTracker(s.redis, name, s.cfg.TrackerCapacity)
	s.shared[name] = t
	return t, nil
}

func textBytes(p *string) []byte {
	if p == nil {
		return nil
	}
	return []byte(*p)
}

// decode reads a JSON body into v, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(body).Decode(v)
	if errors.Is(err, io.EOF) {
		err = errEmptyBody
	}
	if err != nil {
		s.sendError(w, r, "invalid request body: "+err.Error(), http.StatusBadRequest, err)
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode", requestID(r), "error encoding response", map[string]interface{}{"error": err.Error()})
	}
}

// sendError writes an ErrorResponse. Server-side failures are logged at
// ERROR; client errors only at DEBUG.
func (s *Server) sendError(w http.ResponseWriter, r *http.Request, message string, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.ErrorWithCode("http", requestID(r), message, status, err, map[string]interface{}{
			"path": r.URL.Path,
		})
	} else {
		s.log.Debug("http", requestID(r), message, map[string]interface{}{
			"path":        r.URL.Path,
			"status_code": status,
			"error":       errString(err),
		})
	}
	s.writeJSON(w, r, status, ErrorResponse{Error: message, RequestID: requestID(r)})
}
