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

// Command liblunar builds the validation toolkit as a C shared library:
//
//	go build -buildmode=c-shared -o liblunar.so ./cmd/liblunar
//
// The toolchain writes liblunar.h next to the library. Strings returned by
// sanitize and execute_statement are owned by the caller and must be
// released with release_text. Tracker and statement handles are opaque;
// zero is the null handle.
package main

/*
#include <stdbool.h>
#include <stdint.h>
*/
import "C"

import (
	"github.com/Kazooki123/lunardb-security/boundary"
)

//export validate_input
func validate_input(input *C.char) (ok C.bool) {
	defer recoverBoundary(boundary.OpValidateInput)
	return C.bool(boundary.Default().ValidateInput(goBytes(input)))
}

//export check_sql_safety
func check_sql_safety(input *C.char) (ok C.bool) {
	defer recoverBoundary(boundary.OpCheckSQL)
	return C.bool(boundary.Default().CheckSQLSafety(goBytes(input)))
}

//export check_document_query_safety
func check_document_query_safety(input *C.char) (ok C.bool) {
	defer recoverBoundary(boundary.OpCheckDocument)
	return C.bool(boundary.Default().CheckDocumentQuerySafety(goBytes(input)))
}

//export sanitize
func sanitize(input *C.char) (out *C.char) {
	defer recoverBoundary(boundary.OpSanitize)
	return ownedText(boundary.Default().Sanitize(goBytes(input)))
}

//export create_tracker
func create_tracker(capacity C.uintptr_t) (h C.uintptr_t) {
	defer recoverBoundary(boundary.OpCreateTracker)
	return C.uintptr_t(boundary.Default().CreateTracker(uint64(capacity)))
}

//export check_admission
func check_admission(tracker C.uintptr_t, id *C.char) (ok C.bool) {
	defer recoverBoundary(boundary.OpCheckAdmission)
	return C.bool(boundary.Default().CheckAdmission(boundary.Handle(tracker), goBytes(id)))
}

//export destroy_tracker
func destroy_tracker(tracker C.uintptr_t) {
	defer recoverBoundary(boundary.OpDestroyTracker)
	boundary.Default().DestroyTracker(boundary.Handle(tracker))
}

//export create_statement
func create_statement(query *C.char) (h C.uintptr_t) {
	defer recoverBoundary(boundary.OpCreateStatement)
	return C.uintptr_t(boundary.Default().CreateStatement(goBytes(query)))
}

//export bind_parameter
func bind_parameter(stmt C.uintptr_t, param *C.char) {
	defer recoverBoundary(boundary.OpBindParameter)
	boundary.Default().BindParameter(boundary.Handle(stmt), goBytes(param))
}

//export execute_statement
func execute_statement(stmt C.uintptr_t) (out *C.char) {
	defer recoverBoundary(boundary.OpExecuteStatement)
	return ownedText(boundary.Default().ExecuteStatement(boundary.Handle(stmt)))
}

//export destroy_statement
func destroy_statement(stmt C.uintptr_t) {
	defer recoverBoundary(boundary.OpDestroyStatement)
	boundary.Default().DestroyStatement(boundary.Handle(stmt))
}

//export release_text
func release_text(text *C.char) {
	freeText(text)
}

func main() {}
