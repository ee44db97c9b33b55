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

package main

import (
	"fmt"

	"github.com/Kazooki123/lunardb-security/shared/logger"
)

var log = logger.New("liblunar")

// recoverBoundary stops a panic from unwinding into the host. Named results
// of the exported function keep their zero value: false, NULL or the null
// handle.
func recoverBoundary(op string) {
	if r := recover(); r != nil {
		log.Error(op, "", "recovered panic at boundary", map[string]interface{}{
			"panic": fmt.Sprint(r),
		})
	}
}
