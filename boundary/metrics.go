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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Decision outcomes.
const (
	outcomeAccept = "accept"
	outcomeReject = "reject"
)

type metrics struct {
	decisions  *prometheus.CounterVec
	rejections *prometheus.CounterVec
	handles    *prometheus.GaugeVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lunarsec_decisions_total",
				Help: "Total number of boundary operations by outcome",
			},
			[]string{"op", "outcome"},
		),
		rejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lunarsec_rejections_total",
				Help: "Total number of rejected boundary operations by reason",
			},
			[]string{"op", "reason"},
		),
		handles: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lunarsec_live_handles",
				Help: "Number of live statement and tracker handles",
			},
			[]string{"kind"},
		),
	}
}
