// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package classify

import (
	metricsutil "github.com/ebay/taxoclass/util/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type classifyMetrics struct {
	runsTotal          *prometheus.CounterVec
	passesTotal        prometheus.Counter
	movesTotal         *prometheus.CounterVec
	incompleteEntries  prometheus.Gauge
	passDurationSecond prometheus.Histogram
}

var metrics classifyMetrics

func init() {
	mr := metricsutil.Registry{R: prometheus.DefaultRegisterer}
	metrics = classifyMetrics{
		runsTotal: mr.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taxoclass",
			Subsystem: "classify",
			Name:      "runs_total",
			Help:      `The number of classification runs, by outcome (ok, inconsistent, canceled, or error).`,
		}, "outcome"),
		passesTotal: mr.NewCounter(prometheus.CounterOpts{
			Namespace: "taxoclass",
			Subsystem: "classify",
			Name:      "passes_total",
			Help:      `The number of outer fixpoint passes run.`,
		}),
		movesTotal: mr.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taxoclass",
			Subsystem: "classify",
			Name:      "moves_total",
			Help:      `The number of (node, category) pairs moved out of the possible state, by destination.`,
		}, "to"),
		incompleteEntries: mr.NewGauge(prometheus.GaugeOpts{
			Namespace: "taxoclass",
			Subsystem: "classify",
			Name:      "incomplete_entries",
			Help:      `The number of Incompleteness entries in the ledger at the end of the last run.`,
		}),
		passDurationSecond: mr.NewHistogram(prometheus.HistogramOpts{
			Namespace: "taxoclass",
			Subsystem: "classify",
			Name:      "pass_duration_seconds",
			Help:      `The time taken by each outer fixpoint pass.`,
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
	}
}
