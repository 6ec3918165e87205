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

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Registry(t *testing.T) {
	reg := prometheus.NewRegistry()
	mr := Registry{R: reg}
	c := mr.NewCounter(prometheus.CounterOpts{Name: "c_total", Help: "c"})
	cv := mr.NewCounterVec(prometheus.CounterOpts{Name: "cv_total", Help: "cv"}, "kind")
	g := mr.NewGauge(prometheus.GaugeOpts{Name: "g", Help: "g"})
	h := mr.NewHistogram(prometheus.HistogramOpts{Name: "h", Help: "h"})
	c.Inc()
	cv.WithLabelValues("a").Add(2)
	g.Set(3)
	h.Observe(0.5)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, len(families))
	for i, f := range families {
		names[i] = f.GetName()
	}
	assert.Equal(t, []string{"c_total", "cv_total", "g", "h"}, names)

	// registering the same name twice panics, as with MustRegister.
	assert.Panics(t, func() {
		mr.NewGauge(prometheus.GaugeOpts{Name: "g", Help: "g"})
	})
}
