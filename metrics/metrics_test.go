// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	m := defaultNoopMetrics()

	assert.Nil(t, m.GetOrCreateHandler())
	assert.NotPanics(t, func() {
		m.GetOrCreateCountMeter("c").Add(1)
		m.GetOrCreateCountVecMeter("cv", []string{"l"}).AddWithLabel(1, map[string]string{"l": "x"})
		m.GetOrCreateGaugeVecMeter("gv", []string{"l"}).SetWithLabel(1, map[string]string{"l": "x"})
		m.GetOrCreateHistogramVecMeter("hv", []string{"l"}, BucketOps).ObserveWithLabels(1, map[string]string{"l": "x"})
	})
}

func TestLazyLoad(t *testing.T) {
	calls := 0
	f := LazyLoad(func() int {
		calls++
		return calls
	})
	assert.Equal(t, 1, f())
	assert.Equal(t, 1, f())
	assert.Equal(t, 1, calls)
}

func TestPromMetrics(t *testing.T) {
	assert.True(t, NoOp())
	InitializePrometheusMetrics()
	defer func() { metrics = defaultNoopMetrics() }()
	assert.False(t, NoOp())

	Counter("test_count").Add(3)
	assert.Same(t, Counter("test_count"), Counter("test_count"))

	CounterVec("test_count_vec", []string{"op"}).AddWithLabel(2, map[string]string{"op": "stake"})
	GaugeVec("test_gauge_vec", []string{"op"}).SetWithLabel(7, map[string]string{"op": "stake"})
	HistogramVec("test_hist_vec", []string{"op"}, BucketOps).ObserveWithLabels(4, map[string]string{"op": "stake"})

	rec := httptest.NewRecorder()
	HTTPHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "stakevault_test_count 3")
	assert.Contains(t, string(body), `stakevault_test_count_vec{op="stake"} 2`)
	assert.Contains(t, string(body), `stakevault_test_gauge_vec{op="stake"} 7`)
	assert.Contains(t, string(body), `stakevault_test_hist_vec_count{op="stake"} 1`)
}
