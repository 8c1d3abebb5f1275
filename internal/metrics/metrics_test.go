package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveUpstream(t *testing.T) {
	before := testutil.ToFloat64(upstreamRequests.WithLabelValues("create_order", "201"))
	ObserveUpstream("create_order", 201, 120*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(upstreamRequests.WithLabelValues("create_order", "201")))
}

func TestObserveHTTP_UnmatchedRoute(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("OPTIONS", "unmatched", "204"))
	ObserveHTTP("OPTIONS", "", 204)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("OPTIONS", "unmatched", "204")))
}

func TestStaleResult(t *testing.T) {
	before := testutil.ToFloat64(staleResults.WithLabelValues("products"))
	StaleResult("products")
	assert.Equal(t, before+1, testutil.ToFloat64(staleResults.WithLabelValues("products")))
}
