package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.RecordSend("tcp", 9)
	c.RecordSend("tcp", 5)
	c.RecordExchange("tcp", true, 5, 10*time.Millisecond)
	c.RecordExchange("tcp", false, 2, 10*time.Millisecond)
	c.RecordError("hid", "protocol_violation")

	assert.Equal(t, float64(14), testutil.ToFloat64(c.bytesSent.WithLabelValues("tcp")))
	assert.Equal(t, float64(7), testutil.ToFloat64(c.bytesReceived.WithLabelValues("tcp")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.exchanges.WithLabelValues("tcp", StatusSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.exchanges.WithLabelValues("tcp", StatusError)))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.errors.WithLabelValues("hid", "protocol_violation")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.duration))
}

func TestCollector_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)

	_, err = NewCollector(reg)
	require.Error(t, err)
}

func TestCollector_Nil(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.RecordSend("tcp", 1)
		c.RecordExchange("tcp", true, 1, time.Millisecond)
		c.RecordError("tcp", "closed")
	})
}
