package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	assert.Equal(t, "2xx", classifyStatus(201))
	assert.Equal(t, "3xx", classifyStatus(304))
	assert.Equal(t, "4xx", classifyStatus(422))
	assert.Equal(t, "5xx", classifyStatus(503))
	assert.Equal(t, "unknown", classifyStatus(99))
}

func TestRecordPropagation(t *testing.T) {
	before := testutil.ToFloat64(publishPropagation.WithLabelValues("upload", "failure"))
	RecordPropagation("upload", false)
	assert.Equal(t, before+1, testutil.ToFloat64(publishPropagation.WithLabelValues("upload", "failure")))
}
