package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordContentMutation(t *testing.T) {
	before := testutil.ToFloat64(ContentMutationsTotal.WithLabelValues("news", "create", StatusFailure))

	RecordContentMutation("news", "create", errors.New("duplicate"))
	RecordContentMutation("news", "create", nil)

	assert.Equal(t, before+1, testutil.ToFloat64(ContentMutationsTotal.WithLabelValues("news", "create", StatusFailure)))
}

func TestRecordUpload(t *testing.T) {
	before := testutil.ToFloat64(UploadsTotal.WithLabelValues("logos", StatusInvalid))
	RecordUpload("logos", StatusInvalid, 10<<20)
	assert.Equal(t, before+1, testutil.ToFloat64(UploadsTotal.WithLabelValues("logos", StatusInvalid)))
}

func TestRecordPublicCache(t *testing.T) {
	hits := testutil.ToFloat64(PublicCacheResults.WithLabelValues("hit"))
	RecordPublicCache(true)
	RecordPublicCache(false)
	assert.Equal(t, hits+1, testutil.ToFloat64(PublicCacheResults.WithLabelValues("hit")))
}

func TestUpdateGauges(t *testing.T) {
	UpdateContentRecords("partnership", 12)
	assert.Equal(t, 12.0, testutil.ToFloat64(ContentRecords.WithLabelValues("partnership")))

	UpdateDBConnectionStats(3, 2)
	assert.Equal(t, 3.0, testutil.ToFloat64(DBConnectionsActive))
	assert.Equal(t, 2.0, testutil.ToFloat64(DBConnectionsIdle))
}
