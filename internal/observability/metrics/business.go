package metrics

// Status label values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusInvalid = "invalid"
)

func status(err error) string {
	if err != nil {
		return StatusFailure
	}
	return StatusSuccess
}

// RecordContentMutation records one create, update or delete.
func RecordContentMutation(kind, op string, err error) {
	ContentMutationsTotal.WithLabelValues(kind, op, status(err)).Inc()
}

// UpdateContentRecords stores the size of a freshly loaded list.
func UpdateContentRecords(kind string, count int) {
	ContentRecords.WithLabelValues(kind).Set(float64(count))
}

// RecordPublicCache records a cache lookup.
func RecordPublicCache(hit bool) {
	if hit {
		PublicCacheResults.WithLabelValues("hit").Inc()
		return
	}
	PublicCacheResults.WithLabelValues("miss").Inc()
}

// RecordUpload records an upload attempt. size is only observed on success.
func RecordUpload(bucket, status string, size int64) {
	UploadsTotal.WithLabelValues(bucket, status).Inc()
	if status == StatusSuccess {
		UploadSizeBytes.Observe(float64(size))
	}
}

// RecordAIDraft records one draft request outcome.
func RecordAIDraft(kind, status string) {
	AIDraftsTotal.WithLabelValues(kind, status).Inc()
}

// RecordSignIn records a sign-in result: "success", "invalid" or "throttled".
func RecordSignIn(result string) {
	SignInAttemptsTotal.WithLabelValues(result).Inc()
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
