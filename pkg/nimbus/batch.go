package nimbus

// MaxBatchSize is the largest batch the bulk mutation endpoints accept in a
// single call.
const MaxBatchSize = 200

// CheckBatchSize rejects oversized batches before they reach the wire.
func CheckBatchSize(n, max int) error {
	if n > max {
		return &BatchSizeError{Count: n, Max: max}
	}
	return nil
}
