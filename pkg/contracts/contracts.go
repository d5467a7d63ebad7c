package contracts

import "context"

// DocumentSource fetches one raw JSON document by file name (e.g., "standings.json").
// The decoded document is returned as-is; shape validation is the normalizer's job.
type DocumentSource interface {
	Fetch(ctx context.Context, name string) (map[string]interface{}, error)
}

// KVStore is the durable key-value capability the intake ledger persists through.
// Get reports found=false (and no error) for a missing key.
type KVStore interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}
