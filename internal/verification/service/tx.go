package service

import (
	"context"
	"sync"
	"time"

	id "agrilink/pkg/domain"
	dErrors "agrilink/pkg/domain-errors"
)

// shardedTx provides the in-memory Tx boundary using sharded mutexes.
// Operations are distributed across N shards by a hash of the subject ID,
// so writers to different subjects rarely contend while writers to the same
// subject serialize.
const numTxShards = 128

// defaultTxTimeout bounds how long a verification transaction may run.
const defaultTxTimeout = 5 * time.Second

type shardedTx struct {
	shards  [numTxShards]sync.Mutex
	stores  Stores
	timeout time.Duration
}

// NewShardedTx wraps the given stores in a sharded-lock transaction
// boundary. Memory deployments use this; postgres deployments substitute a
// database transaction.
func NewShardedTx(stores Stores) Tx {
	return &shardedTx{stores: stores}
}

func (t *shardedTx) RunInTx(ctx context.Context, subjectID id.SubjectID, fn func(ctx context.Context, stores Stores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := int(hashString(subjectID.String()) % numTxShards)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx, t.stores)
}

// hashString uses FNV-1a for even shard distribution.
func hashString(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
