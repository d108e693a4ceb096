package derived

import (
	"context"
	"fmt"

	"github.com/allisson/go-pglock/v3"
	"github.com/spaolacci/murmur3"

	"assetreport/internal/store"
)

// acquireLock 跨进程互斥：PostgreSQL 使用 advisory lock，按派生表名哈希得到锁 id
// 其他数据库只依赖进程内的 rebuildGuard
func acquireLock(ctx context.Context, st *store.Store, name string) (func(), error) {
	if st.Dialect().Name() != "postgres" {
		return func() {}, nil
	}

	lockID := murmur3.Sum64([]byte("derived:" + name))
	lock, err := pglock.NewLock(ctx, int64(lockID), st.DB())
	if err != nil {
		return nil, fmt.Errorf("creating rebuild lock for %s: %w", name, err)
	}
	if err := lock.WaitAndLock(ctx); err != nil {
		_ = lock.Close()
		return nil, fmt.Errorf("acquiring rebuild lock for %s: %w", name, err)
	}

	return func() {
		// ctx 可能已超时，释放锁使用独立的 context
		_ = lock.Unlock(context.WithoutCancel(ctx))
		_ = lock.Close()
	}, nil
}
