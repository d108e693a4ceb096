package derived

import (
	"context"
	"sync"
)

// rebuildGuard 保证同一派生表同一时间只有一个重建在进程内运行
// 运行期间到达的触发被合并为一次补跑
type rebuildGuard struct {
	mu      sync.Mutex
	running map[string]bool // 值表示运行期间是否又收到触发
	wg      sync.WaitGroup
}

// tryStart 标记 name 开始运行；已在运行时记录待补跑并返回 false
func (g *rebuildGuard) tryStart(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running == nil {
		g.running = make(map[string]bool)
	}
	if _, ok := g.running[name]; ok {
		g.running[name] = true
		return false
	}
	g.running[name] = false
	g.wg.Add(1)
	return true
}

// finish 一轮重建结束；有待补跑时返回 true，调用方应继续运行
func (g *rebuildGuard) finish(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running[name] {
		g.running[name] = false
		return true
	}
	delete(g.running, name)
	g.wg.Done()
	return false
}

// waitAll 等待所有运行中的重建结束或 ctx 取消
func (g *rebuildGuard) waitAll(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
