package derived

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
)

// Scheduler 定时全量重建派生表，兜底漏掉的触发
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler 按 cron 表达式定时调用 TriggerAll
func NewScheduler(r *Rebuilder, spec string) (*Scheduler, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		r.log.Info("scheduled derived rebuild")
		r.TriggerAll()
	}); err != nil {
		return nil, fmt.Errorf("invalid sync schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c}, nil
}

// Start 启动定时器
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 停止定时器，返回的 context 在运行中的任务结束后关闭
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
