package derived

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"assetreport/internal/config"
	"assetreport/internal/logging"
	"assetreport/internal/metrics"
	"assetreport/internal/model"
	"assetreport/internal/store"
)

// Rebuilder 派生报表表的全量重建：影子表写入后在事务内替换目标表
type Rebuilder struct {
	store   *store.Store
	tables  []model.DerivedTable
	cfg     config.SyncConfig
	log     *logrus.Entry
	guard   rebuildGuard
	baseCtx context.Context
}

// NewRebuilder 创建重建器
func NewRebuilder(st *store.Store, cfg config.SyncConfig, logger logrus.FieldLogger) *Rebuilder {
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 300
	}
	return &Rebuilder{
		store:   st,
		tables:  model.DerivedTables,
		cfg:     cfg,
		log:     logging.Component(logger, "derived"),
		baseCtx: context.Background(),
	}
}

// DerivedFor 以 source 为数据源的派生表
func (r *Rebuilder) DerivedFor(source string) []model.DerivedTable {
	var out []model.DerivedTable
	for _, d := range r.tables {
		if d.DependsOn(source) {
			out = append(out, d)
		}
	}
	return out
}

// Lookup 按名称查找派生表
func (r *Rebuilder) Lookup(name string) (model.DerivedTable, error) {
	for _, d := range r.tables {
		if d.Name == name {
			return d, nil
		}
	}
	return model.DerivedTable{}, model.NewNotFoundError(model.ErrUnknownDerivedTable, "派生表不存在: "+name)
}

// Trigger 源表提交后异步重建相关派生表；失败只记录日志
func (r *Rebuilder) Trigger(source string) {
	for _, d := range r.DerivedFor(source) {
		r.start(d)
	}
}

// TriggerAll 异步重建全部派生表
func (r *Rebuilder) TriggerAll() {
	for _, d := range r.tables {
		r.start(d)
	}
}

// TriggerDerived 异步重建指定派生表
func (r *Rebuilder) TriggerDerived(name string) error {
	d, err := r.Lookup(name)
	if err != nil {
		return err
	}
	r.start(d)
	return nil
}

func (r *Rebuilder) start(d model.DerivedTable) {
	if !r.cfg.Enabled {
		r.log.WithField("table", d.Name).Debug("derived sync disabled, skip")
		return
	}
	if !r.guard.tryStart(d.Name) {
		r.log.WithField("table", d.Name).Debug("rebuild already running, queued")
		return
	}

	go func() {
		for {
			ctx, cancel := context.WithTimeout(r.baseCtx, time.Duration(r.cfg.TimeoutSeconds)*time.Second)
			if err := r.rebuildWithRetry(ctx, d); err != nil {
				r.log.WithError(&model.DownstreamSyncError{Table: d.Name, Err: err}).Error("derived rebuild failed")
			}
			cancel()
			if !r.guard.finish(d.Name) {
				return
			}
		}
	}()
}

// Wait 等待所有异步重建结束
func (r *Rebuilder) Wait(ctx context.Context) error {
	return r.guard.waitAll(ctx)
}

// Rebuild 同步重建指定派生表（CLI 使用）
func (r *Rebuilder) Rebuild(ctx context.Context, name string) error {
	d, err := r.Lookup(name)
	if err != nil {
		return err
	}
	return r.rebuildWithRetry(ctx, d)
}

func (r *Rebuilder) rebuildWithRetry(ctx context.Context, d model.DerivedTable) error {
	log := r.log.WithField("table", d.Name)
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), r.cfg.MaxRetries), ctx)

	operation := func() error {
		err := r.rebuildOnce(ctx, d)
		var nf *model.NotFoundError
		if errors.As(err, &nf) {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.RetryNotify(operation, policy, func(err error, wait time.Duration) {
		log.WithError(err).Warnf("retrying derived rebuild in %s", wait)
	})
}

// rebuildOnce 影子表 -> 逐个数据源写入 -> 事务内 drop 目标表并 rename 影子表
func (r *Rebuilder) rebuildOnce(ctx context.Context, d model.DerivedTable) (err error) {
	start := time.Now()
	defer func() {
		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultFailed
		}
		metrics.DerivedRebuilds.WithLabelValues(d.Name, result).Inc()
		metrics.DerivedRebuildDuration.WithLabelValues(d.Name).Observe(time.Since(start).Seconds())
	}()

	unlock, err := acquireLock(ctx, r.store, d.Name)
	if err != nil {
		return err
	}
	defer unlock()

	dl := r.store.Dialect()
	shadow := shadowName(d.Name)

	if err := r.store.Exec(ctx, createShadowSQL(dl, shadow, d)); err != nil {
		return err
	}
	swapped := false
	defer func() {
		if !swapped {
			if dropErr := r.store.Exec(context.WithoutCancel(ctx), dl.DropTableIfExists(shadow)); dropErr != nil {
				r.log.WithError(dropErr).WithField("shadow", shadow).Warn("failed to drop shadow table")
			}
		}
	}()

	for _, src := range d.Sources {
		query, args, err := fillShadowSQL(dl, shadow, d, src)
		if err != nil {
			return err
		}
		if err := r.store.Exec(ctx, query, args...); err != nil {
			return err
		}
	}

	tx, err := r.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := tx.Exec(ctx, dl.DropTableIfExists(d.Name)); err != nil {
		return err
	}
	if err := tx.Exec(ctx, dl.RenameTable(shadow, d.Name)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	swapped = true

	r.log.WithFields(logrus.Fields{
		"table":   d.Name,
		"elapsed": time.Since(start).String(),
	}).Info("derived table rebuilt")
	return nil
}
