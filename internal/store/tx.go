package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/samber/lo"

	"assetreport/internal/model"
)

// Tx 一次上传使用的事务，分类与写入都在其中进行
type Tx struct {
	tx *sql.Tx
	s  *Store
}

// Begin 开始事务
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx, s: s}, nil
}

// Commit 提交事务
func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback 回滚事务（已提交时返回 sql.ErrTxDone）
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// Exec 在事务内执行语句
func (t *Tx) Exec(ctx context.Context, query string, args ...any) error {
	_, err := t.tx.ExecContext(ctx, query, args...)
	return err
}

// HasFullDuplicate 是否存在全部业务列都空值安全相等的行
func (t *Tx) HasFullDuplicate(ctx context.Context, table string, cols []string, values []*string) (bool, error) {
	preds := make([]Predicate, len(cols))
	for i, c := range cols {
		preds[i] = NullSafeEq(c, values[i])
	}

	b := NewBuilder(t.s.dialect).Raw("SELECT COUNT(1) FROM ").Ident(table).Where(And(preds...))

	var n int64
	if err := t.tx.QueryRowContext(ctx, b.String(), b.Args()...).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check full duplicate in %s: %w", table, err)
	}
	return n > 0, nil
}

// FindByKeys 查找关键列空值安全相等的已有行（按 id 升序）
func (t *Tx) FindByKeys(ctx context.Context, table string, cols, keyCols []string, keyValues []*string) ([]model.PersistedRow, error) {
	preds := make([]Predicate, len(keyCols))
	for i, c := range keyCols {
		preds[i] = NullSafeEq(c, keyValues[i])
	}

	b := NewBuilder(t.s.dialect).
		Raw("SELECT ").Idents(selectColumns(cols)).
		Raw(" FROM ").Ident(table).
		Where(And(preds...)).
		Raw(" ORDER BY ").Ident(model.IdentityColumn)

	rows, err := t.tx.QueryContext(ctx, b.String(), b.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to query key matches in %s: %w", table, err)
	}
	return scanRows(rows, cols)
}

// MarkRepeat 将已有行标记为 repeat
func (t *Tx) MarkRepeat(ctx context.Context, table string, id int64) error {
	b := NewBuilder(t.s.dialect).
		Raw("UPDATE ").Ident(table).
		Raw(" SET ").Ident(model.StatusColumn).Raw(" = ").Arg(string(model.StatusRepeat)).
		Where(Eq(model.IdentityColumn, id))

	if _, err := t.tx.ExecContext(ctx, b.String(), b.Args()...); err != nil {
		return fmt.Errorf("failed to mark row %d of %s as repeat: %w", id, table, err)
	}
	return nil
}

// InsertRow 插入一行并返回新 id
func (t *Tx) InsertRow(ctx context.Context, table string, cols []string, values []*string, status *model.Status) (int64, error) {
	args := lo.Map(values, func(v *string, _ int) any { return nullable(v) })
	var st any
	if status != nil {
		st = string(*status)
	}
	args = append(args, st)

	allCols := append(append([]string{}, cols...), model.StatusColumn)
	query, returnsID := t.s.dialect.InsertQuery(table, allCols)

	if returnsID {
		var id int64
		if err := t.tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to insert into %s: %w", table, err)
		}
		return id, nil
	}

	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted id of %s: %w", table, err)
	}
	return id, nil
}
