package workflow

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/config"
)

const lockWaitSeconds = 30

// HeldLocks is a set of MySQL advisory locks pinned to one pool connection.
// GET_LOCK is session-scoped and survives commit, so the locks live on their
// own connection rather than the posting transaction: Release is then safe to
// defer past Commit/Rollback, and hands the connection back to the pool.
type HeldLocks struct {
	conn  *sql.Conn
	names []string
}

func acquireLocks(ctx context.Context, names []string) (*HeldLocks, error) {
	sqlDB, err := config.GetDB().DB()
	if err != nil {
		return nil, err
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return nil, err
	}
	held := &HeldLocks{conn: conn}
	for _, name := range names {
		var ok sql.NullInt64
		if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", name, lockWaitSeconds).Scan(&ok); err != nil {
			held.Release(ctx)
			return nil, err
		}
		if !ok.Valid || ok.Int64 != 1 {
			held.Release(ctx)
			return nil, fmt.Errorf("could not acquire advisory lock %s", name)
		}
		held.names = append(held.names, name)
	}
	return held, nil
}

// Release frees the locks in reverse order and returns the connection to the
// pool. Safe to call more than once.
func (l *HeldLocks) Release(ctx context.Context) {
	if l == nil || l.conn == nil {
		return
	}
	for i := len(l.names) - 1; i >= 0; i-- {
		var ok sql.NullInt64
		_ = l.conn.QueryRowContext(ctx, "SELECT RELEASE_LOCK(?)", l.names[i]).Scan(&ok)
	}
	l.names = nil
	_ = l.conn.Close()
	l.conn = nil
}

// AcquireEntityPostingLock serializes posting-sensitive sections per entity
// across instances (lettrage token assignment, definitive closing).
func AcquireEntityPostingLock(ctx context.Context, entityId string) (*HeldLocks, error) {
	return acquireLocks(ctx, []string{fmt.Sprintf("posting:%s", entityId)})
}

// AcquireLineLock serializes balance mutation on a single budget line.
// Callers take the line lock before any FOR UPDATE read on the line so the
// row-lock order stays consistent across commands.
func AcquireLineLock(ctx context.Context, entityId string, lineCode string) (*HeldLocks, error) {
	return AcquireLineLocks(ctx, entityId, lineCode)
}

// AcquireLineLocks takes multiple line locks in code order so two transfers
// touching the same pair cannot deadlock.
func AcquireLineLocks(ctx context.Context, entityId string, lineCodes ...string) (*HeldLocks, error) {
	ordered := orderedLineCodes(lineCodes)
	names := make([]string, 0, len(ordered))
	for _, code := range ordered {
		names = append(names, fmt.Sprintf("line:%s:%s", entityId, code))
	}
	return acquireLocks(ctx, names)
}

// orderedLineCodes copies and sorts the codes so every caller acquires in the
// same order regardless of how the request named them.
func orderedLineCodes(lineCodes []string) []string {
	ordered := append([]string(nil), lineCodes...)
	sort.Strings(ordered)
	return ordered
}
