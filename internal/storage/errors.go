package storage

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/Veraticus/pocketbook/internal/common"
)

// Domain errors.
var (
	ErrCategoryNotFound     = fmt.Errorf("category %w", common.ErrNotFound)
	ErrOperationNotFound    = fmt.Errorf("operation %w", common.ErrNotFound)
	ErrBudgetLimitNotFound  = fmt.Errorf("budget limit %w", common.ErrNotFound)
	ErrDuplicateCategory    = fmt.Errorf("category name: %w", common.ErrDuplicateEntry)
	ErrDuplicateBudgetLimit = fmt.Errorf("budget limit for this category and month: %w", common.ErrDuplicateEntry)
	ErrCategoryInUse        = errors.New("category is referenced by existing operations")
)

func sqliteExtendedCode(err error) (sqlite3.ErrNoExtended, bool) {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode, true
	}
	return 0, false
}

func isUniqueViolation(err error) bool {
	code, ok := sqliteExtendedCode(err)
	return ok && (code == sqlite3.ErrConstraintUnique || code == sqlite3.ErrConstraintPrimaryKey)
}

// isForeignKeyViolation matches both ways SQLite reports a foreign key
// failure: a missing parent on insert or update (FOREIGNKEY), and an
// ON DELETE RESTRICT action refusing a parent delete (TRIGGER).
func isForeignKeyViolation(err error) bool {
	code, ok := sqliteExtendedCode(err)
	return ok && (code == sqlite3.ErrConstraintForeignKey || code == sqlite3.ErrConstraintTrigger)
}
