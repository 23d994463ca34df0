package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func TestConstraintClassification(t *testing.T) {
	constraint := func(ext sqlite3.ErrNoExtended) error {
		return fmt.Errorf("exec: %w", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: ext})
	}

	tests := []struct {
		err        error
		name       string
		wantUnique bool
		wantFK     bool
	}{
		{name: "unique", err: constraint(sqlite3.ErrConstraintUnique), wantUnique: true},
		{name: "primary key", err: constraint(sqlite3.ErrConstraintPrimaryKey), wantUnique: true},
		{name: "missing parent", err: constraint(sqlite3.ErrConstraintForeignKey), wantFK: true},
		{name: "on delete restrict", err: constraint(sqlite3.ErrConstraintTrigger), wantFK: true},
		{name: "check", err: constraint(sqlite3.ErrConstraintCheck)},
		{name: "not a sqlite error", err: errors.New("boom")},
		{name: "nil", err: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantUnique, isUniqueViolation(tt.err))
			assert.Equal(t, tt.wantFK, isForeignKeyViolation(tt.err))
		})
	}
}
