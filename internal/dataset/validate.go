package dataset

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate enforces the export preconditions on the assembled table:
// transaction identifier uniqueness, foreign-key resolvability against
// the run's dimension sets, non-null required fields, and timestamp
// ordering. The first violation aborts the run; nothing is exported.
func Validate(t *Table) error {
	check := validator.New()
	seen := make(map[string]struct{}, len(t.Rows))

	for i := range t.Rows {
		r := &t.Rows[i]

		if _, dup := seen[r.TransactID]; dup {
			return fmt.Errorf("%w: row %d transact_id %s", ErrDuplicateKey, i, r.TransactID)
		}
		seen[r.TransactID] = struct{}{}

		if _, ok := t.userIDs[r.UserID]; !ok {
			return fmt.Errorf("%w: row %d user %s", ErrDanglingReference, i, r.UserID)
		}
		if _, ok := t.productIDs[r.ProductID]; !ok {
			return fmt.Errorf("%w: row %d product %s", ErrDanglingReference, i, r.ProductID)
		}

		if !r.LoginTime.Before(r.LogoutTime) {
			return fmt.Errorf("%w: row %d", ErrTimestampOrder, i)
		}

		if err := check.Struct(r); err != nil {
			var fields validator.ValidationErrors
			if errors.As(err, &fields) && len(fields) > 0 {
				field := fields[0]
				if field.Tag() == "required" {
					return fmt.Errorf("%w: row %d field %s", ErrNullField, i, field.Field())
				}
				return fmt.Errorf("%w: row %d field %s failed %s", ErrInvalidField, i, field.Field(), field.Tag())
			}
			return fmt.Errorf("dataset: row %d: %w", i, err)
		}
	}
	return nil
}
