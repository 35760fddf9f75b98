package service

import (
	"errors"
	"fmt"
	"strings"

	"go-inventory-po/pkg/validator"

	"gorm.io/gorm"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrDuplicateKey         = errors.New("duplicate key")
	ErrReferentialIntegrity = errors.New("referential integrity violation")
	ErrValidation           = errors.New("validation failed")
	ErrTransactionFailure   = errors.New("transaction failed")
	ErrAlreadyConfirmed     = errors.New("purchase order already confirmed")
)

// ValidationError lists every field that failed validation. It matches
// ErrValidation with errors.Is.
type ValidationError struct {
	Fields []*validator.ErrorResponse
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("Field '%s' failed on tag '%s'", f.FailedField, f.Tag))
	}
	return "Validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func validate(data interface{}) error {
	if errs := validator.ValidateStruct(data); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func invalid(field, tag string) error {
	return &ValidationError{Fields: []*validator.ErrorResponse{{FailedField: field, Tag: tag}}}
}

// translate maps storage errors onto the domain taxonomy. what names the
// entity for the message.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s %w", what, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", what, ErrDuplicateKey)
	case errors.Is(err, gorm.ErrForeignKeyViolated), isSQLiteForeignKey(err):
		return fmt.Errorf("%s: %w", what, ErrReferentialIntegrity)
	}
	return err
}

// isSQLiteForeignKey catches foreign key failures that the sqlite driver
// leaves untranslated, such as RESTRICT actions on tables created before
// the constraint was declared NO ACTION.
func isSQLiteForeignKey(err error) bool {
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
