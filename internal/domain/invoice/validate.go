package invoice

import (
	"strings"

	"github.com/go-faster/errors"
)

// ErrValidation is matched by every ValidationError.
var ErrValidation = errors.New("invalid invoice")

// ValidationError lists the problems that prevent an invoice from being
// saved.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid invoice: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validate checks the fields required to persist an invoice: a number, a
// client name and at least one item with a description.
func Validate(inv *Invoice) error {
	var problems []string
	if strings.TrimSpace(inv.Number) == "" {
		problems = append(problems, "Invoice number is required")
	}
	if strings.TrimSpace(inv.Recipient.Name) == "" {
		problems = append(problems, "Client name is required")
	}
	described := false
	for _, item := range inv.Items {
		if strings.TrimSpace(item.Description) != "" {
			described = true
			break
		}
	}
	if !described {
		problems = append(problems, "At least one item with a description is required")
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
