package agronomy

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/orchardcare/orchard-advisor/pkg/util"
)

// DefaultStaleAfterMonths is how old a lab test may be before the field needs a new one.
const DefaultStaleAfterMonths = 12

// EmptySubmissionMessage is shown when a manual lab entry carries no readings.
const EmptySubmissionMessage = "Please enter at least one value."

// NeedsTest reports whether a field has no test or its latest is older than staleAfterMonths.
func NeedsTest(latest *Sample, now time.Time, staleAfterMonths int) bool {
	if latest == nil || latest.RecordedDate.IsZero() {
		return true
	}
	if staleAfterMonths <= 0 {
		staleAfterMonths = DefaultStaleAfterMonths
	}
	return util.MonthsBetween(latest.RecordedDate, now) > staleAfterMonths
}

// ValidationError lists what is wrong with a submission.
type ValidationError struct {
	Message string
	Unknown []string
}

func (e *ValidationError) Error() string {
	if len(e.Unknown) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (unknown parameters: %s)", e.Message, strings.Join(e.Unknown, ", "))
}

// ValidateSubmission normalizes a manual lab entry. Keys are resolved through
// the table aliases, non-finite values are dropped, and at least one known
// reading must remain.
func ValidateSubmission(family Family, values map[string]float64, table *ReferenceTable) (map[string]float64, error) {
	if !family.IsLab() {
		return nil, &ValidationError{Message: fmt.Sprintf("family %q does not accept lab entries", family)}
	}
	clean := make(map[string]float64, len(values))
	var unknown []string
	for name, v := range values {
		param, ok := table.Resolve(family, name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		clean[param.Key] = v
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &ValidationError{Message: "submission contains unknown parameters", Unknown: unknown}
	}
	if len(clean) == 0 {
		return nil, &ValidationError{Message: EmptySubmissionMessage}
	}
	return clean, nil
}
