package engine

import (
	"fmt"
	"strings"
)

const maxSummarizedErrors = 5

// summarizeErrors joins up to maxSummarizedErrors error messages into one
// human-readable string, appending "(and N more)" when the list is longer.
func summarizeErrors(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	n := len(errs)
	if n > maxSummarizedErrors {
		n = maxSummarizedErrors
	}

	msgs := make([]string, 0, n)
	for _, err := range errs[:n] {
		msgs = append(msgs, err.Error())
	}

	summary := strings.Join(msgs, "; ")
	if extra := len(errs) - n; extra > 0 {
		summary = fmt.Sprintf("%s (and %d more)", summary, extra)
	}
	return summary
}
