package shim

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// EnvFindingsExitCodes overrides the exit codes treated as "ran cleanly,
// reported findings". A comma-separated list; empty means none.
const EnvFindingsExitCodes = "TFLINT_WRAPPER_FINDINGS_EXIT_CODES"

// FindingsExitCode is TFLint's status for issues found at or above
// --minimum-failure-severity.
const FindingsExitCode = 2

// ExitError reports a failing exit code.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("TFLint exited with code %d.", e.Code)
}

// Policy decides which exit codes are failures.
type Policy struct {
	findings map[int]struct{}
}

// NewPolicy accepts 0 plus the given findings codes.
func NewPolicy(findingsCodes ...int) Policy {
	p := Policy{findings: make(map[int]struct{}, len(findingsCodes))}
	for _, c := range findingsCodes {
		p.findings[c] = struct{}{}
	}
	return p
}

// DefaultPolicy treats exit code 2 as success.
func DefaultPolicy() Policy {
	return NewPolicy(FindingsExitCode)
}

// PolicyFromEnv builds the policy from EnvFindingsExitCodes, falling back to
// DefaultPolicy when the variable is unset.
func PolicyFromEnv(lookup func(string) (string, bool)) (Policy, error) {
	raw, ok := lookup(EnvFindingsExitCodes)
	if !ok {
		return DefaultPolicy(), nil
	}

	var codes []int
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		code, err := strconv.Atoi(field)
		if err != nil {
			return Policy{}, fmt.Errorf("invalid %s %q: %w", EnvFindingsExitCodes, raw, err)
		}
		if code == 0 {
			continue
		}
		codes = append(codes, code)
	}

	return NewPolicy(codes...), nil
}

// Evaluate returns nil for success and *ExitError otherwise.
func (p Policy) Evaluate(code int) error {
	if code == 0 {
		return nil
	}
	if _, ok := p.findings[code]; ok {
		return nil
	}
	return &ExitError{Code: code}
}

// FindingsCodes returns the accepted non-zero codes in ascending order.
func (p Policy) FindingsCodes() []int {
	codes := make([]int, 0, len(p.findings))
	for c := range p.findings {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	return codes
}
