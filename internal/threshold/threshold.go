package threshold

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/torosent/zerobench/internal/stats"
	"github.com/torosent/zerobench/internal/strategy"
)

// AllStrategies makes a threshold apply to every strategy that ran.
const AllStrategies = "all"

// Threshold represents a performance assertion that can pass or fail.
type Threshold struct {
	Strategy string  // e.g., "memset", "calloc", "all"
	Field    string  // e.g., "median", "p99", "mean"
	Operator string  // e.g., "<", "<=", ">", ">=", "=="
	Value    float64 // nanoseconds
	Raw      string  // Original threshold string for display
}

// Result represents the outcome of evaluating a threshold against one strategy.
type Result struct {
	Threshold Threshold
	Strategy  string
	Actual    float64
	Pass      bool
	Message   string
}

// Evaluator evaluates thresholds against strategy summaries.
type Evaluator struct {
	thresholds []Threshold
}

// NewEvaluator creates a new threshold evaluator.
func NewEvaluator(thresholds []Threshold) *Evaluator {
	return &Evaluator{
		thresholds: thresholds,
	}
}

// Evaluate checks all thresholds against the provided summaries. A threshold
// naming a single strategy that did not run yields no result.
func (e *Evaluator) Evaluate(summaries []stats.Named) []Result {
	if len(e.thresholds) == 0 {
		return nil
	}

	var results []Result
	for _, t := range e.thresholds {
		for _, named := range summaries {
			if t.Strategy != AllStrategies && t.Strategy != named.Strategy {
				continue
			}
			results = append(results, e.evaluateOne(t, named))
		}
	}
	return results
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Pass {
			return false
		}
	}
	return true
}

func (e *Evaluator) evaluateOne(t Threshold, named stats.Named) Result {
	v, ok := named.Summary.Get(t.Field)
	if !ok {
		return Result{
			Threshold: t,
			Strategy:  named.Strategy,
			Pass:      false,
			Message: fmt.Sprintf("✗ %s: %s has no %q field under the %s reducer",
				t.Raw, named.Strategy, t.Field, named.Summary.Policy),
		}
	}

	actual := float64(v)
	pass := compareValues(actual, t.Operator, t.Value)
	status := "✓"
	if !pass {
		status = "✗"
	}

	message := fmt.Sprintf("%s %s [%s]: %.0f %s %.0f", status, t.Raw, named.Strategy, actual, t.Operator, t.Value)
	return Result{
		Threshold: t,
		Strategy:  named.Strategy,
		Actual:    actual,
		Pass:      pass,
		Message:   message,
	}
}

var thresholdPattern = regexp.MustCompile(`^([a-z_]+):([a-z0-9]+)\s*([<>=!]+)\s*([0-9.]+)$`)

// Parse parses a threshold string into a Threshold struct.
// Supported formats:
// - "memset:median < 5000"    (median trial time of one strategy, ns)
// - "all:p99 <= 20000"        (applies to every strategy that ran)
// - "calloc:mean < 1500"      (mean reducer)
func Parse(s string) (Threshold, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Threshold{}, fmt.Errorf("empty threshold string")
	}

	matches := thresholdPattern.FindStringSubmatch(s)
	if matches == nil {
		return Threshold{}, fmt.Errorf("invalid threshold format: %q (expected format: strategy:field operator value, e.g., 'memset:median < 5000')", s)
	}

	target := matches[1]
	field := matches[2]
	operator := matches[3]
	valueStr := matches[4]

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("invalid threshold value %q: %v", valueStr, err)
	}

	if !isValidStrategy(target) {
		return Threshold{}, fmt.Errorf("unsupported strategy: %q (supported: all, noinit, memset, calloc)", target)
	}

	if !isValidField(field) {
		return Threshold{}, fmt.Errorf("unsupported field: %q (supported: min, q1, median, q3, max, mean, p50, p90, p99)", field)
	}

	if !isValidOperator(operator) {
		return Threshold{}, fmt.Errorf("unsupported operator: %q (supported: <, <=, >, >=, ==)", operator)
	}

	return Threshold{
		Strategy: target,
		Field:    field,
		Operator: operator,
		Value:    value,
		Raw:      s,
	}, nil
}

// ParseMultiple parses multiple threshold strings.
func ParseMultiple(thresholds []string) ([]Threshold, error) {
	if len(thresholds) == 0 {
		return nil, nil
	}

	result := make([]Threshold, 0, len(thresholds))
	var errors []string

	for i, s := range thresholds {
		t, err := Parse(s)
		if err != nil {
			errors = append(errors, fmt.Sprintf("threshold[%d]: %v", i, err))
			continue
		}
		result = append(result, t)
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("threshold parsing errors: %s", strings.Join(errors, "; "))
	}

	return result, nil
}

func isValidStrategy(name string) bool {
	if name == AllStrategies {
		return true
	}
	_, ok := strategy.Lookup(name)
	return ok
}

func isValidField(field string) bool {
	valid := []string{"min", "q1", "median", "q3", "max", "mean", "p50", "p90", "p99"}
	for _, v := range valid {
		if field == v {
			return true
		}
	}
	return false
}

func isValidOperator(operator string) bool {
	valid := []string{"<", "<=", ">", ">=", "=="}
	for _, v := range valid {
		if operator == v {
			return true
		}
	}
	return false
}

func compareValues(actual float64, operator string, expected float64) bool {
	// Handle floating point comparison with small epsilon
	epsilon := 1e-9

	switch operator {
	case "<":
		return actual < expected
	case "<=":
		return actual <= expected || math.Abs(actual-expected) < epsilon
	case ">":
		return actual > expected
	case ">=":
		return actual >= expected || math.Abs(actual-expected) < epsilon
	case "==":
		return math.Abs(actual-expected) < epsilon
	default:
		return false
	}
}
