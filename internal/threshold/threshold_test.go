package threshold

import (
	"strings"
	"testing"

	"github.com/torosent/zerobench/internal/stats"
	"github.com/torosent/zerobench/internal/strategy"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      Threshold
		wantError bool
	}{
		{
			name:  "valid median threshold",
			input: "memset:median < 5000",
			want: Threshold{
				Strategy: "memset",
				Field:    "median",
				Operator: "<",
				Value:    5000,
				Raw:      "memset:median < 5000",
			},
		},
		{
			name:  "all strategies with <=",
			input: "all:p99 <= 20000",
			want: Threshold{
				Strategy: "all",
				Field:    "p99",
				Operator: "<=",
				Value:    20000,
				Raw:      "all:p99 <= 20000",
			},
		},
		{
			name:  "surrounding whitespace and no spaces",
			input: "  calloc:mean>=12.5  ",
			want: Threshold{
				Strategy: "calloc",
				Field:    "mean",
				Operator: ">=",
				Value:    12.5,
				Raw:      "calloc:mean>=12.5",
			},
		},
		{name: "empty", input: "", wantError: true},
		{name: "missing field", input: "memset < 10", wantError: true},
		{name: "unknown strategy", input: "malloc:median < 10", wantError: true},
		{name: "unknown field", input: "memset:p95 < 10", wantError: true},
		{name: "unknown operator", input: "memset:median != 10", wantError: true},
		{name: "negative value", input: "memset:median < -10", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantError {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %+v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseAcceptsEveryStrategyName(t *testing.T) {
	for _, s := range strategy.All() {
		th, err := Parse(s.Name + ":max < 100")
		if err != nil {
			t.Errorf("Parse(%q) error = %v", s.Name, err)
			continue
		}
		if th.Strategy != s.Name {
			t.Errorf("Strategy = %q, want %q", th.Strategy, s.Name)
		}
	}
}

func TestParseMultiple(t *testing.T) {
	got, err := ParseMultiple([]string{"memset:median < 10", "all:max < 100"})
	if err != nil {
		t.Fatalf("ParseMultiple() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	if got, err := ParseMultiple(nil); err != nil || got != nil {
		t.Errorf("ParseMultiple(nil) = %v, %v; want nil, nil", got, err)
	}

	_, err = ParseMultiple([]string{"memset:median < 10", "bogus"})
	if err == nil {
		t.Fatal("expected error for invalid entry")
	}
	if !strings.Contains(err.Error(), "threshold[1]") {
		t.Errorf("error %q should name the failing index", err)
	}
}

func quartileSummary(min, q1, median, q3, max uint64) stats.Summary {
	return stats.Summary{
		Policy:  stats.PolicyQuartile,
		Samples: 40,
		Fields: []stats.Field{
			{Name: "min", Value: min},
			{Name: "q1", Value: q1},
			{Name: "median", Value: median},
			{Name: "q3", Value: q3},
			{Name: "max", Value: max},
		},
	}
}

func TestEvaluator(t *testing.T) {
	summaries := []stats.Named{
		{Strategy: "noinit", Summary: quartileSummary(100, 200, 300, 400, 900)},
		{Strategy: "memset", Summary: quartileSummary(150, 250, 350, 450, 1200)},
		{Strategy: "calloc", Summary: quartileSummary(120, 220, 320, 420, 1000)},
	}

	tests := []struct {
		name       string
		thresholds []string
		wantPass   []bool
	}{
		{
			name:       "single strategy passes",
			thresholds: []string{"memset:median < 400"},
			wantPass:   []bool{true},
		},
		{
			name:       "all expands per strategy",
			thresholds: []string{"all:max <= 1000"},
			wantPass:   []bool{true, false, true},
		},
		{
			name: "mixed",
			thresholds: []string{
				"noinit:min >= 100",
				"calloc:q3 > 500",
			},
			wantPass: []bool{true, false},
		},
		{
			name:       "field missing under reducer",
			thresholds: []string{"noinit:p99 < 10000"},
			wantPass:   []bool{false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thresholds, err := ParseMultiple(tt.thresholds)
			if err != nil {
				t.Fatalf("ParseMultiple() error = %v", err)
			}

			results := NewEvaluator(thresholds).Evaluate(summaries)

			if len(results) != len(tt.wantPass) {
				t.Fatalf("got %d results, want %d", len(results), len(tt.wantPass))
			}

			for i, result := range results {
				if result.Pass != tt.wantPass[i] {
					t.Errorf("threshold[%d] %q on %s: got pass=%v, want %v (actual=%.0f)",
						i, result.Threshold.Raw, result.Strategy, result.Pass, tt.wantPass[i], result.Actual)
				}
			}
		})
	}
}

func TestEvaluatorSkipsStrategiesThatDidNotRun(t *testing.T) {
	thresholds, _ := ParseMultiple([]string{"calloc:median < 10"})
	results := NewEvaluator(thresholds).Evaluate([]stats.Named{
		{Strategy: "noinit", Summary: quartileSummary(1, 2, 3, 4, 5)},
	})
	if len(results) != 0 {
		t.Fatalf("got %d results, want 0", len(results))
	}
}

func TestPassed(t *testing.T) {
	if !Passed(nil) {
		t.Error("Passed(nil) = false, want true")
	}
	if Passed([]Result{{Pass: true}, {Pass: false}}) {
		t.Error("Passed() = true with a failing result")
	}
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		name     string
		actual   float64
		operator string
		expected float64
		want     bool
	}{
		{"less than true", 50, "<", 100, true},
		{"less than false", 100, "<", 50, false},
		{"less than equal", 100, "<", 100, false},
		{"less than or equal true", 50, "<=", 100, true},
		{"less than or equal equal", 100, "<=", 100, true},
		{"less than or equal false", 150, "<=", 100, false},
		{"greater than true", 150, ">", 100, true},
		{"greater than false", 50, ">", 100, false},
		{"greater than or equal equal", 100, ">=", 100, true},
		{"greater than or equal false", 50, ">=", 100, false},
		{"equal true", 100, "==", 100, true},
		{"equal false", 100, "==", 101, false},
		{"unknown operator", 100, "!=", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compareValues(tt.actual, tt.operator, tt.expected)
			if got != tt.want {
				t.Errorf("compareValues(%.2f, %s, %.2f) = %v, want %v",
					tt.actual, tt.operator, tt.expected, got, tt.want)
			}
		})
	}
}
