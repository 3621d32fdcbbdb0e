package analyzer

import (
	"errors"
	"testing"

	"github.com/felixgeelhaar/codelite/internal/domain"
)

func TestScore(t *testing.T) {
	plus := detector("addition", `\+`)
	minus := detector("subtraction", `-`)
	star := detector("multiplication", `\*`)

	tests := []struct {
		name string
		code string
		req  RequirementSet
		want int
	}{
		{
			name: "no optional patterns awards full optional weight",
			code: "1+1",
			req:  RequirementSet{Required: []Detector{plus}},
			want: 100,
		},
		{
			name: "clamped at 100 with effort bonus",
			code: "a\nb\n1+1",
			req:  RequirementSet{Required: []Detector{plus}},
			want: 100,
		},
		{
			name: "half of required",
			code: "1+1",
			req:  RequirementSet{Required: []Detector{plus, minus}, Optional: []Detector{star}},
			want: 35,
		},
		{
			name: "one of three required",
			code: "1+1",
			req:  RequirementSet{Required: []Detector{plus, minus, star}, Optional: []Detector{minus}},
			want: 23,
		},
		{
			name: "two of three required",
			code: "1+1-1",
			req:  RequirementSet{Required: []Detector{plus, minus, star}, Optional: []Detector{star}},
			want: 47,
		},
		{
			name: "nothing matches",
			code: "x",
			req:  RequirementSet{Required: []Detector{plus}, Optional: []Detector{minus}},
			want: 0,
		},
		{
			name: "effort bonus only",
			code: "x\n\ny\n   \nz",
			req:  RequirementSet{Required: []Detector{plus}, Optional: []Detector{minus}},
			want: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Score(tt.code, tt.req)
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Score(%q) = %d; want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestScore_NoRequiredPatterns(t *testing.T) {
	_, err := Score("print(1)", RequirementSet{Optional: []Detector{detector("x", `x`)}})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("Score() error = %v; want ErrConfiguration", err)
	}
}

func TestNonBlankLines(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"a\n\n\nb", 2},
		{"  \n a \r\n\t\n b \n", 2},
		{"a\nb\nc", 3},
	}

	for _, tt := range tests {
		if got := NonBlankLines(tt.code); got != tt.want {
			t.Errorf("NonBlankLines(%q) = %d; want %d", tt.code, got, tt.want)
		}
	}
}

func TestDetectTopics_DeclarationOrder(t *testing.T) {
	c := DefaultCatalog()
	detectors, err := c.TopicDetectors(domain.LanguageC)
	if err != nil {
		t.Fatalf("TopicDetectors() error = %v", err)
	}

	code := "int main() { for (int i = 0; i < 3; i++) { printf(\"%d\", i * 2); } }"
	got := DetectTopics(code, detectors)

	want := []string{TopicOutput, TopicArithmetic, TopicModulo, TopicVariable, TopicComparison, TopicLoops, TopicMultiply}
	if len(got) != len(want) {
		t.Fatalf("DetectTopics() = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DetectTopics()[%d] = %q; want %q", i, got[i], want[i])
		}
	}
}

func TestDetermineStatus(t *testing.T) {
	tests := []struct {
		accuracy int
		want     domain.SubmissionStatus
	}{
		{0, domain.StatusNeedsImprovement},
		{44, domain.StatusNeedsImprovement},
		{45, domain.StatusPartiallyCorrect},
		{74, domain.StatusPartiallyCorrect},
		{75, domain.StatusCorrect},
		{100, domain.StatusCorrect},
	}

	for _, tt := range tests {
		if got := DetermineStatus(tt.accuracy); got != tt.want {
			t.Errorf("DetermineStatus(%d) = %q; want %q", tt.accuracy, got, tt.want)
		}
	}
}
