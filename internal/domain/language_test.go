package domain

import (
	"errors"
	"testing"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		input   string
		want    Language
		wantErr bool
	}{
		{"Python", LanguagePython, false},
		{"python", LanguagePython, false},
		{"C", LanguageC, false},
		{"c", LanguageC, false},
		{"JAVA", LanguageJava, false},
		{" Java ", LanguageJava, false},
		{"go", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLanguage(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLanguage) {
					t.Errorf("ParseLanguage(%q) error = %v; want ErrInvalidLanguage", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLanguage(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLanguage(%q) = %q; want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLanguage_IsValid(t *testing.T) {
	for _, lang := range Languages() {
		if !lang.IsValid() {
			t.Errorf("%q.IsValid() = false; want true", lang)
		}
	}
	if Language("Rust").IsValid() {
		t.Error("Rust should not be a valid language")
	}
}

func TestParseProblem(t *testing.T) {
	tests := []struct {
		input string
		want  ProblemType
	}{
		{"add-two-numbers", ProblemAddition},
		{"addition", ProblemAddition},
		{"even-or-odd", ProblemEvenOdd},
		{"evenOdd", ProblemEvenOdd},
		{"fizzbuzz", ProblemFizzBuzz},
		{"factorial", ProblemFactorial},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseProblem(tt.input)
			if err != nil {
				t.Fatalf("ParseProblem(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseProblem(%q) = %q; want %q", tt.input, got, tt.want)
			}
		})
	}

	if _, err := ParseProblem("binary-search"); !errors.Is(err, ErrInvalidProblem) {
		t.Errorf("ParseProblem(unknown) error = %v; want ErrInvalidProblem", err)
	}
}

func TestProblemType_ID(t *testing.T) {
	for _, pt := range ProblemTypes() {
		if pt.ID() == "" {
			t.Errorf("%q has no public ID", pt)
		}
		back, err := ParseProblem(pt.ID())
		if err != nil || back != pt {
			t.Errorf("ParseProblem(%q) = %q, %v; want %q", pt.ID(), back, err, pt)
		}
	}
}
