package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/felixgeelhaar/codelite/internal/analyzer"
	"github.com/felixgeelhaar/codelite/internal/domain"
	"github.com/felixgeelhaar/codelite/internal/problem"
)

// cmdAnalyze scores code read from a file argument or stdin
func cmdAnalyze(args []string, stdin io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(out)
	language := fs.String("language", string(domain.DefaultLanguage), "source language (Python, C, Java)")
	problemID := fs.String("problem", "", "problem ID, e.g. fizzbuzz")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *problemID == "" {
		return fmt.Errorf("-problem is required")
	}

	lang, err := domain.ParseLanguage(*language)
	if err != nil {
		return err
	}

	var src io.Reader = stdin
	if path := fs.Arg(0); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		src = f
	}
	code, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("read code: %w", err)
	}

	result, err := analyzer.New().AnalyzeProblem(string(code), lang, *problemID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Problem:        %s (%s)\n", *problemID, lang)
	fmt.Fprintf(out, "Accuracy:       %d%% %s\n", result.Accuracy, renderProgressBar(float64(result.Accuracy)/100, 20))
	fmt.Fprintf(out, "Status:         %s\n", result.Status)
	fmt.Fprintf(out, "Topics:         %s\n", strings.Join(result.Topics, ", "))
	fmt.Fprintf(out, "\n%s\n", result.Feedback)
	fmt.Fprintf(out, "\nNext: %s\n", result.Recommendation)
	return nil
}

// cmdProblems lists problems, or prints one problem with its starter code
func cmdProblems(args []string, out io.Writer) error {
	reg, err := problem.NewBuiltinRegistry()
	if err != nil {
		return err
	}

	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		fmt.Fprintln(out, "Problems")
		fmt.Fprintln(out, "========")
		for _, p := range reg.List() {
			fmt.Fprintf(out, "%-18s %-8s %s\n", p.ID, p.Difficulty, p.Title)
		}
		return nil
	}

	id := args[0]
	fs := flag.NewFlagSet("problems", flag.ContinueOnError)
	fs.SetOutput(out)
	language := fs.String("language", string(domain.DefaultLanguage), "starter code language")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	p, err := reg.Get(id)
	if err != nil {
		return err
	}
	lang, err := domain.ParseLanguage(*language)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s [%s]\n\n%s\n", p.Title, p.Difficulty, p.Description)
	if p.InputDescription != "" {
		fmt.Fprintf(out, "\nInput:  %s\nOutput: %s\n", p.InputDescription, p.OutputDescription)
	}
	for _, ex := range p.Examples {
		fmt.Fprintf(out, "  %s  ->  %s\n", ex.Input, ex.Output)
	}
	if code, ok := p.Starter(lang); ok {
		fmt.Fprintf(out, "\nStarter code (%s):\n%s", lang, code)
	}
	return nil
}

// renderProgressBar creates a visual progress bar
func renderProgressBar(value float64, width int) string {
	filled := int(value * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	empty := width - filled

	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", empty) + "]"
}
