package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/felixgeelhaar/codelite/internal/domain"
	"github.com/felixgeelhaar/codelite/internal/streak"
)

// cmdStreak runs streak arithmetic locally
func cmdStreak(args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: codelite streak <update|status|format>")
	}

	switch args[0] {
	case "update":
		return cmdStreakUpdate(args[1:], out)
	case "status":
		return cmdStreakStatus(args[1:], out)
	case "format":
		return cmdStreakFormat(args[1:], out)
	default:
		return fmt.Errorf("unknown streak command: %s (valid: update, status, format)", args[0])
	}
}

func cmdStreakUpdate(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("streak update", flag.ContinueOnError)
	fs.SetOutput(out)
	current := fs.Int("current", 1, "current streak")
	best := fs.Int("best", 1, "best streak")
	last := fs.String("last", "", "last active date (YYYY-MM-DD)")
	today := fs.String("today", "", "today (YYYY-MM-DD, default: current UTC date)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *last == "" {
		return fmt.Errorf("-last is required")
	}
	if *today == "" {
		*today = streak.SystemClock{}.Today()
	}

	next, err := streak.Update(domain.StreakState{
		CurrentStreak:  *current,
		BestStreak:     *best,
		LastActiveDate: *last,
	}, *today)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Current: %s\n", streak.FormatDisplay(next.CurrentStreak))
	fmt.Fprintf(out, "Best:    %s\n", streak.FormatDisplay(next.BestStreak))
	fmt.Fprintf(out, "Active:  %s\n", next.LastActiveDate)
	return nil
}

func cmdStreakStatus(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("streak status", flag.ContinueOnError)
	fs.SetOutput(out)
	last := fs.String("last", "", "last active date (YYYY-MM-DD)")
	today := fs.String("today", "", "today (YYYY-MM-DD, default: current UTC date)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *last == "" {
		return fmt.Errorf("-last is required")
	}
	if *today == "" {
		*today = streak.SystemClock{}.Today()
	}

	status, err := streak.Status(*last, *today)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, status)
	return nil
}

func cmdStreakFormat(args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: codelite streak format <days>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return fmt.Errorf("days must be a non-negative integer: %q", args[0])
	}
	fmt.Fprintln(out, streak.FormatDisplay(n))
	return nil
}
