package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/felixgeelhaar/codelite/internal/config"
)

// daemonAddr returns the base URL of the local daemon
func daemonAddr() string {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultLocalConfig()
	}
	return "http://" + cfg.Daemon.Addr()
}

// cmdLeaderboard prints the leaderboard served by codelited
func cmdLeaderboard(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("leaderboard", flag.ContinueOnError)
	fs.SetOutput(out)
	sortKey := fs.String("sort", "streak", "sort key (streak, problems, accuracy)")
	limit := fs.Int("limit", 10, "number of entries")
	addr := fs.String("addr", "", "daemon base URL (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *addr == "" {
		*addr = daemonAddr()
	}

	return fetchLeaderboard(&http.Client{Timeout: 10 * time.Second}, *addr, *sortKey, *limit, out)
}

func fetchLeaderboard(client *http.Client, base, sortKey string, limit int, out io.Writer) error {
	q := url.Values{}
	q.Set("sort", sortKey)
	q.Set("limit", strconv.Itoa(limit))

	resp, err := client.Get(base + "/v1/leaderboard?" + q.Encode())
	if err != nil {
		return fmt.Errorf("daemon not reachable at %s (run codelited first): %w", base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("leaderboard: %s (%s)", apiErr.Error, apiErr.Details)
	}

	var board struct {
		Sort    string `json:"sort"`
		Entries []struct {
			Rank           int    `json:"rank"`
			Name           string `json:"name"`
			Language       string `json:"language"`
			ProblemsSolved int    `json:"problems_solved"`
			AvgAccuracy    int    `json:"avg_accuracy"`
			CurrentStreak  int    `json:"current_streak"`
			BestStreak     int    `json:"best_streak"`
		} `json:"entries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	fmt.Fprintf(out, "Leaderboard (by %s)\n", board.Sort)
	fmt.Fprintln(out, "=====================")
	if len(board.Entries) == 0 {
		fmt.Fprintln(out, "No learners yet.")
		return nil
	}
	fmt.Fprintf(out, "%-4s %-20s %-7s %8s %8s %8s\n", "#", "Name", "Lang", "Solved", "Acc", "Streak")
	for _, e := range board.Entries {
		fmt.Fprintf(out, "%-4d %-20s %-7s %8d %7d%% %4d/%-3d\n",
			e.Rank, e.Name, e.Language, e.ProblemsSolved, e.AvgAccuracy, e.CurrentStreak, e.BestStreak)
	}
	return nil
}
