// Command codelite is the CodeLite command-line client.
package main

import (
	"fmt"
	"os"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "analyze":
		err = cmdAnalyze(os.Args[2:], os.Stdin, os.Stdout)
	case "problems":
		err = cmdProblems(os.Args[2:], os.Stdout)
	case "streak":
		err = cmdStreak(os.Args[2:], os.Stdout)
	case "leaderboard":
		err = cmdLeaderboard(os.Args[2:], os.Stdout)
	case "worker":
		err = cmdWorker(os.Args[2:])
	case "mcp":
		err = cmdMCP()
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Printf("codelite %s\n", Version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`CodeLite - Static code analysis and streaks for practice problems

Usage:
  codelite <command> [arguments]

Analysis Commands:
  analyze         Analyze a submission (file argument or stdin)
  problems        List problems, or show one with starter code

Streak Commands:
  streak update   Apply today's activity to a streak
  streak status   Classify a streak as active, at-risk or broken
  streak format   Render a streak length ("1 day", "5 days")

Daemon Commands:
  leaderboard     Show the leaderboard from a running codelited

Integration Commands:
  worker          Consume the notification queue and send emails
  mcp             Start MCP server on stdio

Other:
  help            Show this help message
  version         Show version information

Examples:
  codelite analyze -language Python -problem fizzbuzz solution.py
  codelite problems factorial -language Java
  codelite streak update -current 3 -best 5 -last 2024-03-09
  codelite leaderboard -sort accuracy -limit 5`)
}
