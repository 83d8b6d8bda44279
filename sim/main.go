package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
)

var cli struct {
	Input string `help:"Directory scanned for .toml load scenarios." default:"./input" type:"path"`
}

func main() {
	kong.Parse(&cli, kong.Description("beestore-sim replays randomized load scenarios against a running beestore-server."))

	cases, err := loadScenarios(cli.Input)
	if err != nil {
		fmt.Fprintln(os.Stderr, "beestore-sim:", err)
		os.Exit(1)
	}
	if len(cases) == 0 {
		fmt.Fprintln(os.Stderr, "beestore-sim: no .toml scenarios under", cli.Input)
		os.Exit(1)
	}

	failed := 0
	for _, tc := range cases {
		if err := tc.run(); err != nil {
			fmt.Fprintf(os.Stderr, "beestore-sim: scenario %s: %v\n", tc.Name, err)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// loadScenarios reads every .toml file directly under dir into a validated
// TestCase, in directory order.
func loadScenarios(dir string) ([]*TestCase, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var cases []*TestCase
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".toml" {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		tc, err := newTestCase(raw)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", e.Name(), err)
		}
		cases = append(cases, tc)
	}
	return cases, nil
}
