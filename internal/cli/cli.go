// Package cli implements the spotify-history-warehouse command line.
package cli

import (
	"errors"
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

const name = "spotify-history-warehouse"

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Run       *RunCommand
	History   *HistoryCommand
	Enrich    *EnrichCommand
	Aggregate *AggregateCommand
	Tables    *TablesCommand
	Moods     *MoodsCommand
	Serve     *ServeCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = name
	parser.LongDescription = "Load a Spotify streaming history export, enrich it from the Web API and persist every stage as a table."

	cmds := &commands{
		Run:       &RunCommand{globals: &globals, out: os.Stdout},
		History:   &HistoryCommand{globals: &globals, out: os.Stdout},
		Enrich:    &EnrichCommand{globals: &globals, out: os.Stdout},
		Aggregate: &AggregateCommand{globals: &globals, out: os.Stdout},
		Tables:    &TablesCommand{globals: &globals, out: os.Stdout},
		Moods:     &MoodsCommand{globals: &globals, out: os.Stdout},
		Serve:     &ServeCommand{globals: &globals},
	}

	parser.AddCommand("run", "Run every stage", "Load and clean the history, enrich it from the catalog and aggregate audio features.", cmds.Run)
	parser.AddCommand("history", "Load and clean the history export", "Write raw_history and clean_history from the export files.", cmds.History)
	parser.AddCommand("enrich", "Fetch catalog metadata", "Fetch tracks, artists, albums and audio features for the cleaned history.", cmds.Enrich)
	parser.AddCommand("aggregate", "Aggregate audio features", "Write per-artist and per-album audio feature means.", cmds.Aggregate)
	parser.AddCommand("tables", "Show snapshot row counts", "Show the row count of every snapshot table.", cmds.Tables)
	parser.AddCommand("moods", "Show mood clusters", "Cluster analyzed tracks by energy, valence, danceability and acousticness.", cmds.Moods)
	parser.AddCommand("serve", "Serve the JSON report", "Serve a read-only JSON report over the snapshot tables.", cmds.Serve)

	return parser, &globals, cmds
}

// Run is the main entry point using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("%s %s\n", name, version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	var flagsErr *goflags.Error
	if errors.As(err, &flagsErr) && flagsErr.Type == goflags.ErrHelp {
		return nil
	}
	return err
}
