package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/loankeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN; empty keeps local mode
//	-f string   path of the local JSON database
//	-s string   path of the session token file
//
// The function filters os.Args to only include the flags it knows
// about, using flagx.FilterArgs, to avoid interference with other
// components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-f", "-s"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "PostgreSQL DSN (empty for local mode)")
	fs.StringVar(&cfg.DataFile, "f", cfg.DataFile, "path of the local JSON database")
	fs.StringVar(&cfg.SessionFile, "s", cfg.SessionFile, "path of the session token file")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
