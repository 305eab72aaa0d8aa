package config

import (
	"flag"
	"os"
	"time"

	"github.com/itd-social/itd-client/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   API origin, e.g. https://itd.gg
//	-i int      notification poll interval in seconds
//	-l int      page size for list endpoints
//	-d string   data directory for credentials
//
// os.Args is filtered down to these flags first so other components' flags
// do not interfere.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-l", "-d"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BaseURL, "a", cfg.BaseURL, "API origin")
	pollInterval := fs.Int("i", int(cfg.PollInterval.Seconds()), "notification poll interval (in seconds)")
	fs.IntVar(&cfg.PageLimit, "l", cfg.PageLimit, "page size for list endpoints")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.PollInterval = time.Duration(*pollInterval) * time.Second
}
