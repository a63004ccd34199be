// Command adminctl drives the TausePro super-admin API from a terminal. The
// admin session and listing filters persist in a JSON file between runs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"

	"tausepro/internal/persist"
	"tausepro/internal/platform/config"
	"tausepro/internal/platform/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := config.CLIFromEnv()
	if err != nil {
		fmt.Fprintln(stderr, "adminctl:", err)
		return 2
	}

	fs := flag.NewFlagSet("adminctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	apiURL := fs.String("api", cfg.APIBaseURL, "API base URL")
	sessionFile := fs.String("session", cfg.SessionFile, "session file (default ~/.config/tausepro/session.json)")
	output := fs.String("o", "table", "output format: table, json or yaml")
	fs.Usage = func() { usage(stderr, fs) }
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		usage(stderr, fs)
		return 2
	}
	outFormat, err := parseFormat(*output)
	if err != nil {
		fmt.Fprintln(stderr, "adminctl:", err)
		return 2
	}

	path := *sessionFile
	if path == "" {
		path = persist.DefaultFilePath()
	}
	cfg.APIBaseURL = *apiURL

	a := newApp(cfg, persist.NewFile(path), logger.NewWithWriter(stderr, cfg.LogLevel))
	a.in = stdin
	a.out = stdout
	a.format = outFormat
	a.color = outFormat == formatTable && isTerminal(stdout)
	a.interactive = isTerminal(stdin)

	if err := a.run(ctx, fs.Arg(0), fs.Args()[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, "adminctl:", err)
		return 1
	}
	return 0
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func usage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "usage: adminctl [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-14s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "flags:")
	fs.PrintDefaults()
}
