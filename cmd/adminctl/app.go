package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	adminstore "tausepro/internal/admin/store"
	"tausepro/internal/apiclient"
	"tausepro/internal/auth"
	"tausepro/internal/persist"
	"tausepro/internal/platform/config"
	id "tausepro/pkg/domain"
	dErrors "tausepro/pkg/domain-errors"
)

// app is one adminctl invocation: the admin session, the admin store on top
// of it and where output goes.
type app struct {
	session *auth.Session
	store   *adminstore.Store
	logger  *slog.Logger

	in          io.Reader
	out         io.Writer
	format      format
	color       bool
	interactive bool
	now         func() time.Time
}

// sessionIDFor derives a stable session ID per API base URL so one session
// file can hold logins for several environments.
func sessionIDFor(baseURL string) id.SessionID {
	return id.SessionID(uuid.NewSHA1(uuid.NameSpaceURL, []byte(strings.TrimRight(baseURL, "/"))))
}

func newApp(cfg config.CLI, ps persist.Store, logger *slog.Logger) *app {
	sid := sessionIDFor(cfg.APIBaseURL)
	session := auth.NewSession(sid, auth.AdminRealm,
		apiclient.Config{BaseURL: cfg.APIBaseURL, Timeout: cfg.Timeout},
		ps,
		auth.WithLogger(logger),
	)
	store := adminstore.New(session.API(), sid, ps, adminstore.WithLogger(logger))
	session.OnClear(store.Reset)
	return &app{
		session: session,
		store:   store,
		logger:  logger,
		in:      os.Stdin,
		out:     os.Stdout,
		format:  formatTable,
		now:     time.Now,
	}
}

type command struct {
	name    string
	summary string
	auth    bool
	run     func(a *app, ctx context.Context, fs *flag.FlagSet, args []string) error
}

func (a *app) run(ctx context.Context, name string, args []string) error {
	cmd, ok := lookup(name)
	if !ok {
		return fmt.Errorf("unknown command %q", name)
	}

	if err := a.session.Restore(ctx); err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if err := a.store.Restore(ctx); err != nil {
		return fmt.Errorf("load admin state: %w", err)
	}
	if cmd.auth && !a.session.State().IsAuthenticated {
		return dErrors.New(dErrors.CodeUnauthorized, "not logged in, run: adminctl login")
	}

	fs := flag.NewFlagSet("adminctl "+cmd.name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return cmd.run(a, ctx, fs, args)
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// password takes the flag, then TAUSEPRO_ADMIN_PASSWORD, then one line of
// input.
func (a *app) password(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv("TAUSEPRO_ADMIN_PASSWORD"); v != "" {
		return v, nil
	}
	if a.interactive {
		fmt.Fprint(a.out, "Password: ")
	}
	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && line == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "password is required")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// setFlags returns the names of flags given on the command line, so filter
// patches can tell "not given" from "given empty".
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func patchValue(set map[string]bool, name, value string) *string {
	if !set[name] {
		return nil
	}
	return &value
}

// oneArg parses flags and expects exactly one positional argument. Flags may
// come before or after it.
func oneArg(fs *flag.FlagSet, args []string, what string) (string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return "", err
		}
		if fs.NArg() == 0 {
			break
		}
		pos = append(pos, fs.Arg(0))
		args = fs.Args()[1:]
	}
	if len(pos) != 1 {
		return "", dErrors.New(dErrors.CodeBadRequest, "expected one "+what)
	}
	return pos[0], nil
}
