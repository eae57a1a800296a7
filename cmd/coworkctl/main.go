// cmd/coworkctl/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/client"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/client/session"
)

const defaultAPIURL = "http://localhost:8080"

type env struct {
	api     *client.Client
	session *session.Store
	out     io.Writer
}

type command struct {
	summary string
	run     func(ctx context.Context, e *env, args []string) error
}

var commands = map[string]command{
	"login":     {"Sign in and store the token", cmdLogin},
	"logout":    {"Forget the stored token", cmdLogout},
	"me":        {"Show the signed-in user", cmdMe},
	"buildings": {"List coworkings", cmdBuildings},
	"floors":    {"List floors and place status of a coworking", cmdFloors},
	"book":      {"Book a place", cmdBook},
	"cancel":    {"Cancel a booking", cmdCancel},
	"bookings":  {"List your bookings", cmdBookings},
	"qr":        {"Save the check-in QR code of a booking", cmdQR},
	"checkin":   {"Check a visitor in by QR payload (staff)", cmdCheckin},
	"place":     {"Move or resize a place on the floor plan (staff)", cmdPlace},
	"settings":  {"Show organization branding", cmdSettings},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("coworkctl", flag.ContinueOnError)
	global.SetOutput(stderr)
	apiURL := global.String("api", envOr("COWORK_API_URL", defaultAPIURL), "API base URL")
	sessionPath := global.String("session", os.Getenv("COWORK_SESSION"), "Session file (default: user config dir)")
	verbose := global.Bool("v", false, "Log retries and client warnings")
	global.Usage = func() { usage(global) }
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		usage(global)
		return 2
	}
	name := global.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", name)
		usage(global)
		return 2
	}

	path := *sessionPath
	if path == "" {
		var err error
		if path, err = session.DefaultPath(); err != nil {
			fmt.Fprintln(stderr, "error:", err)
			return 1
		}
	}
	store, err := session.Open(path)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	level := zerolog.ErrorLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr}).Level(level).With().Timestamp().Logger()

	api, err := client.New(*apiURL, client.Options{
		Session: store,
		Logger:  &logger,
		OnLogout: func(err error) {
			fmt.Fprintln(stderr, "signed out:", err)
		},
	})
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	e := &env{api: api, session: store, out: stdout}
	if err := cmd.run(ctx, e, global.Args()[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 2
		}
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintln(out, "Usage: coworkctl [flags] <command> [command flags]")
	fmt.Fprintln(out, "\nCommands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-10s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(out, "\nFlags:")
	fs.PrintDefaults()
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
