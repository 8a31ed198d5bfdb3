// Command toolcrib-check loads a toolcrib data directory and reports the
// collections, machine assignments, low stock and rule violations.
//
// Usage:
//
//	toolcrib-check [-env .env] [-data-dir data] [-snapshots werkzeuge.csv]
//
// The exit status is 1 when the fixture-tool audit finds blocking violations
// or the data cannot be opened, 2 on flag errors.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"toolcrib/internal/app"
	"toolcrib/internal/config"
	"toolcrib/pkg/domain"
)

var exitFunc = os.Exit

func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("toolcrib-check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var envFile, dataDir, snapshots string
	fs.StringVar(&envFile, "env", ".env", "optional .env file")
	fs.StringVar(&dataDir, "data-dir", "", "data directory (overrides "+config.EnvDataDir+")")
	fs.StringVar(&snapshots, "snapshots", "", "list archived snapshots of this file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if dataDir != "" {
		if err := os.Setenv(config.EnvDataDir, dataDir); err != nil {
			_, _ = fmt.Fprintf(stderr, "set data dir: %v\n", err)
			return 1
		}
	}
	cfg, err := config.Load(envFile)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	// The report is read-only.
	cfg.Journal.Driver = "none"
	ctx := context.Background()
	a, err := app.Open(ctx, cfg, app.WithTerminal(stderr))
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "open: %v\n", err)
		return 1
	}
	defer func() { _ = a.Close() }()

	res, err := report(ctx, a, snapshots, stdout)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "check failed: %v\n", err)
		return 1
	}
	if res.HasBlocking() {
		_, _ = fmt.Fprintf(stderr, "%d blocking violation(s)\n", len(res.Blocking()))
		return 1
	}
	return 0
}

func report(ctx context.Context, a *app.App, snapshots string, out io.Writer) (domain.Result, error) {
	svc := a.Service
	tools := svc.Tools(ctx)
	fixtures := svc.FixtureTools(ctx)
	users := a.Store.LoadUsers(ctx)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "tools\t%d\n", len(tools))
	_, _ = fmt.Fprintf(w, "fixture tools\t%d\n", len(fixtures))
	_, _ = fmt.Fprintf(w, "users\t%d\n", len(users))

	assignments := svc.Assignments(ctx)
	machines := make([]string, 0, len(assignments))
	for m := range assignments {
		machines = append(machines, m)
	}
	sort.Strings(machines)
	_, _ = fmt.Fprintln(w, "\nmachine\tslot\ttool\tname")
	for _, m := range machines {
		for _, e := range assignments[m] {
			_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", m, e.Slot, e.Tool.ID, e.Tool.Name)
		}
	}

	low := svc.LowStock(ctx)
	_, _ = fmt.Fprintf(w, "\nlow stock\t%d\n", len(low))
	for _, t := range low {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s\n", t.ID, t.Name, t.Stock, t.MinStock, t.Location)
	}

	res, err := svc.Audit(ctx)
	if err != nil {
		return domain.Result{}, err
	}
	_, _ = fmt.Fprintf(w, "\nviolations\t%d\n", len(res.Violations))
	for _, v := range res.Violations {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v.Severity, v.Rule, v.EntityID, v.Message)
	}

	if snapshots != "" {
		if a.Archive == nil {
			_, _ = fmt.Fprintln(w, "\nsnapshots\tarchive disabled")
		} else {
			infos, err := a.Archive.List(ctx, snapshots)
			if err != nil {
				return domain.Result{}, fmt.Errorf("list snapshots: %w", err)
			}
			_, _ = fmt.Fprintf(w, "\nsnapshots\t%d\n", len(infos))
			for _, info := range infos {
				_, _ = fmt.Fprintf(w, "%s\t%d\n", info.Key, info.Size)
			}
		}
	}
	return res, w.Flush()
}
