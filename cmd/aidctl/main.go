// Command aidctl runs administrative tasks directly against the configured
// database.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/mmynk/mutualaid/internal/app"
	"github.com/mmynk/mutualaid/internal/config"
	"github.com/mmynk/mutualaid/internal/models"
	"github.com/mmynk/mutualaid/internal/storage"
	"github.com/mmynk/mutualaid/internal/storage/sqlstore"
	"github.com/mmynk/mutualaid/pkg/logging"
)

const usageText = `aidctl administers a mutualaid database.

Usage:
  aidctl [--config FILE] <command> [flags]

Commands:
  set-limits --email E [--open N] [--created N] [--joined N]
  usage      --email E
  promote    --email E
  sweep
`

type command func(ctx context.Context, a *app.App, out io.Writer, args []string) error

var commands = map[string]command{
	"set-limits": setLimits,
	"usage":      showUsage,
	"promote":    promote,
	"sweep":      sweep,
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var configPath string

	flagSet := pflag.NewFlagSet("aidctl", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to a YAML config file (default: $MUTUALAID_CONFIG)")
	flagSet.SetInterspersed(false)
	flagSet.Usage = func() { fmt.Fprint(os.Stderr, usageText) }
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		flagSet.Usage()
		return fmt.Errorf("no command given")
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		return fmt.Errorf("unknown command %q", rest[0])
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	logging.Setup(level)

	ctx := context.Background()
	var store storage.Store
	if cfg.Database.Driver == config.DriverPostgres {
		s, err := sqlstore.NewPostgres(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		store = s
	} else {
		s, err := sqlstore.NewSQLite(cfg.Database.Path)
		if err != nil {
			return err
		}
		store = s
	}
	defer store.Close()

	a := app.New(store, app.Options{DefaultLimits: cfg.DefaultLimits})
	return cmd(ctx, a, os.Stdout, rest[1:])
}

// userByEmail looks up the account registered under email.
func userByEmail(ctx context.Context, a *app.App, email string) (*models.User, error) {
	if email == "" {
		return nil, fmt.Errorf("--email is required")
	}
	user, err := a.Store.GetUserByEmail(ctx, models.NormalizeEmail(email))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("no user with email %s", email)
	}
	return user, err
}

func setLimits(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	var email string
	var open, created, joined int

	flagSet := pflag.NewFlagSet("set-limits", pflag.ContinueOnError)
	flagSet.StringVar(&email, "email", "", "user email")
	flagSet.IntVar(&open, "open", 0, "max open requests")
	flagSet.IntVar(&created, "created", 0, "max groups created")
	flagSet.IntVar(&joined, "joined", 0, "max groups joined")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	user, err := userByEmail(ctx, a, email)
	if err != nil {
		return err
	}
	current, err := a.Quota.GetLimits(ctx, user.ID)
	if err != nil {
		return err
	}

	// Flags left unset keep the current value.
	values := current.Values()
	if flagSet.Changed("open") {
		values.MaxOpenRequests = open
	}
	if flagSet.Changed("created") {
		values.MaxGroupsCreated = created
	}
	if flagSet.Changed("joined") {
		values.MaxGroupsJoined = joined
	}
	if values.MaxOpenRequests < 0 || values.MaxGroupsCreated < 0 || values.MaxGroupsJoined < 0 {
		return fmt.Errorf("limits must not be negative")
	}

	limits, err := a.Quota.ApplyLimits(ctx, user.ID, values)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: open=%d created=%d joined=%d\n",
		user.Email, limits.MaxOpenRequests, limits.MaxGroupsCreated, limits.MaxGroupsJoined)
	return nil
}

func showUsage(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	var email string
	flagSet := pflag.NewFlagSet("usage", pflag.ContinueOnError)
	flagSet.StringVar(&email, "email", "", "user email")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	user, err := userByEmail(ctx, a, email)
	if err != nil {
		return err
	}
	usage, err := a.Quota.Usage(ctx, user.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s\n", user.Email)
	fmt.Fprintf(out, "  open requests   %d / %d\n", usage.Counts.OpenRequests, usage.Limits.MaxOpenRequests)
	fmt.Fprintf(out, "  groups created  %d / %d\n", usage.Counts.GroupsCreated, usage.Limits.MaxGroupsCreated)
	fmt.Fprintf(out, "  groups joined   %d / %d\n", usage.Counts.GroupsJoined, usage.Limits.MaxGroupsJoined)
	return nil
}

func promote(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	var email string
	flagSet := pflag.NewFlagSet("promote", pflag.ContinueOnError)
	flagSet.StringVar(&email, "email", "", "user email")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	user, err := userByEmail(ctx, a, email)
	if err != nil {
		return err
	}
	err = a.Store.WithTx(ctx, func(tx storage.Tx) error {
		u, err := tx.GetUser(ctx, user.ID)
		if err != nil {
			return err
		}
		u.IsAdmin = true
		return tx.UpdateUser(ctx, u)
	})
	if err != nil {
		return fmt.Errorf("promote %s: %w", user.Email, err)
	}

	slog.Info("User promoted", "user_id", user.ID)
	fmt.Fprintf(out, "%s is now an administrator\n", user.Email)
	return nil
}

func sweep(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("sweep takes no arguments")
	}
	n, err := a.Sweeper(0).Once(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "expired %d requests\n", n)
	return nil
}
