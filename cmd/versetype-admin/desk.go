package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/versetype/versetype-api/internal/adapters/sweeper"
	"github.com/versetype/versetype-api/internal/data"
	domainauth "github.com/versetype/versetype-api/internal/domain/auth"
	"github.com/versetype/versetype-api/internal/domain/model"
	"github.com/versetype/versetype-api/internal/service"
)

type userFinder interface {
	FindUsersByName(ctx context.Context, name string) ([]model.UserMatch, error)
}

type tempCodeIssuer interface {
	GenerateTempLoginCode(ctx context.Context, userID string) (model.IssuedLoginCode, error)
}

type versionPublisher interface {
	SetLatestVersion(ctx context.Context, req model.SetAppVersionRequest) (model.AppInfo, error)
}

type findUserOptions struct {
	Name string
	JSON bool
}

func runFindUser(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("find-user", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Stderr)
	opts := findUserOptions{}
	fs.StringVar(&opts.Name, "name", "", "Exact display name to look up")
	fs.BoolVar(&opts.JSON, "json", false, "Print JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(opts.Name) == "" {
		return errors.New("--name is required")
	}

	return withDatabase(cmdCtx, defaultCommandTimeout, func(ctx context.Context, db *sql.DB) error {
		desk, err := newServiceDesk(cmdCtx, db)
		if err != nil {
			return err
		}
		return findUsers(ctx, desk, opts, cmdCtx.Stdout)
	})
}

func findUsers(ctx context.Context, finder userFinder, opts findUserOptions, w io.Writer) error {
	matches, err := finder.FindUsersByName(ctx, opts.Name)
	if err != nil {
		return err
	}
	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(matches)
	}
	return printUserMatches(w, matches)
}

func printUserMatches(w io.Writer, matches []model.UserMatch) error {
	if len(matches) == 0 {
		return writeln(w, "no users found")
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writef(tw, "USER ID\tNAME\tSESSION\tLINKED AT\n"); err != nil {
		return err
	}
	for _, m := range matches {
		if len(m.Sessions) == 0 {
			if err := writef(tw, "%s\t%s\t-\t-\n", m.UserID, m.Name); err != nil {
				return err
			}
			continue
		}
		for _, s := range m.Sessions {
			if err := writef(tw, "%s\t%s\t%s\t%s\n", m.UserID, m.Name, s.SessionToken, s.CreatedAt.UTC().Format(time.RFC3339)); err != nil {
				return err
			}
		}
	}
	return tw.Flush()
}

func runTempLoginCode(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("temp-login-code", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Stderr)
	userID := fs.String("user-id", "", "User to issue the code for")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*userID) == "" {
		return errors.New("--user-id is required")
	}

	return withDatabase(cmdCtx, defaultCommandTimeout, func(ctx context.Context, db *sql.DB) error {
		desk, err := newServiceDesk(cmdCtx, db)
		if err != nil {
			return err
		}
		return issueTempCode(ctx, desk, *userID, cmdCtx.Stdout)
	})
}

func issueTempCode(ctx context.Context, issuer tempCodeIssuer, userID string, w io.Writer) error {
	code, err := issuer.GenerateTempLoginCode(ctx, userID)
	if err != nil {
		return err
	}
	return writef(w, "code: %s\nexpires: %s\n",
		domainauth.FormatLoginCode(code.Code), code.ExpiresAt.UTC().Format(time.RFC3339))
}

func runSetVersion(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("set-version", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Stderr)
	version := fs.String("version", "", "Version to publish, e.g. 1.4.2")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withDatabase(cmdCtx, defaultCommandTimeout, func(ctx context.Context, db *sql.DB) error {
		svc, err := service.NewAppInfoService(data.NewAppInfoRepo(db), cmdCtx.Logger)
		if err != nil {
			return err
		}
		return publishVersion(ctx, svc, *version, cmdCtx.Stdout)
	})
}

func publishVersion(ctx context.Context, pub versionPublisher, version string, w io.Writer) error {
	info, err := pub.SetLatestVersion(ctx, model.SetAppVersionRequest{Version: version})
	if err != nil {
		return err
	}
	return writef(w, "latest version: %s\n", info.Version)
}

func runSweep(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Stderr)
	timeout := fs.Duration("timeout", defaultCommandTimeout, "Maximum duration for the sweep")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *timeout <= 0 {
		return errors.New("--timeout must be greater than zero")
	}

	return withDatabase(cmdCtx, *timeout, func(ctx context.Context, db *sql.DB) error {
		runner, err := sweeper.NewRunner(sweeper.RunnerOptions{
			DB:     db,
			Config: cmdCtx.Config.Sweeper,
			Logger: cmdCtx.Logger,
		})
		if err != nil {
			return err
		}
		n, err := runner.SweepOnce(ctx)
		if err != nil {
			return err
		}
		return writef(cmdCtx.Stdout, "deleted %d expired login codes\n", n)
	})
}

func newServiceDesk(cmdCtx *commandContext, db *sql.DB) (*service.ServiceDeskService, error) {
	users := data.NewUserRepo(db)
	sessions := data.NewSessionRepo(db)
	authSvc, err := service.NewAuthService(service.AuthServiceOptions{
		Repos: service.AuthRepos{
			Users:    users,
			Sessions: sessions,
			Codes:    data.NewLoginCodeRepo(db),
		},
		Config: cmdCtx.Config.Auth,
		Logger: cmdCtx.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create auth service: %w", err)
	}
	return service.NewServiceDeskService(service.ServiceDeskServiceOptions{
		Users:       users,
		Sessions:    sessions,
		Issuer:      authSvc,
		TempCodeTTL: cmdCtx.Config.Auth.TempLoginCodeTTL,
		Logger:      cmdCtx.Logger,
	})
}
