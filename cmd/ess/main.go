// Command ess runs the boat-yard workflow of the club: per-date driver
// schedules, the winter spot plan, member e-mail lists, mailing and upload of
// the generated files.
//
// Usage:
//
//	ess schedule --file Torrsättning*.xlsx
//	ess spaceplan --reset
//	ess emails --sheetid <id>
//	ess sendmail --receiver varvschef@example.com -r signature=Jesper
//	ess upload
//	ess onland
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/jhogstrom/ess-arbetsschema/config"
	"github.com/jhogstrom/ess-arbetsschema/internal/repository"
	"github.com/jhogstrom/ess-arbetsschema/internal/sheet"
	"github.com/jhogstrom/ess-arbetsschema/pkg/database"
	apperrors "github.com/jhogstrom/ess-arbetsschema/pkg/errors"
	"github.com/jhogstrom/ess-arbetsschema/pkg/google"
	applogger "github.com/jhogstrom/ess-arbetsschema/pkg/logger"
)

// app carries what every command needs once config and logger are set up.
type app struct {
	configFile string
	cfg        *config.Config
	logger     *zap.Logger

	googleOpt option.ClientOption
	sheets    *google.SheetsClient
}

func main() {
	a := &app{}
	root := &cobra.Command{
		Use:           "ess",
		Short:         "Boat-yard schedules, spot plan and mailings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default ./config/config.yaml)")

	root.AddCommand(
		scheduleCmd(a),
		spaceplanCmd(a),
		emailsCmd(a),
		sendmailCmd(a),
		uploadCmd(a),
		onlandCmd(a),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	err := root.ExecuteContext(ctx)
	cancel()
	if err != nil {
		if a.logger != nil {
			if errors.Is(err, apperrors.ErrFileLocked) {
				a.logger.Error("output file is open in another application", zap.Error(err))
			} else {
				a.logger.Error("command failed", zap.Error(err))
			}
			_ = a.logger.Sync()
		} else {
			fmt.Fprintf(os.Stderr, "ess: %v\n", err)
		}
		os.Exit(1)
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.cfg, a.logger = cfg, logger
	return nil
}

// google authorizes once per process and reuses the client option.
func (a *app) google(ctx context.Context) (option.ClientOption, error) {
	if a.googleOpt != nil {
		return a.googleOpt, nil
	}
	creds, err := google.LoadCredentials(a.cfg.Google.CredentialsFile, a.cfg.Google.TokenFile, a.logger)
	if err != nil {
		return nil, err
	}
	opt, err := creds.ClientOption(ctx)
	if err != nil {
		return nil, err
	}
	a.googleOpt = opt
	return opt, nil
}

// lazySheets creates the Sheets client on first use, so runs that only read
// local files never touch the credentials.
type lazySheets struct {
	a *app
}

func (l lazySheets) FirstSheetValues(ctx context.Context, id string) ([][]string, error) {
	c, err := l.a.sheetsClient(ctx)
	if err != nil {
		return nil, err
	}
	return c.FirstSheetValues(ctx, id)
}

func (a *app) sheetsClient(ctx context.Context) (*google.SheetsClient, error) {
	if a.sheets != nil {
		return a.sheets, nil
	}
	opt, err := a.google(ctx)
	if err != nil {
		return nil, err
	}
	c, err := google.NewSheetsClient(ctx, google.NewSheetCache(), a.logger, opt)
	if err != nil {
		return nil, err
	}
	a.sheets = c
	return c, nil
}

func (a *app) remote() sheet.RemoteSource {
	return lazySheets{a: a}
}

func (a *app) loader() *sheet.Loader {
	return sheet.NewLoader(a.remote(), a.logger)
}

// history opens the dispatch history store and runs its migrations.
func (a *app) history() (repository.DispatchRepository, func(), error) {
	db, err := database.NewDB(&a.cfg.Database, a.cfg.Log.Level, a.logger)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	if err := database.RunMigrations(sqlDB, a.logger); err != nil {
		sqlDB.Close()
		return nil, nil, err
	}
	repo := repository.NewRepository(db)
	return repo.Dispatch, func() { sqlDB.Close() }, nil
}

// override sets *dst when the flag was given on the command line.
func override[T any](cmd *cobra.Command, name string, dst *T, value T) {
	if cmd.Flags().Changed(name) {
		*dst = value
	}
}
