package main

import (
	"context"
	"fmt"
	"os"
	"time"
	_ "time/tzdata" // NOTIFY_TIMEZONE must resolve in minimal containers

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coreybb/mylist/config"
	"github.com/coreybb/mylist/datastore"
	"github.com/coreybb/mylist/delivery"
	"github.com/coreybb/mylist/logging"
	"github.com/coreybb/mylist/scheduler"
)

const (
	dbPingTimeout   = 5 * time.Second
	shutdownTimeout = 15 * time.Second
)

// app carries what every subcommand shares once the root command has
// loaded configuration and logging.
type app struct {
	envFile     string
	cfg         config.Config
	logger      *zap.Logger
	closeLogger func()
}

func main() {
	root, a := newRootCmd()
	err := root.Execute()
	a.close()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:          "mylist",
		Short:        "Task tracking API and reminder job",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", config.DefaultEnvFile, "optional dotenv file read before the environment")

	root.AddCommand(newServeCmd(a), newNotifyCmd(a), newMigrateCmd(a))
	return root, a
}

func (a *app) init() error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, closeLogger, err := logging.Install(logging.Options{
		Level:       cfg.LogLevel,
		File:        cfg.LogFile,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		return err
	}
	a.logger = logger
	a.closeLogger = closeLogger
	return nil
}

func (a *app) close() {
	if a.closeLogger != nil {
		a.closeLogger()
	}
}

// fail logs err and returns it so cobra reports a non-zero exit.
func (a *app) fail(msg string, err error) error {
	a.logger.Error(msg, zap.Error(err))
	return fmt.Errorf("%s: %w", msg, err)
}

func (a *app) openDatabase(ctx context.Context) (*sqlx.DB, error) {
	db, err := datastore.Open(ctx, a.cfg.DatabaseURL, datastore.PoolOptions{
		MaxOpenConns:    a.cfg.DBMaxOpenConns,
		MaxIdleConns:    a.cfg.DBMaxIdleConns,
		ConnMaxLifetime: a.cfg.DBConnMaxLifetime,
		PingTimeout:     dbPingTimeout,
	})
	if err != nil {
		return nil, err
	}
	a.logger.Info("Database connection successful")
	return db, nil
}

func (a *app) newTransport() (delivery.MailTransport, error) {
	cfg := a.cfg
	return delivery.Select(cfg.MailTransport,
		delivery.NewSMTPTransport(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFromEmail, cfg.MailFromName),
		delivery.NewSendGridTransport(cfg.SendGridAPIKey, cfg.MailFromEmail, cfg.MailFromName),
	)
}

func (a *app) newScheduler(db *sqlx.DB) (*scheduler.Scheduler, error) {
	transport, err := a.newTransport()
	if err != nil {
		return nil, err
	}
	location, err := a.cfg.Location()
	if err != nil {
		return nil, err
	}
	return scheduler.New(
		datastore.NewReminderRepository(db),
		transport,
		a.logger,
		scheduler.Options{Location: location, SendTimeout: a.cfg.SendTimeout},
	), nil
}
