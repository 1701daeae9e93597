package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/rollbook/core"
	"github.com/trezcool/rollbook/core/records"
	"github.com/trezcool/rollbook/core/workflow"
	"github.com/trezcool/rollbook/services/email"
	"github.com/trezcool/rollbook/services/logger"
	"github.com/trezcool/rollbook/storage/database"
	"github.com/trezcool/rollbook/storage/database/postgres"
	"github.com/trezcool/rollbook/storage/database/sqlite"
	"github.com/trezcool/rollbook/storage/jsonfile"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	isTerminalFunc   = term.IsTerminal   // mockable

	errHelp = errors.New("help provided")
)

// commandLine holds what the commands share; it is filled lazily by the commands that need it.
type commandLine struct {
	// flags
	configPath string
	dataPath   string
	driver     string

	conf    *core.Config
	logger  core.Logger
	mailer  core.EmailService
	db      *sqlx.DB
	store   *records.Store
	svc     *workflow.Service
	closers []func() error
}

// Execute runs the command line. This is called by main.main().
func Execute() {
	cli := &commandLine{}
	rootCmd := cli.newRootCmd()
	err := rootCmd.ExecuteContext(context.Background())
	cli.close()
	if err != nil {
		if err != errHelp {
			_, _ = fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func (cli *commandLine) newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rollbook",
		Short: "Student, course and grade records from the terminal",
		Long: `Rollbook keeps user accounts, course rosters and grades in a single
document (JSON by default, SQLite or PostgreSQL optionally). Run without a
command to start the interactive session.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.setup(cmd.OutOrStdout())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.runSession(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cli.configPath, "config", "", "dotenv file to load (default: config/.env.<env>)")
	rootCmd.PersistentFlags().StringVar(&cli.dataPath, "data", "", "records file, overrides storage.path")
	rootCmd.PersistentFlags().StringVar(&cli.driver, "driver", "", "storage driver: json, sqlite or postgres, overrides storage.driver")

	rootCmd.AddCommand(
		cli.newAddUserCmd(),
		cli.newResetPasswordCmd(),
		cli.newUsersCmd(),
		cli.newMigrateCmd(),
		cli.newRosterCmd(),
	)
	return rootCmd
}

// setup reads the configuration and builds the logger and mailer.
func (cli *commandLine) setup(out io.Writer) error {
	if cli.conf != nil {
		return nil
	}
	conf, err := core.NewConfig(cli.configPath)
	if err != nil {
		return err
	}
	if cli.dataPath != "" {
		conf.Storage.Path = cli.dataPath
	}
	if cli.driver != "" {
		conf.Storage.Driver = cli.driver
	}
	switch conf.Storage.Driver {
	case core.DriverJSON, core.DriverSQLite, core.DriverPostgres:
	default:
		return errors.Errorf("unknown storage driver %q", conf.Storage.Driver)
	}
	cli.conf = conf

	log := logsvc.NewLogrus(conf)
	if conf.LogFile != "" {
		f, err := logsvc.LogToFile(log, conf.LogFile)
		if err != nil {
			return err
		}
		cli.closers = append(cli.closers, f.Close)
	}
	rl := logsvc.NewRollbarLogger(log, conf)
	cli.closers = append(cli.closers, func() error { rl.Close(); return nil })
	cli.logger = rl
	cli.mailer = emailsvc.New(conf, cli.logger)
	return nil
}

// openDB connects to postgres.
func (cli *commandLine) openDB() (*sqlx.DB, error) {
	if cli.db != nil {
		return cli.db, nil
	}
	if cli.conf.Storage.Driver != core.DriverPostgres {
		return nil, errors.Errorf("the %s driver has no database to migrate", cli.conf.Storage.Driver)
	}
	db, err := database.Open(cli.conf)
	if err != nil {
		return nil, err
	}
	cli.db = db
	cli.closers = append(cli.closers, db.Close)
	return db, nil
}

func (cli *commandLine) backend() (records.Backend, error) {
	switch cli.conf.Storage.Driver {
	case core.DriverSQLite:
		b, err := sqlitestore.Open(cli.conf.Storage.Path)
		if err != nil {
			return nil, err
		}
		cli.closers = append(cli.closers, b.Close)
		return b, nil
	case core.DriverPostgres:
		db, err := cli.openDB()
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db.DB); err != nil {
			return nil, err
		}
		return pgstore.New(db), nil
	default:
		return jsonfile.New(cli.conf.Storage.Path), nil
	}
}

// service opens the record store and builds the workflow service on top of it.
func (cli *commandLine) service(ctx context.Context) (*workflow.Service, error) {
	if cli.svc != nil {
		return cli.svc, nil
	}
	backend, err := cli.backend()
	if err != nil {
		return nil, err
	}
	store, err := records.NewStore(backend, cli.logger, cli.conf.Seed)
	if err != nil {
		return nil, err
	}
	if err := store.Open(ctx); err != nil {
		return nil, err
	}
	svc, err := workflow.NewService(store, cli.logger, cli.mailer)
	if err != nil {
		return nil, err
	}
	cli.store, cli.svc = store, svc
	return svc, nil
}

func (cli *commandLine) close() {
	for i := len(cli.closers) - 1; i >= 0; i-- {
		_ = cli.closers[i]()
	}
	cli.closers = nil
}

// readPassword prompts on `out` and reads without echo when `in` is a terminal, or a plain line otherwise.
func readPassword(in io.Reader, out io.Writer, label string) (string, error) {
	_, _ = fmt.Fprint(out, label)
	var (
		pwd []byte
		err error
	)
	if fd, ok := terminalFd(in); ok {
		pwd, err = readPasswordFunc(fd)
		_, _ = fmt.Fprintln(out)
	} else {
		pwd, err = bufio.NewReader(in).ReadBytes('\n')
		if err == io.EOF {
			err = nil
		}
	}
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	return core.CleanString(string(pwd)), nil
}

func terminalFd(in io.Reader) (int, bool) {
	if f, ok := in.(*os.File); ok && isTerminalFunc(int(f.Fd())) {
		return int(f.Fd()), true
	}
	return 0, false
}
