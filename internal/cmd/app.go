package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/harrison/talentmap/internal/backend"
	"github.com/harrison/talentmap/internal/config"
	"github.com/harrison/talentmap/internal/display"
	"github.com/harrison/talentmap/internal/logger"
	"github.com/harrison/talentmap/internal/models"
	"github.com/harrison/talentmap/internal/parser"
	"github.com/harrison/talentmap/internal/persist"
	"github.com/harrison/talentmap/internal/poller"
	"github.com/harrison/talentmap/internal/session"
	"github.com/harrison/talentmap/internal/storage"
	"github.com/harrison/talentmap/internal/vault"
)

// app is everything a command needs, wired from configuration.
type app struct {
	cfg     *config.Config
	log     logger.Logger
	bank    *models.Bank
	store   *persist.Store
	session *session.Session
	client  *backend.Client
	out     *display.Printer

	closers []func() error
}

type appOptions struct {
	// skipRestore leaves the session empty instead of loading saved state.
	skipRestore bool
}

// loadConfig resolves the config file, applies CLI overrides, fills paths
// under the talentmap home and validates the result.
func loadConfig(cmd *cobra.Command, g *globalFlags) (*config.Config, error) {
	home, err := config.Home()
	if err != nil {
		return nil, err
	}

	var cfg *config.Config
	switch {
	case g.configPath != "":
		cfg, err = config.LoadConfig(g.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", g.configPath, err)
		}
	case fileExists(filepath.Join(config.HomeDirName, "config.yaml")):
		cfg, err = config.LoadConfigFromDir(".")
	default:
		cfg, err = config.LoadConfig(filepath.Join(home, "config.yaml"))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	cfg.MergeWithFlags(
		changedString(flags.Changed("log-level"), g.logLevel),
		changedString(flags.Changed("storage"), g.storage),
		changedString(flags.Changed("state"), g.state),
		changedString(flags.Changed("backend-url"), g.backendURL),
	)
	cfg.ResolvePaths(home)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func changedString(changed bool, v string) *string {
	if !changed {
		return nil
	}
	return &v
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// newApp wires logger, bank, storage, cipher, session and backend client.
// Callers must Close the returned app.
func newApp(cmd *cobra.Command, g *globalFlags, opts appOptions) (*app, error) {
	cfg, err := loadConfig(cmd, g)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, out: display.NewPrinter(cmd.OutOrStdout())}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	console := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	fileLog, err := logger.NewFileLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		logger.Warnf(console, "file logging disabled: %v", err)
		a.log = console
	} else {
		a.closers = append(a.closers, fileLog.Close)
		a.log = logger.Multi(console, fileLog)
	}

	a.bank, err = parser.Load(cfg.BankPath)
	if err != nil {
		return nil, fmt.Errorf("load question bank: %w", err)
	}

	raw, err := storage.Open(cfg.StorageOptions())
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	a.closers = append(a.closers, raw.Close)
	logger.Debugf(a.log, "storage backend %s at %s", cfg.Storage.Backend, cfg.Storage.Path)

	cipher, err := newCipher(cfg, a.log)
	if err != nil {
		return nil, err
	}
	a.store = persist.New(raw, cipher, persist.WithLogger(a.log))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a.session = session.New(a.bank,
		session.WithStore(a.store),
		session.WithLogger(a.log),
	)
	if !opts.skipRestore {
		res := a.session.Restore(ctx)
		logger.Debugf(a.log, "restored %d answers and %d flags (%d dropped, %d migrated)",
			res.Answers, res.Flags, res.Dropped, res.Migrated)
	}

	var clientOpts []backend.ClientOption
	if cfg.Backend.TokenEnv != "" {
		if token := os.Getenv(cfg.Backend.TokenEnv); token != "" {
			clientOpts = append(clientOpts, backend.WithToken(token))
		}
	}
	clientOpts = append(clientOpts, backend.WithIdempotencyKeys(uuid.NewString))
	a.client = backend.NewClient(cfg.Backend.BaseURL, &http.Client{Timeout: cfg.Backend.Timeout}, clientOpts...)

	ok = true
	return a, nil
}

// newCipher derives the key from a passphrase when one is configured and
// present, and otherwise loads or creates the key file.
func newCipher(cfg *config.Config, log logger.Logger) (vault.Cipher, error) {
	if env := cfg.Encryption.PassphraseEnv; env != "" {
		if pass := os.Getenv(env); pass != "" {
			logger.Debugf(log, "deriving encryption key from $%s", env)
			return vault.NewXChaCha(vault.DeriveKey(pass, []byte(cfg.Encryption.Salt)))
		}
		logger.Warnf(log, "$%s is empty, falling back to key file %s", env, cfg.Encryption.KeyFile)
	}

	key, err := vault.LoadOrCreateKeyFile(cfg.Encryption.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load encryption key: %w", err)
	}
	return vault.NewXChaCha(key)
}

// newPoller builds a poller that reports progress on the app's output.
func (a *app) newPoller() *poller.Poller {
	return poller.New(a.client, a.cfg.PollerConfig(),
		poller.WithObserver(a.out.PollObserver()),
		poller.WithLogger(a.log),
	)
}

// Close releases storage and log files in reverse order.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// parseInstruments converts instrument arguments, rejecting unknown ids.
func parseInstruments(bank *models.Bank, args []string) ([]models.InstrumentID, error) {
	ids := make([]models.InstrumentID, 0, len(args))
	for _, arg := range args {
		id := models.InstrumentID(arg)
		if bank.Instrument(id) == nil {
			return nil, fmt.Errorf("%w: %q (want one of %s)", session.ErrUnknownInstrument, arg, instrumentList(bank))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func instrumentList(bank *models.Bank) string {
	names := make([]string, len(bank.Instruments))
	for i := range bank.Instruments {
		names[i] = string(bank.Instruments[i].ID)
	}
	return strings.Join(names, ", ")
}
