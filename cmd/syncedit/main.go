package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/docopt/docopt-go"
	"github.com/google/uuid"

	"example.com/syncedit/internal/app"
	"example.com/syncedit/internal/collab"
	"example.com/syncedit/pkg/config"
	"example.com/syncedit/pkg/logs"
	"example.com/syncedit/pkg/modes"
	"example.com/syncedit/pkg/transport"
)

const Version = "0.1.0"

const (
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 10 * time.Second
)

const usage = `Syncedit, a terminal client for a shared editing session.

Usage:
    syncedit [--config=<path>] [--host=<host>] [--port=<port>] [--path=<path>]
        [--mode=<mode>] [--decompose] [--no-reconnect]
    syncedit modes
    syncedit -h | --help
    syncedit --version

Options:
    -h --help          Show this screen.
    --version          Show version.
    --config=<path>    Config file, ~/.syncedit/config.yaml when omitted.
    --host=<host>      Session host.
    --port=<port>      Session port.
    --path=<path>      Websocket path.
    --mode=<mode>      Editing mode announced to the session.
    --decompose        Send multi-character edits one character at a time.
    --no-reconnect     Stay disconnected when the link drops.`

// options are the parsed command line.
type options struct {
	listModes   bool
	configPath  string
	host        string
	port        int
	path        string
	mode        string
	decompose   bool
	noReconnect bool
}

func parseOptions(parser *docopt.Parser, argv []string) (options, error) {
	opts, err := parser.ParseArgs(usage, argv, Version)
	if err != nil {
		return options{}, err
	}
	var o options
	o.listModes, _ = opts.Bool("modes")
	o.decompose, _ = opts.Bool("--decompose")
	o.noReconnect, _ = opts.Bool("--no-reconnect")
	o.configPath, _ = opts.String("--config")
	o.host, _ = opts.String("--host")
	o.path, _ = opts.String("--path")
	o.mode, _ = opts.String("--mode")
	if p, ok := opts["--port"].(string); ok {
		o.port, err = strconv.Atoi(p)
		if err != nil {
			return options{}, fmt.Errorf("--port: %q is not a number", p)
		}
	}
	return o, nil
}

// loadConfig reads the config file and applies command line overrides.
func loadConfig(o options) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if o.configPath != "" {
		cfg, err = config.Load(o.configPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}
	if o.host != "" {
		cfg.Server.Host = o.host
	}
	if o.port != 0 {
		cfg.Server.Port = o.port
	}
	if o.path != "" {
		cfg.Server.Path = o.path
	}
	if o.mode != "" {
		cfg.Mode = o.mode
	}
	if o.decompose {
		cfg.Edits.MultiChar = config.MultiCharDecompose
	}
	if o.noReconnect {
		cfg.Reconnect.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func listModes(w io.Writer, catalog *modes.Catalog) {
	for _, m := range catalog.Modes {
		fmt.Fprintf(w, "%-12s %s\n", m.ID, m.Name)
	}
}

func newDialer(url, clientID string) *transport.Dialer {
	return &transport.Dialer{
		URL:              url,
		ClientID:         clientID,
		HandshakeTimeout: handshakeTimeout,
		WriteTimeout:     writeTimeout,
	}
}

func sessionOptions(cfg *config.Config, dial transport.DialFunc, logger *logs.Logger) (collab.Options, error) {
	policy, err := collab.ParseMultiCharPolicy(cfg.Edits.MultiChar)
	if err != nil {
		return collab.Options{}, err
	}
	backoff := transport.DefaultPolicy()
	if cfg.Reconnect.InitialInterval > 0 {
		backoff.InitialInterval = cfg.Reconnect.InitialInterval
	}
	backoff.MaxElapsed = cfg.Reconnect.MaxElapsed
	return collab.Options{
		Dial:      dial,
		Reconnect: cfg.Reconnect.Enabled,
		Policy:    backoff,
		MultiChar: policy,
		Mode:      cfg.Mode,
		Logger:    logger,
	}, nil
}

func run(o options) error {
	catalog, err := modes.LoadDefault()
	if err != nil {
		return err
	}
	if o.listModes {
		listModes(os.Stdout, catalog)
		return nil
	}
	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}
	if _, ok := catalog.Lookup(cfg.Mode); !ok {
		return fmt.Errorf("mode: unknown mode %q, see syncedit modes", cfg.Mode)
	}

	clientID := uuid.NewString()
	url := cfg.Server.URL()
	logger := logs.NewFromEnv().With(map[string]any{"client": clientID, "url": url})
	defer logger.Close()

	dialer := newDialer(url, clientID)
	sessOpts, err := sessionOptions(cfg, dialer.Dial, logger)
	if err != nil {
		return err
	}

	r := app.New()
	r.Logger = logger
	r.Keymap = cfg.Keymap
	r.Modes = catalog
	r.UseTheme(cfg.Theme.Name, cfg.ResolveTheme())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess := collab.NewSession(r, r, sessOpts)
	r.Attach(sess)
	if err := sess.Open(ctx); err != nil {
		return err
	}
	defer sess.Close()
	return r.Run(ctx)
}

func main() {
	o, err := parseOptions(docopt.DefaultParser, os.Args[1:])
	if err != nil {
		os.Exit(1)
	}
	if err := run(o); err != nil {
		fmt.Fprintf(os.Stderr, "syncedit: %v\n", err)
		os.Exit(1)
	}
}
