// compmemo builds compressed accounts carrying a memo and keeps them in a
// local outbox until they are inserted into an address tree.
//
//	compmemo --db ./outbox create --memo "hello" --seed-text greeting --signers 2
//	compmemo --db ./outbox pending
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/eigerco/compmemo/internal/config"
	"github.com/eigerco/compmemo/pkg/log"
)

var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Usage:   "TOML configuration file",
		EnvVars: []string{"COMPMEMO_CONFIG"},
	}
	logLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "log level (trace, debug, info, warn, error)",
	}
	logFormatFlag = &cli.StringFlag{
		Name:  "log-format",
		Usage: "log format (console, json)",
	}
	dbFlag = &cli.StringFlag{
		Name:  "db",
		Usage: "outbox database directory, empty for in-memory",
	}
)

// env is shared by all commands once the global flags are resolved.
type env struct {
	cfg config.Config
}

func newApp(out, errOut io.Writer) *cli.App {
	e := &env{cfg: config.Default()}

	return &cli.App{
		Name:      "compmemo",
		Usage:     "create compressed accounts that carry a memo",
		Writer:    out,
		ErrWriter: errOut,
		Flags:     []cli.Flag{configFlag, logLevelFlag, logFormatFlag, dbFlag},
		Before: func(c *cli.Context) error {
			return e.setup(c)
		},
		Commands: []*cli.Command{
			e.createCommand(),
			e.memoCommand(),
			e.deriveAddressCommand(),
			e.pendingCommand(),
		},
	}
}

// setup loads the configuration file, applies flag overrides and
// initializes logging.
func (e *env) setup(c *cli.Context) error {
	if path := c.String(configFlag.Name); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		e.cfg = cfg
	}
	if c.IsSet(logLevelFlag.Name) {
		e.cfg.Log.Level = c.String(logLevelFlag.Name)
	}
	if c.IsSet(logFormatFlag.Name) {
		e.cfg.Log.Format = c.String(logFormatFlag.Name)
	}
	if c.IsSet(dbFlag.Name) {
		e.cfg.Store.Path = c.String(dbFlag.Name)
	}
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	opts, err := e.cfg.LogOptions()
	if err != nil {
		return err
	}
	opts.Output = c.App.ErrWriter
	log.Init(opts)
	return nil
}

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
