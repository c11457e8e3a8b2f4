package main

import (
	"context"
	"os"

	"github.com/mrzor/livetrace/internal/attributes"
	"github.com/mrzor/livetrace/internal/capture"
	"github.com/mrzor/livetrace/internal/config"
	"github.com/mrzor/livetrace/internal/eventlist"
	"github.com/mrzor/livetrace/internal/logging"
	"github.com/mrzor/livetrace/internal/procmeta"
	"github.com/mrzor/livetrace/internal/session"
	"github.com/mrzor/livetrace/internal/toolexec"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rootCmd struct {
	cmd    *cobra.Command
	opts   *config.Options
	flags  *config.Flags
	status int
}

func newRootCmd() *rootCmd {
	r := &rootCmd{opts: config.NewOptions()}
	r.cmd = &cobra.Command{
		Use:   "livetrace [options] [--] <command> [args...]",
		Short: "Trace a program's function calls and replay them when it exits",
		Long: `livetrace runs COMMAND with the function tracer preloaded, records its
calls into a temporary trace directory, then prints the call trace. The
trace directory is removed on exit, including on fatal signals.`,
		Version:       versionString(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			return r.run(args)
		},
	}
	r.flags = config.BindFlags(r.cmd.Flags(), r.opts)
	return r
}

func (r *rootCmd) execute(args []string) (int, error) {
	// cobra falls back to os.Args when given nil.
	if args == nil {
		args = []string{}
	}
	r.cmd.SetArgs(args)
	if err := r.cmd.Execute(); err != nil {
		return session.ExitFailure, err
	}
	return r.status, nil
}

func (r *rootCmd) run(args []string) error {
	envCfg, err := config.ParseEnvConfig()
	if err != nil {
		return err
	}
	if err := logging.Setup(os.Stderr, r.opts.Debug, envCfg.LogLevel); err != nil {
		return err
	}
	if err := r.flags.Finalize(args, envCfg); err != nil {
		return err
	}
	opts := r.opts

	md := procmeta.ForTarget(opts.Exename, opts.Args, os.Environ())
	identity, err := attributes.Resolve(opts, md)
	if err != nil {
		return err
	}

	tracer, shutdown, err := setupOTEL(identity.TraceID)
	if err != nil {
		return err
	}
	defer shutdown()

	tool := &toolexec.Tool{Path: envCfg.Tool}
	live := &session.Live{
		StoreRoot: envCfg.StoreRoot(),
		Sequencer: &session.Sequencer{
			Commands: session.Commands{
				Record: (&capture.Recorder{InstallLibPath: config.InstallLibPath}).Record,
				Report: tool.Report,
				Replay: tool.Replay,
			},
		},
		Launcher: &eventlist.Launcher{
			Kernel:         &eventlist.TracefsLister{},
			InstallLibPath: config.InstallLibPath,
		},
		Tracer:     tracer,
		Attributes: identity.Attributes,
	}

	ctx := identity.ContextWithParent(context.Background())
	log.Debugf("live session for %v", opts.FullCommand())

	r.status, err = live.Run(ctx, opts.FullCommand(), opts)
	return err
}
