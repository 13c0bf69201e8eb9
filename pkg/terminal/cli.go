package terminal

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/de-tools/airport-atlas/pkg/services/source"
	"github.com/de-tools/airport-atlas/pkg/terminal/commands"
)

// CLI represents the command-line interface
type CLI struct {
	env     *commands.Env
	rootCmd *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	// Factories overrides the available airport source types.
	Factories func(opener source.Opener) map[string]source.Factory
	Output    io.Writer
	ErrOutput io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	env := commands.NewEnv(opts.Output, opts.ErrOutput)
	if opts.Factories != nil {
		env.Factories = opts.Factories
	}

	cli := &CLI{env: env}
	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) ExecuteContext(ctx context.Context, args ...string) error {
	if args != nil {
		cli.rootCmd.SetArgs(args)
	}
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "airport-atlas",
		Short:         "Geographic outlier detection for airport datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(cli.env.Out)
	cmd.SetErr(cli.env.Err)
	cli.env.AddPersistentFlags(cmd)

	cmd.AddCommand(commands.NewAnalyzeCmd(cli.env))
	cmd.AddCommand(commands.NewCentersCmd(cli.env))
	cmd.AddCommand(commands.NewAirportsCmd(cli.env))
	cmd.AddCommand(commands.NewServeCmd(cli.env))

	return cmd
}
