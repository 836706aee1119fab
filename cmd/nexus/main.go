package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := buildRoot(newCommand(os.Stdout, os.Stderr))
	if err := root.ExecuteContext(ctx); err != nil {
		// the failed result is already on stdout
		if !errors.Is(err, errSessionFailed) {
			_, _ = fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}

// buildRoot creates the root command and its subcommands.
func buildRoot(nexusCommand command) *cobra.Command {
	globalFlags := &GlobalFlags{}
	addFlags := &AddFlags{}
	runFlags := &RunFlags{}
	serveFlags := &ServeFlags{}

	root := createRootCommand(globalFlags)
	root.AddCommand(
		createListCommand(nexusCommand, globalFlags),
		createAddCommand(nexusCommand, globalFlags, addFlags),
		createClearCommand(nexusCommand, globalFlags),
		createSamplesCommand(nexusCommand, globalFlags),
		createRunCommand(nexusCommand, globalFlags, runFlags),
		createMemTestCommand(nexusCommand, globalFlags),
		createFileServerCommand(nexusCommand, globalFlags),
		createOpsCommand(nexusCommand, globalFlags),
		createServeCommand(nexusCommand, globalFlags, serveFlags),
	)
	return root
}

// createRootCommand creates the root command with the persistent flags
func createRootCommand(flags *GlobalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:   "nexus",
		Short: "Drive the OS Nexus Studio engine",
		Long: `nexus runs one engine session per command: it launches the engine,
feeds it a menu selection, and reports the parsed process table or
scheduling timeline.

Examples:
  nexus samples
  nexus run fcfs
  nexus run priority --process P1:0:5:2 --process P2:2:3:1
  nexus add --id P6 --arrival 3 --burst 4 --priority 2
  nexus serve                                   # HTTP API
  nexus list --api-url=http://remote:8080/api   # via a running server`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to TOML config file (optional)")
	root.PersistentFlags().StringVar(&flags.EnginePath, "engine", "", "engine executable (overrides engine.path)")
	root.PersistentFlags().DurationVar(&flags.Timeout, "timeout", 0, "session timeout (default from config, 10s)")
	root.PersistentFlags().StringVar(&flags.APIUrl, "api-url", "", "send requests to a nexus server instead of running the engine locally")
	root.PersistentFlags().BoolVar(&flags.JSON, "json", false, "print results as JSON")

	return root
}

func createListCommand(nexusCommand command, globalFlags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the engine's process table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return nexusCommand.List(cmd.Context(), *globalFlags)
		},
	}
}

// createAddCommand creates the add subcommand
func createAddCommand(nexusCommand command, globalFlags *GlobalFlags, flags *AddFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a process to the engine's table",
		Long: `Append one process to the engine's persistent table.

Examples:
  nexus add --id P6 --arrival 3 --burst 4 --priority 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return nexusCommand.Add(cmd.Context(), *globalFlags, *flags)
		},
	}

	cmd.Flags().StringVar(&flags.ID, "id", "", "process id (P<n> is sent as <n>)")
	cmd.Flags().IntVar(&flags.Arrival, "arrival", 0, "arrival time")
	cmd.Flags().IntVar(&flags.Burst, "burst", 0, "burst time (> 0)")
	cmd.Flags().IntVar(&flags.Priority, "priority", 0, "priority (lower runs first)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("burst")

	return cmd
}

func createClearCommand(nexusCommand command, globalFlags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every process from the engine's table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return nexusCommand.Clear(cmd.Context(), *globalFlags)
		},
	}
}

func createSamplesCommand(nexusCommand command, globalFlags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "samples",
		Short: "Load the engine's sample process set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return nexusCommand.Samples(cmd.Context(), *globalFlags)
		},
	}
}

// createRunCommand creates the run subcommand
func createRunCommand(nexusCommand command, globalFlags *GlobalFlags, flags *RunFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <fcfs|sjf|priority|rr|all>",
		Short: "Run a scheduling algorithm",
		Long: `Run one scheduling algorithm (or all of them) and print the timeline.
Without --process the engine schedules its stored table.

Examples:
  nexus run sjf
  nexus run rr --process P1:0:5 --process P2:1:3`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"fcfs", "sjf", "priority", "rr", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return nexusCommand.Run(cmd.Context(), *globalFlags, args[0], *flags)
		},
	}

	cmd.Flags().StringArrayVar(&flags.Processes, "process", nil, "submitted process id:arrival:burst[:priority] (repeatable)")

	return cmd
}

func createMemTestCommand(nexusCommand command, globalFlags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "memtest",
		Short: "Run the engine's memory allocator test",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return nexusCommand.MemTest(cmd.Context(), *globalFlags)
		},
	}
}

func createFileServerCommand(nexusCommand command, globalFlags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "fileserver",
		Short: "Run the engine's file server until --timeout elapses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return nexusCommand.FileServer(cmd.Context(), *globalFlags)
		},
	}
}

func createOpsCommand(nexusCommand command, globalFlags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "Print the engine selector table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return nexusCommand.Ops(cmd.Context(), *globalFlags)
		},
	}
}

// createServeCommand creates the serve subcommand
func createServeCommand(nexusCommand command, globalFlags *GlobalFlags, flags *ServeFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the HTTP API backed by the local engine. Metrics are exposed on
metrics.listen when metrics.enabled is set in the config.

Examples:
  nexus serve --config nexus.toml
  nexus serve --listen :8080 --base-path /api`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return nexusCommand.Serve(cmd.Context(), *globalFlags, *flags)
		},
	}

	cmd.Flags().StringVar(&flags.Listen, "listen", "", "listen address (overrides server.listen)")
	cmd.Flags().StringVar(&flags.BasePath, "base-path", "", "API base path (overrides server.base_path)")

	return cmd
}
