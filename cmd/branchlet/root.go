package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Tsdevendra1/branchlet/internal/config"
	"github.com/Tsdevendra1/branchlet/internal/git"
	"github.com/Tsdevendra1/branchlet/internal/log"
	"github.com/Tsdevendra1/branchlet/internal/output"
	"github.com/Tsdevendra1/branchlet/internal/ui/styles"
)

// Environment variables read by the CLI.
const (
	// WrapperEnv is set to 1 by the shell function that consumes the
	// navigation handoff on stdout.
	WrapperEnv = "BRANCHLET_WRAPPER"
	// ThemeEnv selects a colour preset.
	ThemeEnv = "BRANCHLET_THEME"
)

var (
	// Global flags
	verbose     bool
	quiet       bool
	fromWrapper bool
)

// Command group IDs for organizing help output
const (
	GroupCore   = "core"
	GroupConfig = "config"
)

// newRootCmd builds the command tree. Flags bind fresh on every call.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "branchlet",
		Short: "Create, close and delete git worktrees",
		Long: `branchlet manages the lifecycle of git worktrees.

It creates worktrees next to the repository, copies local files such as
.env into them, runs setup commands, and cleans them up again.`,
		SilenceUsage:               true,
		SilenceErrors:              true,
		SuggestionsMinimumDistance: 2,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "completion" || cmd.Name() == "__complete" || cmd.Name() == "help" {
				return nil
			}

			// Flags are parsed now, so the logger can honour them.
			ctx := log.WithLogger(cmd.Context(), log.New(os.Stderr, verbose, quiet))
			cmd.SetContext(ctx)

			if cmd.GroupID == GroupConfig || (cmd.Parent() != nil && cmd.Parent().Name() == "config") {
				return nil
			}
			return git.CheckGit()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show external commands being executed")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.PersistentFlags().BoolVar(&fromWrapper, "from-wrapper", false, "Emit the navigation handoff on stdout (set by the shell wrapper)")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	_ = rootCmd.PersistentFlags().MarkHidden("from-wrapper")

	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupCore, Title: "Worktree Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newCloseCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newListCmd())

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute builds the root context and runs the command tree.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	styles.Init(os.Getenv(ThemeEnv), os.Getenv("NO_COLOR") != "")

	globalPath, err := config.GlobalPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "branchlet: %v\n", err)
		os.Exit(1)
	}
	ctx = config.WithResolver(ctx, config.NewResolver(globalPath))
	ctx = log.WithLogger(ctx, log.New(os.Stderr, false, false))
	ctx = output.WithPrinter(ctx, os.Stdout)

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, styles.ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}
}

// wrapperMode reports whether stdout is read by the shell wrapper.
func wrapperMode() bool {
	return fromWrapper || os.Getenv(WrapperEnv) == "1"
}

