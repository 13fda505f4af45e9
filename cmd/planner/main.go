package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "planner",
		Short: "Task planning and team chat",
		Long: `Planner runs the task and chat server and talks to it from a terminal.

  planner serve                  start the HTTP and websocket server
  planner chat general           join a chat room, one message per line
  planner task create "Title"    create a task`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			setupLogging()
		},
	}

	rootCmd.AddCommand(
		serveCmd(),
		chatCmd(),
		taskCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// setupLogging initializes the global logger from PLANNER_LOG_LEVEL and
// PLANNER_LOG_FORMAT. Logs go to stderr so they never mix with chat output.
func setupLogging() {
	level, err := zerolog.ParseLevel(os.Getenv("PLANNER_LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if os.Getenv("PLANNER_LOG_FORMAT") == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}
