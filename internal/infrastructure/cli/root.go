// Package cli wires the cobra command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nekrovoice/nekro-go/internal/app"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}

	processCmd := newProcessCommand(container)

	root := &cobra.Command{
		Use:   "nekro [utterance]",
		Short: "Nekro - adaptive voice command interpreter",
		Long:  "Nekro interprets spoken commands into actionable intents, learns from usage and escalates unmatched commands to an external interpreter.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			processCmd.SetArgs(args)
			return processCmd.ExecuteContext(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return container.Close()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(processCmd)
	root.AddCommand(newListenCommand(container))
	root.AddCommand(newTeachCommand(container))
	root.AddCommand(newFeedbackCommand(container))
	root.AddCommand(newHistoryCommand(container))
	root.AddCommand(newStatsCommand(container))
	root.AddCommand(newPruneCommand(container))
	root.AddCommand(newConfigCommand(container))
	return root, nil
}

// printCallback renders pipeline outcomes to the terminal.
type printCallback struct{}

func (printCallback) OnResult(message string) { fmt.Println(message) }
func (printCallback) OnError(message string)  { fmt.Println("Sorry: " + message) }
func (printCallback) OnUnknown(command string) {
	fmt.Printf("I don't know how to %q yet. Teach me with: nekro teach %q <action>\n", command, command)
}
