package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nekrovoice/nekro-go/assets"
	"github.com/nekrovoice/nekro-go/internal/app"
	"github.com/nekrovoice/nekro-go/internal/domain"
	"github.com/nekrovoice/nekro-go/internal/infrastructure/transcript"
)

func newProcessCommand(container *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process [utterance]",
		Short: "Interpret and dispatch a single command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			utterance := strings.Join(args, " ")
			done := container.Processor.Process(cmd.Context(), utterance, printCallback{})
			<-done
			container.Learning.Flush()
			return nil
		},
	}
	return cmd
}

func newListenCommand(container *app.Container) *cobra.Command {
	var noWake bool

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Consume transcribed utterances line by line",
		Long:  "Reads finalized transcriptions from stdin. In wake mode (the default) a line is only processed when it contains the activation phrase.",
		RunE: func(cmd *cobra.Command, args []string) error {
			source := transcript.NewLineSource(cmd.InOrStdin())
			for {
				line, err := source.Next()
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return err
				}

				utterance := line
				if !noWake {
					if !container.Wake.Detect(line) {
						container.Logger.Debug("no wake word", map[string]interface{}{"line": line})
						continue
					}
					utterance = container.Wake.Strip(line)
					if utterance == "" {
						fmt.Println("Yes?")
						continue
					}
				}

				// wait per utterance so outcomes print in order; the
				// interpretation call itself runs off this goroutine
				<-container.Processor.Process(cmd.Context(), utterance, printCallback{})
			}
		},
	}

	cmd.Flags().BoolVar(&noWake, "no-wake", false, "Process every line without wake-word gating")
	return cmd
}

func newTeachCommand(container *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teach [command] [action]",
		Short: "Map a command phrase to an action identifier",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			container.Learning.Teach(args[0], args[1])
			container.Learning.Flush()
			fmt.Printf("Learned: %q -> %s\n", strings.ToLower(strings.TrimSpace(args[0])), args[1])
			return nil
		},
	}
	return cmd
}

func newFeedbackCommand(container *app.Container) *cobra.Command {
	var negative bool

	cmd := &cobra.Command{
		Use:   "feedback [command text]",
		Short: "Rate the most recent handling of a command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.ToLower(strings.Join(args, " "))
			container.Learning.ProvideFeedback(text, !negative)
			container.Learning.Flush()
			if negative {
				fmt.Println("Noted, I got that one wrong.")
			} else {
				fmt.Println("Thanks for the feedback.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&negative, "negative", false, "Mark the command as handled incorrectly")
	return cmd
}

func newConfigCommand(container *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := container.Config
			fmt.Println("config file:       ", container.ConfigLoader.Path())
			fmt.Println("wake phrase:       ", cfg.Wake.Phrase)
			fmt.Println("wake threshold:    ", cfg.Wake.Threshold)
			fmt.Println("similarity:        ", cfg.Learning.SimilarityThreshold)
			fmt.Println("recency window:    ", cfg.Learning.RecencyWindow)
			fmt.Println("retention days:    ", cfg.Learning.RetentionDays)
			fmt.Println("storage:           ", cfg.Storage.Path)
			fmt.Println("interpreter model: ", cfg.Interpreter.ModelID)
			fmt.Println("interpreter ready: ", container.Interpreter.Available())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(container.ConfigLoader.Path())
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration template",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := container.ConfigLoader.Path()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
				return err
			}
			if err := os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions); err != nil {
				return err
			}
			fmt.Println("Wrote", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	cmd.AddCommand(initCmd)

	return cmd
}
