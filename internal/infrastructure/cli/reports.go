package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nekrovoice/nekro-go/internal/app"
	"github.com/nekrovoice/nekro-go/internal/domain"
)

func newHistoryCommand(container *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently processed commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			records := container.Learning.History(limit)
			if len(records) == 0 {
				fmt.Println("No commands processed yet.")
				return nil
			}
			for _, rec := range records {
				marker := "ok"
				if !rec.Success {
					marker = "??"
				}
				fmt.Printf("%s  %-12s %-40q %s\n", marker, rec.Type, rec.Text, humanize.Time(rec.Timestamp))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", domain.DefaultHistoryLimit, "Maximum number of records to show")
	return cmd
}

func newStatsCommand(container *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show learning statistics and teaching suggestions",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng := container.Learning
			fmt.Printf("commands processed: %s\n", humanize.Comma(int64(eng.TotalCount())))
			fmt.Printf("successful:         %s\n", humanize.Comma(int64(eng.SuccessCount())))
			fmt.Printf("accuracy:           %.1f%%\n", eng.Accuracy()*100)
			fmt.Printf("taught commands:    %s\n", humanize.Comma(int64(eng.TaughtCount())))

			if top := eng.TopFrequent(5); len(top) > 0 {
				fmt.Println("\nmost frequent:")
				for _, entry := range top {
					fmt.Printf("  %4d  %s\n", entry.Count, entry.Command)
				}
			}

			if suggestions := eng.Suggestions(domain.DefaultSuggestionLimit); len(suggestions) > 0 {
				fmt.Println("\nworth teaching:")
				for _, s := range suggestions {
					fmt.Printf("  %s\n", s)
				}
			}
			return nil
		},
	}
	return cmd
}

func newPruneCommand(container *app.Container) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete command history older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				days = container.Config.Learning.RetentionDays
			}
			cutoff := time.Now().AddDate(0, 0, -days)
			removed, err := container.Store.DeleteOlderThan(cutoff)
			if err != nil {
				return fmt.Errorf("prune history: %w", err)
			}
			fmt.Printf("Removed %s record(s) older than %s.\n",
				humanize.Comma(removed), humanize.Time(cutoff))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Retention window in days (defaults to the configured value)")
	return cmd
}
