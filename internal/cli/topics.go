package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/conorfennell/nerd/internal/fields"
)

func newTopicsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "topics",
		Aliases: []string{"topic"},
		Short:   "List and manage topics",
	}
	cmd.AddCommand(
		newTopicsListCmd(app),
		newTopicsAddCmd(app),
		newTopicsRenameCmd(app),
		newTopicsRemoveCmd(app),
	)
	return cmd
}

func newTopicsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List topics",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.client()
			if err != nil {
				return err
			}
			topics, err := client.Topics().List(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, len(topics))
			for i, t := range topics {
				rows[i] = []string{strconv.FormatInt(t.ID, 10), t.Name}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "NAME"}, rows))
			return nil
		},
	}
}

func newTopicsAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME",
		Short: "Create a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := fields.TopicSchema.Collect(map[string]string{"name": args[0]}, fields.Create)
			if err != nil {
				return err
			}
			client, err := app.client()
			if err != nil {
				return err
			}
			topic, err := client.Topics().Create(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created topic %d %q\n", topic.ID, topic.Name)
			return nil
		},
	}
}

func newTopicsRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename ID NAME",
		Short: "Rename a topic",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := fields.TopicSchema.Collect(map[string]string{"name": args[1]}, fields.Create)
			if err != nil {
				return err
			}
			client, err := app.client()
			if err != nil {
				return err
			}
			topic, err := client.Topics().Update(cmd.Context(), id, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed topic %d to %q\n", topic.ID, topic.Name)
			return nil
		},
	}
}

func newTopicsRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a topic and its cards",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := app.client()
			if err != nil {
				return err
			}
			if err := client.Topics().Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted topic %d\n", id)
			return nil
		},
	}
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderRow(false).
		Headers(headers...).
		Rows(rows...).
		String()
}
