package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/conorfennell/nerd/internal/domain"
	"github.com/conorfennell/nerd/internal/fields"
)

// cardFlags are the card fields settable from the command line.
var cardFlags = []string{"title", "question", "answer"}

func newCardsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cards",
		Aliases: []string{"card"},
		Short:   "List and manage cards",
	}
	cmd.AddCommand(
		newCardsListCmd(app),
		newCardsShowCmd(app),
		newCardsAddCmd(app),
		newCardsEditCmd(app),
		newCardsRemoveCmd(app),
	)
	return cmd
}

func addCardFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "Card title")
	cmd.Flags().String("question", "", "Question (Markdown)")
	cmd.Flags().String("answer", "", "Answer (Markdown)")
}

// changedValues returns the card fields whose flags were given.
func changedValues(cmd *cobra.Command) map[string]string {
	values := map[string]string{}
	for _, name := range cardFlags {
		if cmd.Flags().Changed(name) {
			v, _ := cmd.Flags().GetString(name)
			values[name] = v
		}
	}
	return values
}

func newCardsListCmd(app *App) *cobra.Command {
	var topicID int64
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List cards, optionally of one topic",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.client()
			if err != nil {
				return err
			}
			cards, err := client.Cards().List(cmd.Context(), domain.Scope{TopicID: topicID})
			if err != nil {
				return err
			}
			rows := make([][]string, len(cards))
			for i, c := range cards {
				rows[i] = []string{strconv.FormatInt(c.ID, 10), strconv.FormatInt(c.TopicID, 10), c.Title}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "TOPIC", "TITLE"}, rows))
			return nil
		},
	}
	cmd.Flags().Int64Var(&topicID, "topic", 0, "Only list cards of this topic")
	return cmd
}

func newCardsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Render a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := app.client()
			if err != nil {
				return err
			}
			card, err := client.Cards().Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
			if err != nil {
				return fmt.Errorf("failed to create renderer: %w", err)
			}
			out, err := r.Render(cardMarkdown(card))
			if err != nil {
				return fmt.Errorf("failed to render card %d: %w", id, err)
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func cardMarkdown(c domain.Card) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", c.Title)
	fmt.Fprintf(&b, "**Question**\n\n%s\n\n", c.Question)
	if c.Answer != "" {
		fmt.Fprintf(&b, "**Answer**\n\n%s\n", c.Answer)
	}
	return b.String()
}

func newCardsAddCmd(app *App) *cobra.Command {
	var topicID int64
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a card in a topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := changedValues(cmd)
			values["topic_id"] = strconv.FormatInt(topicID, 10)
			p, err := fields.CardSchema.Collect(values, fields.Create)
			if err != nil {
				return err
			}
			client, err := app.client()
			if err != nil {
				return err
			}
			card, err := client.Cards().Create(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created card %d %q\n", card.ID, card.Title)
			return nil
		},
	}
	cmd.Flags().Int64Var(&topicID, "topic", 0, "Topic of the new card")
	_ = cmd.MarkFlagRequired("topic")
	addCardFlags(cmd)
	return cmd
}

func newCardsEditCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change the given fields of a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := fields.CardSchema.Collect(changedValues(cmd), fields.Update)
			if err != nil {
				return err
			}
			if len(p) == 0 {
				return errors.New("nothing to change: give --title, --question or --answer")
			}
			client, err := app.client()
			if err != nil {
				return err
			}
			card, err := client.Cards().Update(cmd.Context(), id, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated card %d %q\n", card.ID, card.Title)
			return nil
		},
	}
	addCardFlags(cmd)
	return cmd
}

func newCardsRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a card",
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
			if err := client.Cards().Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted card %d\n", id)
			return nil
		},
	}
}
