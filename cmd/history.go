package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spigell/interview-prep/internal/backend"
	"github.com/spigell/interview-prep/internal/history"
	"go.uber.org/zap"
)

const (
	PromptRefresh       = "Refresh"
	PromptToggleDetails = "Show / hide questions"
	PromptExportText    = "Export to text file"
	PromptBack          = "back"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse previously generated question sets",
	Run: func(cmd *cobra.Command, _ []string) {
		browseHistory(cmd)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func browseHistory(cmd *cobra.Command) {
	logger, config := setup()
	ctx := cmd.Context()

	client := backend.New(config.Backend.URL, config.Backend.Timeout, logger)
	browser := history.NewBrowser(client, logger)

	fetch(ctx, browser)

	for {
		entries := browser.Entries()

		items := make([]string, 0, len(entries)+2)
		for i, e := range entries {
			items = append(items, entryLabel(e))
			if browser.Expanded(i) {
				printEntry(e)
			}
		}
		items = append(items, PromptRefresh, PromptQuit)

		listPrompt := promptui.Select{
			Label: fmt.Sprintf("Question history (%d)", len(entries)),
			Items: items,
			Size:  10,
		}

		index, selected, err := listPrompt.Run()
		if err != nil {
			if isExit(err) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}

		switch selected {
		case PromptRefresh:
			fetch(ctx, browser)
		case PromptQuit:
			return
		default:
			if err := entryActions(browser, index, config.Export.Dir); err != nil {
				if isExit(err) {
					return
				}
				printFailure(err)
			}
		}
	}
}

func fetch(ctx context.Context, browser *history.Browser) {
	fmt.Println("Loading history...")
	entries, err := browser.Refresh(ctx)
	if err != nil {
		printFailure(err)
		return
	}
	if len(entries) == 0 {
		fmt.Println("No question history yet.")
	}
}

func entryActions(browser *history.Browser, index int, exportDir string) error {
	actionPrompt := promptui.Select{
		Label: "Choose an action",
		Items: []string{PromptToggleDetails, PromptExportText, PromptBack},
	}

	_, action, err := actionPrompt.Run()
	if err != nil {
		return err
	}

	switch action {
	case PromptToggleDetails:
		_, err := browser.Toggle(index)
		return err
	case PromptExportText:
		filename, err := browser.Export(exportDir, index)
		if err != nil {
			return err
		}
		fmt.Printf("Saved %s\n", filename)
	}

	return nil
}

func entryLabel(e history.Entry) string {
	return fmt.Sprintf("%s  %s  %d questions", e.Date(), e.Source, len(e.Questions))
}

// printEntry shows an expanded entry. Source details exist for documents only.
func printEntry(e history.Entry) {
	fmt.Print(entryDetails(e))
}

func entryDetails(e history.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", entryLabel(e))
	if details, ok := e.SourceDetails(); ok {
		fmt.Fprintf(&b, "Source: %s\n", details)
	}
	if len(e.Skills) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(e.Skills, ", "))
	}
	for i, q := range e.Questions {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, q)
	}
	return b.String()
}
