package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spigell/interview-prep/internal/backend"
	"github.com/spigell/interview-prep/internal/export"
	"github.com/spigell/interview-prep/internal/history"
	"github.com/spigell/interview-prep/internal/input"
	"github.com/spigell/interview-prep/internal/session"
	"go.uber.org/zap"
)

const (
	PromptDocument   = "Upload a document"
	PromptSpeech     = "Speak an introduction"
	PromptQuit       = "Quit"
	PromptExportPDF  = "Export PDF"
	PromptStartOver  = "Start over"
	PromptAnswer     = "Answer"
	PromptTryAgain   = "Try again"
	PromptNext       = "Next question"
	PromptPrevious   = "Previous question"
	PromptBackToList = "Back to list"

	markerUnanswered = "[ ]"
	markerAnswered   = "[✓]"
)

var (
	errExit      = errors.New("exit requested")
	errStartOver = errors.New("start over requested")
)

var (
	toneStyles = map[session.Tone]func(interface{}) string{
		session.ToneNeutral:   promptui.Styler(promptui.FGCyan),
		session.ToneGood:      promptui.Styler(promptui.FGYellow),
		session.ToneExcellent: promptui.Styler(promptui.FGGreen, promptui.FGBold),
	}
	failureStyle = promptui.Styler(promptui.FGRed)
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Generate interview questions and practice answering them",
	Run: func(cmd *cobra.Command, _ []string) {
		practice(cmd)
	},
}

func init() {
	rootCmd.AddCommand(practiceCmd)

	practiceCmd.Flags().String("document", "", "generate questions from this document")
	practiceCmd.Flags().Bool("speech", false, "generate questions from a spoken introduction")
	practiceCmd.Flags().String("transcript-file", "", "read the spoken introduction line by line from this file instead of the terminal")
}

type practiceOptions struct {
	document       string
	speech         bool
	transcriptFile string
}

func practice(cmd *cobra.Command) {
	logger, config := setup()
	ctx := cmd.Context()

	opts := practiceOptions{}
	opts.document, _ = cmd.Flags().GetString("document")
	opts.speech, _ = cmd.Flags().GetBool("speech")
	opts.transcriptFile, _ = cmd.Flags().GetString("transcript-file")

	client := backend.New(config.Backend.URL, config.Backend.Timeout, logger)
	s := session.New(
		session.NewGenerator(client, logger),
		session.NewCoordinator(client, logger),
		logger,
	)

	logger.Debug("starting practice", zap.String("backend", client.APIURL))

	for {
		material, err := acquire(ctx, opts, logger)
		if err != nil {
			if isExit(err) {
				return
			}
			printFailure(err)
			// Flags are one-shot, a failed attempt falls back to the menu.
			opts = practiceOptions{}
			continue
		}

		fmt.Println("Generating questions...")
		if err := s.Generate(ctx, material); err != nil {
			printFailure(err)
			opts = practiceOptions{}
			continue
		}

		err = browse(ctx, s, config.Export.Dir)
		switch {
		case errors.Is(err, errStartOver):
			opts = practiceOptions{}
			continue
		case err == nil || isExit(err):
			return
		default:
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// acquire produces generation material from the flags or, without flags, from
// the input mode menu.
func acquire(ctx context.Context, opts practiceOptions, logger *zap.Logger) (input.Material, error) {
	switch {
	case opts.document != "":
		return input.ReadDocument(opts.document)
	case opts.speech || opts.transcriptFile != "":
		return captureSpeech(ctx, opts.transcriptFile, logger)
	}

	modePrompt := promptui.Select{
		Label: "How do you want to introduce yourself?",
		Items: []string{PromptDocument, PromptSpeech, PromptQuit},
	}

	_, mode, err := modePrompt.Run()
	if err != nil {
		return input.Material{}, err
	}

	switch mode {
	case PromptDocument:
		pathPrompt := promptui.Prompt{
			Label: "Document path",
			Validate: func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("path is required")
				}
				return nil
			},
		}
		path, err := pathPrompt.Run()
		if err != nil {
			return input.Material{}, err
		}
		return input.ReadDocument(strings.TrimSpace(path))
	case PromptSpeech:
		return captureSpeech(ctx, "", logger)
	default:
		return input.Material{}, errExit
	}
}

func captureSpeech(ctx context.Context, transcriptFile string, logger *zap.Logger) (input.Material, error) {
	capturer := input.TerminalCapturer()
	if transcriptFile != "" {
		f, err := os.Open(transcriptFile)
		if err != nil {
			return input.Material{}, fmt.Errorf("opening transcript file: %w", err)
		}
		defer f.Close()
		capturer = input.NewLineCapturer(f)
	}

	recorder := input.NewRecorder(capturer, logger)
	if err := recorder.Start(ctx); err != nil {
		return input.Material{}, err
	}

	if transcriptFile == "" {
		fmt.Println("Recording. Introduce yourself, one sentence per line, and finish with an empty line.")
	}

	select {
	case <-recorder.Done():
	case <-ctx.Done():
	}

	if err := recorder.Err(); err != nil {
		logger.Warn("speech capture ended with error", zap.Error(err))
	}

	return input.FromTranscript(recorder.Stop())
}

func browse(ctx context.Context, s *session.Session, exportDir string) error {
	for {
		snap := s.Snapshot()
		if snap.Set == nil {
			return errStartOver
		}

		if len(snap.Set.Skills) > 0 {
			fmt.Printf("Skills: %s\n", strings.Join(snap.Set.Skills, ", "))
		}

		items := make([]string, 0, len(snap.Set.Questions)+3)
		for i, q := range snap.Set.Questions {
			_, answered := snap.Answers[i]
			items = append(items, questionLabel(i, q, answered))
		}
		items = append(items, PromptExportPDF, PromptStartOver, PromptQuit)

		listPrompt := promptui.Select{
			Label: fmt.Sprintf("Questions (%d answered of %d)", len(snap.Answers), len(snap.Set.Questions)),
			Items: items,
			Size:  10,
		}

		index, selected, err := listPrompt.Run()
		if err != nil {
			return err
		}

		switch selected {
		case PromptExportPDF:
			filename, err := export.WriteSessionPDF(exportDir, snap)
			if err != nil {
				printFailure(err)
				continue
			}
			fmt.Printf("Saved %s\n", filename)
		case PromptStartOver:
			s.StartOver()
			return errStartOver
		case PromptQuit:
			return errExit
		default:
			if err := s.SelectQuestion(index); err != nil {
				printFailure(err)
				continue
			}
			if err := practiceQuestions(ctx, s); err != nil {
				return err
			}
		}
	}
}

// practiceQuestions runs Practicing mode until the user goes back to the list.
func practiceQuestions(ctx context.Context, s *session.Session) error {
	for {
		cursor, mode := s.Cursor()
		if mode != session.Practicing {
			return nil
		}

		snap := s.Snapshot()
		total := len(snap.Set.Questions)
		fmt.Printf("\nQuestion %d of %d\n%s\n", cursor+1, total, snap.Set.Questions[cursor])

		record, answered := s.Record(cursor)
		if answered {
			printRecord(record)
		}

		actions := practiceActions(answered, cursor, total)
		actionPrompt := promptui.Select{
			Label: "Choose an action",
			Items: actions,
		}

		_, action, err := actionPrompt.Run()
		if err != nil {
			return err
		}

		switch action {
		case PromptAnswer:
			if err := answerQuestion(ctx, s, cursor); err != nil {
				if isExit(err) {
					return err
				}
				printFailure(err)
			}
		case PromptTryAgain:
			if err := s.ResetAnswer(cursor); err != nil {
				printFailure(err)
			}
		case PromptNext:
			s.Next()
		case PromptPrevious:
			s.Previous()
		case PromptBackToList:
			s.Browse()
		}
	}
}

func answerQuestion(ctx context.Context, s *session.Session, index int) error {
	answerPrompt := promptui.Prompt{
		Label: "Your answer",
	}

	answer, err := answerPrompt.Run()
	if err != nil {
		return err
	}

	fmt.Println("Submitting...")
	record, err := s.SubmitAnswer(ctx, index, answer)
	if err != nil {
		return err
	}

	printRecord(record)
	return nil
}

func practiceActions(answered bool, cursor, total int) []string {
	actions := make([]string, 0, 4)
	if answered {
		actions = append(actions, PromptTryAgain)
	} else {
		actions = append(actions, PromptAnswer)
	}
	if cursor < total-1 {
		actions = append(actions, PromptNext)
	}
	if cursor > 0 {
		actions = append(actions, PromptPrevious)
	}
	return append(actions, PromptBackToList)
}

func questionLabel(index int, question string, answered bool) string {
	marker := markerUnanswered
	if answered {
		marker = markerAnswered
	}
	return marker + " " + strconv.Itoa(index+1) + ". " + question
}

func printRecord(record session.AnswerRecord) {
	style := toneStyles[session.ToneOf(record.Feedback.Text)]
	fmt.Printf("Your answer: %s\n", record.Answer)
	fmt.Printf("Feedback: %s\n", style(record.Feedback.Text))
	fmt.Printf("Expected answer: %s\n", record.Feedback.ExpectedAnswer)
}

func printFailure(err error) {
	fmt.Println(failureStyle(userMessage(err)))
}

// userMessage renders an error for the terminal. Backend rejections carry a
// message meant for the user already.
func userMessage(err error) string {
	var fetchErr *history.FetchError
	var statusErr *backend.StatusError
	switch {
	case errors.As(err, &fetchErr):
		return fetchErr.Message
	case errors.As(err, &statusErr):
		return statusErr.Message
	case errors.Is(err, backend.ErrUnreachable):
		return "Unable to connect to the server. Please make sure the backend is running."
	case errors.Is(err, backend.ErrMalformedResponse):
		return "The server returned an unexpected response."
	default:
		return err.Error()
	}
}

func isExit(err error) bool {
	return errors.Is(err, errExit) ||
		errors.Is(err, promptui.ErrInterrupt) ||
		errors.Is(err, promptui.ErrEOF)
}
