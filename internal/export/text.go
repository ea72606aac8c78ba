package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// FlatEntry is the content of a history export. Nil slices are rendered as
// missing; empty slices as empty.
type FlatEntry struct {
	Date      string
	Questions []string
	Skills    []string
}

// FlatText renders a history entry as plain text.
func FlatText(e FlatEntry) string {
	date := e.Date
	if strings.TrimSpace(date) == "" {
		date = "No timestamp"
	}

	questions := "No questions available"
	if e.Questions != nil {
		questions = strings.Join(e.Questions, "\n\n")
	}

	skills := "No skills identified"
	if e.Skills != nil {
		skills = strings.Join(e.Skills, ", ")
	}

	return fmt.Sprintf("Interview Questions Export\n\nDate: %s\n\nQuestions:\n%s\n\nSkills: %s", date, questions, skills)
}

// WriteFlatText writes the flat text of entry number index to dir.
func WriteFlatText(dir string, index int, e FlatEntry) (string, error) {
	path := filepath.Join(dir, HistoryFilename(index))
	if err := os.WriteFile(path, []byte(FlatText(e)), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SessionFilename names the document export of a question set.
func SessionFilename(setID string) string {
	id := strings.Trim(unsafeFilename.ReplaceAllString(setID, "-"), "-.")
	if id == "" {
		return "interview-questions.pdf"
	}
	return fmt.Sprintf("interview-questions-%s.pdf", id)
}

// HistoryFilename names the flat text export of history entry index.
func HistoryFilename(index int) string {
	return fmt.Sprintf("interview-questions-%d.txt", index)
}
