package session

import (
	"slices"
)

// QuestionSet is an ordered list of questions plus skill tags. The index of a
// question is its identity for the lifetime of the set.
type QuestionSet struct {
	ID        string
	Questions []string
	Skills    []string
}

func (q *QuestionSet) clone() *QuestionSet {
	if q == nil {
		return nil
	}
	return &QuestionSet{
		ID:        q.ID,
		Questions: slices.Clone(q.Questions),
		Skills:    slices.Clone(q.Skills),
	}
}

// Feedback is the evaluation of one answer. Both parts always arrive together.
type Feedback struct {
	Text           string
	ExpectedAnswer string
}

// AnswerRecord exists only for a successfully evaluated answer, so it always
// carries feedback.
type AnswerRecord struct {
	Answer   string
	Feedback Feedback
}

type Mode int

const (
	Browsing Mode = iota
	Practicing
)

func (m Mode) String() string {
	switch m {
	case Practicing:
		return "practicing"
	default:
		return "browsing"
	}
}

// State is the lifecycle position of one question.
type State int

const (
	Unanswered State = iota
	Submitting
	Answered
)

func (s State) String() string {
	switch s {
	case Submitting:
		return "submitting"
	case Answered:
		return "answered"
	default:
		return "unanswered"
	}
}

// Snapshot is a detached copy of the session for readers.
type Snapshot struct {
	Set     *QuestionSet
	Answers map[int]AnswerRecord
	Cursor  int
	Mode    Mode
}

// AnsweredIndices returns the indices with a record in ascending order.
func (s Snapshot) AnsweredIndices() []int {
	indices := make([]int, 0, len(s.Answers))
	for i := range s.Answers {
		indices = append(indices, i)
	}
	slices.Sort(indices)
	return indices
}
