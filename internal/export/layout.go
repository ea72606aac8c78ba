// Package export renders a session into a paginated document and history
// entries into flat text.
package export

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mitchellh/go-wordwrap"
	"github.com/spigell/interview-prep/internal/session"
)

// Page geometry in millimetres, A4 portrait.
const (
	PageWidth  = 210.0
	PageHeight = 297.0

	marginLeft   = 15.0
	centerX      = PageWidth / 2
	pageTop      = 20.0
	pageBottom   = 270.0
	wrapColumns  = 95
	lineHeight   = 10.0
	skillsLine   = 5.0
	labelAdvance = 8.0

	questionSpacing = 5.0
	entrySpacing    = 10.0

	titleSize   = 20.0
	headingSize = 16.0
	labelSize   = 12.0
	bodySize    = 10.0
	skillsY     = 35.0
	questionsY  = 65.0
	answersTopY = 35.0

	Title        = "Generated Interview Questions"
	AnswersTitle = "Your Answers & Feedback"
)

var ErrNothingToExport = errors.New("no questions to export, generate questions first")

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
)

// Element is one positioned line of text. For centred elements X is the
// centre of the line.
type Element struct {
	Text  string
	X     float64
	Y     float64
	Size  float64
	Bold  bool
	Align Align
}

type Page struct {
	Elements []Element
}

// Document is the rendering-independent layout of an export. Two layouts of
// the same input are equal.
type Document struct {
	Pages []Page
}

// block is a label followed by lines. Zero labelGap and spacing mean
// labelAdvance and lineHeight.
type block struct {
	label    string
	lines    []string
	labelGap float64
	spacing  float64
}

type layouter struct {
	doc *Document
	y   float64
}

// Layout arranges the question set and the answered questions into pages.
// Answers are emitted in ascending question order.
func Layout(set *session.QuestionSet, answers map[int]session.AnswerRecord) (*Document, error) {
	if set == nil || len(set.Questions) == 0 {
		return nil, ErrNothingToExport
	}

	l := &layouter{doc: &Document{}}
	l.newPage()
	l.add(Element{Text: Title, X: centerX, Y: pageTop, Size: titleSize, Bold: true, Align: AlignCenter})

	l.y = questionsY
	if len(set.Skills) > 0 {
		l.y = skillsY
		l.block(block{
			label:    "Skills:",
			lines:    wrap(strings.Join(set.Skills, ", ")),
			labelGap: lineHeight,
			spacing:  skillsLine,
		})
		l.y += lineHeight
		if len(l.doc.Pages) == 1 {
			l.y = max(questionsY, l.y)
		}
	}

	// Keep the heading with the first question line.
	l.ensure(2 * lineHeight)
	l.add(Element{Text: "Questions:", X: marginLeft, Y: l.y, Size: labelSize, Bold: true})
	l.y += lineHeight

	for i, question := range set.Questions {
		l.block(block{lines: wrap(fmt.Sprintf("%d. %s", i+1, question))})
		l.y += questionSpacing
	}

	snap := session.Snapshot{Answers: answers}
	indices := snap.AnsweredIndices()
	if len(indices) == 0 {
		return l.doc, nil
	}

	l.newPage()
	l.add(Element{Text: AnswersTitle, X: centerX, Y: pageTop, Size: headingSize, Bold: true, Align: AlignCenter})
	l.y = answersTopY

	for _, i := range indices {
		if i < 0 || i >= len(set.Questions) {
			continue
		}
		record := answers[i]
		l.block(block{label: fmt.Sprintf("Question %d:", i+1), lines: wrap(set.Questions[i])})
		l.block(block{label: "Your Answer:", lines: wrap(record.Answer)})
		l.block(block{label: "Feedback:", lines: wrap(record.Feedback.Text)})
		l.block(block{label: "Expected Answer:", lines: wrap(record.Feedback.ExpectedAnswer)})
		l.y += entrySpacing
	}

	return l.doc, nil
}

// block places an optional bold label followed by wrapped lines. The block
// moves to a new page when it would cross the bottom limit; a block taller
// than a page breaks between lines instead.
func (l *layouter) block(b block) {
	labelGap, spacing := b.labelGap, b.spacing
	if labelGap == 0 {
		labelGap = labelAdvance
	}
	if spacing == 0 {
		spacing = lineHeight
	}

	height := float64(len(b.lines)) * spacing
	if b.label != "" {
		height += labelGap
	}
	l.ensure(height)

	if b.label != "" {
		l.add(Element{Text: b.label, X: marginLeft, Y: l.y, Size: labelSize, Bold: true})
		l.y += labelGap
	}

	for _, line := range b.lines {
		if l.y > pageBottom {
			l.newPage()
		}
		l.add(Element{Text: line, X: marginLeft, Y: l.y, Size: bodySize})
		l.y += spacing
	}
}

// ensure starts a new page unless height fits below the current position.
// Content taller than a page stays where it is.
func (l *layouter) ensure(height float64) {
	if l.y+height > pageBottom && l.y > pageTop && height <= pageBottom-pageTop {
		l.newPage()
	}
}

func (l *layouter) newPage() {
	l.doc.Pages = append(l.doc.Pages, Page{})
	l.y = pageTop
}

func (l *layouter) add(e Element) {
	page := &l.doc.Pages[len(l.doc.Pages)-1]
	page.Elements = append(page.Elements, e)
}

// wrap breaks text at spaces to wrapColumns runes. Words longer than a line
// are split.
func wrap(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{""}
	}

	var lines []string
	for _, line := range strings.Split(wordwrap.WrapString(text, wrapColumns), "\n") {
		line = strings.TrimRight(line, " ")
		for utf8.RuneCountInString(line) > wrapColumns {
			runes := []rune(line)
			lines = append(lines, string(runes[:wrapColumns]))
			line = string(runes[wrapColumns:])
		}
		lines = append(lines, line)
	}
	return lines
}
