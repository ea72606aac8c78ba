package ai

import (
	_ "embed"
	"strconv"
	"strings"
)

const (
	QuestionsSystem = "You are an expert technical interviewer. Generate relevant interview questions based on the candidate's skills and experience."
	FeedbackSystem  = "You provide specific, actionable technical interview feedback without generic phrases."
)

//go:embed prompts/questions.md
var questionsTemplate string

//go:embed prompts/feedback.md
var feedbackTemplate string

func QuestionsPrompt(material string, count int) string {
	prompt := strings.ReplaceAll(questionsTemplate, "{{COUNT}}", strconv.Itoa(count))
	return strings.ReplaceAll(prompt, "{{MATERIAL}}", strings.TrimSpace(material))
}

func FeedbackPrompt(question, expected, answer string) string {
	prompt := strings.ReplaceAll(feedbackTemplate, "{{QUESTION}}", strings.TrimSpace(question))
	prompt = strings.ReplaceAll(prompt, "{{EXPECTED}}", strings.TrimSpace(expected))
	return strings.ReplaceAll(prompt, "{{ANSWER}}", strings.TrimSpace(answer))
}
