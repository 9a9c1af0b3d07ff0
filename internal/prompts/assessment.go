// Package prompts builds the instruction text sent to the model. Every
// builder is a pure function of its inputs; source text is embedded
// verbatim.
package prompts

import (
	"fmt"
	"strings"
)

// Item counts the generation prompts ask for. Validators enforce the same
// numbers on the reply.
const (
	MCQCount         = 5
	MCQOptionCount   = 4
	ShortAnswerCount = 2
)

// User-role companions to the generation and grading prompts, which are
// sent in the system role.
const (
	MCQUserMessage         = "Generate MCQs in the specified JSON format."
	ShortAnswerUserMessage = "Generate short answer questions in the specified JSON format."
	GradingUserMessage     = "Evaluate the user answer and provide the JSON as described."
)

const mcqExample = `[
  {
    "id": 1,
    "question": "What is X?",
    "options": ["A", "B", "C", "D"],
    "correctAnswer": 0,
    "explanation": "Detailed explanation of why this is the correct answer and why others are incorrect"
  }
]`

const gradingExample = `{
  "score": 85,
  "feedback": "Overall assessment of the answer",
  "keyPointsCovered": [{"point": "Key point the answer covered", "quality": "How well it was explained"}],
  "keyPointsMissing": [{"point": "Key point the answer left out", "importance": "Why it matters"}],
  "misconceptions": ["Misconception found in the answer"],
  "suggestions": ["How to improve the answer"]
}`

const shortAnswerExample = `[
  {
    "id": 1,
    "question": "What is X?",
    "expectedAnswer": "Detailed model answer that covers all key points",
    "keyPoints": [
      {
        "point": "Key concept or idea that must be present",
        "explanation": "Why this point is important and how it should be explained"
      }
    ],
    "commonMisconceptions": [
      "List common incorrect understandings or partial answers"
    ],
    "gradingCriteria": {
      "excellent": "What constitutes a full score answer",
      "good": "What constitutes a high score answer",
      "fair": "What constitutes a medium score answer",
      "poor": "What constitutes a low score answer",
      "zero": "What constitutes a zero score answer"
    }
  }
]`

// MCQ returns the multiple-choice generation prompt for sourceText.
func MCQ(sourceText string) string {
	var b strings.Builder

	b.WriteString("You are an expert assessment system. Analyze the given text and generate conceptual multiple choice questions.\n")
	b.WriteString("Focus on testing understanding of:\n")
	b.WriteString("1. Core concepts and principles\n")
	b.WriteString("2. Logical relationships between ideas\n")
	b.WriteString("3. Application of concepts\n")
	b.WriteString("4. Critical thinking and analysis\n")
	b.WriteString("5. Cause and effect relationships\n\n")

	fmt.Fprintf(&b, "Generate %d multiple choice questions based on the following text:\n\n", MCQCount)
	b.WriteString(sourceText)
	b.WriteString("\n\nFormat your response as a valid JSON array with this exact structure:\n")
	b.WriteString(mcqExample)

	b.WriteString("\n\nRules:\n")
	fmt.Fprintf(&b, "1. Generate exactly %d questions\n", MCQCount)
	fmt.Fprintf(&b, "2. Each question must have exactly %d options\n", MCQOptionCount)
	fmt.Fprintf(&b, "3. correctAnswer must be 0-%d (index of correct option)\n", MCQOptionCount-1)
	b.WriteString("4. Questions should test deep understanding, not just memorization\n")
	b.WriteString("5. Include tricky but plausible incorrect options\n")
	b.WriteString("6. Add a detailed explanation for each question\n")
	b.WriteString("7. Return ONLY the JSON array, no other text\n")

	return b.String()
}

// ShortAnswer returns the short-answer generation prompt for sourceText.
func ShortAnswer(sourceText string) string {
	var b strings.Builder

	b.WriteString("You are an expert assessment system. Generate in-depth conceptual questions that test deep understanding.\n")
	b.WriteString("Focus on:\n")
	b.WriteString("1. Core theoretical concepts\n")
	b.WriteString("2. Problem-solving abilities\n")
	b.WriteString("3. Critical analysis\n")
	b.WriteString("4. Application of principles\n")
	b.WriteString("5. Cause-effect relationships\n\n")

	fmt.Fprintf(&b, "Generate %d short answer questions based on the following text:\n\n", ShortAnswerCount)
	b.WriteString(sourceText)
	b.WriteString("\n\nFormat your response as a valid JSON array with this exact structure:\n")
	b.WriteString(shortAnswerExample)

	b.WriteString("\n\nRules:\n")
	fmt.Fprintf(&b, "1. Generate exactly %d questions\n", ShortAnswerCount)
	b.WriteString("2. Questions should require detailed explanations\n")
	b.WriteString("3. Key points should be specific and measurable\n")
	b.WriteString("4. Include common misconceptions to watch for\n")
	b.WriteString("5. Provide clear grading criteria\n")
	b.WriteString("6. Return ONLY the JSON array, no other text\n")

	return b.String()
}

// Grading returns the prompt that asks the model to grade userAnswer
// against the item's model answer.
func Grading(question, expectedAnswer, userAnswer string) string {
	var b strings.Builder

	b.WriteString("Given the following short answer question and a user's answer, provide a remark on accuracy, ")
	b.WriteString("a score out of 100, and suggestions for improvement.\n\n")
	fmt.Fprintf(&b, "Question: %s\n", question)
	fmt.Fprintf(&b, "Correct Answer: %s\n", expectedAnswer)
	fmt.Fprintf(&b, "User's Answer: %s\n\n", userAnswer)
	b.WriteString("Reply with a JSON object in exactly this format:\n")
	b.WriteString(gradingExample)
	b.WriteString("\n\nscore is a number from 0 to 100. Return ONLY the JSON object, no other text.")

	return b.String()
}
