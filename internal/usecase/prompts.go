// Package usecase contains application business logic services.
package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

// NameSentinel is the model reply meaning no candidate name was found.
const NameSentinel = "interviewee"

const questionGuidelines = `Guidelines:
1. Read the job description and the candidate CV carefully.
2. Tie every question to the candidate's own experience, skills and projects as they relate to this role.
3. Pitch the difficulty at the seniority of the role.
4. Ask open questions that need more than a yes or no and make the candidate explain their reasoning.
5. Let the questions build on each other so they support follow-up discussion.
6. Produce a fresh set on every request, even for identical inputs. Vary the angle: deep dives into projects, behavioural questions, trade-offs.
7. Keep the questions professional and fair. Never refer to "the job description document" itself.`

const complementaryPromptTmpl = `You are an expert interviewer. Write interview questions for the role below, tailored to this candidate's CV.

%s
8. The interviewer already prepared %d question(s), listed below. Cover areas those questions do not.

Job Description:
%s

Candidate CV:
%s

Questions Already Prepared:
%s

Write EXACTLY %d additional question(s). Respond with a JSON array of EXACTLY %d strings.`

const poolPromptTmpl = `You are an expert interviewer. Write interview questions for the role below, tailored to this candidate's CV.

%s%s

Job Description:
%s

Candidate CV:
%s

Respond with the questions as a JSON array of strings.`

const modelSelectionRule = `
8. Finally choose 3 of your questions at random and return only those 3.`

const evaluationPromptTmpl = `You are an expert interviewer evaluating a candidate's answers for the role of **%[1]s**.
Judge every answer against the knowledge, experience and depth expected of a **%[1]s**: foundations and clarity for junior roles, strategic insight and practical experience for senior ones.

For each question provide:
1. "summary": a concise summary of the answer.
2. "rating": one of "Excellent", "Good", "Average", "Below Average", "Poor", weighing clarity, completeness, relevance and depth for a %[1]s.
3. If an answer is empty or very short, say so in the summary and rate it "Poor", unless the question only calls for a short answer (for example yes/no).

Then provide an overall evaluation with "summary", "rating", "strengths" and "areasForImprovement". Each strength and area for improvement must be at most 100 characters.

Questions and answers:
%[2]s

Respond with a JSON object:
{
  "individualEvaluations": [{"question": "...", "summary": "...", "rating": "Good"}],
  "overallEvaluation": {
    "summary": "...",
    "rating": "Good",
    "strengths": ["..."],
    "areasForImprovement": ["..."]
  }
}`

const namePromptTmpl = `Your reply MUST be either the full name of the candidate or the literal string "%[1]s". Do not add any other text, punctuation or formatting.

1. Decide whether the text below is a CV or resume.
2. If it is, extract the candidate's full name and reply with only that name.
3. If it is not a CV, or no name can be found, reply with only "%[1]s".

Examples:
Text: "This is a job description for a software engineer role."
Reply: %[1]s

Text: "CV: John Doe. Experienced software developer with 10 years in the industry..."
Reply: John Doe

Text: "My resume lists my skills in Python, Java, and C++."
Reply: %[1]s

Text to analyze:
%[2]s`

// BuildComplementaryPrompt asks for exactly needed questions that complement custom.
func BuildComplementaryPrompt(job domain.JobPosting, cvText string, custom []string, needed int) string {
	if needed < 0 {
		needed = 0
	}
	var listed strings.Builder
	for i, q := range custom {
		if i > 0 {
			listed.WriteByte('\n')
		}
		fmt.Fprintf(&listed, "%d. %s", i+1, q)
	}
	return fmt.Sprintf(complementaryPromptTmpl,
		questionGuidelines, len(custom), jobText(job), cvText, listed.String(), needed, needed)
}

// BuildPoolPrompt asks for a pool of questions. With selectByModel the model
// is told to pick 3 of them at random itself.
func BuildPoolPrompt(job domain.JobPosting, cvText string, selectByModel bool) string {
	rule := ""
	if selectByModel {
		rule = modelSelectionRule
	}
	return fmt.Sprintf(poolPromptTmpl, questionGuidelines, rule, jobText(job), cvText)
}

// BuildEvaluationPrompt embeds the job title and the transcript as indented JSON.
func BuildEvaluationPrompt(jobTitle string, answers []domain.AnsweredQA) string {
	transcript, err := json.MarshalIndent(answers, "", "  ")
	if err != nil {
		transcript = []byte("[]")
	}
	return fmt.Sprintf(evaluationPromptTmpl, strings.TrimSpace(jobTitle), transcript)
}

// BuildNamePrompt asks for the candidate's name or NameSentinel.
func BuildNamePrompt(text string) string {
	return fmt.Sprintf(namePromptTmpl, NameSentinel, text)
}

func jobText(job domain.JobPosting) string {
	title := strings.TrimSpace(job.Title)
	desc := strings.TrimSpace(job.Description)
	switch {
	case title == "":
		return desc
	case desc == "":
		return title
	default:
		return title + "\n\n" + desc
	}
}

// capText trims text to maxTokens, leaving it untouched when maxTokens <= 0.
func capText(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return text
	}
	out, _ := tokencount.DefaultCounter.Truncate(text, maxTokens)
	return out
}
