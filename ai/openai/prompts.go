package openai

import "fmt"

const findingsResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "summaries": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "pmid": {
            "type": "string"
          },
          "findings": {
            "type": "array",
            "items": {
              "type": "string"
            },
            "minItems": 1,
            "maxItems": 3
          }
        },
        "required": ["pmid", "findings"],
        "additionalProperties": false
      }
    }
  },
  "required": ["summaries"],
  "additionalProperties": false
}`

const summaryPromptTemplate = `You are given medical research articles, each with a PMID, a title and an
abstract. For EVERY article, extract its key findings and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Emit exactly one entry per input article, in the order the articles are given.
- The "pmid" field must be copied exactly from the article's PMID line.
- Each finding is one short sentence stating a main conclusion or clinical implication.
- Focus on conclusions; avoid methods detail and avoid restating the title.
- Do not invent results that are not supported by the abstract.
- If an abstract is empty or uninformative, emit a single finding "No abstract available."
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input:
PMID: 12345678
Title: Statin therapy in heart failure
Abstract: In this randomized trial of 400 patients, statin therapy reduced hospitalization rates by 18%% over two years.

Output:
{
  "summaries": [
    {"pmid":"12345678","findings":["Statin therapy reduced heart failure hospitalization rates by 18%% over two years in a randomized trial."]}
  ]
}`

const answerPromptTemplate = `You answer medical questions using ONLY the research articles provided by the
user. Each article is numbered and includes its title, authors, abstract and
publication date.

Write a comprehensive answer that:
1. Synthesizes information from multiple articles where possible.
2. Cites articles by number (e.g. [2]) when making claims.
3. Acknowledges limitations or contradictions between articles.
4. Remains focused on the question asked.

If the articles do not contain enough information to answer, say so plainly
instead of speculating.`

// buildSummarySystemPrompt creates the system prompt with the response schema embedded.
func buildSummarySystemPrompt() string {
	return fmt.Sprintf(summaryPromptTemplate, findingsResponseSchema)
}

// buildAnswerSystemPrompt creates the system prompt for question answering.
func buildAnswerSystemPrompt() string {
	return answerPromptTemplate
}
