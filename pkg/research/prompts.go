package research

import (
	"fmt"
	"strings"
)

const summaryMaxWords = 500

func formatPlannerPrompt(task string) string {
	return fmt.Sprintf(`You are a research planner. Given a user query, generate a list of search queries to gather comprehensive information.

User Query: %s

IMPORTANT: Your response must be ONLY a valid JSON object, no other text.
The JSON must have this exact format:
{"queries": ["query1", "query2", ...]}

Generate 3-5 specific search queries that will help answer the user's question.
`, task)
}

func formatSummarizerPrompt(content string, maxWords int) string {
	return fmt.Sprintf(`Summarize the following content concisely in %d words or less.
Focus on the key facts and information relevant to research.

Content:
%s
`, maxWords, content)
}

func formatReviewerPrompt(task string, content []string) string {
	return fmt.Sprintf(`Evaluate if the following information is sufficient to answer the query.

Query: %s

Information gathered:
%s

Respond with a JSON object:
{"sufficient": true or false, "reason": "brief explanation"}
`, task, strings.Join(content, "\n\n"))
}

func formatWriterPrompt(task string, content, references []string) string {
	refs := "(No references available)"
	if len(references) > 0 {
		lines := make([]string, len(references))
		for i, url := range references {
			lines[i] = "- " + url
		}
		refs = strings.Join(lines, "\n")
	}

	return fmt.Sprintf(`Write a comprehensive research report based on the gathered information.

Query: %s

Information:
%s

References:
%s

Write a well-structured report in Markdown format with:
1. A clear introduction
2. Main findings organized by topic
3. A conclusion
4. Properly cited references
`, task, strings.Join(content, "\n\n"), refs)
}

// tagSummary prefixes a summary with the URL it was produced from.
func tagSummary(url, summary string) string {
	return fmt.Sprintf("Source: %s\n%s", url, strings.TrimSpace(summary))
}
