package analysis

import "fmt"

// FallbackAnswer is returned whenever the model cannot produce an analysis.
const FallbackAnswer = "Sorry, I was unable to generate an analysis at this time."

const analysisPromptTemplate = `You are a helpful financial analyst assistant for top management. Answer the question using only the financial data of %s below.

Financial data (figures as reported, one row per fiscal year):

%s
Guidelines:
- Calculate ratios when asked, for example Debt-to-Equity (Total Liabilities / Total Equity) or Net Profit Margin (Net Profit / Revenue from Operations).
- Summarize trends across years when relevant.
- Say so plainly when the data does not contain what is needed.
- Keep the answer concise and use light Markdown formatting.

Question: %s`

func BuildAnalysisPrompt(companyName, table, question string) string {
	return fmt.Sprintf(analysisPromptTemplate, companyName, table, question)
}
