package ai

import (
	"encoding/json"
	"fmt"
)

// System prompts for the storefront reports
const (
	SalesReportSystemPrompt = `You are a professional business analyst for an online fashion boutique.
Generate concise, actionable insights from order data. Focus on:
- Order volume and revenue by fulfilment status
- Best-selling products and what drives them
- Specific recommendations for merchandising decisions
Keep responses to 3-4 paragraphs maximum.`

	ContactDigestSystemPrompt = `You are a customer service lead for an online fashion boutique.
Read recent contact form messages and summarise them for the support team:
- Recurring questions and complaints
- Messages that need an urgent reply
- Suggested FAQ or product page improvements
Write in a short, practical tone.`
)

func formatSalesDataPrompt(salesData interface{}) string {
	jsonData, _ := json.MarshalIndent(salesData, "", "  ")
	return fmt.Sprintf(`Analyze the following order analytics and provide business insights:

%s

Please provide:
1. Key performance highlights
2. Fulfilment problems (for example many pending or cancelled orders)
3. Product mix recommendations
4. Actionable next steps for the shop owner`, string(jsonData))
}

func formatContactDigestPrompt(contacts interface{}, count int) string {
	jsonData, _ := json.MarshalIndent(contacts, "", "  ")
	return fmt.Sprintf(`Summarise the following %d most recent contact messages:

%s

Please provide:
1. The main themes, with how many messages mention each
2. Messages that need a reply today
3. Suggested changes to reduce future questions`, count, string(jsonData))
}
