package analyzer

const (
	analysisMaxChars = 15000
	chatMaxChars     = 10000

	analysisTemperature = 0.4
	analysisMaxTokens   = 2000
	chatTemperature     = 0.7
	chatMaxTokens       = 1500

	// ChatFallbackResponse is returned when the model produces no text.
	ChatFallbackResponse = "I apologize, but I couldn't generate a response."
)

const analysisSystemPrompt = `You are an expert document analyzer.

Return ONLY valid JSON in the following structure:

{
  "summary": "Full summary here...",
  "themes": ["theme1", "theme2", "theme3"],
  "suggestions": [
    "Each suggestion must be a complete sentence of at least 12 words.",
    "Suggestions can give tips on improving the writing, such as grammatical mistakes, formatting issues or presentation issues.",
    "Include at least 5 suggestions.",
    "Suggestions must be actionable and extremely specific."
  ]
}

RULES:
- the summary part gives a brief summary
- suggestions must be related to the document
- Do NOT include any text from the original document.
- Do NOT include cut-off words.
- Do NOT include markdown.
- NEVER output text outside the JSON block.`

const analysisUserPrefix = "Analyze this document:\n\n"

const chatSystemPromptTemplate = `You are a helpful AI assistant analyzing a document. The user can ask you questions about the document and you should provide accurate, insightful answers based on the document content.

Document content (first 10000 characters):
%s

Instructions:
- Answer questions specifically about this document
- Be conversational and helpful
- If asked about something not in the document, politely say so
- Provide specific examples from the document when relevant
- Keep responses concise but informative`
