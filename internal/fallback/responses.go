package fallback

// Kind identifies which operation failed
type Kind string

const (
	KindChat     Kind = "chat"
	KindReminder Kind = "reminder"
	KindHistory  Kind = "history"
)

// Response represents a fallback response shown instead of an internal error
type Response struct {
	Content  string
	Priority string
}

var fallbacks = map[Kind]Response{
	KindChat: {
		Content:  "I apologize, but I'm having trouble processing your request. Please try again.",
		Priority: "normal",
	},
	KindReminder: {
		Content:  "I apologize, but I'm having trouble accessing your medication schedule.",
		Priority: "normal",
	},
	KindHistory: {
		Content:  "Unable to retrieve conversation history",
		Priority: "normal",
	},
}

// GetFallbackResponse returns the user-safe text for a failed operation
func GetFallbackResponse(kind Kind) Response {
	if response, ok := fallbacks[kind]; ok {
		return response
	}

	return Response{
		Content:  "I'm sorry, I'm having technical difficulties. Please try again.",
		Priority: "normal",
	}
}
