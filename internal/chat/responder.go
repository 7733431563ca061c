package chat

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// rule maps any of its keywords to a canned reply
type rule struct {
	keywords []string
	reply    string
}

// rules are checked in order; the first rule with a matching keyword wins
var rules = []rule{
	{
		keywords: []string{"hello", "hi"},
		reply:    "Hello! I'm your learning and career assistant. How can I help you today?",
	},
	{
		keywords: []string{"help", "support"},
		reply:    "I can help you with learning recommendations, career path suggestions, skill assessments, and more. What specifically would you like assistance with?",
	},
	{
		keywords: []string{"course", "learn", "study"},
		reply:    "Based on your profile, I'd recommend courses in data science, UX design, or web development. Would you like more specific recommendations in any of these areas?",
	},
	{
		keywords: []string{"job", "career", "work"},
		reply:    "With your current skills, you might consider roles in product management, UX/UI design, or frontend development. Would you like more information about any of these career paths?",
	},
	{
		keywords: []string{"skill", "ability"},
		reply:    "Your current skill assessment shows strengths in problem-solving and design thinking. Developing technical skills like programming or data analysis could open up more opportunities for you.",
	},
}

// FallbackReply is used when no keyword matches
const FallbackReply = "That's an interesting question. To give you the best guidance, could you provide more details about what you're looking to achieve with your learning or career goals?"

// Answer picks the assistant's answer to a user message.
// Keywords match as substrings, so "this" matches "hi".
func Answer(query string) string {
	lower := cases.Lower(language.Und).String(query)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.reply
			}
		}
	}
	return FallbackReply
}
