package faq

import "strings"

// Entry is one canned question/answer pair. The table is fixed at build
// time and never mutated.
type Entry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Fallback is returned for any question outside the table.
const Fallback = "Sorry, I didn't understand that. Please try again."

var entries = []Entry{
	{"hi", "Hello! How can I assist you today?"},
	{"help", "Sure! Please ask your query."},
	{"what courses are available", "We offer a variety of online courses including Web Development, Data Science, and AI/ML. You can view all courses on our website."},
	{"how can i enroll in a course", `To enroll in a course, please visit the course details page and click on the "Enroll Now" button.`},
	{"what is the cost of the courses", "The cost of courses varies. Please check the course details for specific pricing information."},
	{"what is the duration of the courses", "Course durations vary from a few weeks to several months. You can find the duration in the course details."},
	{"how do i contact support", "You can contact us at support@scriptindia.in for any questions or issues."},
	{"is there any certificate provided", "Yes, we provide a certificate upon successful completion of the course."},
	{"can i pay in installments", "Yes, we offer flexible payment options, including installments. Please visit our payment page for more details."},
	{"what is the refund policy", "We offer a 30-day money-back guarantee. If you are not satisfied with the course, you can request a refund within 30 days of purchase."},
	{"courses available for beginners", "We have several beginner-friendly courses in Web Development and Data Science. Check our course catalog for more details."},
}

var answers map[string]string

func init() {
	answers = make(map[string]string, len(entries))
	for _, e := range entries {
		answers[e.Question] = e.Answer
	}
}

// Entries lists the table in its display order, for the read-only
// disclosure view. Listing creates no transcript entry and no mirror call.
func Entries() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Lookup maps a free-text question to its canned answer: trimmed,
// case-folded, exact match only.
func Lookup(question string) string {
	q := strings.ToLower(strings.TrimSpace(question))
	if answer, ok := answers[q]; ok {
		return answer
	}
	return Fallback
}

// Message is one transcript line of the current session.
type Message struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Exchange is the pair mirrored to the platform's conversation log.
type Exchange struct {
	UserQuestion string `json:"userQuestion"`
	ChatbotReply string `json:"chatbotReply"`
}
