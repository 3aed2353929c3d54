package constant

const (
	// Title given to a session before the first user message arrives.
	ChatSessionUntitled = "New conversation"

	// Layout used to auto-title a session from its first user message time,
	// e.g. "Chat 2026-08-28 14:05".
	ChatSessionTitleTimeLayout = "2006-01-02 15:04"
	ChatSessionTitlePrefix     = "Chat "

	// System message appended when reply generation fails upstream. The user
	// message is already committed at that point and stays.
	ChatUpstreamFailureMessage = "The assistant is temporarily unavailable. Your message was saved; please try again."
)

const (
	// Watermill topic carrying document processing jobs.
	DocumentJobsTopic = "document.jobs"
)
