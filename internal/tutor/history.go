package tutor

// DefaultHistoryWindow is the number of recent messages shown to the
// decision and dialogue models when no explicit bound is configured.
const DefaultHistoryWindow = 10

// Window returns the most recent n messages with empty-content entries
// removed. Empty entries are filtered before the tail is taken, so the
// caller receives up to n substantive messages rather than n slots that
// may include placeholders.
//
// Pure function: the input slice is never modified and the same input
// always yields the same output.
func Window(messages []Message, n int) []Message {
	if n <= 0 {
		n = DefaultHistoryWindow
	}

	filtered := make([]Message, 0, len(messages))
	for _, msg := range messages {
		if msg.Content == "" {
			continue
		}
		filtered = append(filtered, msg)
	}

	if len(filtered) > n {
		filtered = filtered[len(filtered)-n:]
	}
	return filtered
}
