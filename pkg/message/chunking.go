package message

import "unicode/utf8"

// MaxTextLength is the Bot API limit on the length of a single text
// message, counted in Unicode code points.
const MaxTextLength = 4096

// splitThreshold is the offset a newline must lie strictly beyond for a
// chunk to be cut there instead of at MaxTextLength.
const splitThreshold = MaxTextLength / 2

// SplitText splits text into chunks of at most MaxTextLength runes.
//
// Text that fits is returned as a single chunk, unchanged. Otherwise each
// chunk is cut at the last newline within its first MaxTextLength runes when
// that newline lies past the midpoint; the newline itself is dropped. With no
// such newline the chunk is cut at exactly MaxTextLength runes.
func SplitText(text string) []string {
	if utf8.RuneCountInString(text) <= MaxTextLength {
		return []string{text}
	}

	var chunks []string
	remaining := text
	for remaining != "" {
		if utf8.RuneCountInString(remaining) <= MaxTextLength {
			chunks = append(chunks, remaining)
			break
		}

		// Byte offsets of the MaxTextLength boundary and of the last
		// newline inside it, tracked alongside the rune offset.
		limit, lastNewline, runes := 0, -1, 0
		for i, r := range remaining {
			if runes == MaxTextLength {
				limit = i
				break
			}
			if r == '\n' && runes > splitThreshold {
				lastNewline = i
			}
			runes++
		}

		if lastNewline >= 0 {
			chunks = append(chunks, remaining[:lastNewline])
			remaining = remaining[lastNewline+1:]
			continue
		}
		chunks = append(chunks, remaining[:limit])
		remaining = remaining[limit:]
	}
	return chunks
}
