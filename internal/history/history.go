package history

import (
	"bufio"
	"os"
	"strings"
	"sync"
)

const maxHistorySize = 1000

// History keeps the questions typed in the tui, persisted to a file.
type History struct {
	entries []string
	index   int    // Current position in history (-1 means new input)
	current string // Input being typed before navigation started
	mu      sync.Mutex
	path    string
}

// New returns the history persisted at path. An empty path disables persistence.
func New(path string) *History {
	h := &History{
		index: -1,
		path:  path,
	}
	h.load()
	return h
}

func (h *History) load() {
	if h.path == "" {
		return
	}
	file, err := os.Open(h.path)
	if err != nil {
		return // File doesn't exist yet.
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := unescape(scanner.Text()); line != "" {
			h.entries = append(h.entries, line)
		}
	}
	if len(h.entries) > maxHistorySize {
		h.entries = h.entries[len(h.entries)-maxHistorySize:]
	}
}

// save writes history to its file. h.mu must be held.
func (h *History) save() {
	if h.path == "" {
		return
	}
	file, err := os.Create(h.path)
	if err != nil {
		return // History is best effort.
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, entry := range h.entries {
		writer.WriteString(escape(entry) + "\n")
	}
	writer.Flush()
}

func escape(entry string) string {
	return strings.ReplaceAll(strings.ReplaceAll(entry, "\\", "\\\\"), "\n", "\\n")
}

func unescape(line string) string {
	var sb strings.Builder
	for i := 0; i < len(line); i++ {
		if line[i] == '\\' && i+1 < len(line) {
			switch line[i+1] {
			case 'n':
				sb.WriteByte('\n')
				i++
				continue
			case '\\':
				sb.WriteByte('\\')
				i++
				continue
			}
		}
		sb.WriteByte(line[i])
	}
	return sb.String()
}

// Add records a submitted entry, skipping blanks and repeats of the last entry.
func (h *History) Add(entry string) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.index = -1
	h.current = ""
	if len(h.entries) > 0 && h.entries[len(h.entries)-1] == entry {
		return
	}
	h.entries = append(h.entries, entry)
	if len(h.entries) > maxHistorySize {
		h.entries = h.entries[len(h.entries)-maxHistorySize:]
	}
	h.save()
}

// Previous returns the previous entry. currentInput is restored when navigating back past the newest entry.
func (h *History) Previous(currentInput string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) == 0 {
		return "", false
	}
	switch {
	case h.index == -1:
		h.current = currentInput
		h.index = len(h.entries) - 1
	case h.index > 0:
		h.index--
	default:
		return h.entries[0], false
	}
	return h.entries[h.index], true
}

// Next returns the next entry toward the present.
func (h *History) Next() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.index == -1 {
		return "", false
	}
	h.index++
	if h.index >= len(h.entries) {
		h.index = -1
		return h.current, true
	}
	return h.entries[h.index], true
}

// Reset ends navigation, so the next Previous starts again from the newest entry.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.index = -1
	h.current = ""
}
