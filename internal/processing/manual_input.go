package processing

import (
	"strings"

	"github.com/spacesedan/confessit/internal/models"
)

// ParseManualInput splits pasted text into one confession per line. Only the
// input as a whole is trimmed, so lines keep their text and an empty line
// between confessions is a confession of its own. Blank-only input yields no
// confessions.
func ParseManualInput(raw string) []models.Confession {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []models.Confession{}
	}

	lines := strings.Split(raw, "\n")
	confessions := make([]models.Confession, 0, len(lines))
	for _, line := range lines {
		confessions = append(confessions, strings.TrimSuffix(line, "\r"))
	}
	return confessions
}
