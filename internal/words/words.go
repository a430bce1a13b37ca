// internal/words/words.go
//
// Dictionary loading for the word source.
//
// Responsibilities:
//   - Read a dictionary file (one word per line) or fall back to the embedded default list.
//   - Normalize entries: trim, lowercase, drop blanks and '#' comments.
//   - Keep only WordLength-letter alphabetic words so every secret has the same length.
//
// Environment (resolved by internal/config, passed in here):
//   WORDS_FILE=/path/to/words.txt   empty → embedded assets/words.txt

package words

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/engine/assets"
)

// WordLength is the fixed secret/attempt length.
const WordLength = 5

// Load reads a dictionary from path, or the embedded list when path is empty.
func Load(path string) ([]string, error) {
	if path == "" {
		return LoadEmbedded()
	}
	list, err := readWordFile(path)
	if err != nil {
		return nil, fmt.Errorf("words: read %s: %w", path, err)
	}
	log.Info().Str("file", path).Int("words", len(list)).Msg("dictionary loaded")
	return list, nil
}

// LoadEmbedded returns the dictionary shipped in assets/words.txt.
func LoadEmbedded() ([]string, error) {
	raw, err := assets.WordList()
	if err != nil {
		return nil, fmt.Errorf("words: read embedded list: %w", err)
	}
	out := make([]string, 0, len(raw))
	for _, w := range raw {
		if valid(w) {
			out = append(out, w)
		}
	}
	log.Info().Int("words", len(out)).Msg("embedded dictionary loaded")
	return out, nil
}

// readWordFile loads one word per line from a file,
// lowercases, trims, and keeps only valid WordLength-letter alphabetic words.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		w := strings.ToLower(line)
		if valid(w) {
			out = append(out, w)
		} else {
			log.Debug().Str("line", line).Msg("skipping dictionary entry")
		}
	}
	return out, sc.Err()
}

func valid(w string) bool {
	return len(w) == WordLength && isAlpha(w)
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
