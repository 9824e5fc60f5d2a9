// Package wordlist loads word lists from files.
package wordlist

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrEmpty is returned for a word list without words.
var ErrEmpty = errors.New("word list is empty")

//go:embed en.txt
var defaultEnglish string

// DefaultLang is the language of the built-in list.
const DefaultLang = "en"

// Default returns the built-in English word list.
func Default() []string {
	words, err := ReadWords(strings.NewReader(defaultEnglish), FilterForLang(DefaultLang))
	if err != nil {
		panic(fmt.Sprintf("built-in word list: %v", err))
	}
	return words
}

// LoadWords reads one word per line from the provided file path.
func LoadWords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()
	return ReadWords(file, nil)
}

// Resolve loads the list for lang from path, falling back to the built-in
// list when the default language has no file on disk.
func Resolve(path, lang string) ([]string, error) {
	words, err := LoadWords(path)
	if err == nil {
		return words, nil
	}
	if errors.Is(err, os.ErrNotExist) && strings.EqualFold(lang, DefaultLang) {
		return Default(), nil
	}
	return nil, err
}

// ReadWords reads trimmed non-empty lines in NFC form, keeping those accepted
// by filter (all when nil).
func ReadWords(r io.Reader, filter FilterFunc) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := norm.NFC.String(strings.TrimSpace(scanner.Text()))
		if line == "" {
			continue
		}
		if filter != nil && !filter(line) {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, ErrEmpty
	}
	return words, nil
}

// Languages lists the language codes with a word list in dir. The built-in
// language is always included.
func Languages(dir string) ([]string, error) {
	langs := map[string]struct{}{DefaultLang: {}}
	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read wordlist directory: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".txt") {
			continue
		}
		langs[strings.TrimSuffix(name, ".txt")] = struct{}{}
	}
	out := make([]string, 0, len(langs))
	for lang := range langs {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out, nil
}

// Import reads words from r, filters them for lang and writes them to path
// atomically.
func Import(r io.Reader, lang, path string) (int, error) {
	words, err := ReadWords(r, FilterForLang(lang))
	if err != nil {
		return 0, err
	}
	words = dedupe(words)
	if err := writeWords(path, words); err != nil {
		return 0, err
	}
	return len(words), nil
}

func dedupe(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

func writeWords(path string, words []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create word list dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "wordlist-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create temp word list: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	for _, word := range words {
		if _, err := fmt.Fprintln(writer, word); err != nil {
			return fmt.Errorf("failed to write word list: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush word list: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close word list: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write word list: %w", err)
	}
	return nil
}
