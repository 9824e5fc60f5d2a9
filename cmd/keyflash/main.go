// Package main provides the CLI entrypoint for keyflash.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/keyflash/internal/config"
	"github.com/verte-zerg/keyflash/internal/wordlist"
)

const (
	defaultWords       = 25
	defaultCaps        = 0.5
	defaultPunct       = 0.5
	defaultWeakTop     = 8
	defaultWeakFactor  = 2.0
	defaultWeakWindow  = 20
	defaultCurveWindow = 20
	defaultIdleMs      = 1000
	defaultDebounceMs  = 100
	defaultTabWidth    = 4
	defaultQuestionMs  = 500
	defaultCardMs      = 5000
	defaultLogLevel    = "info"
	defaultLogFormat   = "text"
)

const defaultPunctSet = ".,!?;:\"'{}()[]-=/<>`"

var (
	practiceLang       string
	practiceWords      int
	practiceCaps       float64
	practicePunct      float64
	practicePunctSet   string
	practiceFocusWeak  bool
	practiceWeakTop    int
	practiceWeakFactor float64
	practiceWeakWindow int

	sessionDuration   int
	sessionIdleMs     int
	sessionDebounceMs int
	sessionTabWidth   int
	sessionStrict     bool
	sessionQuestionMs int
	sessionCardMs     int
	logLevel          string
	logFormat         string

	quoteFile    string
	cardsShuffle bool

	statsMode        string
	statsLang        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsChars       string

	wordlistLang  string
	wordlistForce bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "keyflash",
		Short:         "Typing trainer for words, quotes, code and flashcards",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runWordsCmd,
	}

	rootCmd.Flags().StringVar(&practiceLang, "lang", wordlist.DefaultLang, "language code")
	rootCmd.Flags().IntVar(&practiceWords, "words", defaultWords, "words per text")
	rootCmd.Flags().Float64Var(&practiceCaps, "caps", defaultCaps, "probability of capitalized first letter (0-1)")
	rootCmd.Flags().Float64Var(&practicePunct, "punct", defaultPunct, "punctuation probability per word (0-1)")
	rootCmd.Flags().StringVar(&practicePunctSet, "punct-set", defaultPunctSet, "punctuation set")
	rootCmd.Flags().BoolVar(&practiceFocusWeak, "focus-weak", false, "bias practice toward weak characters")
	rootCmd.Flags().IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak characters to focus on")
	rootCmd.Flags().Float64Var(&practiceWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak characters")
	rootCmd.Flags().IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent sessions to compute weak chars")

	pf := rootCmd.PersistentFlags()
	pf.IntVar(&sessionDuration, "duration", 0, "timed run length in seconds for words and quotes (0: one text)")
	pf.IntVar(&sessionIdleMs, "idle-ms", defaultIdleMs, "milliseconds without input before the cursor blinks")
	pf.IntVar(&sessionDebounceMs, "debounce-ms", defaultDebounceMs, "live metrics refresh delay in milliseconds")
	pf.IntVar(&sessionTabWidth, "tab-width", defaultTabWidth, "spaces per tab in code")
	pf.BoolVar(&sessionStrict, "strict-completion", false, "finish only when the input matches the text exactly")
	pf.IntVar(&sessionQuestionMs, "question-delay-ms", defaultQuestionMs, "pause between a flashcard question and its answer")
	pf.IntVar(&sessionCardMs, "card-delay-ms", defaultCardMs, "pause before the next flashcard")
	pf.StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", defaultLogFormat, "log format (text, json)")

	rootCmd.AddCommand(newQuoteCmd())
	rootCmd.AddCommand(newCodeCmd())
	rootCmd.AddCommand(newTextCmd())
	rootCmd.AddCommand(newCardsCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLangsCmd())
	rootCmd.AddCommand(newWordlistCmd())

	return rootCmd
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newLangsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "langs",
		Short: "List available wordlist languages",
		Args:  cobra.NoArgs,
		RunE:  runLangsCmd,
	}
}

func runLangsCmd(cmd *cobra.Command, _ []string) error {
	langs, err := wordlist.Languages(config.DefaultWordListDir())
	if err != nil {
		return err
	}
	for _, lang := range langs {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), lang); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newWordlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wordlist",
		Short: "Manage wordlists",
	}
	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a wordlist (one word per line, '-' for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE:  runWordlistImportCmd,
	}
	importCmd.Flags().StringVar(&wordlistLang, "lang", "", "language code of the list")
	importCmd.Flags().BoolVar(&wordlistForce, "force", false, "overwrite an existing list")
	cmd.AddCommand(importCmd)
	return cmd
}

func runWordlistImportCmd(cmd *cobra.Command, args []string) error {
	lang := strings.TrimSpace(strings.ToLower(wordlistLang))
	if lang == "" {
		return fmt.Errorf("--lang must not be empty")
	}
	if strings.ContainsAny(lang, `/\.`) {
		return fmt.Errorf("invalid language code %q", lang)
	}

	outPath := config.DefaultWordListPath(lang)
	if !wordlistForce {
		if _, err := os.Stat(outPath); err == nil {
			return fmt.Errorf("word list already exists: %s (use --force to overwrite)", outPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat word list: %w", err)
		}
	}

	in := cmd.InOrStdin()
	if args[0] != "-" {
		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open word list: %w", err)
		}
		defer func() {
			if cerr := file.Close(); cerr != nil {
				logErrf("failed to close %s: %v\n", args[0], cerr)
			}
		}()
		in = file
	}

	count, err := wordlist.Import(in, lang, outPath)
	if err != nil {
		return fmt.Errorf("failed to import %s word list: %w", lang, err)
	}
	logErrf("Wrote %d words to %s\n", count, outPath)
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# keyflash configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# lang = %q               # Language code
# words = %d              # Words per text
# caps = %.2f             # Probability of capitalized first letter (0-1)
# punct = %.2f            # Punctuation probability per word (0-1)
# punct-set = %q          # Punctuation set
# focus-weak = false      # Bias practice toward weak characters
# weak-top = %d           # Number of weak characters to focus on
# weak-factor = %.1f      # Weight factor for weak characters
# weak-window = %d        # Number of recent sessions to compute weak chars

[session]
# duration = 0            # Timed run length in seconds for words and quotes (0: one text)
# idle-ms = %d          # Milliseconds without input before the cursor blinks
# debounce-ms = %d       # Live metrics refresh delay in milliseconds
# tab-width = %d          # Spaces per tab in code
# strict-completion = false # Finish only when the input matches the text exactly
# question-delay-ms = %d # Pause between a flashcard question and its answer
# card-delay-ms = %d    # Pause before the next flashcard

[log]
# level = %q          # debug, info, warn, error
# format = %q         # text or json
`,
		wordlist.DefaultLang,
		defaultWords,
		defaultCaps,
		defaultPunct,
		defaultPunctSet,
		defaultWeakTop,
		defaultWeakFactor,
		defaultWeakWindow,
		defaultIdleMs,
		defaultDebounceMs,
		defaultTabWidth,
		defaultQuestionMs,
		defaultCardMs,
		defaultLogLevel,
		defaultLogFormat,
	)
}

func wordListLoadError(lang, path string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load word list: %v", err),
		fmt.Sprintf("expected word list at: %s", path),
		fmt.Sprintf("language %q not found", lang),
		"Run: keyflash langs",
		fmt.Sprintf("Import: keyflash wordlist import --lang %s FILE", lang),
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
