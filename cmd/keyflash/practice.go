package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/keyflash/internal/clock"
	"github.com/verte-zerg/keyflash/internal/config"
	"github.com/verte-zerg/keyflash/internal/deck"
	"github.com/verte-zerg/keyflash/internal/engine"
	"github.com/verte-zerg/keyflash/internal/flow"
	"github.com/verte-zerg/keyflash/internal/generator"
	"github.com/verte-zerg/keyflash/internal/logging"
	"github.com/verte-zerg/keyflash/internal/model"
	"github.com/verte-zerg/keyflash/internal/stats"
	"github.com/verte-zerg/keyflash/internal/store"
	"github.com/verte-zerg/keyflash/internal/tui"
	"github.com/verte-zerg/keyflash/internal/wordlist"
)

// app holds what every typing command opens: settings, a log file and the
// session store.
type app struct {
	file    config.FileConfig
	session model.SessionConfig
	logger  *slog.Logger
	logFile io.Closer
	store   *store.Store
	clk     clock.Clock
}

func newQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Type quotes",
		Args:  cobra.NoArgs,
		RunE:  runQuoteCmd,
	}
	cmd.Flags().StringVar(&quoteFile, "file", "", "quotes file, separated by blank lines (default: built-in quotes)")
	return cmd
}

func newCodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "code FILE",
		Short: "Type a source file",
		Args:  cobra.ExactArgs(1),
		RunE:  runCodeCmd,
	}
}

func newTextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "text FILE",
		Short: "Type a saved text",
		Args:  cobra.ExactArgs(1),
		RunE:  runTextCmd,
	}
}

func newCardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards FILE",
		Short: "Type a flashcard deck: question, then answer",
		Args:  cobra.ExactArgs(1),
		RunE:  runCardsCmd,
	}
	cmd.Flags().BoolVar(&cardsShuffle, "shuffle", false, "shuffle the cards")
	return cmd
}

// openApp resolves settings from flags and the config file, then opens the
// log file and the store.
func openApp(cmd *cobra.Command) (*app, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "duration", &sessionDuration, fileCfg.Session.Duration)
	applyIntConfig(cmd, "idle-ms", &sessionIdleMs, fileCfg.Session.IdleMs)
	applyIntConfig(cmd, "debounce-ms", &sessionDebounceMs, fileCfg.Session.DebounceMs)
	applyIntConfig(cmd, "tab-width", &sessionTabWidth, fileCfg.Session.TabWidth)
	applyBoolConfig(cmd, "strict-completion", &sessionStrict, fileCfg.Session.StrictCompletion)
	applyIntConfig(cmd, "question-delay-ms", &sessionQuestionMs, fileCfg.Session.QuestionDelayMs)
	applyIntConfig(cmd, "card-delay-ms", &sessionCardMs, fileCfg.Session.CardDelayMs)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-format", &logFormat, fileCfg.Log.Format)

	sessCfg := model.SessionConfig{
		DurationSec:      sessionDuration,
		IdleMs:           sessionIdleMs,
		DebounceMs:       sessionDebounceMs,
		TabWidth:         sessionTabWidth,
		StrictCompletion: sessionStrict,
		QuestionDelayMs:  sessionQuestionMs,
		CardDelayMs:      sessionCardMs,
		LogLevel:         logLevel,
		LogFormat:        logFormat,
	}
	if err := config.NewValidator().Validate(sessCfg); err != nil {
		return nil, err
	}

	logger, logFile, err := logging.Open(config.DefaultLogPath(), logging.Config{
		Format: sessCfg.LogFormat,
		Level:  logging.ParseLevel(sessCfg.LogLevel),
	})
	if err != nil {
		return nil, err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		closeLog(logFile)
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return &app{
		file:    fileCfg,
		session: sessCfg,
		logger:  logger,
		logFile: logFile,
		store:   st,
		clk:     clock.Real(),
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		logErrf("failed to close db: %v\n", err)
	}
	closeLog(a.logFile)
}

func closeLog(c io.Closer) {
	if err := c.Close(); err != nil {
		logErrf("failed to close log: %v\n", err)
	}
}

func (a *app) newSession(mode engine.Mode) *engine.Session {
	return engine.New("", engine.Config{
		Mode:              mode,
		IdleAfter:         a.session.IdleAfter(),
		Debounce:          a.session.Debounce(),
		TabWidth:          a.session.TabWidth,
		RequireExactMatch: a.session.StrictCompletion,
	}, a.clk)
}

// newRun picks the controller for an endless source: a timed chain when a
// duration is set, a single text otherwise.
func (a *app) newRun(session *engine.Session, source flow.Source) tui.Options {
	if d := a.session.Duration(); d > 0 {
		countdown := flow.NewTimer(a.clk, d)
		return tui.Options{
			Controller: flow.NewTimed(session, source, countdown, a.clk),
			Countdown:  countdown,
		}
	}
	return tui.Options{Controller: flow.NewSingle(session, source)}
}

func (a *app) run(opts tui.Options) error {
	opts.Store = a.store
	opts.Logger = a.logger
	m, err := tui.NewModel(opts)
	if err != nil {
		return err
	}
	a.logger.Info("run started", "mode", opts.Controller.Session().Mode().String(), "source", opts.Source)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func runWordsCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	fileCfg := a.file
	applyStringConfig(cmd, "lang", &practiceLang, fileCfg.Practice.Lang)
	applyIntConfig(cmd, "words", &practiceWords, fileCfg.Practice.Words)
	applyFloatConfig(cmd, "caps", &practiceCaps, fileCfg.Practice.CapsPct)
	applyFloatConfig(cmd, "punct", &practicePunct, fileCfg.Practice.PunctPct)
	applyStringConfig(cmd, "punct-set", &practicePunctSet, fileCfg.Practice.PunctSet)
	applyBoolConfig(cmd, "focus-weak", &practiceFocusWeak, fileCfg.Practice.FocusWeak)
	applyIntConfig(cmd, "weak-top", &practiceWeakTop, fileCfg.Practice.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &practiceWeakFactor, fileCfg.Practice.WeakFactor)
	applyIntConfig(cmd, "weak-window", &practiceWeakWindow, fileCfg.Practice.WeakWindow)

	cfg := model.Config{
		Lang:       practiceLang,
		Words:      practiceWords,
		CapsPct:    practiceCaps,
		PunctPct:   practicePunct,
		PunctSet:   practicePunctSet,
		FocusWeak:  practiceFocusWeak,
		WeakTop:    practiceWeakTop,
		WeakFactor: practiceWeakFactor,
		WeakWindow: practiceWeakWindow,
	}
	if err := config.NewValidator().Validate(cfg); err != nil {
		return err
	}

	wordPath := config.DefaultWordListPath(cfg.Lang)
	words, err := wordlist.Resolve(wordPath, cfg.Lang)
	if err != nil {
		return wordListLoadError(cfg.Lang, wordPath, err)
	}

	source := generator.NewWordSource(generator.New(), words, generator.Options{
		Count:    cfg.Words,
		CapsPct:  cfg.CapsPct,
		PunctPct: cfg.PunctPct,
		PunctSet: []rune(cfg.PunctSet),
	})
	if cfg.FocusWeak {
		source.WeakFactor = cfg.WeakFactor
		source.WeakChars = a.weakChars(cfg)
		if len(source.WeakChars()) == 0 {
			logErrln("no stats available for weak-char focus yet; using normal generator")
		}
	}

	opts := a.newRun(a.newSession(engine.ModeWords), source)
	opts.Practice = cfg
	opts.Source = wordPath
	return a.run(opts)
}

// weakChars reloads the weakest characters for every generated text, so
// finished runs feed the next ones.
func (a *app) weakChars(cfg model.Config) func() map[rune]struct{} {
	return func() map[rune]struct{} {
		aggs, err := a.store.GetWeakChars(context.Background(), cfg.WeakWindow, cfg.Lang)
		if err != nil {
			a.logger.Error("failed to load weak chars", "err", err)
			return nil
		}
		weak := stats.SelectWeakChars(aggs, cfg.WeakTop)
		a.logger.Debug("weak chars selected", "count", len(weak), "window", cfg.WeakWindow)
		return weak
	}
}

func runQuoteCmd(cmd *cobra.Command, _ []string) error {
	quotes := deck.DefaultQuotes()
	if quoteFile != "" {
		loaded, err := deck.LoadQuotes(quoteFile)
		if err != nil {
			return err
		}
		quotes = loaded
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	opts := a.newRun(a.newSession(engine.ModeQuote), deck.NewQuoteSource(quotes))
	opts.Source = quoteFile
	return a.run(opts)
}

func runCodeCmd(cmd *cobra.Command, args []string) error {
	return runFileCmd(cmd, args[0], engine.ModeCode)
}

func runTextCmd(cmd *cobra.Command, args []string) error {
	return runFileCmd(cmd, args[0], engine.ModeText)
}

func runFileCmd(cmd *cobra.Command, path string, mode engine.Mode) error {
	text, err := deck.LoadText(path)
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	return a.run(tui.Options{
		Controller: flow.NewSingle(a.newSession(mode), flow.NewStatic(text)),
		Source:     path,
	})
}

func runCardsCmd(cmd *cobra.Command, args []string) error {
	d, err := deck.Load(args[0])
	if err != nil {
		return err
	}
	if cardsShuffle {
		d = d.Shuffled(rand.New(rand.NewSource(time.Now().UnixNano())))
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	quiz := flow.NewQuiz(a.newSession(engine.ModeFlashcard), d.Cards, a.clk, flow.QuizConfig{
		QuestionDelay: a.session.QuestionDelay(),
		CardDelay:     a.session.CardDelay(),
	})
	return a.run(tui.Options{
		Controller: quiz,
		Quiz:       quiz,
		Source:     args[0],
	})
}
