package logger

import (
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
)

// logOutput is the writer the default handler writes to. Overridden by
// SetOutput, mainly for tests that want to capture log lines.
var logOutput io.Writer = os.Stderr

// customHandler, when non-nil, was installed via SetLogger and takes
// precedence over anything Configure would otherwise build.
var customHandler slog.Handler

// SetOutput redirects where the default (non-custom) handler writes. A nil
// writer resets output to stderr.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	logOutput = w
	initLoggerWithConfig(globalModuleConfig.defaultLevel, nil, globalModuleConfig, false)
}

// SetLogger installs a caller-supplied handler, bypassing Configure until
// reset with SetLogger(nil). A later SetOutput call still replaces it with
// the default handler.
func SetLogger(h slog.Handler) {
	customHandler = h
	if h == nil {
		return
	}
	DefaultLogger = slog.New(h)
	slog.SetDefault(DefaultLogger)
}

// ParseLevel converts a level name ("debug", "info", "warn", "error") into
// a slog.Level, defaulting to Info for anything unrecognized.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ModuleConfig manages per-module logging configuration.
// It supports hierarchical module names where more specific modules
// override less specific ones (e.g., "cortex.resilient" overrides "cortex").
type ModuleConfig struct {
	defaultLevel slog.Level
	modules      map[string]slog.Level
	sortedKeys   []string // sorted by specificity (most specific first)
	mu           sync.RWMutex
}

// NewModuleConfig creates a new ModuleConfig with the given default level.
func NewModuleConfig(defaultLevel slog.Level) *ModuleConfig {
	return &ModuleConfig{
		defaultLevel: defaultLevel,
		modules:      make(map[string]slog.Level),
	}
}

// SetModuleLevel sets the log level for a specific module.
// Module names use dot notation (e.g., "cortex.resilient").
func (m *ModuleConfig) SetModuleLevel(module string, level slog.Level) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.modules[module] = level
	m.updateSortedKeys()
}

// SetDefaultLevel sets the default log level.
func (m *ModuleConfig) SetDefaultLevel(level slog.Level) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultLevel = level
}

// LevelFor returns the log level for the given module.
// It checks for exact match first, then walks up the hierarchy.
// For example, for "cortex.resilient.gate":
//  1. Check "cortex.resilient.gate" (exact match)
//  2. Check "cortex.resilient" (parent)
//  3. Check "cortex" (grandparent)
//  4. Return default level
func (m *ModuleConfig) LevelFor(module string) slog.Level {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if level, ok := m.modules[module]; ok {
		return level
	}

	for {
		lastDot := strings.LastIndex(module, ".")
		if lastDot == -1 {
			break
		}
		module = module[:lastDot]
		if level, ok := m.modules[module]; ok {
			return level
		}
	}

	return m.defaultLevel
}

// updateSortedKeys updates the sorted keys list.
// Keys are sorted by specificity (number of dots) in descending order.
// Must be called with lock held.
func (m *ModuleConfig) updateSortedKeys() {
	m.sortedKeys = make([]string, 0, len(m.modules))
	for k := range m.modules {
		m.sortedKeys = append(m.sortedKeys, k)
	}
	sort.Slice(m.sortedKeys, func(i, j int) bool {
		dotsI := strings.Count(m.sortedKeys[i], ".")
		dotsJ := strings.Count(m.sortedKeys[j], ".")
		if dotsI != dotsJ {
			return dotsI > dotsJ
		}
		return m.sortedKeys[i] < m.sortedKeys[j]
	})
}

// globalModuleConfig is the global module configuration. Default namespace
// root is "cortex" (spec.md §4.8).
var globalModuleConfig = NewModuleConfig(slog.LevelInfo)

// LoggingConfigSpec defines the logging configuration for the Configure
// function. This mirrors config.Config's logging fields to avoid an import
// cycle between this package and config.
type LoggingConfigSpec struct {
	DefaultLevel string
	Format       string // "json" or "text"
	CommonFields map[string]string
	Modules      []ModuleLoggingSpec
}

// ModuleLoggingSpec configures logging for a specific module, e.g.
// "cortex.transport" or "cortex.resilient".
type ModuleLoggingSpec struct {
	Name   string
	Level  string
	Fields map[string]string
}

// Log format constants
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Configure applies a LoggingConfigSpec to the global logger.
func Configure(cfg *LoggingConfigSpec) error {
	if cfg == nil {
		return nil
	}

	if customHandler != nil {
		return nil
	}

	defaultLevel := slog.LevelInfo
	if cfg.DefaultLevel != "" {
		defaultLevel = ParseLevel(cfg.DefaultLevel)
	}

	var commonFields []slog.Attr
	for k, v := range cfg.CommonFields {
		commonFields = append(commonFields, slog.String(k, v))
	}

	moduleConfig := NewModuleConfig(defaultLevel)
	for _, mod := range cfg.Modules {
		level := ParseLevel(mod.Level)
		moduleConfig.SetModuleLevel(mod.Name, level)
	}

	globalModuleConfig = moduleConfig

	useJSON := cfg.Format == FormatJSON

	initLoggerWithConfig(defaultLevel, commonFields, moduleConfig, useJSON)

	return nil
}

// initLoggerWithConfig creates the logger with full configuration.
func initLoggerWithConfig(level slog.Level, commonFields []slog.Attr, moduleConfig *ModuleConfig, useJSON bool) {
	var baseHandler slog.Handler
	opts := &slog.HandlerOptions{
		Level: level,
	}

	if useJSON {
		baseHandler = slog.NewJSONHandler(logOutput, opts)
	} else {
		baseHandler = slog.NewTextHandler(logOutput, opts)
	}

	var handler slog.Handler
	if moduleConfig != nil && len(moduleConfig.modules) > 0 {
		handler = NewModuleHandler(baseHandler, moduleConfig, commonFields...)
	} else {
		handler = NewContextHandler(baseHandler, commonFields...)
	}

	DefaultLogger = slog.New(handler)
	slog.SetDefault(DefaultLogger)
}

// GetModuleConfig returns the global module configuration.
// This is primarily for testing.
func GetModuleConfig() *ModuleConfig {
	return globalModuleConfig
}

// New builds a module-scoped logger under the "cortex.<module>" namespace
// (spec.md §4.8). The returned logger's handler is a ModuleHandler bound to
// globalModuleConfig, so a level set via SetModuleLevel or Configure for this
// module (or an ancestor in its dot hierarchy, via LevelFor) takes effect on
// every call made through it without the caller wiring anything further.
func New(module string) *slog.Logger {
	name := "cortex." + module
	return slog.New(moduleHandler(DefaultLogger.Handler())).With("logger", name)
}

// moduleHandler wraps h in a ModuleHandler bound to globalModuleConfig,
// reusing one already installed (by Configure or a prior New call) instead
// of nesting duplicates.
func moduleHandler(h slog.Handler) slog.Handler {
	if mh, ok := h.(*ModuleHandler); ok {
		return mh
	}
	return NewModuleHandler(h, globalModuleConfig)
}
