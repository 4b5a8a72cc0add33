package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	csferrors "github.com/standardbeagle/csfacts/internal/errors"
	"github.com/standardbeagle/csfacts/internal/logging"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates cfg and fills in values left at zero.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateProjectConfig(&cfg.Project); err != nil {
		return csferrors.NewConfigError("project", cfg.Project.Root, err)
	}

	if err := v.validateExtractionConfig(&cfg.Extraction); err != nil {
		return csferrors.NewConfigError("extraction", strings.Join(cfg.Extraction.Languages, ","), err)
	}

	if err := v.validatePerformanceConfig(&cfg.Performance); err != nil {
		return csferrors.NewConfigError("performance", fmt.Sprint(cfg.Performance.Workers), err)
	}

	if err := v.validateLoggingConfig(&cfg.Logging); err != nil {
		return csferrors.NewConfigError("logging", cfg.Logging.Level+"/"+cfg.Logging.Format, err)
	}

	if cfg.Watch.DebounceMs < 0 {
		return csferrors.NewConfigError("watch", fmt.Sprint(cfg.Watch.DebounceMs), errors.New("debounce_ms cannot be negative"))
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateProjectConfig(project *Project) error {
	if project.Root == "" {
		return errors.New("project root cannot be empty")
	}
	return nil
}

func (v *Validator) validateExtractionConfig(ex *Extraction) error {
	for _, lang := range ex.Languages {
		if lang != LanguageCSharp && lang != LanguageVisualBasic {
			return fmt.Errorf("unknown language %q, expected %q or %q", lang, LanguageCSharp, LanguageVisualBasic)
		}
	}

	if ex.MaxFileSize < 0 {
		return fmt.Errorf("MaxFileSize cannot be negative, got %d", ex.MaxFileSize)
	}

	if ex.MaxFileSize > 100*1024*1024 {
		return fmt.Errorf("MaxFileSize should not exceed 100MB, got %d", ex.MaxFileSize)
	}

	return nil
}

func (v *Validator) validatePerformanceConfig(perf *Performance) error {
	// 0 means auto-detect
	if perf.Workers < 0 {
		return fmt.Errorf("Workers cannot be negative, got %d", perf.Workers)
	}

	if perf.TimeoutSec < 0 {
		return fmt.Errorf("TimeoutSec cannot be negative, got %d", perf.TimeoutSec)
	}

	return nil
}

func (v *Validator) validateLoggingConfig(l *Logging) error {
	if l.Level != "" && !logging.ValidLevel(l.Level) {
		return fmt.Errorf("unknown log level %q", l.Level)
	}

	switch logging.Format(l.Format) {
	case "", logging.FormatText, logging.FormatJSON:
		return nil
	}
	return fmt.Errorf("unknown log format %q", l.Format)
}

// setSmartDefaults applies defaults based on system capabilities
func (v *Validator) setSmartDefaults(cfg *Config) {
	// Leave one core for the OS, minimum of 1
	if cfg.Performance.Workers == 0 {
		cfg.Performance.Workers = max(1, runtime.NumCPU()-1)
	}

	if cfg.Extraction.MaxFileSize == 0 {
		cfg.Extraction.MaxFileSize = DefaultMaxFileSize
	}

	if cfg.Performance.TimeoutSec == 0 {
		cfg.Performance.TimeoutSec = DefaultTimeoutSec
	}

	if len(cfg.Extraction.Languages) == 0 {
		cfg.Extraction.Languages = []string{LanguageCSharp, LanguageVisualBasic}
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "warn"
	}

	if cfg.Logging.Format == "" {
		cfg.Logging.Format = string(logging.FormatText)
	}

	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = DefaultDebounceMs
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
