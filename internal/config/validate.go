package config

import (
	"fmt"
	"time"
)

// Validate checks configuration invariants after normalization.
func (c *Config) Validate() error {
	switch c.Inference.Identity {
	case "stat", "content":
	default:
		return fmt.Errorf("inference.identity: unsupported value %q (want \"stat\" or \"content\")", c.Inference.Identity)
	}

	if c.Inference.MaxDate != "" {
		if _, err := time.Parse("2006-01-02", c.Inference.MaxDate); err != nil {
			return fmt.Errorf("inference.max_date: %q is not a YYYY-MM-DD date", c.Inference.MaxDate)
		}
	}

	if c.Inference.MinYear < 1 || c.Inference.MinYear > 9999 {
		return fmt.Errorf("inference.min_year: %d out of range", c.Inference.MinYear)
	}

	for locale, names := range c.Inference.MonthNames {
		if len(names) != 12 {
			return fmt.Errorf("inference.month_names.%s: expected 12 month names, got %d", locale, len(names))
		}
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}

	return nil
}
