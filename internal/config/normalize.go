package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeInference()
	c.normalizeTools()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDirValue()
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeInference() {
	locales := make([]string, 0, len(c.Inference.Locales))
	seen := make(map[string]struct{}, len(c.Inference.Locales))
	for _, locale := range c.Inference.Locales {
		normalized := strings.ToLower(strings.TrimSpace(locale))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		locales = append(locales, normalized)
	}
	if len(locales) == 0 {
		locales = []string{"fr", "en"}
	}
	c.Inference.Locales = locales

	if c.Inference.MinYear <= 0 {
		c.Inference.MinYear = defaultMinYear
	}
	if c.Inference.ScanLines <= 0 {
		c.Inference.ScanLines = defaultScanLines
	}
	c.Inference.Identity = strings.ToLower(strings.TrimSpace(c.Inference.Identity))
	if c.Inference.Identity == "" {
		c.Inference.Identity = defaultIdentity
	}
	c.Inference.MaxDate = strings.TrimSpace(c.Inference.MaxDate)
}

func (c *Config) normalizeTools() {
	trim := func(value, fallback string) string {
		if v := strings.TrimSpace(value); v != "" {
			return v
		}
		return fallback
	}
	c.Tools.Exiftool = trim(c.Tools.Exiftool, "exiftool")
	c.Tools.Tesseract = trim(c.Tools.Tesseract, "tesseract")
	c.Tools.Pdftotext = trim(c.Tools.Pdftotext, "pdftotext")
	c.Tools.Pdftoppm = trim(c.Tools.Pdftoppm, "pdftoppm")
	c.Tools.Soffice = trim(c.Tools.Soffice, "soffice")
	c.Tools.Pandoc = trim(c.Tools.Pandoc, "pandoc")
	c.Tools.TesseractLangs = trim(c.Tools.TesseractLangs, defaultTesseractLangs)
	if c.Tools.DPI <= 0 {
		c.Tools.DPI = defaultDPI
	}
	if c.Tools.TimeoutSeconds <= 0 {
		c.Tools.TimeoutSeconds = defaultToolTimeout
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.Workers <= 0 {
		c.Workflow.Workers = defaultWorkers
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func defaultCacheDirValue() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return base + "/reclaim/text"
	}
	return defaultCacheDir
}
