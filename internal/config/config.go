package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	CacheDir  string `toml:"cache_dir"`
	StateDir  string `toml:"state_dir"`
}

// Inference contains configuration for date and title inference.
type Inference struct {
	// Locales selects the month-name tables used for textual dates,
	// in priority order. Known values: "fr", "en".
	Locales []string `toml:"locales"`
	// MinYear discards date candidates before this year as OCR noise.
	MinYear int `toml:"min_year"`
	// MaxDate discards date candidates after this date ("2006-01-02").
	// Empty means today. Set it to the day of the crash for best results.
	MaxDate string `toml:"max_date"`
	// ScanLines bounds how many lines of extracted text are scanned.
	ScanLines int `toml:"scan_lines"`
	// Identity selects the file identity derivation: "stat" or "content".
	Identity string `toml:"identity"`
	// MonthNames adds or overrides month-name tables per locale. Each
	// entry must list exactly twelve names, January first.
	MonthNames map[string][]string `toml:"month_names"`
}

// Tools contains the external extraction binaries.
type Tools struct {
	Exiftool  string `toml:"exiftool"`
	Tesseract string `toml:"tesseract"`
	Pdftotext string `toml:"pdftotext"`
	Pdftoppm  string `toml:"pdftoppm"`
	Soffice   string `toml:"soffice"`
	Pandoc    string `toml:"pandoc"`

	// TesseractLangs is the tesseract -l argument, e.g. "fra+eng".
	TesseractLangs string `toml:"tesseract_langs"`
	// DPI is the rasterization resolution for the PDF OCR fallback.
	DPI int `toml:"dpi"`
	// TimeoutSeconds bounds each external tool invocation so one corrupt
	// file cannot stall the batch.
	TimeoutSeconds int `toml:"timeout_seconds"`
	// ForcePDFOCR always OCRs PDFs instead of trying pdftotext first.
	ForcePDFOCR bool `toml:"force_pdf_ocr"`
}

// Workflow contains batch processing settings.
type Workflow struct {
	// Workers bounds concurrent extractions. Resolution and ledger
	// appends are always serialized regardless of this value.
	Workers int `toml:"workers"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for reclaim.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Inference Inference `toml:"inference"`
	Tools     Tools     `toml:"tools"`
	Workflow  Workflow  `toml:"workflow"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/reclaim/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reclaim.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the cache and state directories. The output
// directory is created lazily by the resolver so dry runs leave no trace.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CacheDir, c.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ToolTimeout returns the per-invocation timeout for external tools.
func (c *Config) ToolTimeout() time.Duration {
	return time.Duration(c.Tools.TimeoutSeconds) * time.Second
}

// MaxInferredDate returns the upper bound for plausible document dates.
func (c *Config) MaxInferredDate() time.Time {
	if strings.TrimSpace(c.Inference.MaxDate) != "" {
		if parsed, err := time.Parse("2006-01-02", c.Inference.MaxDate); err == nil {
			return parsed
		}
	}
	return time.Now().UTC()
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
