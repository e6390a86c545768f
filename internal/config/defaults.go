package config

const (
	defaultOutputDir      = "~/recovered"
	defaultCacheDir       = "~/.cache/reclaim/text"
	defaultStateDir       = "~/.local/share/reclaim"
	defaultMinYear        = 1900
	defaultScanLines      = 200
	defaultIdentity       = "stat"
	defaultTesseractLangs = "fra+eng"
	defaultDPI            = 300
	defaultToolTimeout    = 120
	defaultWorkers        = 1
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			CacheDir:  defaultCacheDir,
			StateDir:  defaultStateDir,
		},
		Inference: Inference{
			Locales:   []string{"fr", "en"},
			MinYear:   defaultMinYear,
			ScanLines: defaultScanLines,
			Identity:  defaultIdentity,
		},
		Tools: Tools{
			Exiftool:       "exiftool",
			Tesseract:      "tesseract",
			Pdftotext:      "pdftotext",
			Pdftoppm:       "pdftoppm",
			Soffice:        "soffice",
			Pandoc:         "pandoc",
			TesseractLangs: defaultTesseractLangs,
			DPI:            defaultDPI,
			TimeoutSeconds: defaultToolTimeout,
		},
		Workflow: Workflow{
			Workers: defaultWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
