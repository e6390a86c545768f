package deps

import (
	"testing"

	"reclaim/internal/config"
)

func TestCheckFindsShell(t *testing.T) {
	statuses := Check([]Requirement{
		{Name: "shell", Binary: "sh", Purpose: "test"},
		{Name: "absent", Binary: "definitely-not-a-real-binary-xyz", Purpose: "test"},
		{Name: "optional-absent", Binary: "also-not-real-xyz", Purpose: "test", Optional: true},
	})

	if !statuses[0].Found || statuses[0].Path == "" {
		t.Errorf("sh not found: %+v", statuses[0])
	}
	if statuses[1].Found {
		t.Errorf("phantom binary found: %+v", statuses[1])
	}

	missing := Missing(statuses)
	if len(missing) != 1 || missing[0] != "absent" {
		t.Errorf("Missing = %v, want [absent]", missing)
	}
}

func TestRequirementsUseConfiguredBinaries(t *testing.T) {
	cfg := config.Default()
	cfg.Tools.Exiftool = "/opt/bin/exiftool"

	reqs := Requirements(&cfg)
	if len(reqs) == 0 {
		t.Fatal("no requirements")
	}
	if reqs[0].Name != "exiftool" || reqs[0].Binary != "/opt/bin/exiftool" {
		t.Errorf("reqs[0] = %+v", reqs[0])
	}
}
