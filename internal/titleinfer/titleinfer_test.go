package titleinfer

import (
	"strings"
	"testing"

	"reclaim/internal/extraction"
)

func TestInferMetadataTitleWins(t *testing.T) {
	in := New(Options{})
	result := &extraction.Result{
		Metadata: map[string]string{"Title": "Rapport d'activité 2019"},
		Lines:    []string{"quelque chose d'autre en première ligne qui est long"},
	}
	got := in.Infer(result, "f123456")
	if got.Source != "metadata" || got.Text != "Rapport d'activité 2019" {
		t.Errorf("got %+v", got)
	}
}

func TestInferMetadataAuthorJoined(t *testing.T) {
	in := New(Options{})
	result := &extraction.Result{
		Metadata: map[string]string{"Title": "Compte rendu", "Author": "Marie Dupont"},
	}
	got := in.Infer(result, "")
	if got.Text != "Marie Dupont Compte rendu" {
		t.Errorf("Text = %q", got.Text)
	}
}

func TestInferRejectsDegenerateMetadata(t *testing.T) {
	in := New(Options{})
	tests := []struct {
		name  string
		title string
	}{
		{"too short", "ab"},
		{"mostly digits", "20190315110000"},
		{"boilerplate", "Microsoft Word"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &extraction.Result{
				Metadata: map[string]string{"Title": tt.title},
				Lines:    []string{"Assemblée générale des copropriétaires du bâtiment"},
			}
			got := in.Infer(result, "")
			if got.Source != "text" {
				t.Errorf("metadata %q should be rejected, got %+v", tt.title, got)
			}
		})
	}
}

func TestInferSingleDenseLine(t *testing.T) {
	in := New(Options{})
	dense := "Convention de mise à disposition des locaux municipaux"
	result := &extraction.Result{Lines: []string{dense, "une autre ligne"}}
	got := in.Infer(result, "")
	if got.Source != "text" || got.Text != dense {
		t.Errorf("got %+v", got)
	}
}

func TestInferAccumulatesShortLines(t *testing.T) {
	in := New(Options{})
	result := &extraction.Result{Lines: []string{
		"Mairie de Vernon",
		"Service urbanisme",
		"Permis de construire maison individuelle",
		"cette ligne ne devrait plus être prise",
	}}
	got := in.Infer(result, "")
	if got.Source != "text" {
		t.Fatalf("got %+v", got)
	}
	if !strings.HasPrefix(got.Text, "Mairie de Vernon Service urbanisme") {
		t.Errorf("Text = %q", got.Text)
	}
	if strings.Contains(got.Text, "ne devrait plus") {
		t.Errorf("accumulation did not stop: %q", got.Text)
	}
}

func TestInferSkipsNoiseLines(t *testing.T) {
	in := New(Options{})
	result := &extraction.Result{Lines: []string{
		"…",
		"12/04/2018 10:23:45 0001",
		"---- ----",
		"Facture électricité résidence principale",
	}}
	got := in.Infer(result, "")
	if got.Source != "text" || !strings.Contains(got.Text, "Facture") {
		t.Errorf("got %+v", got)
	}
}

func TestInferYearLineFallback(t *testing.T) {
	in := New(Options{})
	result := &extraction.Result{Lines: []string{
		"…",
		"12/04/2018",
	}}
	got := in.Infer(result, "f1847201")
	if got.Source != "text" || got.Text != "12/04/2018" {
		t.Errorf("got %+v", got)
	}
}

func TestInferStemFallback(t *testing.T) {
	in := New(Options{})
	empty := &extraction.Result{}

	got := in.Infer(empty, "lettre_resiliation_bail")
	if got.Source != "stem" || got.Text != "lettre_resiliation_bail" {
		t.Errorf("got %+v", got)
	}

	// carving artifact stems are all digits and rejected
	got = in.Infer(empty, "f1847201")
	if got.Found() {
		t.Errorf("carved stem accepted: %+v", got)
	}
}

func TestInferCustomBoilerplate(t *testing.T) {
	in := New(Options{Boilerplate: []string{"cabinet latour associes"}})
	result := &extraction.Result{Lines: []string{
		"Cabinet Latour Associés",
		"Diagnostic de performance énergétique",
	}}
	got := in.Infer(result, "")
	if strings.Contains(got.Text, "Latour") {
		t.Errorf("boilerplate kept: %q", got.Text)
	}
}

func TestInferScanWindow(t *testing.T) {
	lines := make([]string, 0, 20)
	for i := 0; i < 15; i++ {
		lines = append(lines, "x1")
	}
	lines = append(lines, "Titre significatif apparaissant trop tard dans le document")
	in := New(Options{ScanWindow: 5})
	got := in.Infer(&extraction.Result{Lines: lines}, "")
	if got.Found() {
		t.Errorf("line beyond window accepted: %+v", got)
	}
}
