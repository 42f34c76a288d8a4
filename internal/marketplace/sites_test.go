package marketplace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLookupSite_Defaults(t *testing.T) {
	ResetSitesForTest()
	t.Cleanup(ResetSitesForTest)

	site, ok := LookupSite("MLA")
	if !ok {
		t.Fatal("expected MLA in default catalog")
	}
	if site.AuthURL != "https://auth.mercadolibre.com.ar/authorization" {
		t.Fatalf("unexpected auth URL: %s", site.AuthURL)
	}

	if _, ok := LookupSite("XXX"); ok {
		t.Fatal("did not expect XXX in catalog")
	}
}

func TestInitSites_FileOverlay(t *testing.T) {
	ResetSitesForTest()
	t.Cleanup(ResetSitesForTest)

	path := filepath.Join(t.TempDir(), "sites.yaml")
	content := `sites:
  - id: MLA
    name: Argentina (staging)
    auth_url: https://auth.staging.example.com/authorization
  - id: MLV
    name: Venezuela
    auth_url: https://auth.mercadolibre.com.ve/authorization
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write sites file: %v", err)
	}

	if err := InitSites(path); err != nil {
		t.Fatalf("InitSites() error = %v", err)
	}

	site, ok := LookupSite("MLA")
	if !ok || site.AuthURL != "https://auth.staging.example.com/authorization" {
		t.Fatalf("expected MLA override, got %+v (ok=%v)", site, ok)
	}
	if _, ok := LookupSite("MLV"); !ok {
		t.Fatal("expected added site MLV")
	}
	// Untouched defaults survive the overlay.
	if _, ok := LookupSite("MLB"); !ok {
		t.Fatal("expected default site MLB to remain")
	}
}

func TestInitSites_BadFileKeepsDefaults(t *testing.T) {
	ResetSitesForTest()
	t.Cleanup(ResetSitesForTest)

	if err := InitSites(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, ok := LookupSite("MLA"); !ok {
		t.Fatal("defaults must survive a failed file load")
	}
}

func TestInitSites_RejectsInvalidID(t *testing.T) {
	ResetSitesForTest()
	t.Cleanup(ResetSitesForTest)

	path := filepath.Join(t.TempDir(), "sites.yaml")
	content := `sites:
  - id: not-a-site
    name: Broken
    auth_url: https://example.com
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write sites file: %v", err)
	}

	if err := InitSites(path); err == nil {
		t.Fatal("expected error for invalid site id")
	}
	if _, ok := LookupSite("not-a-site"); ok {
		t.Fatal("invalid entry must not be added")
	}
}

func TestSiteIDs_Sorted(t *testing.T) {
	ResetSitesForTest()
	t.Cleanup(ResetSitesForTest)

	ids := SiteIDs()
	if len(ids) == 0 {
		t.Fatal("expected default site IDs")
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("ids not sorted: %v", ids)
		}
	}
}
