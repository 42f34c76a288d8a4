package marketplace

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Site describes one Mercado Libre country site. Each country runs its
// own authorization domain; the API host is shared.
type Site struct {
	ID      string `yaml:"id" json:"id"`
	Name    string `yaml:"name" json:"name"`
	AuthURL string `yaml:"auth_url" json:"auth_url"`
}

type sitesFile struct {
	Sites []Site `yaml:"sites"`
}

var siteIDRegexp = regexp.MustCompile(`^M[A-Z]{2}$`)

var defaultSites = []Site{
	{ID: "MLA", Name: "Argentina", AuthURL: "https://auth.mercadolibre.com.ar/authorization"},
	{ID: "MLB", Name: "Brasil", AuthURL: "https://auth.mercadolivre.com.br/authorization"},
	{ID: "MLC", Name: "Chile", AuthURL: "https://auth.mercadolibre.cl/authorization"},
	{ID: "MLM", Name: "México", AuthURL: "https://auth.mercadolibre.com.mx/authorization"},
	{ID: "MLU", Name: "Uruguay", AuthURL: "https://auth.mercadolibre.com.uy/authorization"},
	{ID: "MCO", Name: "Colombia", AuthURL: "https://auth.mercadolibre.com.co/authorization"},
	{ID: "MPE", Name: "Perú", AuthURL: "https://auth.mercadolibre.com.pe/authorization"},
}

var (
	sitesMu     sync.RWMutex
	sitesLoaded bool
	siteByID    map[string]Site
)

// InitSites loads the site catalog: built-in defaults, overlaid with
// entries from the given yaml file when path is non-empty. Entries with
// a known ID replace the default; new IDs are added.
func InitSites(path string) error {
	sites := make(map[string]Site, len(defaultSites))
	for _, s := range defaultSites {
		sites[s.ID] = s
	}

	var loadErr error
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("read sites file: %w", err)
		} else {
			var parsed sitesFile
			if err := yaml.Unmarshal(data, &parsed); err != nil {
				loadErr = fmt.Errorf("parse sites file: %w", err)
			} else {
				for _, s := range parsed.Sites {
					if !siteIDRegexp.MatchString(s.ID) {
						loadErr = fmt.Errorf("invalid site id %q in %s", s.ID, path)
						continue
					}
					sites[s.ID] = s
				}
			}
		}
	}

	sitesMu.Lock()
	siteByID = sites
	sitesLoaded = true
	sitesMu.Unlock()
	return loadErr
}

func ensureSitesLoaded() {
	sitesMu.RLock()
	ok := sitesLoaded
	sitesMu.RUnlock()
	if !ok {
		_ = InitSites("")
	}
}

// LookupSite returns the site with the given ID.
func LookupSite(id string) (Site, bool) {
	ensureSitesLoaded()
	sitesMu.RLock()
	defer sitesMu.RUnlock()
	s, ok := siteByID[id]
	return s, ok
}

// SiteIDs lists the known site IDs, sorted.
func SiteIDs() []string {
	ensureSitesLoaded()
	sitesMu.RLock()
	defer sitesMu.RUnlock()
	ids := make([]string, 0, len(siteByID))
	for id := range siteByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ResetSitesForTest resets catalog state so tests can force a reload.
func ResetSitesForTest() {
	sitesMu.Lock()
	siteByID = nil
	sitesLoaded = false
	sitesMu.Unlock()
}
