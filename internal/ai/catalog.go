package ai

// CatalogEntry advertises one provider and the models it is known to serve.
// The catalog is fixed at build time; it describes capability to callers and
// does not gate which provider/model pair the dispatcher will accept.
type CatalogEntry struct {
	Name   string
	Models []string
}

var catalog = []CatalogEntry{
	{
		Name:   "openai",
		Models: []string{"gpt-4o", "gpt-4o-mini", "gpt-4", "gpt-3.5-turbo", "o1", "o1-mini"},
	},
	{
		Name:   "anthropic",
		Models: []string{"claude-3-7-sonnet-20250219", "claude-3-5-sonnet-20241022", "claude-3-5-haiku-20241022"},
	},
	{
		Name:   "gemini",
		Models: []string{"gemini-2.0-flash", "gemini-1.5-pro", "gemini-1.5-flash"},
	},
}

func Catalog() []CatalogEntry {
	out := make([]CatalogEntry, len(catalog))
	copy(out, catalog)
	return out
}

func SupportsModel(provider, model string) bool {
	for _, entry := range catalog {
		if entry.Name != provider {
			continue
		}
		for _, m := range entry.Models {
			if m == model {
				return true
			}
		}
	}
	return false
}
