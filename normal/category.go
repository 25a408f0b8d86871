package normal

// legacyCategories maps subject classes that arxiv retired to their current
// names, cf. https://arxiv.org/category_taxonomy
var legacyCategories = map[string]string{
	"adap-org": "nlin.AO",
	"alg-geom": "math.AG",
	"astro-ph": "astro-ph.GEN",
	"chao-dyn": "nlin.CD",
	"cond-mat": "cond-mat.GEN",
	"dg-ga":    "math.DG",
	"funct-an": "math.FA",
	"patt-sol": "nlin.PS",
	"q-alg":    "math.QA",
	"q-bio":    "q-bio.GEN",
	"solv-int": "nlin.SI",
}

// LegacyCategories rewrites a single retired category token, all other
// tokens are returned unchanged.
type LegacyCategories struct{}

func (LegacyCategories) Normalize(v string) string {
	if r, ok := legacyCategories[v]; ok {
		return r
	}
	return v
}

// LegacyCategoryMap returns a copy of the replacement table.
func LegacyCategoryMap() map[string]string {
	m := make(map[string]string, len(legacyCategories))
	for k, v := range legacyCategories {
		m[k] = v
	}
	return m
}
