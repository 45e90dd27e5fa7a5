// Package classifier derives technology-stack attributes for a single
// repository. Classification is a pure function of the fetched inputs, so it
// can be tested without network access.
package classifier

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/repolens/repolens/internal/domain"
)

// Framework names produced by detection. Detection is keyword matching
// against marker-file text; no version or transitive resolution.
const (
	FrameworkReact      = "React"
	FrameworkVue        = "Vue.js"
	FrameworkAngular    = "Angular"
	FrameworkNodeServer = "Node.js Backend"
	FrameworkStaticSite = "Static Site Generator"
	FrameworkDjango     = "Django"
	FrameworkFlask      = "Flask"
	FrameworkFastAPI    = "FastAPI"
	FrameworkStreamlit  = "Streamlit"
	FrameworkDataSci    = "Data Science"
	FrameworkML         = "Machine Learning"
	FrameworkGin        = "Gin (Go)"
	FrameworkGorillaMux = "Gorilla Mux"
	FrameworkActix      = "Actix Web"
	FrameworkRocket     = "Rocket"
)

// Tool names produced by detection.
const (
	ToolNPM           = "npm/yarn"
	ToolPip           = "pip"
	ToolGoModules     = "Go Modules"
	ToolCargo         = "Cargo"
	ToolDocker        = "Docker"
	ToolDockerCompose = "Docker Compose"
)

// nodeFrameworks maps package.json dependency names to framework names.
var nodeFrameworks = map[string]string{
	"react":         FrameworkReact,
	"@types/react":  FrameworkReact,
	"vue":           FrameworkVue,
	"nuxt":          FrameworkVue,
	"angular":       FrameworkAngular,
	"@angular/core": FrameworkAngular,
	"express":       FrameworkNodeServer,
	"koa":           FrameworkNodeServer,
	"fastify":       FrameworkNodeServer,
	"next":          FrameworkStaticSite,
	"gatsby":        FrameworkStaticSite,
}

// pythonFrameworks maps requirements.txt package names to framework names.
var pythonFrameworks = map[string]string{
	"django":     FrameworkDjango,
	"flask":      FrameworkFlask,
	"fastapi":    FrameworkFastAPI,
	"streamlit":  FrameworkStreamlit,
	"pandas":     FrameworkDataSci,
	"numpy":      FrameworkDataSci,
	"scipy":      FrameworkDataSci,
	"tensorflow": FrameworkML,
	"torch":      FrameworkML,
	"pytorch":    FrameworkML,
}

// goFrameworks and rustFrameworks match module paths / crate names as plain
// substrings of the manifest text.
var goFrameworks = map[string]string{
	"gin-gonic/gin": FrameworkGin,
	"gorilla/mux":   FrameworkGorillaMux,
}

var rustFrameworks = map[string]string{
	"actix-web": FrameworkActix,
	"rocket":    FrameworkRocket,
}

// Category rule tables, evaluated in priority order by categorize.
var (
	frontendFrameworks = map[string]bool{
		FrameworkReact:      true,
		FrameworkVue:        true,
		FrameworkAngular:    true,
		FrameworkStaticSite: true,
	}
	backendFrameworks = map[string]bool{
		FrameworkDjango:     true,
		FrameworkFlask:      true,
		FrameworkFastAPI:    true,
		FrameworkNodeServer: true,
		FrameworkGin:        true,
		FrameworkGorillaMux: true,
		FrameworkActix:      true,
		FrameworkRocket:     true,
	}
	dataMLFrameworks = map[string]bool{
		FrameworkDataSci:   true,
		FrameworkML:        true,
		FrameworkStreamlit: true,
	}

	frontendLanguages = map[string]bool{
		"javascript": true,
		"typescript": true,
		"html":       true,
		"css":        true,
	}
	backendLanguages = map[string]bool{
		"python": true,
		"java":   true,
		"go":     true,
		"rust":   true,
		"c++":    true,
	}
)

// Classify computes the derived attributes for one repository. It never
// consults state outside its arguments, and calling it twice with the same
// inputs yields the same result.
func Classify(summary domain.RepositorySummary, languages domain.LanguageHistogram, markers domain.MarkerFileSet) domain.ClassifiedRepository {
	frameworks := make(map[string]bool)
	tools := make(map[string]bool)

	if content, ok := markers.Contents[domain.MarkerPackageJSON]; ok {
		detectNode(content, frameworks)
		tools[ToolNPM] = true
	}
	if content, ok := markers.Contents[domain.MarkerRequirements]; ok {
		detectPython(content, frameworks)
		tools[ToolPip] = true
	}
	if content, ok := markers.Contents[domain.MarkerGoMod]; ok {
		detectBySubstring(content, goFrameworks, frameworks)
		tools[ToolGoModules] = true
	}
	if content, ok := markers.Contents[domain.MarkerCargoToml]; ok {
		detectBySubstring(content, rustFrameworks, frameworks)
		tools[ToolCargo] = true
	}
	if markers.Has(domain.MarkerDockerfile) {
		tools[ToolDocker] = true
	}
	if markers.Has(domain.MarkerDockerCompose) {
		tools[ToolDockerCompose] = true
	}

	classified := domain.ClassifiedRepository{
		RepositorySummary: summary,
		Languages:         languages,
		Frameworks:        sortedKeys(frameworks),
		Tools:             sortedKeys(tools),
		HasReadme:         markers.HasReadme,
		HasTests:          markers.HasTests,
	}
	classified.Category = categorize(classified)
	classified.Complexity = complexityTier(len(languages), len(classified.Frameworks), summary.SizeKB, summary.Stars)
	return classified
}

// packageManifest is the slice of package.json the classifier cares about.
type packageManifest struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func detectNode(content string, frameworks map[string]bool) {
	var manifest packageManifest
	if err := json.Unmarshal([]byte(content), &manifest); err != nil {
		// A malformed manifest yields no detections, same as an absent one.
		return
	}
	for dep := range manifest.Dependencies {
		if name, ok := nodeFrameworks[dep]; ok {
			frameworks[name] = true
		}
	}
	for dep := range manifest.DevDependencies {
		if name, ok := nodeFrameworks[dep]; ok {
			frameworks[name] = true
		}
	}
}

func detectPython(content string, frameworks map[string]bool) {
	for _, line := range strings.Split(content, "\n") {
		pkg := strings.TrimSpace(line)
		if pkg == "" || strings.HasPrefix(pkg, "#") {
			continue
		}
		// Strip version specifiers: "django==4.2", "numpy>=1.0", "torch~=2.1".
		for _, sep := range []string{"==", ">=", "<=", "~=", ">", "<", "[", ";", " "} {
			if i := strings.Index(pkg, sep); i >= 0 {
				pkg = pkg[:i]
			}
		}
		if name, ok := pythonFrameworks[strings.ToLower(pkg)]; ok {
			frameworks[name] = true
		}
	}
}

func detectBySubstring(content string, table map[string]string, frameworks map[string]bool) {
	lower := strings.ToLower(content)
	for needle, name := range table {
		if strings.Contains(lower, needle) {
			frameworks[name] = true
		}
	}
}

// categorize applies the fixed priority rule. Only the first matching rule
// applies; there are no multi-label categories.
func categorize(c domain.ClassifiedRepository) domain.Category {
	var frontend, backend, dataML bool
	for _, f := range c.Frameworks {
		frontend = frontend || frontendFrameworks[f]
		backend = backend || backendFrameworks[f]
		dataML = dataML || dataMLFrameworks[f]
	}

	switch {
	case frontend:
		return domain.CategoryFrontend
	case backend:
		return domain.CategoryBackend
	case dataML:
		return domain.CategoryDataML
	case c.UsesTool(ToolDocker) || c.UsesTool(ToolDockerCompose):
		return domain.CategoryDevOps
	}

	primary := strings.ToLower(c.PrimaryLanguage)
	switch {
	case frontendLanguages[primary]:
		return domain.CategoryFrontend
	case backendLanguages[primary]:
		return domain.CategoryBackend
	default:
		return domain.CategoryOther
	}
}

// complexityTier buckets a weighted score into low/medium/high. Every
// contribution is a non-decreasing step function of its input, which keeps
// the tier monotone in language count, framework count, size and stars.
func complexityTier(languageCount, frameworkCount, sizeKB, stars int) domain.ComplexityTier {
	score := 0

	score += min(languageCount*10, 30)
	score += min(frameworkCount*15, 45)

	switch {
	case sizeKB > 10_000:
		score += 30
	case sizeKB > 1_000:
		score += 15
	}

	switch {
	case stars > 100:
		score += 20
	case stars > 10:
		score += 10
	}

	switch {
	case score >= 60:
		return domain.ComplexityHigh
	case score >= 30:
		return domain.ComplexityMedium
	default:
		return domain.ComplexityLow
	}
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
