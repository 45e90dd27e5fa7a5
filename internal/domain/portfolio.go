// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// Category is the coarse project category assigned to a repository.
type Category string

const (
	CategoryFrontend Category = "frontend"
	CategoryBackend  Category = "backend"
	CategoryDataML   Category = "data/ml"
	CategoryDevOps   Category = "devops"
	CategoryOther    Category = "other"
)

// ComplexityTier is the coarse complexity classification of a repository,
// derived from a weighted heuristic score.
type ComplexityTier string

const (
	ComplexityLow    ComplexityTier = "low"
	ComplexityMedium ComplexityTier = "medium"
	ComplexityHigh   ComplexityTier = "high"
)

// UserProfile holds the subset of the GitHub user record shown in report headers.
type UserProfile struct {
	Login       string `json:"login"`
	Name        string `json:"name,omitempty"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
}

// RepositorySummary is one element of the repository listing.
// It is immutable once fetched.
type RepositorySummary struct {
	FullName        string    `json:"full_name"` // e.g. "octocat/hello-world"
	Owner           string    `json:"owner"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Private         bool      `json:"private"`
	Stars           int       `json:"stars"`
	Forks           int       `json:"forks"`
	PrimaryLanguage string    `json:"primary_language,omitempty"`
	PushedAt        time.Time `json:"pushed_at"`
	SizeKB          int       `json:"size_kb"`
	Topics          []string  `json:"topics,omitempty"`
}

// LanguageHistogram maps a language name to the number of bytes written in it,
// as reported by the hosting platform for a single repository.
type LanguageHistogram map[string]int64

// TotalBytes returns the sum over all languages in the histogram.
func (h LanguageHistogram) TotalBytes() int64 {
	var total int64
	for _, b := range h {
		total += b
	}
	return total
}

// Well-known marker filenames looked up in a repository root.
const (
	MarkerPackageJSON   = "package.json"
	MarkerRequirements  = "requirements.txt"
	MarkerGoMod         = "go.mod"
	MarkerCargoToml     = "Cargo.toml"
	MarkerDockerfile    = "Dockerfile"
	MarkerDockerCompose = "docker-compose.yml"
)

// MarkerFilenames lists every marker file the gateway attempts to fetch,
// in lookup order.
var MarkerFilenames = []string{
	MarkerPackageJSON,
	MarkerRequirements,
	MarkerGoMod,
	MarkerCargoToml,
	MarkerDockerfile,
	MarkerDockerCompose,
}

// MarkerFileSet holds the marker files found in a repository root.
// A missing file is simply absent from the map; that is not an error.
type MarkerFileSet struct {
	// Contents maps a marker filename to its (possibly truncated) text.
	Contents map[string]string `json:"contents,omitempty"`

	HasReadme bool `json:"has_readme"`
	HasTests  bool `json:"has_tests"`
}

// Has reports whether the named marker file was found.
func (m MarkerFileSet) Has(name string) bool {
	_, ok := m.Contents[name]
	return ok
}

// ClassifiedRepository is a RepositorySummary enriched with the attributes
// derived by the classifier. It is computed once and never mutated.
type ClassifiedRepository struct {
	RepositorySummary

	Languages  LanguageHistogram `json:"languages,omitempty"`
	Frameworks []string          `json:"frameworks,omitempty"`
	Tools      []string          `json:"tools,omitempty"`
	Category   Category          `json:"category"`
	Complexity ComplexityTier    `json:"complexity"`
	HasReadme  bool              `json:"has_readme"`
	HasTests   bool              `json:"has_tests"`
}

// UsesFramework reports whether the named framework was detected.
func (c ClassifiedRepository) UsesFramework(name string) bool {
	for _, f := range c.Frameworks {
		if f == name {
			return true
		}
	}
	return false
}

// UsesTool reports whether the named tool was detected.
func (c ClassifiedRepository) UsesTool(name string) bool {
	for _, t := range c.Tools {
		if t == name {
			return true
		}
	}
	return false
}

// LanguageUsage is one row of the portfolio-wide language ranking.
type LanguageUsage struct {
	Name    string  `json:"name"`
	Bytes   int64   `json:"bytes"`
	Percent float64 `json:"percent"` // share of total bytes across all languages
}

// FrameworkUsage is one row of the portfolio-wide framework ranking.
type FrameworkUsage struct {
	Name    string  `json:"name"`
	Repos   int     `json:"repos"`
	Percent float64 `json:"percent"` // share of analyzed repositories
}

// PortfolioStats holds the totals and rankings folded from all classified
// repositories. It exists only for the duration of one report generation.
type PortfolioStats struct {
	TotalRepos int `json:"total_repos"`
	TotalStars int `json:"total_stars"`
	TotalForks int `json:"total_forks"`

	AverageStars float64 `json:"average_stars"`
	MedianStars  float64 `json:"median_stars"`
	AverageForks float64 `json:"average_forks"`

	TotalLanguageBytes int64           `json:"total_language_bytes"`
	Languages          []LanguageUsage `json:"languages,omitempty"`

	Frameworks []FrameworkUsage `json:"frameworks,omitempty"`
	Tools      map[string]int   `json:"tools,omitempty"`

	Categories map[Category]int       `json:"categories"`
	Complexity map[ComplexityTier]int `json:"complexity"`

	ReposWithReadme int `json:"repos_with_readme"`
	ReposWithTests  int `json:"repos_with_tests"`
	ReposWithDocker int `json:"repos_with_docker"`
	ZeroStarRepos   int `json:"zero_star_repos"`
}
