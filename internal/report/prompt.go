package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/repolens/repolens/internal/domain"
)

const (
	highlightLimit  = 5
	recentWindow    = 180 * 24 * time.Hour
	descriptionClip = 100
)

// persona is the playful developer characterization embedded in the
// analysis-prompt document.
type persona struct {
	Title       string
	Description string
	Level       string
	Traits      []string
}

// specialistTitles maps a dominant language to its persona title and blurb.
var specialistTitles = map[string][2]string{
	"TypeScript": {"Type Guardian", "Leans on the type system to catch errors before they ever run."},
	"JavaScript": {"Script Wizard", "Uses JavaScript's flexibility to work across the whole stack."},
	"Python":     {"Python Charmer", "Moves fluidly between data work and web backends."},
	"Go":         {"Gopher Elite", "Builds scalable backends on Go's concurrency primitives."},
	"Rust":       {"Memory Samurai", "Masters ownership for safe, fast systems code."},
}

// buildPersona derives the persona from the aggregated statistics alone.
func buildPersona(st domain.PortfolioStats) persona {
	p := persona{
		Title:       "Polyglot Engineer",
		Description: "Switches between languages comfortably, picking the right tool per project.",
	}
	if len(st.Languages) > 0 && st.Languages[0].Percent > 60 {
		top := st.Languages[0].Name
		if entry, ok := specialistTitles[top]; ok {
			p.Title, p.Description = entry[0], entry[1]
		} else {
			p.Title = fmt.Sprintf("%s Specialist", top)
			p.Description = fmt.Sprintf("Deep, focused experience in %s.", top)
		}
	}

	total := st.TotalRepos
	testRatio := ratio(st.ReposWithTests, total)
	dockerRatio := ratio(st.ReposWithDocker, total)
	readmeRatio := ratio(st.ReposWithReadme, total)

	if testRatio > 0.5 {
		p.Traits = append(p.Traits, "Quality Assurance Master")
	}
	if dockerRatio > 0.3 {
		p.Traits = append(p.Traits, "DevOps Practitioner")
	}
	if readmeRatio > 0.7 {
		p.Traits = append(p.Traits, "Documentation Evangelist")
	}
	if len(st.Frameworks) > 5 {
		p.Traits = append(p.Traits, "Framework Explorer")
	} else if frameworkRepoCount(st, "React") > 2 {
		p.Traits = append(p.Traits, "React Artisan")
	}
	if st.ReposWithDocker > 2 {
		p.Traits = append(p.Traits, "Container Captain")
	}
	if len(p.Traits) > 3 {
		p.Traits = p.Traits[:3]
	}

	score := 0
	if testRatio > 0.3 {
		score += 2
	}
	if dockerRatio > 0.2 {
		score += 2
	}
	if readmeRatio > 0.5 {
		score++
	}
	if len(st.Frameworks) > 3 {
		score++
	}
	switch {
	case score >= 5:
		p.Level = "Senior level"
	case score >= 3:
		p.Level = "Mid level"
	default:
		p.Level = "Growing level"
	}
	return p
}

func ratio(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total)
}

func frameworkRepoCount(st domain.PortfolioStats, name string) int {
	for _, fw := range st.Frameworks {
		if fw.Name == name {
			return fw.Repos
		}
	}
	return 0
}

// RenderPrompt produces the free-text document handed to a downstream
// analysis process: persona, statistics as fenced JSON, highlighted projects,
// and the analysis-request outline.
func RenderPrompt(user domain.UserProfile, st domain.PortfolioStats, repos []domain.ClassifiedRepository, now time.Time) string {
	p := buildPersona(st)
	var b strings.Builder

	fmt.Fprintf(&b, "# GitHub Portfolio Deep-Dive Request\n\n")

	fmt.Fprintf(&b, "## Developer Persona\n\n")
	fmt.Fprintf(&b, "**%s** — %s\n\n", p.Title, p.Description)
	fmt.Fprintf(&b, "Level: %s\n\n", p.Level)
	if len(p.Traits) > 0 {
		fmt.Fprintf(&b, "Traits:\n")
		for _, trait := range p.Traits {
			fmt.Fprintf(&b, "- %s\n", trait)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Test coverage signals: %d/%d repos. Container usage: %d/%d repos. READMEs: %d/%d repos.\n\n",
		st.ReposWithTests, st.TotalRepos, st.ReposWithDocker, st.TotalRepos, st.ReposWithReadme, st.TotalRepos)

	fmt.Fprintf(&b, "---\n\n")
	fmt.Fprintf(&b, "You are an experienced tech lead and career consultant. Analyze the GitHub portfolio data below and propose a technical assessment and career strategy.\n\n")

	fmt.Fprintf(&b, "## Profile\n\n")
	fmt.Fprintf(&b, "- **GitHub user**: %s\n", user.Login)
	fmt.Fprintf(&b, "- **Public repositories**: %d\n", user.PublicRepos)
	fmt.Fprintf(&b, "- **Followers**: %d\n", user.Followers)
	fmt.Fprintf(&b, "- **Repositories analyzed**: %d\n\n", st.TotalRepos)

	fmt.Fprintf(&b, "## Technology Stack\n\n")
	writeJSONSection(&b, "Language distribution (bytes)", st.Languages)
	writeJSONSection(&b, "Framework usage (repositories)", st.Frameworks)
	writeJSONSection(&b, "Tools", sortedToolRows(st))
	writeJSONSection(&b, "Project categories", categoryRows(st))

	fmt.Fprintf(&b, "## Notable Projects\n\n")
	writeJSONSection(&b, "Recently active (last 6 months)", highlightRows(recentRepos(repos, now)))
	writeJSONSection(&b, "High complexity", highlightRows(complexRepos(repos)))
	writeJSONSection(&b, "Starred", highlightRows(starredRepos(repos)))

	b.WriteString(analysisOutline)
	return b.String()
}

func writeJSONSection(b *strings.Builder, heading string, payload any) {
	fmt.Fprintf(b, "### %s\n\n", heading)
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		// Only reachable with non-serializable payloads, which these are not.
		data = []byte("{}")
	}
	fmt.Fprintf(b, "```json\n%s\n```\n\n", data)
}

type toolRow struct {
	Name  string `json:"name"`
	Repos int    `json:"repos"`
}

func sortedToolRows(st domain.PortfolioStats) []toolRow {
	rows := make([]toolRow, 0, len(st.Tools))
	for name, count := range st.Tools {
		rows = append(rows, toolRow{Name: name, Repos: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Repos != rows[j].Repos {
			return rows[i].Repos > rows[j].Repos
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

type categoryRow struct {
	Category string `json:"category"`
	Repos    int    `json:"repos"`
}

func categoryRows(st domain.PortfolioStats) []categoryRow {
	rows := make([]categoryRow, 0, len(st.Categories))
	for category, count := range st.Categories {
		rows = append(rows, categoryRow{Category: string(category), Repos: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Repos != rows[j].Repos {
			return rows[i].Repos > rows[j].Repos
		}
		return rows[i].Category < rows[j].Category
	})
	return rows
}

// highlightRow is the compact per-repository view used in the prompt.
type highlightRow struct {
	Name            string   `json:"name"`
	PrimaryLanguage string   `json:"primary_language,omitempty"`
	Frameworks      []string `json:"frameworks,omitempty"`
	Complexity      string   `json:"complexity"`
	Stars           int      `json:"stars"`
	Description     string   `json:"description,omitempty"`
}

func highlightRows(repos []domain.ClassifiedRepository) []highlightRow {
	if len(repos) > highlightLimit {
		repos = repos[:highlightLimit]
	}
	rows := make([]highlightRow, 0, len(repos))
	for _, repo := range repos {
		rows = append(rows, highlightRow{
			Name:            repo.Name,
			PrimaryLanguage: repo.PrimaryLanguage,
			Frameworks:      repo.Frameworks,
			Complexity:      string(repo.Complexity),
			Stars:           repo.Stars,
			Description:     clip(repo.Description, descriptionClip),
		})
	}
	return rows
}

func recentRepos(repos []domain.ClassifiedRepository, now time.Time) []domain.ClassifiedRepository {
	cutoff := now.Add(-recentWindow)
	var out []domain.ClassifiedRepository
	for _, repo := range repos {
		if repo.PushedAt.After(cutoff) {
			out = append(out, repo)
		}
	}
	return out
}

func complexRepos(repos []domain.ClassifiedRepository) []domain.ClassifiedRepository {
	var out []domain.ClassifiedRepository
	for _, repo := range repos {
		if repo.Complexity == domain.ComplexityHigh {
			out = append(out, repo)
		}
	}
	return out
}

func starredRepos(repos []domain.ClassifiedRepository) []domain.ClassifiedRepository {
	var out []domain.ClassifiedRepository
	for _, repo := range repos {
		if repo.Stars > 0 {
			out = append(out, repo)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stars != out[j].Stars {
			return out[i].Stars > out[j].Stars
		}
		return out[i].FullName < out[j].FullName
	})
	return out
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

const analysisOutline = `## Analysis Request

Please assess the portfolio from the following angles:

### 1. Technical skill assessment (score each out of 10)
- Frontend, backend, data handling, DevOps/infrastructure
- Technology breadth and depth, adoption of modern tooling

### 2. Engineering quality
- Architecture and project structure
- Documentation and README quality
- Testing and quality-assurance practice

### 3. Product perspective
- Practical value of the projects
- Evidence of sustained development and maintenance

### 4. Career strategy
- Strengths and gaps, technologies to learn next (ordered)
- Concrete portfolio improvements
- A six-month and a one-year learning plan

### 5. Suggested projects
- Three to five projects that would fill the gaps identified above

Be specific, justify scores, and keep proposals realistic for the
experience level the portfolio shows.
`
