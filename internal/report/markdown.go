// Package report renders the analysis outcome into the output artifacts:
// a Markdown report, a JSON export, and an analysis-prompt document.
// Rendering never mutates its inputs.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/repolens/repolens/internal/domain"
)

const topRankingRows = 10

// categoryLabels maps category values to their display form.
var categoryLabels = map[domain.Category]string{
	domain.CategoryFrontend: "Frontend",
	domain.CategoryBackend:  "Backend",
	domain.CategoryDataML:   "Data/ML",
	domain.CategoryDevOps:   "DevOps",
	domain.CategoryOther:    "Other",
}

var complexityLabels = map[domain.ComplexityTier]string{
	domain.ComplexityLow:    "Low",
	domain.ComplexityMedium: "Medium",
	domain.ComplexityHigh:   "High",
}

// RenderMarkdown produces the human-readable portfolio report.
func RenderMarkdown(user domain.UserProfile, st domain.PortfolioStats, repos []domain.ClassifiedRepository, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# GitHub Portfolio Analysis Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", now.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(&b, "## Portfolio Overview\n\n")
	fmt.Fprintf(&b, "- **User**: %s\n", user.Login)
	fmt.Fprintf(&b, "- **Repositories analyzed**: %d\n", st.TotalRepos)
	fmt.Fprintf(&b, "- **Total stars**: %d\n", st.TotalStars)
	fmt.Fprintf(&b, "- **Total forks**: %d\n", st.TotalForks)
	fmt.Fprintf(&b, "- **Average stars**: %.1f\n\n", st.AverageStars)

	fmt.Fprintf(&b, "## Technology Stack\n\n")
	fmt.Fprintf(&b, "### Programming Languages (top %d)\n\n", topRankingRows)
	for i, lang := range st.Languages {
		if i >= topRankingRows {
			break
		}
		fmt.Fprintf(&b, "%2d. **%s**: %.1f%% (%d bytes)\n", i+1, lang.Name, lang.Percent, lang.Bytes)
	}
	if len(st.Languages) == 0 {
		fmt.Fprintf(&b, "No language data available.\n")
	}

	fmt.Fprintf(&b, "\n### Frameworks & Libraries (top %d)\n\n", topRankingRows)
	for i, fw := range st.Frameworks {
		if i >= topRankingRows {
			break
		}
		fmt.Fprintf(&b, "%2d. **%s**: %d projects (%.1f%%)\n", i+1, fw.Name, fw.Repos, fw.Percent)
	}
	if len(st.Frameworks) == 0 {
		fmt.Fprintf(&b, "No frameworks detected.\n")
	}

	fmt.Fprintf(&b, "\n## Project Analysis\n\n")
	fmt.Fprintf(&b, "### Category Distribution\n\n")
	for _, row := range sortedCategoryRows(st) {
		fmt.Fprintf(&b, "- **%s**: %d projects (%.1f%%)\n", row.label, row.count, percentOf(row.count, st.TotalRepos))
	}

	fmt.Fprintf(&b, "\n### Complexity Distribution\n\n")
	for _, row := range sortedComplexityRows(st) {
		fmt.Fprintf(&b, "- **%s**: %d projects (%.1f%%)\n", row.label, row.count, percentOf(row.count, st.TotalRepos))
	}

	b.WriteString(renderRecommendations(st))
	return b.String()
}

type distributionRow struct {
	label string
	count int
}

func sortedCategoryRows(st domain.PortfolioStats) []distributionRow {
	rows := make([]distributionRow, 0, len(st.Categories))
	for category, count := range st.Categories {
		rows = append(rows, distributionRow{label: categoryLabels[category], count: count})
	}
	sortRows(rows)
	return rows
}

func sortedComplexityRows(st domain.PortfolioStats) []distributionRow {
	rows := make([]distributionRow, 0, len(st.Complexity))
	for tier, count := range st.Complexity {
		rows = append(rows, distributionRow{label: complexityLabels[tier], count: count})
	}
	sortRows(rows)
	return rows
}

func sortRows(rows []distributionRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].label < rows[j].label
	})
}

func percentOf(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

// renderRecommendations derives advice from simple rule lookups over the
// aggregated statistics.
func renderRecommendations(st domain.PortfolioStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n## Recommendations\n\n")

	fmt.Fprintf(&b, "### Skill Growth\n\n")
	if len(st.Languages) > 0 && len(st.Languages) < 3 {
		fmt.Fprintf(&b, "- Your portfolio centers on **%s**. For broader coverage, consider:\n", st.Languages[0].Name)
		for _, suggestion := range missingLanguageSuggestions(st) {
			fmt.Fprintf(&b, "  - %s\n", suggestion)
		}
	}
	if len(st.Frameworks) < 5 {
		frontend, backend := frameworkCoverage(st)
		if !frontend {
			fmt.Fprintf(&b, "- Try a modern frontend framework such as **React** or **Vue.js**.\n")
		}
		if !backend {
			fmt.Fprintf(&b, "- Try a backend API framework such as **FastAPI** or **Express**.\n")
		}
	}

	fmt.Fprintf(&b, "\n### Portfolio Coverage\n\n")
	if st.Categories[domain.CategoryFrontend] == 0 {
		fmt.Fprintf(&b, "- **Frontend project**: demonstrate user-interface development skills.\n")
	}
	if st.Categories[domain.CategoryBackend] == 0 {
		fmt.Fprintf(&b, "- **Backend API**: demonstrate server-side and data-modeling skills.\n")
	}
	if st.Categories[domain.CategoryDataML] == 0 {
		fmt.Fprintf(&b, "- **Data analysis / ML project**: demonstrate modern data skills.\n")
	}
	if st.Categories[domain.CategoryDevOps] < 2 {
		fmt.Fprintf(&b, "- **DevOps / infrastructure**: demonstrate Docker, CI/CD and deployment skills.\n")
	}

	fmt.Fprintf(&b, "\n### Code Quality\n\n")
	if st.TotalRepos > 0 && st.ZeroStarRepos*5 > st.TotalRepos*4 {
		fmt.Fprintf(&b, "- **Improve READMEs**: state purpose, usage and technology choices for each project.\n")
		fmt.Fprintf(&b, "- **Add demos or screenshots**: show projects working.\n")
	}
	if st.ReposWithTests*2 < st.TotalRepos {
		fmt.Fprintf(&b, "- **Add test suites**: few repositories show test files; tests signal production readiness.\n")
	}
	fmt.Fprintf(&b, "- **Write technical docs**: API specs and architecture notes round out a portfolio.\n")

	return b.String()
}

func missingLanguageSuggestions(st domain.PortfolioStats) []string {
	present := make(map[string]bool, len(st.Languages))
	for _, lang := range st.Languages {
		present[lang.Name] = true
	}

	var suggestions []string
	if !present["Python"] {
		suggestions = append(suggestions, "Python (data work and backend services)")
	}
	if !present["JavaScript"] && !present["TypeScript"] {
		suggestions = append(suggestions, "JavaScript/TypeScript (frontend and full-stack)")
	}
	if !present["Go"] {
		suggestions = append(suggestions, "Go (high-performance backend services)")
	}
	if len(suggestions) > 2 {
		suggestions = suggestions[:2]
	}
	return suggestions
}

func frameworkCoverage(st domain.PortfolioStats) (frontend, backend bool) {
	for _, fw := range st.Frameworks {
		switch fw.Name {
		case "React", "Vue.js", "Angular":
			frontend = true
		case "Django", "Flask", "FastAPI", "Node.js Backend":
			backend = true
		}
	}
	return frontend, backend
}
