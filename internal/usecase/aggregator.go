package usecase

import (
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/repolens/repolens/internal/classifier"
	"github.com/repolens/repolens/internal/domain"
)

// Aggregate folds the classified repositories into portfolio-wide statistics.
// The result is deterministic regardless of input order: rankings sort by
// weight descending with ties broken by name ascending. An empty input
// produces all-zero statistics, never an error.
func Aggregate(repos []domain.ClassifiedRepository) domain.PortfolioStats {
	result := domain.PortfolioStats{
		TotalRepos: len(repos),
		Tools:      make(map[string]int),
		Categories: make(map[domain.Category]int),
		Complexity: make(map[domain.ComplexityTier]int),
	}

	languageBytes := make(map[string]int64)
	frameworkRepos := make(map[string]int)
	starValues := make([]float64, 0, len(repos))
	forkValues := make([]float64, 0, len(repos))

	for _, repo := range repos {
		result.TotalStars += repo.Stars
		result.TotalForks += repo.Forks
		starValues = append(starValues, float64(repo.Stars))
		forkValues = append(forkValues, float64(repo.Forks))

		for lang, bytes := range repo.Languages {
			languageBytes[lang] += bytes
			result.TotalLanguageBytes += bytes
		}
		for _, framework := range repo.Frameworks {
			frameworkRepos[framework]++
		}
		for _, tool := range repo.Tools {
			result.Tools[tool]++
		}

		result.Categories[repo.Category]++
		result.Complexity[repo.Complexity]++

		if repo.HasReadme {
			result.ReposWithReadme++
		}
		if repo.HasTests {
			result.ReposWithTests++
		}
		if repo.UsesTool(classifier.ToolDocker) || repo.UsesTool(classifier.ToolDockerCompose) {
			result.ReposWithDocker++
		}
		if repo.Stars == 0 {
			result.ZeroStarRepos++
		}
	}

	if len(starValues) > 0 {
		// The stats helpers only error on empty input, which is guarded here.
		result.AverageStars, _ = stats.Mean(starValues)
		result.MedianStars, _ = stats.Median(starValues)
		result.AverageForks, _ = stats.Mean(forkValues)
	}

	result.Languages = rankLanguages(languageBytes, result.TotalLanguageBytes)
	result.Frameworks = rankFrameworks(frameworkRepos, result.TotalRepos)
	return result
}

// rankLanguages sorts by summed bytes descending, ties by name ascending.
func rankLanguages(languageBytes map[string]int64, totalBytes int64) []domain.LanguageUsage {
	if len(languageBytes) == 0 {
		return nil
	}
	ranking := make([]domain.LanguageUsage, 0, len(languageBytes))
	for name, bytes := range languageBytes {
		usage := domain.LanguageUsage{Name: name, Bytes: bytes}
		if totalBytes > 0 {
			usage.Percent = float64(bytes) / float64(totalBytes) * 100
		}
		ranking = append(ranking, usage)
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Bytes != ranking[j].Bytes {
			return ranking[i].Bytes > ranking[j].Bytes
		}
		return ranking[i].Name < ranking[j].Name
	})
	return ranking
}

// rankFrameworks sorts by using-repo count descending, ties by name ascending.
func rankFrameworks(frameworkRepos map[string]int, totalRepos int) []domain.FrameworkUsage {
	if len(frameworkRepos) == 0 {
		return nil
	}
	ranking := make([]domain.FrameworkUsage, 0, len(frameworkRepos))
	for name, count := range frameworkRepos {
		usage := domain.FrameworkUsage{Name: name, Repos: count}
		if totalRepos > 0 {
			usage.Percent = float64(count) / float64(totalRepos) * 100
		}
		ranking = append(ranking, usage)
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Repos != ranking[j].Repos {
			return ranking[i].Repos > ranking[j].Repos
		}
		return ranking[i].Name < ranking[j].Name
	})
	return ranking
}
