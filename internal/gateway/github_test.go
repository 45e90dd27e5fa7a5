package gateway

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repolens/repolens/internal/domain"
)

// setupTestGateway creates a GitHubGateway that communicates with a mock HTTP server.
func setupTestGateway(t *testing.T, handler http.Handler) (*GitHubGateway, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = baseURL

	gw := &GitHubGateway{
		client: client,
		logger: log.New(io.Discard, "", 0),
	}
	return gw, server
}

func writeRateLimited(w http.ResponseWriter) {
	w.Header().Set("X-RateLimit-Limit", "60")
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(30*time.Minute).Unix(), 10))
	w.WriteHeader(http.StatusForbidden)
	fmt.Fprint(w, `{"message": "API rate limit exceeded"}`)
}

func TestGitHubGateway_FetchUser(t *testing.T) {
	testCases := []struct {
		name        string
		user        string
		handlerFunc func(w http.ResponseWriter, r *http.Request)
		expected    *domain.UserProfile
		checkErr    func(t *testing.T, err error)
	}{
		{
			name: "happy path - authenticated user",
			user: "",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/user", r.URL.Path)
				fmt.Fprint(w, `{"login": "octocat", "name": "The Octocat", "public_repos": 8, "followers": 42}`)
			},
			expected: &domain.UserProfile{Login: "octocat", Name: "The Octocat", PublicRepos: 8, Followers: 42},
		},
		{
			name: "happy path - explicit user",
			user: "someone",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/users/someone", r.URL.Path)
				fmt.Fprint(w, `{"login": "someone", "public_repos": 1}`)
			},
			expected: &domain.UserProfile{Login: "someone", PublicRepos: 1},
		},
		{
			name: "bad credentials map to AuthError",
			user: "",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"message": "Bad credentials"}`)
			},
			checkErr: func(t *testing.T, err error) {
				var authErr *AuthError
				require.ErrorAs(t, err, &authErr)
				assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
			},
		},
		{
			name:        "rate limit maps to RateLimitError",
			user:        "",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) { writeRateLimited(w) },
			checkErr: func(t *testing.T, err error) {
				var rateErr *RateLimitError
				require.ErrorAs(t, err, &rateErr)
				assert.False(t, rateErr.ResetAt.IsZero())
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gw, _ := setupTestGateway(t, http.HandlerFunc(tc.handlerFunc))

			profile, err := gw.FetchUser(context.Background(), tc.user)
			if tc.checkErr != nil {
				require.Error(t, err)
				tc.checkErr(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, profile)
		})
	}
}

func TestGitHubGateway_FetchRepositories(t *testing.T) {
	t.Run("happy path - single page for explicit user", func(t *testing.T) {
		gw, _ := setupTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/users/someone/repos", r.URL.Path)
			assert.Equal(t, "100", r.URL.Query().Get("per_page"))
			assert.Equal(t, "updated", r.URL.Query().Get("sort"))
			fmt.Fprint(w, `[
				{"full_name": "someone/alpha", "name": "alpha", "owner": {"login": "someone"}, "stargazers_count": 3, "forks_count": 1, "language": "Go", "size": 120},
				{"full_name": "someone/beta", "name": "beta", "owner": {"login": "someone"}, "private": true, "language": "Python"}
			]`)
		}))

		repos, err := gw.FetchRepositories(context.Background(), "someone", 50)
		require.NoError(t, err)
		require.Len(t, repos, 2)
		assert.Equal(t, "someone/alpha", repos[0].FullName)
		assert.Equal(t, "someone", repos[0].Owner)
		assert.Equal(t, 3, repos[0].Stars)
		assert.Equal(t, "Go", repos[0].PrimaryLanguage)
		assert.Equal(t, 120, repos[0].SizeKB)
		assert.True(t, repos[1].Private)
	})

	t.Run("listing stops at the max even when more pages exist", func(t *testing.T) {
		var server *httptest.Server
		pagesServed := 0
		gw, s := setupTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pagesServed++
			assert.Equal(t, "/user/repos", r.URL.Path)
			w.Header().Set("Link", fmt.Sprintf(`<%s/user/repos?page=2>; rel="next"`, server.URL))
			fmt.Fprint(w, `[
				{"full_name": "me/one", "name": "one", "owner": {"login": "me"}},
				{"full_name": "me/two", "name": "two", "owner": {"login": "me"}}
			]`)
		}))
		server = s

		repos, err := gw.FetchRepositories(context.Background(), "", 1)
		require.NoError(t, err)
		require.Len(t, repos, 1)
		assert.Equal(t, "me/one", repos[0].FullName)
		assert.Equal(t, 1, pagesServed, "no request beyond the max should be issued")
	})

	t.Run("rate-limited listing aborts with RateLimitError", func(t *testing.T) {
		gw, _ := setupTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeRateLimited(w)
		}))

		repos, err := gw.FetchRepositories(context.Background(), "", 100)
		require.Error(t, err)
		var rateErr *RateLimitError
		assert.ErrorAs(t, err, &rateErr)
		assert.Nil(t, repos)
	})

	t.Run("server error maps to HTTPError", func(t *testing.T) {
		gw, _ := setupTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"message": "Internal Server Error"}`)
		}))

		_, err := gw.FetchRepositories(context.Background(), "", 100)
		require.Error(t, err)
		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	})
}

func TestGitHubGateway_FetchLanguages(t *testing.T) {
	gw, _ := setupTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/someone/alpha/languages", r.URL.Path)
		fmt.Fprint(w, `{"Go": 12345, "Makefile": 200}`)
	}))

	histogram, err := gw.FetchLanguages(context.Background(), "someone", "alpha")
	require.NoError(t, err)
	assert.Equal(t, domain.LanguageHistogram{"Go": 12345, "Makefile": 200}, histogram)
	assert.Equal(t, int64(12545), histogram.TotalBytes())
}

func TestGitHubGateway_FetchMarkerFiles(t *testing.T) {
	encode := func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

	t.Run("fetches present markers and flags readme and tests", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/someone/alpha/contents/", func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/repos/someone/alpha/contents/":
				fmt.Fprint(w, `[
					{"name": "README.md", "type": "file"},
					{"name": "package.json", "type": "file"},
					{"name": "tests", "type": "dir"},
					{"name": "main.js", "type": "file"}
				]`)
			case "/repos/someone/alpha/contents/package.json":
				fmt.Fprintf(w, `{"type": "file", "name": "package.json", "size": 44, "encoding": "base64", "content": "%s"}`,
					encode(`{"dependencies": {"react": "^18.0.0"}}`))
			default:
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"message": "Not Found"}`)
			}
		})
		gw, _ := setupTestGateway(t, mux)

		set, err := gw.FetchMarkerFiles(context.Background(), "someone", "alpha")
		require.NoError(t, err)
		assert.True(t, set.HasReadme)
		assert.True(t, set.HasTests)
		require.True(t, set.Has(domain.MarkerPackageJSON))
		assert.Contains(t, set.Contents[domain.MarkerPackageJSON], `"react"`)
		assert.False(t, set.Has(domain.MarkerGoMod))
	})

	t.Run("empty repository yields an empty set, not an error", func(t *testing.T) {
		gw, _ := setupTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message": "This repository is empty."}`)
		}))

		set, err := gw.FetchMarkerFiles(context.Background(), "someone", "empty")
		require.NoError(t, err)
		assert.Empty(t, set.Contents)
		assert.False(t, set.HasReadme)
	})

	t.Run("oversized marker files are skipped", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/someone/big/contents/", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/repos/someone/big/contents/" {
				fmt.Fprint(w, `[{"name": "package.json", "type": "file"}]`)
				return
			}
			fmt.Fprintf(w, `{"type": "file", "name": "package.json", "size": 9999999, "encoding": "base64", "content": "%s"}`, encode("{}"))
		})
		gw, _ := setupTestGateway(t, mux)

		set, err := gw.FetchMarkerFiles(context.Background(), "someone", "big")
		require.NoError(t, err)
		assert.False(t, set.Has(domain.MarkerPackageJSON))
	})

	t.Run("rate limit during a marker fetch aborts", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/someone/limited/contents/", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/repos/someone/limited/contents/" {
				fmt.Fprint(w, `[{"name": "go.mod", "type": "file"}]`)
				return
			}
			writeRateLimited(w)
		})
		gw, _ := setupTestGateway(t, mux)

		_, err := gw.FetchMarkerFiles(context.Background(), "someone", "limited")
		require.Error(t, err)
		var rateErr *RateLimitError
		assert.ErrorAs(t, err, &rateErr)
	})
}
