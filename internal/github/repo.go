package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/varalys/codeqlreport/internal/logging"
	"github.com/varalys/codeqlreport/internal/types"
)

// CommitOutcome reports what CommitFile did.
type CommitOutcome int

const (
	CommitFailed CommitOutcome = iota
	CommitCreated
	CommitUpdated
)

func (o CommitOutcome) String() string {
	switch o {
	case CommitCreated:
		return "created"
	case CommitUpdated:
		return "updated"
	default:
		return "failed"
	}
}

// Repo exposes the repository operations the report and setup commands need.
// HTTP failures are logged and surface as empty results, never as errors.
type Repo struct {
	client   *Client
	owner    string
	name     string
	severity map[string]bool
	log      *zap.Logger
}

// NewRepo binds client to owner/name. severities is the allow-list applied
// when listing alerts.
func NewRepo(client *Client, owner, name string, severities []string, log *zap.Logger) *Repo {
	allowed := make(map[string]bool, len(severities))
	for _, s := range severities {
		allowed[s] = true
	}
	return &Repo{client: client, owner: owner, name: name, severity: allowed, log: logging.OrNop(log)}
}

// FullName returns "owner/name".
func (r *Repo) FullName() string { return r.owner + "/" + r.name }

func (r *Repo) path(parts ...string) string {
	segs := []string{"repos", url.PathEscape(r.owner), url.PathEscape(r.name)}
	return "/" + strings.Join(append(segs, parts...), "/")
}

type alertListItem struct {
	Number int    `json:"number"`
	State  string `json:"state"`
	Rule   struct {
		SecuritySeverityLevel *string `json:"security_severity_level"`
	} `json:"rule"`
}

// ListOpenAlertIDs pages through the code scanning alerts and returns the
// numbers of open alerts whose severity is in the allow-list. A failed page
// ends pagination; numbers from earlier pages are kept.
func (r *Repo) ListOpenAlertIDs(ctx context.Context) []int {
	ids := []int{}
	next := r.client.URL(r.path("code-scanning", "alerts") + "?per_page=100")
	for page := 1; next != ""; page++ {
		resp, err := r.client.Get(ctx, next)
		if err != nil {
			r.log.Error("failed to retrieve code scanning alerts", zap.Int("page", page), zap.Error(err))
			break
		}
		if resp.StatusCode != http.StatusOK {
			msg := "failed to retrieve code scanning alerts"
			if page > 1 {
				msg = "failed to retrieve next page of code scanning alerts"
			}
			r.log.Error(msg, zap.Int("page", page), zap.Int("status", resp.StatusCode), zap.String("body", resp.Text()))
			break
		}
		var items []alertListItem
		if err := resp.Decode(&items); err != nil {
			r.log.Error("failed to decode code scanning alerts", zap.Int("page", page), zap.Error(err))
			break
		}
		ids = append(ids, r.retain(items)...)
		next = resp.NextURL()
	}
	r.log.Debug("listed open alerts", zap.String("repo", r.FullName()), zap.Int("count", len(ids)))
	return ids
}

func (r *Repo) retain(items []alertListItem) []int {
	var out []int
	for _, a := range items {
		sev := a.Rule.SecuritySeverityLevel
		if a.State == types.StateOpen && sev != nil && r.severity[*sev] {
			out = append(out, a.Number)
		}
	}
	return out
}

// GetAlertDetail returns the full alert, or nil when it cannot be fetched.
func (r *Repo) GetAlertDetail(ctx context.Context, id int) *types.AlertDetail {
	resp, err := r.client.Get(ctx, r.client.URL(r.path("code-scanning", "alerts", strconv.Itoa(id))))
	if err != nil {
		r.log.Error("failed to retrieve code scanning alert details", zap.Int("alert", id), zap.Error(err))
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		r.log.Error("failed to retrieve code scanning alert details",
			zap.Int("alert", id), zap.Int("status", resp.StatusCode), zap.String("body", resp.Text()))
		return nil
	}
	var d types.AlertDetail
	if err := resp.Decode(&d); err != nil {
		r.log.Error("failed to decode code scanning alert details", zap.Int("alert", id), zap.Error(err))
		return nil
	}
	return &d
}

// GetDefaultBranch returns the repository default branch or "" on failure.
func (r *Repo) GetDefaultBranch(ctx context.Context) string {
	resp, err := r.client.Get(ctx, r.client.URL(r.path()))
	if err != nil {
		r.log.Error("failed to fetch repository", zap.String("repo", r.FullName()), zap.Error(err))
		return ""
	}
	if resp.StatusCode != http.StatusOK {
		r.log.Error("failed to fetch repository",
			zap.String("repo", r.FullName()), zap.Int("status", resp.StatusCode), zap.String("body", resp.Text()))
		return ""
	}
	var info struct {
		DefaultBranch string `json:"default_branch"`
	}
	if err := resp.Decode(&info); err != nil {
		r.log.Error("failed to decode repository", zap.Error(err))
		return ""
	}
	return info.DefaultBranch
}

// GetLanguages returns the repository languages lower-cased, largest first.
func (r *Repo) GetLanguages(ctx context.Context) []string {
	langs := []string{}
	resp, err := r.client.Get(ctx, r.client.URL(r.path("languages")))
	if err != nil {
		r.log.Error("failed to fetch repository languages", zap.Error(err))
		return langs
	}
	if resp.StatusCode != http.StatusOK {
		r.log.Error("failed to fetch repository languages", zap.Int("status", resp.StatusCode), zap.String("body", resp.Text()))
		return langs
	}
	var sizes map[string]int64
	if err := resp.Decode(&sizes); err != nil {
		r.log.Error("failed to decode repository languages", zap.Error(err))
		return langs
	}
	for name := range sizes {
		langs = append(langs, name)
	}
	sort.Slice(langs, func(i, j int) bool {
		if sizes[langs[i]] != sizes[langs[j]] {
			return sizes[langs[i]] > sizes[langs[j]]
		}
		return langs[i] < langs[j]
	})
	for i := range langs {
		langs[i] = strings.ToLower(langs[i])
	}
	return langs
}

type commitRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch,omitempty"`
	SHA     string `json:"sha,omitempty"`
}

// CommitFile creates or updates repoPath with the content of localFile. An
// existing file is updated with its current sha as the concurrency token.
// Only local I/O problems are returned as errors.
func (r *Repo) CommitFile(ctx context.Context, branch, localFile, repoPath, message string) (CommitOutcome, error) {
	content, err := os.ReadFile(localFile)
	if err != nil {
		return CommitFailed, fmt.Errorf("read %s: %w", localFile, err)
	}
	var segs []string
	for _, s := range strings.Split(strings.Trim(repoPath, "/"), "/") {
		segs = append(segs, url.PathEscape(s))
	}
	target := r.client.URL(r.path(append([]string{"contents"}, segs...)...))
	lookup := target
	if branch != "" {
		lookup += "?ref=" + url.QueryEscape(branch)
	}

	req := commitRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		Branch:  branch,
	}
	resp, err := r.client.Get(ctx, lookup)
	if err != nil {
		r.log.Error("failed to look up file", zap.String("path", repoPath), zap.Error(err))
		return CommitFailed, nil
	}
	switch resp.StatusCode {
	case http.StatusOK:
		var existing struct {
			SHA string `json:"sha"`
		}
		if err := resp.Decode(&existing); err != nil {
			r.log.Error("failed to decode file metadata", zap.String("path", repoPath), zap.Error(err))
			return CommitFailed, nil
		}
		req.SHA = existing.SHA
		return r.put(ctx, target, repoPath, req, http.StatusOK, CommitUpdated), nil
	case http.StatusNotFound:
		return r.put(ctx, target, repoPath, req, http.StatusCreated, CommitCreated), nil
	default:
		r.log.Error("failed to look up file",
			zap.String("path", repoPath), zap.Int("status", resp.StatusCode), zap.String("message", resp.Message()))
		return CommitFailed, nil
	}
}

func (r *Repo) put(ctx context.Context, target, repoPath string, req commitRequest, want int, ok CommitOutcome) CommitOutcome {
	resp, err := r.client.Put(ctx, target, req)
	if err != nil {
		r.log.Error("failed to commit file", zap.String("path", repoPath), zap.Error(err))
		return CommitFailed
	}
	if resp.StatusCode != want {
		r.log.Error("failed to commit file",
			zap.String("path", repoPath), zap.Int("status", resp.StatusCode), zap.String("message", resp.Message()))
		return CommitFailed
	}
	r.log.Info("file "+ok.String()+" successfully", zap.String("path", repoPath))
	return ok
}
