// Package gitsrc collects commit evidence from local git repositories.
package gitsrc

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/contract"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

// logFormat emits one commit per line: hash|author name|author email|
// committer date (strict ISO)|subject.
const logFormat = "%H|%an|%ae|%cI|%s"

// Source walks a directory tree for git repositories and turns the
// configured authors' commits into point evidence records.
type Source struct {
	git GitRunner
}

// GitRunner executes a git command in a repository and returns its stdout.
// It exists so tests can fake git output without a repository on disk.
type GitRunner interface {
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)
}

var _ contract.EvidenceSource = &Source{} // Compile-time check

// NewSource creates a commit source backed by the local git binary.
func NewSource() *Source {
	return &Source{git: &LocalGitRunner{}}
}

// NewSourceWithRunner creates a commit source with a custom runner for tests.
func NewSourceWithRunner(git GitRunner) *Source {
	return &Source{git: git}
}

// Name implements the EvidenceSource interface.
func (s *Source) Name() schema.Source {
	return schema.GitSource
}

// Collect scans every repository under cfg.ReposRoot for commits authored by
// the configured emails within the run range. No emails or no root means the
// source is unconfigured and yields nothing.
func (s *Source) Collect(ctx context.Context, cfg *contract.Config) ([]schema.EvidenceRecord, error) {
	if cfg.ReposRoot == "" || len(cfg.Emails) == 0 {
		return nil, nil
	}
	repos, err := DiscoverRepos(cfg.ReposRoot)
	if err != nil {
		return nil, fmt.Errorf("scanning %s for repositories: %w", cfg.ReposRoot, err)
	}

	emails := make(map[string]struct{}, len(cfg.Emails))
	for _, e := range cfg.Emails {
		emails[e] = struct{}{}
	}

	var records []schema.EvidenceRecord
	for _, repo := range repos {
		out, err := s.git.Run(ctx, repo,
			"log",
			"--no-merges",
			"--since="+cfg.Since.Format(time.RFC3339),
			"--until="+cfg.Until.Format(time.RFC3339),
			"--pretty=format:"+logFormat,
		)
		if err != nil {
			// One broken checkout should not sink the whole scan.
			contract.LogWarn(fmt.Sprintf("Skipping repository %s", repo), err)
			continue
		}
		records = append(records, parseLog(out, filepath.Base(repo), emails, cfg)...)
	}
	return records, nil
}

// parseLog converts raw git log output into evidence records, keeping only
// commits by the configured authors and dropping noise subjects.
func parseLog(out []byte, repoName string, emails map[string]struct{}, cfg *contract.Config) []schema.EvidenceRecord {
	var records []schema.EvidenceRecord
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 5)
		if len(parts) != 5 {
			continue
		}
		hash, email, dateStr, subject := parts[0], strings.ToLower(parts[2]), parts[3], parts[4]
		if _, ok := emails[email]; !ok {
			continue
		}
		if cfg.ExcludeSubjects != nil && cfg.ExcludeSubjects.MatchString(subject) {
			continue
		}
		ts, err := time.Parse(time.RFC3339, dateStr)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("Dropping commit %s with unparseable date %q", hash, dateStr), err)
			continue
		}
		records = append(records, schema.EvidenceRecord{
			ID:        hash,
			Source:    schema.GitSource,
			Origin:    repoName,
			Label:     subject,
			Timestamp: ts.In(cfg.Loc),
		})
	}
	return records
}

// DiscoverRepos returns every directory under root that contains a .git
// entry. It does not descend into repositories, so nested checkouts and
// submodules are attributed to their outermost repo.
func DiscoverRepos(root string) ([]string, error) {
	var repos []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil // unreadable subtree, keep walking
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if _, statErr := os.Stat(filepath.Join(path, ".git")); statErr == nil {
			repos = append(repos, path)
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(repos)
	return repos, nil
}

// LocalGitRunner executes the local 'git' binary installed on the machine.
type LocalGitRunner struct{}

// Run executes a git command and returns its stdout.
func (c *LocalGitRunner) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git command failed in %q: %s", repoPath, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}
