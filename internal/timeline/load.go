package timeline

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Repository is the raw data read from one input file.
type Repository struct {
	Name         string
	PullRequests []RawPullRequest
}

// Decode reads a JSON array of pull requests. Elements that do not decode
// are logged and skipped; only a document that is not an array is an error.
func Decode(r io.Reader, log *zap.Logger) ([]RawPullRequest, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var elements []json.RawMessage
	if err := json.NewDecoder(r).Decode(&elements); err != nil {
		return nil, errors.Wrap(err, "decoding pull request array")
	}

	prs := make([]RawPullRequest, 0, len(elements))
	for i, element := range elements {
		var pr RawPullRequest
		if err := json.Unmarshal(element, &pr); err != nil {
			log.Warn("skipping malformed pull request", zap.Int("index", i), zap.Error(err))
			continue
		}
		prs = append(prs, pr)
	}
	return prs, nil
}

// ReadFile decodes one repository file. The repository name is the file
// name without its extension.
func ReadFile(path string, log *zap.Logger) (Repository, error) {
	f, err := os.Open(path)
	if err != nil {
		return Repository{}, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	prs, err := Decode(f, log)
	if err != nil {
		return Repository{}, errors.Wrapf(err, "reading %s", path)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Repository{Name: name, PullRequests: prs}, nil
}

// LoadDir reads every .json file in dir except skip. When only is non-empty
// just the named repositories are read. Results are ordered by name.
func LoadDir(dir, skip string, only []string, log *zap.Logger) ([]Repository, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", dir)
	}

	var repos []Repository
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || name == skip {
			continue
		}
		if len(only) > 0 && !slices.Contains(only, strings.TrimSuffix(name, ".json")) {
			continue
		}
		repo, err := ReadFile(filepath.Join(dir, name), log)
		if err != nil {
			return nil, err
		}
		repos = append(repos, repo)
	}
	slices.SortFunc(repos, func(a, b Repository) int { return strings.Compare(a.Name, b.Name) })
	return repos, nil
}

// NormalizeAll normalizes every pull request of every repository, dropping
// the ones the policy excludes.
func (n *Normalizer) NormalizeAll(repos []Repository) []PullRequest {
	log := n.logger()
	var out []PullRequest
	for _, repo := range repos {
		kept := 0
		for _, raw := range repo.PullRequests {
			pr, err := n.Normalize(raw, repo.Name)
			switch {
			case err == nil:
				out = append(out, pr)
				kept++
			case errors.Is(err, ErrMalformed):
				log.Warn("skipping pull request", zap.String("repository", repo.Name), zap.String("pull_request", raw.Title), zap.Error(err))
			}
		}
		log.Info("loaded pull requests", zap.String("repository", repo.Name), zap.Int("found", len(repo.PullRequests)), zap.Int("kept", kept))
	}
	return out
}
