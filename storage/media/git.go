package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/plumbing/transport"
	"github.com/go-git/go-git/v6/plumbing/transport/http"
	"github.com/go-git/go-git/v6/plumbing/transport/ssh"

	"github.com/indieinfra/gallery/config"
)

const defaultGitBranch = "main"

// GitMediaStore keeps one JSON document per record under <path>/<id>.json in
// a git repository. Every operation syncs with the remote first and every
// create is pushed before it is reported as successful.
type GitMediaStore struct {
	cfg    *config.GitMediaStrategy
	auth   transport.AuthMethod
	branch string
	repo   *git.Repository
	tmpDir string
	mu     sync.Mutex
}

func NewGitMediaStore(cfg *config.GitMediaStrategy) (*GitMediaStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("media git config is nil")
	}

	auth, err := buildGitAuth(cfg)
	if err != nil {
		return nil, err
	}

	branch := cfg.Branch
	if branch == "" {
		branch = defaultGitBranch
	}

	tmpDir, repo, err := cloneRepository(cfg.Repository, branch, auth)
	if err != nil {
		return nil, storageErr("clone", err)
	}

	return &GitMediaStore{
		cfg:    cfg,
		auth:   auth,
		branch: branch,
		repo:   repo,
		tmpDir: tmpDir,
	}, nil
}

func cloneRepository(url, branch string, auth transport.AuthMethod) (string, *git.Repository, error) {
	tmpDir, err := os.MkdirTemp("", "gallery-media-*")
	if err != nil {
		return "", nil, err
	}

	repo, err := git.PlainClone(tmpDir, &git.CloneOptions{
		URL:           url,
		Auth:          auth,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		SingleBranch:  true,
	})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", nil, err
	}

	return tmpDir, repo, nil
}

func buildGitAuth(cfg *config.GitMediaStrategy) (transport.AuthMethod, error) {
	switch cfg.Auth.Method {
	case "", "none":
		return nil, nil
	case "plain":
		if cfg.Auth.Plain == nil {
			return nil, fmt.Errorf("plain git authentication requires credentials")
		}

		return &http.BasicAuth{
			Username: cfg.Auth.Plain.Username,
			Password: cfg.Auth.Plain.Password,
		}, nil
	case "ssh":
		if cfg.Auth.Ssh == nil {
			return nil, fmt.Errorf("ssh git authentication requires a key")
		}

		pubkeys, err := ssh.NewPublicKeysFromFile(cfg.Auth.Ssh.Username, cfg.Auth.Ssh.PrivateKeyFilePath, cfg.Auth.Ssh.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare media git ssh authentication: %w", err)
		}

		return pubkeys, nil
	default:
		return nil, fmt.Errorf("invalid git authentication method %v", cfg.Auth.Method)
	}
}

// Close removes the local clone.
func (ms *GitMediaStore) Close() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.tmpDir == "" {
		return nil
	}

	if err := os.RemoveAll(ms.tmpDir); err != nil {
		return fmt.Errorf("failed to cleanup git media store: %w", err)
	}

	ms.tmpDir = ""
	return nil
}

// sync fetches the configured branch and hard resets the local branch onto
// it. Unpushed local commits are discarded. Failures are not retried.
func (ms *GitMediaStore) sync(ctx context.Context) error {
	if err := ms.repo.FetchContext(ctx, &git.FetchOptions{Auth: ms.auth}); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("fetch: %w", err)
	}

	remoteRef, err := ms.repo.Reference(plumbing.NewRemoteReferenceName("origin", ms.branch), true)
	if err != nil {
		return fmt.Errorf("resolve remote branch: %w", err)
	}

	localName := plumbing.NewBranchReferenceName(ms.branch)
	localRef, err := ms.repo.Reference(localName, true)
	if err != nil {
		return fmt.Errorf("resolve local branch: %w", err)
	}

	if localRef.Hash() == remoteRef.Hash() {
		return nil
	}

	if err := ms.repo.Storer.SetReference(plumbing.NewHashReference(localName, remoteRef.Hash())); err != nil {
		return err
	}

	wt, err := ms.repo.Worktree()
	if err != nil {
		return err
	}

	return wt.Reset(&git.ResetOptions{
		Mode:   git.HardReset,
		Commit: remoteRef.Hash(),
	})
}

func (ms *GitMediaStore) Create(ctx context.Context, fileURL string, mediaType string) (Record, error) {
	if err := ValidateRecordInput(fileURL, mediaType); err != nil {
		return Record{}, err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.tmpDir == "" {
		return Record{}, storageErr("create", fmt.Errorf("store is closed"))
	}

	if err := ms.sync(ctx); err != nil {
		return Record{}, storageErr("create", err)
	}

	existing, err := ms.readRecords()
	if err != nil {
		return Record{}, storageErr("create", err)
	}

	var maxID int64
	for _, rec := range existing {
		if rec.ID > maxID {
			maxID = rec.ID
		}
	}

	rec := Record{ID: maxID + 1, FileURL: fileURL, MediaType: mediaType}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return Record{}, storageErr("create", err)
	}

	relPath := filepath.Join(ms.cfg.Path, strconv.FormatInt(rec.ID, 10)+".json")
	fullPath := filepath.Join(ms.tmpDir, relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return Record{}, storageErr("create", fmt.Errorf("failed to create required directory structure: %w", err))
	}

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return Record{}, storageErr("create", fmt.Errorf("failed to write file: %w", err))
	}

	wt, err := ms.repo.Worktree()
	if err != nil {
		return Record{}, storageErr("create", err)
	}

	if _, err := wt.Add(filepath.ToSlash(relPath)); err != nil {
		return Record{}, storageErr("create", fmt.Errorf("failed to add file to git: %w", err))
	}

	_, err = wt.Commit(fmt.Sprintf("gallery(add): %s record %d", mediaType, rec.ID), &git.CommitOptions{
		Author: &object.Signature{
			Name:  "gallery",
			Email: "gallery@local",
			When:  time.Now(),
		},
	})
	if err != nil {
		return Record{}, storageErr("create", fmt.Errorf("failed to create commit: %w", err))
	}

	if err := ms.repo.PushContext(ctx, &git.PushOptions{Auth: ms.auth}); err != nil {
		return Record{}, storageErr("create", fmt.Errorf("failed to push: %w", err))
	}

	return rec, nil
}

func (ms *GitMediaStore) ListByType(ctx context.Context, mediaType string) ([]Record, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.tmpDir == "" {
		return nil, storageErr("list", fmt.Errorf("store is closed"))
	}

	if err := ms.sync(ctx); err != nil {
		return nil, storageErr("list", err)
	}

	all, err := ms.readRecords()
	if err != nil {
		return nil, storageErr("list", err)
	}

	records := make([]Record, 0, len(all))
	for _, rec := range all {
		if rec.MediaType == mediaType {
			records = append(records, rec)
		}
	}

	return records, nil
}

// readRecords loads every record document from HEAD, sorted by id. Files
// that are not named <id>.json are ignored.
func (ms *GitMediaStore) readRecords() ([]Record, error) {
	head, err := ms.repo.Head()
	if err != nil {
		return nil, err
	}

	commit, err := ms.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, err
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, err
	}

	dir := strings.Trim(filepath.ToSlash(ms.cfg.Path), "/")

	records := make([]Record, 0)
	err = tree.Files().ForEach(func(f *object.File) error {
		if path.Dir(f.Name) != dir {
			return nil
		}

		base := path.Base(f.Name)
		if !strings.HasSuffix(base, ".json") {
			return nil
		}

		if _, err := strconv.ParseInt(strings.TrimSuffix(base, ".json"), 10, 64); err != nil {
			return nil
		}

		r, err := f.Reader()
		if err != nil {
			return err
		}

		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			return err
		}

		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("corrupt record %s: %w", f.Name, err)
		}

		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}
