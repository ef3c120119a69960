// Package workspace locates a repository on disk and supplies what is
// needed to run git against it: the working root, the executable and the
// environment.
package workspace

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Workspace is a git working tree on the local filesystem.
type Workspace struct {
	gitDir      string
	workDir     string
	gitPath     string
	description string
	lookPath    func(string) (string, error)
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithGitPath pins the git executable instead of searching PATH.
func WithGitPath(path string) Option {
	return func(w *Workspace) {
		w.gitPath = path
	}
}

// Info is the serializable summary of a workspace.
type Info struct {
	Name        string `json:"name" yaml:"name"`
	Root        string `json:"root" yaml:"root"`
	GitDir      string `json:"gitDir" yaml:"git_dir"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Open resolves the repository containing path, which may be the working
// root, any directory below it or the .git directory itself. It fails with
// *NotRepositoryError when no .git is found and *InvalidRepositoryError when
// the one found is unusable.
func Open(path string, opts ...Option) (*Workspace, error) {
	gitDir, workDir, err := locate(path)
	if err != nil {
		return nil, err
	}

	if err := validate(gitDir); err != nil {
		return nil, err
	}

	w := &Workspace{
		gitDir:   gitDir,
		workDir:  workDir,
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.loadDescription()

	return w, nil
}

// Name returns the working directory's base name.
func (w *Workspace) Name() string {
	return filepath.Base(w.workDir)
}

// RootPath returns the working directory git runs in.
func (w *Workspace) RootPath() string {
	return w.workDir
}

// GitDir returns the resolved .git directory.
func (w *Workspace) GitDir() string {
	return w.gitDir
}

// Description returns the contents of .git/description, if any.
func (w *Workspace) Description() string {
	return w.description
}

// Info returns the workspace summary.
func (w *Workspace) Info() Info {
	return Info{
		Name:        w.Name(),
		Root:        w.workDir,
		GitDir:      w.gitDir,
		Description: w.description,
	}
}

// Which locates an executable. A pinned git path is returned for "git"
// when it exists.
func (w *Workspace) Which(name string) (string, bool) {
	if name == "git" && w.gitPath != "" {
		if info, err := os.Stat(w.gitPath); err == nil && !info.IsDir() {
			return w.gitPath, true
		}
		return "", false
	}
	path, err := w.lookPath(name)
	if err != nil {
		return "", false
	}
	return path, true
}

// ShellEnv returns the environment git is run with.
func (w *Workspace) ShellEnv() []string {
	env := os.Environ()
	out := make([]string, len(env))
	copy(out, env)
	return out
}

func (w *Workspace) loadDescription() {
	data, err := os.ReadFile(filepath.Join(w.gitDir, "description"))
	if err != nil {
		return
	}
	w.description = strings.TrimSpace(string(data))
}

// NotRepositoryError reports a path with no git directory at or above it.
type NotRepositoryError struct {
	Path string
}

func (e *NotRepositoryError) Error() string {
	return fmt.Sprintf("not a git repository (or any parent up to mount point): %s", e.Path)
}

// InvalidRepositoryError reports a git directory, or a .git file pointing
// at one, that cannot be used.
type InvalidRepositoryError struct {
	Path   string
	Reason string
}

func (e *InvalidRepositoryError) Error() string {
	return fmt.Sprintf("invalid git repository at %s: %s", e.Path, e.Reason)
}

// locate walks up from start to the nearest .git entry and returns the git
// directory and the working root it belongs to.
func locate(start string) (gitDir string, workDir string, err error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", "", fmt.Errorf("resolve %s: %w", start, err)
	}

	if filepath.Base(dir) == ".git" && isDir(dir) {
		return dir, filepath.Dir(dir), nil
	}

	for {
		dotGit := filepath.Join(dir, ".git")
		if info, statErr := os.Stat(dotGit); statErr == nil {
			if info.IsDir() {
				return dotGit, dir, nil
			}
			linked, linkErr := readGitLink(dotGit)
			if linkErr != nil {
				return "", "", linkErr
			}
			return linked, dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", &NotRepositoryError{Path: start}
		}
		dir = parent
	}
}

// readGitLink resolves a .git file ("gitdir: <path>") as written for linked
// worktrees and submodules. Relative targets are relative to the file.
func readGitLink(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", &InvalidRepositoryError{Path: path, Reason: err.Error()}
	}

	target, ok := strings.CutPrefix(strings.TrimSpace(string(content)), "gitdir: ")
	if !ok {
		return "", &InvalidRepositoryError{Path: path, Reason: `.git file does not start with "gitdir: "`}
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}
	target = filepath.Clean(target)

	if !isDir(target) {
		return "", &InvalidRepositoryError{Path: path, Reason: "gitdir target " + target + " does not exist"}
	}
	return target, nil
}

// validate checks that gitDir has a HEAD and that its common directory
// (itself, or the one named by a worktree's commondir file) holds objects
// and refs.
func validate(gitDir string) error {
	if !isDir(gitDir) {
		return &InvalidRepositoryError{Path: gitDir, Reason: "not a directory"}
	}
	if _, err := os.Stat(filepath.Join(gitDir, "HEAD")); err != nil {
		return &InvalidRepositoryError{Path: gitDir, Reason: "missing HEAD"}
	}

	common := commonDir(gitDir)
	for _, required := range []string{"objects", "refs"} {
		if !isDir(filepath.Join(common, required)) {
			return &InvalidRepositoryError{Path: gitDir, Reason: "missing " + required}
		}
	}
	return nil
}

func commonDir(gitDir string) string {
	data, err := os.ReadFile(filepath.Join(gitDir, "commondir"))
	if err != nil {
		return gitDir
	}
	dir := strings.TrimSpace(string(data))
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(gitDir, dir)
	}
	return filepath.Clean(dir)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
