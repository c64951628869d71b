// Package workspace manages per-session folders for comparison inputs and
// reports.
//
// Layout:
//
//	<root>/<kind>/<session_id>/<version>/<file>
//	<root>/<kind>/<session_id>/comparison_result.html
//
// The root is served over HTTP under /static, so every file in a session has
// a browser path as well as a filesystem path.
package workspace

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fvbommel/sortorder"
	"github.com/google/uuid"
)

// URLPrefix is the HTTP path the workspace root is served under.
const URLPrefix = "/static"

// Kind groups sessions by document type.
type Kind string

const (
	KindExcel Kind = "excel"
	KindImage Kind = "image"
	KindPDF   Kind = "pdf"
)

// Kinds lists every session kind.
var Kinds = []Kind{KindExcel, KindImage, KindPDF}

var (
	// ErrInvalidSessionID is returned for ids that are empty or could escape the session folder.
	ErrInvalidSessionID = errors.New("invalid session id")

	// ErrFileNotFound is returned when an input document does not exist.
	ErrFileNotFound = errors.New("file not found")
)

// Document is an input file copied into a session.
type Document struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Path    string `json:"-"`
	URL     string `json:"url"`
}

// Session is one session folder found on disk.
type Session struct {
	Kind    Kind
	ID      string
	ModTime time.Time
}

// Workspace owns the folder tree under root.
type Workspace struct {
	root string
}

// New creates the root and one folder per kind.
func New(root string) (*Workspace, error) {
	for _, k := range Kinds {
		if err := os.MkdirAll(filepath.Join(root, string(k)), 0o755); err != nil {
			return nil, fmt.Errorf("create workspace: %w", err)
		}
	}
	return &Workspace{root: root}, nil
}

// Root returns the workspace root directory.
func (w *Workspace) Root() string {
	return w.root
}

// NewSessionID returns a fresh random session id.
func NewSessionID() string {
	return uuid.NewString()
}

// ValidateSessionID rejects ids that are empty, contain path separators, or
// are dot segments.
func ValidateSessionID(id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return fmt.Errorf("%w: empty", ErrInvalidSessionID)
	case id == "." || id == "..":
		return fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	case strings.ContainsAny(id, `/\`+"\x00"):
		return fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}
	return nil
}

// SessionDir returns the folder of a session. The id must be valid.
func (w *Workspace) SessionDir(kind Kind, id string) string {
	return filepath.Join(w.root, string(kind), id)
}

// SessionURL returns the browser path of a file inside a session folder.
func (w *Workspace) SessionURL(kind Kind, id string, elem ...string) string {
	parts := []string{URLPrefix, string(kind), url.PathEscape(id)}
	for _, e := range elem {
		parts = append(parts, url.PathEscape(e))
	}
	return path.Join(parts...)
}

// Create removes any folder left by an earlier run of the session and
// creates it empty.
func (w *Workspace) Create(kind Kind, id string) (string, error) {
	if err := ValidateSessionID(id); err != nil {
		return "", err
	}
	dir := w.SessionDir(kind, id)
	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("reset session folder: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create session folder: %w", err)
	}
	return dir, nil
}

// Prepare copies src into <session>/<dir>/<base name of src>.
func (w *Workspace) Prepare(kind Kind, id, src, dir string) (Document, error) {
	if err := ValidateSessionID(id); err != nil {
		return Document{}, err
	}
	if dir == "" || dir == "." || dir == ".." || strings.ContainsAny(dir, `/\`) {
		dir = "input"
	}

	name := filepath.Base(src)
	targetDir := filepath.Join(w.SessionDir(kind, id), dir)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return Document{}, fmt.Errorf("create version folder: %w", err)
	}

	target := filepath.Join(targetDir, name)
	if err := copyFile(src, target); err != nil {
		return Document{}, err
	}

	return Document{
		Name:    name,
		Version: Version(src),
		Path:    target,
		URL:     w.SessionURL(kind, id, dir, name),
	}, nil
}

// Cleanup removes the session from every kind. It reports whether any
// folder existed.
func (w *Workspace) Cleanup(id string) (bool, error) {
	if err := ValidateSessionID(id); err != nil {
		return false, err
	}

	found := false
	var errs []error
	for _, k := range Kinds {
		dir := w.SessionDir(k, id)
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		found = true
		if err := os.RemoveAll(dir); err != nil {
			errs = append(errs, fmt.Errorf("remove %s session: %w", k, err))
		}
	}
	return found, errors.Join(errs...)
}

// Sessions lists every session folder, ordered by kind and then naturally by id.
func (w *Workspace) Sessions() ([]Session, error) {
	var sessions []Session
	for _, k := range Kinds {
		entries, err := os.ReadDir(filepath.Join(w.root, string(k)))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("list %s sessions: %w", k, err)
		}

		start := len(sessions)
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			sessions = append(sessions, Session{Kind: k, ID: e.Name(), ModTime: info.ModTime()})
		}
		group := sessions[start:]
		sort.Slice(group, func(i, j int) bool {
			return sortorder.NaturalLess(group[i].ID, group[j].ID)
		})
	}
	return sessions, nil
}

// RemoveOlderThan deletes sessions last modified before cutoff and returns them.
func (w *Workspace) RemoveOlderThan(cutoff time.Time) ([]Session, error) {
	sessions, err := w.Sessions()
	if err != nil {
		return nil, err
	}

	var removed []Session
	var errs []error
	for _, s := range sessions {
		if !s.ModTime.Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(w.SessionDir(s.Kind, s.ID)); err != nil {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, s)
	}
	return removed, errors.Join(errs...)
}

// ResolveInput unescapes a percent-encoded input path and checks that it
// names a regular file.
func ResolveInput(p string) (string, error) {
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, p)
	}
	return p, nil
}

// Version returns the name of the folder holding the file. Both slash and
// backslash separators are accepted.
func Version(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	dir := path.Base(path.Dir(p))
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, src)
		}
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create copy: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close copy: %w", cerr)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy input: %w", err)
	}
	return nil
}
