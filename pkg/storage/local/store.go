// Package local implements storage.Backend on the local filesystem. Folders
// map to directories under a root; the relative path doubles as reference id.
package local

import (
	"context"
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

	"study-tracker-be/pkg/storage"
)

type Store struct {
	root     string
	baseURL  string
	maxDepth int
}

// New returns a filesystem-backed store rooted at root, creating it if needed.
// When baseURL is empty folder URLs use the file:// scheme.
func New(root, baseURL string, maxDepth int) (*Store, error) {
	if root == "" {
		root = "./storage-data"
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: abs, baseURL: strings.TrimRight(baseURL, "/"), maxDepth: maxDepth}, nil
}

func (s *Store) Driver() storage.Driver { return storage.DriverLocal }

func (s *Store) CreateFolder(ctx context.Context, target storage.Target) (*storage.Folder, error) {
	rel, err := sanitizeKey(target.Path())
	if err != nil {
		return nil, err
	}
	abs := filepath.Join(s.root, filepath.FromSlash(rel))
	if _, err := os.Stat(abs); err == nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrAlreadyExists, rel)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return s.folderAt(rel), nil
}

func (s *Store) FindFolder(ctx context.Context, target storage.Target, opts storage.FindOptions) (*storage.Folder, error) {
	rel, err := sanitizeKey(target.Path())
	if err != nil {
		return nil, err
	}
	abs := filepath.Join(s.root, filepath.FromSlash(rel))
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, rel)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", storage.ErrNotFound, rel)
	}
	folder := s.folderAt(rel)
	if err := s.list(ctx, folder, storage.ClampDepth(opts.Depth, s.maxDepth)); err != nil {
		return nil, err
	}
	return folder, nil
}

// UploadFile writes the file into the target folder, replacing any previous
// version with the same name.
func (s *Store) UploadFile(ctx context.Context, target storage.Target, upload storage.Upload) (*storage.File, error) {
	rel, err := sanitizeKey(target.Path())
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(s.root, filepath.FromSlash(rel))
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, rel)
	}
	name := storage.SanitizeName(upload.Name)
	if name == "" {
		return nil, fmt.Errorf("file name required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abs := filepath.Join(dir, name)
	f, err := os.Create(abs)
	if err != nil {
		return nil, err
	}
	size, copyErr := io.Copy(f, upload.Body)
	closeErr := f.Close()
	if copyErr != nil {
		return nil, copyErr
	}
	if closeErr != nil {
		return nil, closeErr
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	filePath := path.Join(rel, name)
	return &storage.File{
		ReferenceId:  filePath,
		Name:         name,
		Path:         filePath,
		Url:          s.urlFor(filePath),
		Size:         size,
		LastModified: info.ModTime().UTC(),
	}, nil
}

func (s *Store) list(ctx context.Context, folder *storage.Folder, depth int) error {
	if depth <= 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := os.ReadDir(filepath.Join(s.root, filepath.FromSlash(folder.Path)))
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, e := range entries {
		childPath := path.Join(folder.Path, e.Name())
		if e.IsDir() {
			child := s.folderAt(childPath)
			if err := s.list(ctx, child, depth-1); err != nil {
				return err
			}
			folder.SubFolders = append(folder.SubFolders, child)
			continue
		}
		info, err := e.Info()
		if err != nil {
			return err
		}
		folder.Files = append(folder.Files, &storage.File{
			ReferenceId:  childPath,
			Name:         e.Name(),
			Path:         childPath,
			Url:          s.urlFor(childPath),
			Size:         info.Size(),
			LastModified: info.ModTime().UTC(),
		})
	}
	return nil
}

func (s *Store) folderAt(rel string) *storage.Folder {
	return &storage.Folder{
		ReferenceId: rel,
		Name:        path.Base(rel),
		Path:        rel,
		Url:         s.urlFor(rel),
	}
}

func (s *Store) urlFor(rel string) string {
	if s.baseURL == "" {
		return (&url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(s.root, filepath.FromSlash(rel)))}).String()
	}
	segments := strings.Split(rel, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.baseURL + "/" + strings.Join(segments, "/")
}

// sanitizeKey ensures key doesn't escape root and forbids path traversal and absolute paths.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid absolute key")
	}
	clean := path.Clean(key)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("invalid key traversal")
	}
	return clean, nil
}
