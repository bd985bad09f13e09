package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lineCode/ner/internal/index"
	"github.com/lineCode/ner/internal/mime"
	"github.com/lineCode/ner/internal/model"
)

const (
	dirCur = "cur"
	dirNew = "new"
	dirTmp = "tmp"
)

// Maildir indexes the messages of every maildir folder under a root.
type Maildir struct {
	root string
	idx  index.Writer
}

// NewMaildir returns a source scanning root.
func NewMaildir(root string, idx index.Writer) *Maildir {
	return &Maildir{root: root, idx: idx}
}

// Name identifies the source in status messages.
func (m *Maildir) Name() string { return "maildir" }

// Root returns the scanned directory.
func (m *Maildir) Root() string { return m.root }

// Folders returns every directory under the root that holds cur and new
// subdirectories, the root itself included.
func (m *Maildir) Folders() ([]string, error) {
	var folders []string
	err := filepath.WalkDir(m.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		switch d.Name() {
		case dirCur, dirNew, dirTmp:
			if path != m.root {
				return fs.SkipDir
			}
		}
		if isDir(filepath.Join(path, dirCur)) && isDir(filepath.Join(path, dirNew)) {
			folders = append(folders, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking maildir %s: %w", m.root, err)
	}
	return folders, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Sync indexes every message file not yet known to the index. Files that
// cannot be parsed are logged and counted as failed.
func (m *Maildir) Sync(ctx context.Context) (Result, error) {
	var res Result

	known, err := m.idx.KnownFiles(ctx)
	if err != nil {
		return res, err
	}
	folders, err := m.Folders()
	if err != nil {
		return res, err
	}

	for _, folder := range folders {
		for _, sub := range []string{dirNew, dirCur} {
			dir := filepath.Join(folder, sub)
			entries, err := os.ReadDir(dir)
			if err != nil {
				return res, fmt.Errorf("reading %s: %w", dir, err)
			}
			for _, e := range entries {
				if err := ctx.Err(); err != nil {
					return res, err
				}
				if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
					continue
				}
				path := filepath.Join(dir, e.Name())
				if known[path] {
					continue
				}

				added, err := m.indexFile(ctx, path, sub == dirNew)
				switch {
				case err != nil:
					log.Printf("ingest: skipping %s: %v", path, err)
					res.Failed++
				case added:
					res.Added++
				default:
					res.Skipped++
				}
			}
		}
	}

	return res, nil
}

func (m *Maildir) indexFile(ctx context.Context, path string, inNew bool) (bool, error) {
	parsed, err := mime.ParseFile(path)
	if err != nil {
		return false, err
	}

	h := parsed.Header
	id := h.MessageID
	if id == "" {
		// Stable across rescans of the same file.
		id = "ner-" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(path)).String()
	}
	date := h.Date
	if date.IsZero() {
		date = fileTime(path)
	}

	return m.idx.AddMessage(ctx, index.Entry{
		Message: model.Message{
			ID:       id,
			From:     h.From,
			Author:   parsed.Author,
			To:       h.To,
			Subject:  h.Subject,
			Date:     date,
			Tags:     FlagTags(filepath.Base(path), inNew),
			Filename: path,
		},
		InReplyTo:  h.InReplyTo,
		References: h.References,
	})
}

func fileTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// maildirFlags maps maildir info flags to tags.
var maildirFlags = map[rune]string{
	'F': model.TagFlagged,
	'R': model.TagReplied,
	'D': model.TagDraft,
	'T': "deleted",
}

// FlagTags derives the initial tags of a newly indexed file from its
// maildir info suffix. Every new message is in the inbox; it is unread
// unless it sits in cur/ with the S flag.
func FlagTags(name string, inNew bool) []string {
	tags := []string{model.TagInbox}
	flags := ""
	if _, info, ok := strings.Cut(name, ":2,"); ok {
		flags = info
	}
	if inNew || !strings.ContainsRune(flags, 'S') {
		tags = append(tags, model.TagUnread)
	}
	for _, f := range flags {
		if tag, ok := maildirFlags[f]; ok {
			tags = append(tags, tag)
		}
	}
	return model.NormalizeTags(tags)
}

// Deliver writes raw into the maildir folder: first into tmp/, then
// renamed into new/, or into cur/ when flags are given. The unique part of
// the file name is key, or a random id when key is empty.
func Deliver(folder string, raw []byte, key, flags string) (string, error) {
	for _, sub := range []string{dirTmp, dirNew, dirCur} {
		if err := os.MkdirAll(filepath.Join(folder, sub), 0o700); err != nil {
			return "", fmt.Errorf("creating maildir %s: %w", folder, err)
		}
	}

	if key == "" {
		key = uuid.NewString()
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	name := fmt.Sprintf("%d.%s.%s", time.Now().Unix(), key, strings.ReplaceAll(host, "/", "_"))

	tmp := filepath.Join(folder, dirTmp, name)
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return "", fmt.Errorf("writing %s: %w", tmp, err)
	}

	dest := filepath.Join(folder, dirNew, name)
	if flags != "" {
		info := []rune(flags)
		slices.Sort(info)
		dest = filepath.Join(folder, dirCur, name+":2,"+string(slices.Compact(info)))
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("delivering %s: %w", dest, err)
	}
	return dest, nil
}

// deliveredKeys returns the unique parts of the file names in the
// folder's cur/ and new/ directories.
func deliveredKeys(folder string) (map[string]bool, error) {
	keys := make(map[string]bool)
	for _, sub := range []string{dirNew, dirCur} {
		entries, err := os.ReadDir(filepath.Join(folder, sub))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", folder, err)
		}
		for _, e := range entries {
			parts := strings.SplitN(e.Name(), ".", 3)
			if len(parts) == 3 {
				keys[parts[1]] = true
			}
		}
	}
	return keys, nil
}
