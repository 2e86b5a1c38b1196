package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/thebardchat/angel-cloud/pkg/model"
	"github.com/thebardchat/angel-cloud/pkg/repository"
	"github.com/thebardchat/angel-cloud/pkg/utils/logging"
)

const maxSectionLen = 100

// MemoryResult summarizes one memory import run.
type MemoryResult struct {
	Files      int `json:"files"`
	Imported   int `json:"imported"`
	Duplicates int `json:"duplicates"`
	Failed     int `json:"failed"`
}

var sessionFilePattern = regexp.MustCompile(`Session_(\d{4}-\d{2}-\d{2})_(\d{2})-(\d{2})`)

// sessionDate derives the session timestamp from an export filename like
// Session_2025-06-11_14-30.md, falling back to now when the name does not
// carry one.
func sessionDate(filename string, now time.Time) string {
	m := sessionFilePattern.FindStringSubmatch(filename)
	if m == nil {
		return now.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("%sT%s:%s:00Z", m[1], m[2], m[3])
}

// ImportMemoryDir imports every Session_*.md export under dir, newest
// first. When recent is positive only that many of the newest files are
// processed.
func (u *UseCase) ImportMemoryDir(ctx context.Context, dir string, recent int) (*MemoryResult, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, goerr.Wrap(err, "memory directory does not exist",
			goerr.V("dir", dir), goerr.T(model.ErrTagConfig))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read memory directory",
			goerr.V("dir", dir), goerr.T(model.ErrTagConfig))
	}

	type memoryFile struct {
		path  string
		mtime time.Time
	}
	var files []memoryFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, "Session_") || !strings.HasSuffix(name, ".md") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, memoryFile{path: filepath.Join(dir, name), mtime: info.ModTime()})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].mtime.After(files[j].mtime) })
	if recent > 0 && len(files) > recent {
		files = files[:recent]
	}

	total := &MemoryResult{}
	for _, f := range files {
		result, err := u.ImportMemoryFile(ctx, f.path)
		if err != nil {
			logging.From(ctx).Warn("failed to import memory file", "path", f.path, "error", err)
			continue
		}
		total.Files++
		total.Imported += result.Imported
		total.Duplicates += result.Duplicates
		total.Failed += result.Failed
	}

	logging.From(ctx).Info("memory import finished",
		"files", total.Files, "imported", total.Imported,
		"duplicates", total.Duplicates, "failed", total.Failed)

	return total, nil
}

// ImportMemoryFile imports one session export. Sections already present in
// the store, matched by file and section name, are skipped unless the
// duplicate check is disabled.
func (u *UseCase) ImportMemoryFile(ctx context.Context, path string) (*MemoryResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read memory file",
			goerr.V("path", path), goerr.T(model.ErrTagConfig))
	}

	filename := filepath.Base(path)
	date := sessionDate(filename, time.Now())
	result := &MemoryResult{Files: 1}

	for _, sec := range splitSections(string(raw)) {
		if len(sec.Body) < minBodyLen {
			continue
		}

		sectionName := sec.Heading
		if len(sectionName) > maxSectionLen {
			sectionName = sectionName[:maxSectionLen]
		}

		if u.dedup && u.memoryExists(ctx, filename, sectionName) {
			result.Duplicates++
			continue
		}

		_, err := u.store.Insert(ctx, repository.CollectionMemory, map[string]any{
			"content":      cleanBody(sec.Body),
			"session_date": date,
			"session_file": filename,
			"section":      sectionName,
			"imported_at":  time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			logging.From(ctx).Warn("failed to import memory section",
				"file", filename, "section", sectionName, "error", err)
			result.Failed++
			continue
		}

		result.Imported++
	}

	return result, nil
}

// memoryExists reports whether a section of this file was already
// imported. A failed lookup falls through to the insert path.
func (u *UseCase) memoryExists(ctx context.Context, filename, sectionName string) bool {
	records, err := u.store.Search(ctx, repository.Query{
		Collection: repository.CollectionMemory,
		Where: []repository.Condition{
			{Field: "session_file", Value: filename},
			{Field: "section", Value: sectionName},
		},
		Fields: []string{"session_file"},
		Limit:  1,
	})
	if err != nil {
		return false
	}
	return len(records) > 0
}

// SessionDateForTest is a test helper that exposes sessionDate
func SessionDateForTest(filename string, now time.Time) string {
	return sessionDate(filename, now)
}
