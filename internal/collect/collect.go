// Package collect assigns files to layers from the manifest's glob
// patterns and loads them into a FileSet. Reads are parallel; insertion
// order is deterministic (layer order, then sorted path order).
package collect

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"strata/internal/source"
)

// Assignment is the resolved file list for one layer.
type Assignment struct {
	Layer int
	Paths []string // absolute, sorted
}

// Files walks baseDir once and matches every regular file against each
// layer's glob list. Assigning one file to two layers is a configuration
// error.
func Files(baseDir string, globsPerLayer [][]string) ([]Assignment, error) {
	owner := make(map[string]int) // rel path -> layer
	perLayer := make([][]string, len(globsPerLayer))

	err := filepath.WalkDir(baseDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(baseDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		for layerIdx, globs := range globsPerLayer {
			if !matchAny(globs, rel) {
				continue
			}
			if prev, taken := owner[rel]; taken {
				return fmt.Errorf("file %q matches both layer %d and layer %d", rel, prev, layerIdx)
			}
			owner[rel] = layerIdx
			perLayer[layerIdx] = append(perLayer[layerIdx], p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]Assignment, len(perLayer))
	for i, paths := range perLayer {
		sort.Strings(paths)
		out[i] = Assignment{Layer: i, Paths: paths}
	}
	return out, nil
}

// loadedFile carries one decoded file until ordered insertion.
type loadedFile struct {
	content []byte
	enc     source.Encoding
	hadBOM  bool
}

// Load reads every assigned file (in parallel, bounded by GOMAXPROCS)
// and adds them to the FileSet in deterministic order. Returns per-layer
// FileID lists. Any unreadable file fails the whole run.
func Load(fileSet *source.FileSet, assignments []Assignment) ([][]source.FileID, error) {
	type slot struct {
		layer int
		idx   int
		path  string
	}

	slots := make([]slot, 0)
	for _, a := range assignments {
		for i, p := range a.Paths {
			slots = append(slots, slot{layer: a.Layer, idx: i, path: p})
		}
	}

	loaded := make([]loadedFile, len(slots))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range slots {
		g.Go(func() error {
			raw, err := os.ReadFile(slots[i].path)
			if err != nil {
				return fmt.Errorf("read %s: %w", slots[i].path, err)
			}
			content, enc, hadBOM, err := source.Decode(raw)
			if err != nil {
				return fmt.Errorf("decode %s: %w", slots[i].path, err)
			}
			loaded[i] = loadedFile{content: content, enc: enc, hadBOM: hadBOM}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := make([][]source.FileID, len(assignments))
	for i, s := range slots {
		flags := source.FileFlags(0)
		if loaded[i].hadBOM {
			flags |= source.FileHadBOM
		}
		id := fileSet.Add(s.path, loaded[i].content, flags, loaded[i].enc)
		ids[s.layer] = append(ids[s.layer], id)
	}
	return ids, nil
}

// matchAny reports whether rel matches one of the glob patterns.
func matchAny(globs []string, rel string) bool {
	for _, g := range globs {
		if matchGlob(g, rel) {
			return true
		}
	}
	return false
}

// matchGlob matches slash-separated glob patterns where "**" spans any
// number of path segments and other segments follow path.Match rules.
func matchGlob(pattern, rel string) bool {
	return matchSegments(strings.Split(pattern, "/"), strings.Split(rel, "/"))
}

func matchSegments(pat, segs []string) bool {
	if len(pat) == 0 {
		return len(segs) == 0
	}
	if pat[0] == "**" {
		for skip := 0; skip <= len(segs); skip++ {
			if matchSegments(pat[1:], segs[skip:]) {
				return true
			}
		}
		return false
	}
	if len(segs) == 0 {
		return false
	}
	ok, err := path.Match(pat[0], segs[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(pat[1:], segs[1:])
}
