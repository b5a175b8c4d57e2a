package resolve

import (
	"fmt"
	"os"
	"sort"

	"strata/internal/source"
)

// FileChange summarises modifications performed on one file.
type FileChange struct {
	Path      string
	EditCount int
}

// Apply writes the computed edits to disk, file by file. Each file is
// freshly re-read and decoded; every edit's recorded range must still
// hold its OldText, otherwise the whole file is aborted unwritten and a
// fatal error returned. Within a file, edits are spliced in descending
// offset order so lower-offset ranges stay valid against the original
// text throughout.
func Apply(fs *source.FileSet, edits []Edit) ([]FileChange, error) {
	if len(edits) == 0 {
		return nil, ErrNoEdits
	}

	byFile := make(map[source.FileID][]Edit)
	order := make([]source.FileID, 0)
	for _, e := range edits {
		if _, ok := byFile[e.File]; !ok {
			order = append(order, e.File)
		}
		byFile[e.File] = append(byFile[e.File], e)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	changes := make([]FileChange, 0, len(order))
	for _, fileID := range order {
		file := fs.Get(fileID)
		if file.Flags&source.FileVirtual != 0 {
			return changes, fmt.Errorf("apply %s: target file is virtual", file.Path)
		}

		n, err := applyFile(file, byFile[fileID])
		if err != nil {
			return changes, err
		}
		changes = append(changes, FileChange{Path: file.Path, EditCount: n})
	}
	return changes, nil
}

func applyFile(file *source.File, edits []Edit) (int, error) {
	// #nosec G304 -- path came from the run's own file collection
	raw, err := os.ReadFile(file.Path)
	if err != nil {
		return 0, fmt.Errorf("apply %s: %w", file.Path, err)
	}
	content, enc, hadBOM, err := source.Decode(raw)
	if err != nil {
		return 0, fmt.Errorf("apply %s: %w", file.Path, err)
	}

	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].Span.Start > edits[j].Span.Start
	})

	// verify every range against the live content before touching any of
	// it: a single stale range aborts the whole file
	for _, e := range edits {
		start, end := int(e.Span.Start), int(e.Span.End)
		if start >= end || end > len(content) {
			return 0, fmt.Errorf("apply %s: edit range %d-%d out of bounds", file.Path, start, end)
		}
		if string(content[start:end]) != e.OldText {
			return 0, fmt.Errorf("apply %s: content at %d-%d changed since analysis", file.Path, start, end)
		}
	}

	working := append([]byte(nil), content...)
	for _, e := range edits {
		start, end := int(e.Span.Start), int(e.Span.End)
		suffix := append([]byte(nil), working[end:]...)
		working = append(append(working[:start], []byte(e.NewText)...), suffix...)
	}

	encoded, err := source.Encode(working, enc, hadBOM)
	if err != nil {
		return 0, fmt.Errorf("apply %s: %w", file.Path, err)
	}

	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(file.Path); statErr == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(file.Path, encoded, mode); err != nil {
		return 0, fmt.Errorf("apply %s: %w", file.Path, err)
	}
	return len(edits), nil
}
