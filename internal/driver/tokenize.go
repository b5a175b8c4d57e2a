package driver

import (
	"fmt"

	"strata/internal/diag"
	"strata/internal/layer"
	"strata/internal/project"
	"strata/internal/scan"
	"strata/internal/source"
)

// TokenizeResult is the debug token dump for one file.
type TokenizeResult struct {
	Ladder  *layer.Ladder
	FileSet *source.FileSet
	Set     layer.ParsedSet
	Bag     *diag.Bag
}

// TokenizeFile scans a single file as a member of the named layer,
// bypassing glob assignment. Debug surface for the tokenize command.
func TokenizeFile(dir, layerName, path string) (*TokenizeResult, error) {
	cfg, err := project.LoadFrom(dir)
	if err != nil {
		return nil, err
	}
	ladder, err := cfg.Ladder()
	if err != nil {
		return nil, err
	}
	idx, ok := ladder.LayerIndex(layerName)
	if !ok {
		return nil, fmt.Errorf("unknown layer %q", layerName)
	}

	fileSet := source.NewFileSetWithBase(cfg.Dir)
	fileID, err := fileSet.Load(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	bag := diag.NewBag(16)
	own := &ladder.Layers[idx]
	var prev *layer.Layer
	if idx > 0 {
		prev = &ladder.Layers[idx-1]
	}
	set := scan.Scan(fileSet.Get(fileID), own, prev, ladder, scan.Options{
		Reporter: scan.BagReporter{Bag: bag},
	})

	return &TokenizeResult{Ladder: ladder, FileSet: fileSet, Set: set, Bag: bag}, nil
}
