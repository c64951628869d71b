package core

import (
	"context"

	"github.com/JonMunkholm/doccompare/internal/spreadsheet"
)

// ExcelProperties lists the sheets of both workbooks with their index and
// whether they are empty. Both files are checked for existence before
// either is read.
func (s *Service) ExcelProperties(ctx context.Context, req PropertiesRequest) (*PropertiesResult, error) {
	p1, err := s.resolve("file1", req.File1Path)
	if err != nil {
		return nil, err
	}
	p2, err := s.resolve("file2", req.File2Path)
	if err != nil {
		return nil, err
	}

	props1, err := sheetInfo("file1", p1)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	props2, err := sheetInfo("file2", p2)
	if err != nil {
		return nil, err
	}

	return &PropertiesResult{File1: props1, File2: props2}, nil
}

func sheetInfo(input, path string) (map[string]SheetInfo, error) {
	props, err := spreadsheet.Properties(path)
	if err != nil {
		return nil, &InputError{Input: input, Path: path, Err: err}
	}
	out := make(map[string]SheetInfo, len(props))
	for _, p := range props {
		out[p.Name] = SheetInfo{Index: p.Index, Empty: p.Empty}
	}
	return out, nil
}
