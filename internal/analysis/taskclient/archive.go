package taskclient

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"polisave/internal/analysis"
)

const canonicalEntryName = "analysis.json"

// maxEntrySize bounds decompression of a single archive entry (64 MB).
const maxEntrySize = 64 << 20

// decodeArchive unpacks the result zip and parses its JSON payload entry.
// The canonical entry is analysis.json; if absent, the first entry whose
// content parses as a JSON object is used.
func decodeArchive(data []byte) (*analysis.Result, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		ae := analysis.NewError(analysis.CodeArchiveError, "result archive is not a valid zip")
		ae.Err = err
		return nil, ae
	}

	// Canonical entry first, then anything named *.json, then anything at all.
	var candidates []*zip.File
	for _, f := range zr.File {
		if f.Name == canonicalEntryName || strings.HasSuffix(f.Name, "/"+canonicalEntryName) {
			candidates = append([]*zip.File{f}, candidates...)
		} else if strings.HasSuffix(strings.ToLower(f.Name), ".json") {
			candidates = append(candidates, f)
		}
	}
	for _, f := range zr.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".json") {
			candidates = append(candidates, f)
		}
	}

	for _, f := range candidates {
		payload, err := readEntry(f)
		if err != nil {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal(payload, &m); err != nil {
			continue
		}
		return normalizeResult(m)
	}

	return nil, analysis.NewError(analysis.CodeArchiveError,
		fmt.Sprintf("no parseable JSON entry in result archive (%d entries)", len(zr.File)))
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(io.LimitReader(rc, maxEntrySize))
}
