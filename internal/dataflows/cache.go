package dataflows

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"tradingagents/pkg/errors"
)

// FileCache stores tool results as JSON under the run's data cache directory.
// Layout: <dir>/<TICKER>/<tool>_<date>.json
type FileCache struct {
	dir string
}

// NewFileCache creates a cache rooted at dir.
func NewFileCache(dir string) *FileCache {
	return &FileCache{dir: dir}
}

func (c *FileCache) path(tool string, args Args) string {
	return filepath.Join(c.dir, args.Ticker, fmt.Sprintf("%s_%s.json", tool, args.Date))
}

// Read returns the cached result, or ErrNotFound on a miss. The router maps
// a miss to ErrDataUnavailable so callers can distinguish "nothing cached"
// from an empty success.
func (c *FileCache) Read(tool string, args Args) (*ToolResult, error) {
	data, err := os.ReadFile(c.path(tool, args))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrNotFound, "no cached %s for %s on %s", tool, args.Ticker, args.Date)
		}
		return nil, errors.Wrapf(err, "read cache for %s", tool)
	}

	var result ToolResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.Wrapf(err, "decode cached %s for %s", tool, args.Ticker)
	}

	result.Source = SourceCache
	return &result, nil
}

// Write persists a result so later offline runs can replay it.
func (c *FileCache) Write(result *ToolResult) error {
	path := c.path(result.Tool, Args{Ticker: result.Ticker, Date: result.Date})
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create cache directory")
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode %s result", result.Tool)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write cache for %s", result.Tool)
	}
	return nil
}
