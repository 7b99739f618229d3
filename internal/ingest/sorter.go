package ingest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SortRule routes a downloaded export to its canonical name in the data
// directory. Exact matches on Match are tried first, then substring
// matches against each filename.
type SortRule struct {
	Match     string
	Target    string
	Substring bool
}

// DefaultSortRules covers the supported bank export downloads.
func DefaultSortRules() []SortRule {
	return []SortRule{
		{Match: "activity.csv", Target: "amex.csv"},
		{Match: "Chase6708_Activity", Target: "chase-checking.csv", Substring: true},
		{Match: "Chase6031_Activity", Target: "chase-savings.csv", Substring: true},
	}
}

// Sorter moves bank export downloads into the data directory.
type Sorter struct {
	sourceDir string
	dataDir   string
	rules     []SortRule
}

// NewSorter creates a sorter for the given directories.
func NewSorter(sourceDir, dataDir string, rules []SortRule) *Sorter {
	return &Sorter{sourceDir: sourceDir, dataDir: dataDir, rules: rules}
}

// Sort moves every matching file, overwriting any existing target. It
// returns the moved files as source to destination pairs.
func (s *Sorter) Sort() (map[string]string, error) {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	entries, err := os.ReadDir(s.sourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	moved := make(map[string]string)
	for _, name := range names {
		rule, ok := s.match(name)
		if !ok {
			continue
		}

		src := filepath.Join(s.sourceDir, name)
		dst := filepath.Join(s.dataDir, rule.Target)
		if err := moveFile(src, dst); err != nil {
			return moved, fmt.Errorf("failed to move %s: %w", name, err)
		}

		slog.Info("sorted bank export", "source", name, "target", rule.Target)
		moved[name] = dst
	}

	return moved, nil
}

func (s *Sorter) match(name string) (SortRule, bool) {
	for _, rule := range s.rules {
		if rule.Substring {
			if strings.Contains(name, rule.Match) {
				return rule, true
			}
		} else if name == rule.Match {
			return rule, true
		}
	}
	return SortRule{}, false
}

// moveFile replaces any existing target. Rename fails across filesystems,
// so fall back to copy and remove.
func moveFile(src, dst string) error {
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return err
	}
	return os.Remove(src)
}
