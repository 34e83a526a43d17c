package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ReadReport reads a flushed report directory.
func ReadReport(reportDir string) (*Index, []ScenarioDetail, error) {
	data, err := os.ReadFile(filepath.Join(reportDir, "report.json"))
	if err != nil {
		return nil, nil, err
	}
	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, nil, fmt.Errorf("parse report.json: %w", err)
	}

	details := make([]ScenarioDetail, len(index.Scenarios))
	for i, entry := range index.Scenarios {
		data, err := os.ReadFile(filepath.Join(reportDir, filepath.FromSlash(entry.DataFile)))
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", entry.DataFile, err)
		}
		if err := json.Unmarshal(data, &details[i]); err != nil {
			return nil, nil, fmt.Errorf("parse %s: %w", entry.DataFile, err)
		}
	}
	return &index, details, nil
}

// atomicWriteJSON writes v as indented JSON through a temp file and rename,
// so readers never see a partial file.
func atomicWriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}
