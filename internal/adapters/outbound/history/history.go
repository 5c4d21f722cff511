package history

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/abdidvp/automigrate/internal/adapters/outbound/fsutil"
	"github.com/abdidvp/automigrate/internal/domain"
)

const historyFile = ".automigrate/history/runs.json"

// FileHistory implements domain.RunHistory using JSON file storage.
type FileHistory struct{}

func New() *FileHistory {
	return &FileHistory{}
}

func (h *FileHistory) Save(projectPath string, record domain.RunRecord) error {
	records, err := h.Load(projectPath)
	if err != nil {
		return err
	}

	records = append(records, record)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	return fsutil.WriteFileAtomic(filepath.Join(projectPath, historyFile), data, 0644)
}

func (h *FileHistory) Load(projectPath string) ([]domain.RunRecord, error) {
	fp := filepath.Join(projectPath, historyFile)

	data, ok, err := fsutil.ReadFileIfExists(fp)
	if err != nil || !ok {
		return nil, err
	}

	var records []domain.RunRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", historyFile, err)
	}

	return records, nil
}
