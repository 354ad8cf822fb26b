package prompt

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/bryanwahyu/docmind/internal/domain/ai"
)

// DefaultMasterPath is the master prompt for consolidated reports, relative to the working directory.
const DefaultMasterPath = "docs/AI_MAGIC_PROMPT.md"

// MasterPrompt reads the consolidated-report system prompt from disk on every
// call, so operators can edit the file without a restart.
type MasterPrompt struct {
	Path string
}

func NewMasterPrompt(path string) *MasterPrompt {
	if strings.TrimSpace(path) == "" {
		path = DefaultMasterPath
	}
	return &MasterPrompt{Path: path}
}

func (m *MasterPrompt) Load() (string, error) {
	data, err := os.ReadFile(m.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ai.ErrPromptAssetMissing, m.Path)
		}
		return "", fmt.Errorf("read master prompt: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
