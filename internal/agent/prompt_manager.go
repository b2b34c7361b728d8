package agent

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultSalesPrompt is used when no prompts directory is configured.
const DefaultSalesPrompt = `You are a sales representative for the company whose product catalog you can search.
Keep your answers short and conversational, and move the conversation through these stages:
1. Introduction: introduce yourself and the company, and be polite.
2. Qualification: confirm you are talking to someone who can make a purchase decision.
3. Value proposition: explain how the products benefit the prospect.
4. Needs analysis: ask open questions to uncover the prospect's needs.
5. Solution presentation: present the products that fit those needs.
6. Objection handling: address concerns with facts from the catalog.
7. Close: propose a next step such as a demo, a trial or a purchase.

Use the ProductSearch tool for any question about products, prices, sizes or availability.
Never invent product details that the tool did not return.`

type PromptManager struct {
	Directory string
}

func NewPromptManager(dir string) *PromptManager {
	return &PromptManager{Directory: dir}
}

// promptOrder fixes the position of the well-known prompt files. Any other
// markdown file follows in name order.
var promptOrder = map[string]int{
	"identity.md":            1,
	"company.md":             2,
	"conversation_stages.md": 3,
}

// GetSalesPrompt joins the markdown files of the prompts directory into the
// agent's system prompt.
func (pm *PromptManager) GetSalesPrompt() (string, error) {
	if pm == nil || pm.Directory == "" {
		return DefaultSalesPrompt, nil
	}

	files, err := os.ReadDir(pm.Directory)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("dir", pm.Directory).Msg("prompts directory missing, using built-in prompt")
		return DefaultSalesPrompt, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read prompts directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool {
		oi, okI := promptOrder[files[i].Name()]
		oj, okJ := promptOrder[files[j].Name()]
		if okI && okJ {
			return oi < oj
		}
		if okI {
			return true
		}
		if okJ {
			return false
		}
		return files[i].Name() < files[j].Name()
	})

	var contents []string
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".md") {
			continue
		}
		path := filepath.Join(pm.Directory, f.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("file", path).Msg("failed to read prompt file")
			continue
		}
		if s := strings.TrimSpace(string(data)); s != "" {
			contents = append(contents, s)
		}
	}

	if len(contents) == 0 {
		return "", fmt.Errorf("no prompt files found in %s", pm.Directory)
	}

	return strings.Join(contents, "\n\n---\n\n"), nil
}
