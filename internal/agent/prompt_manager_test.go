package agent

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPromptManager_GetSalesPrompt(t *testing.T) {
	tempDir := t.TempDir()

	files := map[string]string{
		"identity.md":            "Identity Content",
		"company.md":             "Company Content",
		"conversation_stages.md": "Stages Content",
		"zz_objections.md":       "Objections Content",
		"faq.md":                 "FAQ Content",
		"notes.txt":              "Not a prompt",
	}

	for name, content := range files {
		err := os.WriteFile(filepath.Join(tempDir, name), []byte(content), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}

	pm := NewPromptManager(tempDir)
	prompt, err := pm.GetSalesPrompt()
	if err != nil {
		t.Fatal(err)
	}

	order := []string{
		"Identity Content",
		"Company Content",
		"Stages Content",
		"FAQ Content",
		"Objections Content",
	}

	for _, part := range order {
		if !strings.Contains(prompt, part) {
			t.Errorf("Prompt missing expected part: %s", part)
		}
	}
	if strings.Contains(prompt, "Not a prompt") {
		t.Error("non-markdown files must be skipped")
	}

	for i := 1; i < len(order); i++ {
		if strings.Index(prompt, order[i-1]) >= strings.Index(prompt, order[i]) {
			t.Errorf("%q should be before %q", order[i-1], order[i])
		}
	}
}

func TestPromptManager_MissingDirectory(t *testing.T) {
	pm := NewPromptManager(filepath.Join(t.TempDir(), "missing"))
	prompt, err := pm.GetSalesPrompt()
	if err != nil {
		t.Fatal(err)
	}
	if prompt != DefaultSalesPrompt {
		t.Error("expected the built-in prompt")
	}
}

func TestPromptManager_EmptyDirectory(t *testing.T) {
	pm := NewPromptManager(t.TempDir())
	if _, err := pm.GetSalesPrompt(); err == nil {
		t.Error("expected an error for a directory without prompts")
	}
}
