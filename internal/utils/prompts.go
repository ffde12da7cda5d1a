// Package utils holds small shared helpers: the embedded prompt library and
// the markdown report writer.
package utils

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed prompts
var promptFiles embed.FS

// LoadPrompt returns the embedded prompt template at prompts/<path>.md.
func LoadPrompt(path string) (string, error) {
	content, err := promptFiles.ReadFile(fmt.Sprintf("prompts/%s.md", path))
	if err != nil {
		return "", fmt.Errorf("failed to load prompt %s: %w", path, err)
	}
	return string(content), nil
}

// LoadPromptWithContext loads a prompt and substitutes {{.Key}} placeholders
// with the given context values.
func LoadPromptWithContext(path string, context map[string]string) (string, error) {
	content, err := LoadPrompt(path)
	if err != nil {
		return "", err
	}

	for key, value := range context {
		placeholder := fmt.Sprintf("{{.%s}}", key)
		content = strings.ReplaceAll(content, placeholder, value)
	}

	return content, nil
}
