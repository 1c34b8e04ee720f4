package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// loadPromptsFromFiles loads persona instructions from external files
// when an agent override names a promptFile.
func (c *Config) loadPromptsFromFiles() error {
	log.Println("[CONFIG] Starting custom prompt loading from files")

	loaded := make(map[string]string)
	for _, id := range c.agentIDs() {
		agent := c.AI.Agents[id]
		if agent.PromptFile == "" {
			continue
		}
		content, err := loadPromptFromFile(agent.PromptFile, id)
		if err != nil {
			return err
		}
		loaded[id] = content
	}
	c.LoadedPrompts = loaded

	if len(loaded) == 0 {
		log.Println("[CONFIG] No custom prompts loaded - using built-in personas")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded: %d", len(loaded))
	}
	return nil
}

// loadPromptFromFile reads one prompt file and rejects empty content
func loadPromptFromFile(filePath, agentID string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s prompt file '%s': %w", agentID, filePath, err)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s prompt file not found: %s", agentID, absPath)
		}
		return "", fmt.Errorf("failed to read %s prompt file '%s': %w", agentID, absPath, err)
	}

	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return "", fmt.Errorf("%s prompt file '%s' is empty", agentID, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s prompt from file: %s (%d characters)",
		agentID, absPath, len(trimmed))

	return trimmed, nil
}

// validatePromptFiles checks that every referenced prompt file exists
// before any is loaded, so all problems are reported at once.
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	for _, id := range c.agentIDs() {
		filePath := c.AI.Agents[id].PromptFile
		if filePath == "" {
			continue
		}
		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s prompt: %s", id, filePath))
			continue
		}
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s prompt file not found: %s", id, absPath))
		}
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}
	return nil
}

func (c *Config) agentIDs() []string {
	ids := make([]string, 0, len(c.AI.Agents))
	for id := range c.AI.Agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
