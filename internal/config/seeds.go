package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// InterviewSeed is one interview configuration in a seed file.
type InterviewSeed struct {
	JobTitle        string   `yaml:"job_title"`
	JobDescription  string   `yaml:"job_description"`
	CustomQuestions []string `yaml:"custom_questions"`
	Status          string   `yaml:"status"`
}

// InterviewSeedsYAML represents the structure of an interview seed file.
type InterviewSeedsYAML struct {
	Interviews []InterviewSeed `yaml:"interviews"`
}

// LoadInterviewSeeds reads interview configurations from a YAML file.
func LoadInterviewSeeds(filePath string) ([]InterviewSeed, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("seed file not found: %s", absPath)
	}

	// #nosec G304 -- operator-supplied seed file
	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var doc InterviewSeedsYAML
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(doc.Interviews) == 0 {
		return nil, fmt.Errorf("no interviews found in seed file: %s", filePath)
	}

	for i, s := range doc.Interviews {
		if strings.TrimSpace(s.JobTitle) == "" {
			return nil, fmt.Errorf("interview %d: job_title is required", i)
		}
		if strings.TrimSpace(s.JobDescription) == "" {
			return nil, fmt.Errorf("interview %d: job_description is required", i)
		}
		doc.Interviews[i].JobTitle = strings.TrimSpace(s.JobTitle)
		doc.Interviews[i].JobDescription = strings.TrimSpace(s.JobDescription)
	}
	return doc.Interviews, nil
}
