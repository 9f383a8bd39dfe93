package crisis

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultKeywords returns the curated crisis phrase list. Urgent self-harm
// phrases and milder distress phrases share one bucket: match count, not
// phrase severity, drives the confidence grade.
func DefaultKeywords() []string {
	return []string{
		// Urgent self-harm / suicide phrasings.
		"kill myself",
		"want to die",
		"end my life",
		"end it all",
		"hurt myself",
		"harm myself",
		"suicide",
		"suicidal",
		"better off dead",
		"no reason to live",
		"don't want to live",
		"disappear forever",
		// Milder but still concerning distress phrasings.
		"can't go on",
		"can't take it anymore",
		"give up on everything",
		"everything is hopeless",
		"nobody would miss me",
		"i'm worthless",
		"hate myself",
		"죽고 싶",
		"자해",
		"힘들어요",
	}
}

type keywordFile struct {
	Keywords []string `yaml:"keywords"`
}

// LoadKeywordsFile reads a YAML keyword override of the form:
//
//	keywords:
//	  - phrase one
//	  - phrase two
func LoadKeywordsFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keywords file: %w", err)
	}

	var file keywordFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse keywords file: %w", err)
	}
	if len(file.Keywords) == 0 {
		return nil, fmt.Errorf("keywords file %s defines no keywords", path)
	}
	return file.Keywords, nil
}
