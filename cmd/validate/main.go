package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/cell-commander/pkg/story"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <story.yaml | -embedded>\n", os.Args[0])
		os.Exit(1)
	}

	validator := &ContentValidator{}
	var err error
	if os.Args[1] == "-embedded" {
		err = validator.validateCatalog(story.MustDefault(), "embedded content")
	} else {
		err = validator.validateFile(os.Args[1])
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Story content is valid!")
}

// ContentValidator checks a story content file beyond what loading enforces.
type ContentValidator struct {
	errors []string
}

// lineIDPattern: upper-case segments joined by underscores, e.g. 4_FAIL_P.
var lineIDPattern = regexp.MustCompile(`^[A-Z0-9]+(_[A-Z0-9]+)*$`)

func (v *ContentValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	ext := filepath.Ext(filename)
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("story file must have .yaml or .yml extension: %s", filepath.Base(filename))
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	cat, err := story.LoadCatalog(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("file %s failed strict YAML loading: %w", filename, err)
	}
	return v.validateCatalog(cat, filename)
}

func (v *ContentValidator) validateCatalog(cat *story.Catalog, name string) error {
	v.errors = append([]string(nil), cat.Validate()...)

	for _, scene := range story.AllScenes {
		for _, line := range cat.Script(scene).Lines() {
			v.validateIDFormat(scene, line.ID)
			if strings.TrimSpace(line.Text) == "" {
				v.errors = append(v.errors, fmt.Sprintf("%s/%s: empty text", scene, line.ID))
			}
		}
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", name, strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *ContentValidator) validateIDFormat(scene story.Scene, id string) {
	if id == "" {
		return // reported by Validate
	}
	if !lineIDPattern.MatchString(id) {
		v.errors = append(v.errors, fmt.Sprintf("%s: line id %q must be upper-case segments joined by underscores", scene, id))
	}
}
