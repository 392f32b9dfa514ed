package handlers

import (
	"fmt"
	"html/template"
	"path/filepath"
)

// LoadTemplates parses base.tmpl and the ear training pages under
// templatesPath.
func LoadTemplates(templatesPath string) (*template.Template, error) {
	files := []string{filepath.Join(templatesPath, "base.tmpl")}

	matches, err := filepath.Glob(filepath.Join(templatesPath, "ear_training/*.tmpl"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob templates: %w", err)
	}
	files = append(files, matches...)

	funcMap := template.FuncMap{
		"percent": func(part, total int) int {
			if total == 0 {
				return 0
			}
			return part * 100 / total
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}
