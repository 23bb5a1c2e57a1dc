// Package importer implements the CSV bulk-import pipeline: row validation,
// file ingest, and batched persistence. The package is pure apart from the
// store handle injected into the batch writer, so every stage is testable in
// isolation.
package importer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dvhalloran/cartload/internal/model"
)

const (
	maxNameLen        = 255
	maxDescriptionLen = 1000
	maxStatusLen      = 100
	maxCategoryLen    = 100
)

// ValidateRow checks one raw CSV row (column name -> value) against the
// product schema. It returns either the normalized product or a non-empty
// list of human-readable violations, in field order. A missing or empty
// status defaults to "0" (inactive) before validation, so such rows import
// rather than fail.
func ValidateRow(raw map[string]string) (model.Product, []string) {
	name := strings.TrimSpace(raw["name"])
	description := strings.TrimSpace(raw["description"])
	status := raw["status"]
	if status == "" {
		status = model.ProductInactive
	}
	status = strings.TrimSpace(status)
	category := strings.TrimSpace(raw["category"])

	var msgs []string
	if name == "" {
		msgs = append(msgs, "name is required")
	} else if utf8.RuneCountInString(name) > maxNameLen {
		msgs = append(msgs, fmt.Sprintf("name must be at most %d characters", maxNameLen))
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		msgs = append(msgs, fmt.Sprintf("description must be at most %d characters", maxDescriptionLen))
	}
	if status == "" {
		msgs = append(msgs, "status is required")
	} else if utf8.RuneCountInString(status) > maxStatusLen {
		msgs = append(msgs, fmt.Sprintf("status must be at most %d characters", maxStatusLen))
	}
	if category == "" {
		msgs = append(msgs, "category is required")
	} else if utf8.RuneCountInString(category) > maxCategoryLen {
		msgs = append(msgs, fmt.Sprintf("category must be at most %d characters", maxCategoryLen))
	}
	if len(msgs) > 0 {
		return model.Product{}, msgs
	}
	return model.Product{
		Name:        name,
		Description: description,
		Status:      status,
		Category:    category,
	}, nil
}
