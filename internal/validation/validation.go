// Package validation is the only way an untrusted request payload becomes
// task fields the rest of the application may trust.
package validation

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/adanyl0v/todone/internal/models"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaBaseURL = "https://todone.local/schemas/"

type Mode int

const (
	// ModeCreate requires a title and applies defaults to absent fields.
	ModeCreate Mode = iota
	// ModeUpdate validates only the fields present in the payload.
	ModeUpdate
)

func (m Mode) String() string {
	if m == ModeCreate {
		return "create"
	}
	return "update"
}

// Payload is a raw, unvalidated JSON request body.
type Payload []byte

type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

type Error struct {
	Mode   Mode
	Issues []Issue
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Path == "" {
			parts = append(parts, issue.Message)
			continue
		}
		parts = append(parts, issue.Path+": "+issue.Message)
	}
	return fmt.Sprintf("invalid %s payload: %s", e.Mode, strings.Join(parts, "; "))
}

type Validator struct {
	schemas map[Mode]*jsonschema.Schema
}

func New() (*Validator, error) {
	files := map[Mode]string{
		ModeCreate: "task_create.json",
		ModeUpdate: "task_update.json",
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	for _, name := range files {
		data, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", name, err)
		}
		err = compiler.AddResource(schemaBaseURL+name, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to add schema %s: %w", name, err)
		}
	}

	v := &Validator{schemas: make(map[Mode]*jsonschema.Schema, len(files))}
	for mode, name := range files {
		schema, err := compiler.Compile(schemaBaseURL + name)
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		v.schemas[mode] = schema
	}
	return v, nil
}

func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// ValidateCreate checks a creation payload and returns the normalized fields
// with defaults applied.
func (v *Validator) ValidateCreate(payload Payload) (models.TaskFields, error) {
	raw, err := v.validate(payload, ModeCreate)
	if err != nil {
		return models.TaskFields{}, err
	}

	fields := models.TaskFields{
		Title:       *raw.Title,
		Description: raw.Description,
		Priority:    models.PriorityMedium,
	}
	if raw.Completed != nil {
		fields.Completed = *raw.Completed
	}
	if raw.Priority != nil {
		fields.Priority = *raw.Priority
	}
	return fields, nil
}

// ValidateUpdate checks an update payload. Fields absent from the payload
// stay nil in the returned patch.
func (v *Validator) ValidateUpdate(payload Payload) (models.TaskPatch, error) {
	raw, err := v.validate(payload, ModeUpdate)
	if err != nil {
		return models.TaskPatch{}, err
	}

	return models.TaskPatch{
		Title:       raw.Title,
		Description: raw.Description,
		Completed:   raw.Completed,
		Priority:    raw.Priority,
	}, nil
}

// rawTask lists the only fields that survive validation; anything else in
// the payload is dropped on decode.
type rawTask struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Completed   *bool            `json:"completed"`
	Priority    *models.Priority `json:"priority"`
}

func (v *Validator) validate(payload Payload, mode Mode) (*rawTask, error) {
	body := bytes.TrimSpace(payload)
	if len(body) == 0 {
		body = []byte("{}")
	}

	var doc any
	err := json.Unmarshal(body, &doc)
	if err != nil {
		return nil, &Error{
			Mode:   mode,
			Issues: []Issue{{Path: "", Message: "body must be valid JSON"}},
		}
	}

	err = v.schemas[mode].Validate(doc)
	if err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return nil, fmt.Errorf("failed to validate %s payload: %w", mode, err)
		}
		return nil, &Error{Mode: mode, Issues: collectIssues(ve)}
	}

	var raw rawTask
	err = json.Unmarshal(body, &raw)
	if err != nil {
		// The schema accepted the document, so this is a programming error.
		return nil, fmt.Errorf("failed to decode %s payload: %w", mode, err)
	}
	return &raw, nil
}

var fieldTypes = map[string]string{
	"title":       "string",
	"description": "string",
	"completed":   "boolean",
	"priority":    "string",
}

func collectIssues(err *jsonschema.ValidationError) []Issue {
	var issues []Issue
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			issues = append(issues, toIssue(e))
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(err)

	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Path < issues[j].Path
	})
	return dedupe(issues)
}

func toIssue(e *jsonschema.ValidationError) Issue {
	path := strings.TrimPrefix(strings.TrimPrefix(e.InstanceLocation, "#"), "/")
	path = strings.ReplaceAll(path, "/", ".")
	keyword := e.KeywordLocation[strings.LastIndex(e.KeywordLocation, "/")+1:]

	switch keyword {
	case "required":
		// Only the title is ever required.
		return Issue{Path: "title", Message: "title is required"}
	case "minLength":
		return Issue{Path: path, Message: path + " is required"}
	case "maxLength":
		return Issue{Path: path, Message: fmt.Sprintf("%s must be at most %d characters", path, models.MaxTitleLength)}
	case "enum":
		return Issue{Path: path, Message: path + " must be one of low, medium, high"}
	case "pattern":
		return Issue{Path: path, Message: path + " must not contain NUL characters"}
	case "type":
		if path == "" {
			return Issue{Path: path, Message: "body must be a JSON object"}
		}
		if typ, ok := fieldTypes[path]; ok {
			return Issue{Path: path, Message: fmt.Sprintf("%s must be a %s", path, typ)}
		}
	}
	return Issue{Path: path, Message: e.Message}
}

func dedupe(issues []Issue) []Issue {
	seen := make(map[Issue]struct{}, len(issues))
	out := issues[:0]
	for _, issue := range issues {
		if _, ok := seen[issue]; ok {
			continue
		}
		seen[issue] = struct{}{}
		out = append(out, issue)
	}
	return out
}
