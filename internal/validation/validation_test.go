package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/todone/internal/models"
)

func issuesOf(t *testing.T, err error) []Issue {
	t.Helper()

	var verr *Error
	require.True(t, errors.As(err, &verr), "expected *validation.Error, got %v", err)
	return verr.Issues
}

func TestValidateCreate_Defaults(t *testing.T) {
	v := MustNew()

	fields, err := v.ValidateCreate(Payload(`{"title":"Buy milk"}`))
	require.NoError(t, err)

	assert.Equal(t, "Buy milk", fields.Title)
	assert.Nil(t, fields.Description)
	assert.False(t, fields.Completed)
	assert.Equal(t, models.PriorityMedium, fields.Priority)
}

func TestValidateCreate_AllFields(t *testing.T) {
	v := MustNew()

	fields, err := v.ValidateCreate(Payload(`{
		"title": "Write report",
		"description": "quarterly numbers",
		"completed": true,
		"priority": "high",
		"id": "should-be-ignored",
		"owner": "nobody"
	}`))
	require.NoError(t, err)

	assert.Equal(t, "Write report", fields.Title)
	require.NotNil(t, fields.Description)
	assert.Equal(t, "quarterly numbers", *fields.Description)
	assert.True(t, fields.Completed)
	assert.Equal(t, models.PriorityHigh, fields.Priority)
}

func TestValidateCreate_Title(t *testing.T) {
	v := MustNew()

	tests := []struct {
		name    string
		payload string
		message string
	}{
		{"missing", `{}`, "title is required"},
		{"empty", `{"title":""}`, "title is required"},
		{"too long", `{"title":"` + strings.Repeat("a", 256) + `"}`, "title must be at most 255 characters"},
		{"wrong type", `{"title":42}`, "title must be a string"},
		{"null", `{"title":null}`, "title must be a string"},
		{"nul character", `{"title":"a\u0000b"}`, "title must not contain NUL characters"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.ValidateCreate(Payload(tc.payload))
			issues := issuesOf(t, err)
			require.Len(t, issues, 1)
			assert.Equal(t, "title", issues[0].Path)
			assert.Equal(t, tc.message, issues[0].Message)
		})
	}
}

func TestValidateCreate_TitleLengthCountsCharacters(t *testing.T) {
	v := MustNew()

	title := strings.Repeat("é", models.MaxTitleLength)
	fields, err := v.ValidateCreate(Payload(`{"title":"` + title + `"}`))
	require.NoError(t, err)
	assert.Equal(t, title, fields.Title)
}

func TestValidateCreate_CollectsEveryIssue(t *testing.T) {
	v := MustNew()

	_, err := v.ValidateCreate(Payload(`{"title":"","completed":"yes","priority":"urgent"}`))
	issues := issuesOf(t, err)

	paths := make([]string, 0, len(issues))
	for _, issue := range issues {
		paths = append(paths, issue.Path)
	}
	assert.Equal(t, []string{"completed", "priority", "title"}, paths)
}

func TestValidate_BodyShape(t *testing.T) {
	v := MustNew()

	tests := []struct {
		name    string
		payload string
		message string
	}{
		{"malformed", `{"title":`, "body must be valid JSON"},
		{"array", `["title"]`, "body must be a JSON object"},
		{"string", `"title"`, "body must be a JSON object"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.ValidateUpdate(Payload(tc.payload))
			issues := issuesOf(t, err)
			require.Len(t, issues, 1)
			assert.Equal(t, "", issues[0].Path)
			assert.Equal(t, tc.message, issues[0].Message)
		})
	}
}

func TestValidateUpdate_Partial(t *testing.T) {
	v := MustNew()

	patch, err := v.ValidateUpdate(Payload(`{"completed":true}`))
	require.NoError(t, err)

	assert.Nil(t, patch.Title)
	assert.Nil(t, patch.Description)
	assert.Nil(t, patch.Priority)
	require.NotNil(t, patch.Completed)
	assert.True(t, *patch.Completed)
}

func TestValidateUpdate_EmptyBody(t *testing.T) {
	v := MustNew()

	for _, payload := range []string{"", "   ", "{}"} {
		patch, err := v.ValidateUpdate(Payload(payload))
		require.NoError(t, err)
		assert.True(t, patch.Empty())
	}
}

func TestValidateUpdate_InvalidFields(t *testing.T) {
	v := MustNew()

	_, err := v.ValidateUpdate(Payload(`{"priority":"urgent"}`))
	issues := issuesOf(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, Issue{Path: "priority", Message: "priority must be one of low, medium, high"}, issues[0])

	_, err = v.ValidateUpdate(Payload(`{"description":null}`))
	issues = issuesOf(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, Issue{Path: "description", Message: "description must be a string"}, issues[0])
}

func TestValidate_RejectsNULCharacters(t *testing.T) {
	v := MustNew()

	_, err := v.ValidateCreate(Payload(`{"title":"Buy milk","description":"2\u0000l"}`))
	issues := issuesOf(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, Issue{Path: "description", Message: "description must not contain NUL characters"}, issues[0])

	_, err = v.ValidateUpdate(Payload(`{"title":"\u0000"}`))
	issues = issuesOf(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, Issue{Path: "title", Message: "title must not contain NUL characters"}, issues[0])

	// Other control characters are fine.
	fields, err := v.ValidateCreate(Payload(`{"title":"tab\there"}`))
	require.NoError(t, err)
	assert.Equal(t, "tab\there", fields.Title)
}

func TestError_Message(t *testing.T) {
	err := &Error{
		Mode: ModeCreate,
		Issues: []Issue{
			{Path: "title", Message: "title is required"},
			{Path: "", Message: "body must be a JSON object"},
		},
	}
	assert.Equal(t, "invalid create payload: title: title is required; body must be a JSON object", err.Error())
}
