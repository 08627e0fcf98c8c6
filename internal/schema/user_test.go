package schema

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "user-crud-service/internal/domain/user"
	"user-crud-service/internal/usecase/user"
	apperrors "user-crud-service/pkg/errors"
)

// requireViolations asserts err is a validation error with exactly the given details, in order.
func requireViolations(t *testing.T, err error, want ...apperrors.FieldError) {
	t.Helper()
	require.Error(t, err)

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	assert.Equal(t, want, appErr.Details)
}

func TestCreateUser(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    user.CreateUserInput
		wantErr []apperrors.FieldError
	}{
		{
			name: "valid",
			body: `{"name":"John Doe","email":"john@example.com"}`,
			want: user.CreateUserInput{Name: "John Doe", Email: "john@example.com"},
		},
		{
			name: "name is trimmed",
			body: `{"name":"  Al  ","email":"al@example.com"}`,
			want: user.CreateUserInput{Name: "Al", Email: "al@example.com"},
		},
		{
			name: "unknown fields ignored",
			body: `{"name":"Al","email":"al@example.com","role":"admin"}`,
			want: user.CreateUserInput{Name: "Al", Email: "al@example.com"},
		},
		{
			name:    "missing email",
			body:    `{"name":"Al"}`,
			wantErr: []apperrors.FieldError{{Field: "email", Message: "Invalid email format"}},
		},
		{
			name: "empty body reports both fields in order",
			body: ``,
			wantErr: []apperrors.FieldError{
				{Field: "name", Message: "Name is required"},
				{Field: "email", Message: "Invalid email format"},
			},
		},
		{
			name:    "name too short after trimming",
			body:    `{"name":" A ","email":"a@example.com"}`,
			wantErr: []apperrors.FieldError{{Field: "name", Message: "Name must be at least 2 characters"}},
		},
		{
			name:    "name too long",
			body:    `{"name":"` + strings.Repeat("x", 101) + `","email":"a@example.com"}`,
			wantErr: []apperrors.FieldError{{Field: "name", Message: "Name must not exceed 100 characters"}},
		},
		{
			name: "bad name and bad email",
			body: `{"name":"A","email":"not-an-email"}`,
			wantErr: []apperrors.FieldError{
				{Field: "name", Message: "Name must be at least 2 characters"},
				{Field: "email", Message: "Invalid email format"},
			},
		},
		{
			name:    "malformed json",
			body:    `{"name":`,
			wantErr: []apperrors.FieldError{{Field: "body", Message: "Request body must be valid JSON"}},
		},
		{
			name:    "array body",
			body:    `[1,2]`,
			wantErr: []apperrors.FieldError{{Field: "body", Message: "Request body must be a JSON object"}},
		},
		{
			name:    "string body",
			body:    `"hello"`,
			wantErr: []apperrors.FieldError{{Field: "body", Message: "Request body must be a JSON object"}},
		},
		{
			name:    "name of wrong type",
			body:    `{"name":42,"email":"a@example.com"}`,
			wantErr: []apperrors.FieldError{{Field: "name", Message: "Name must be a string"}},
		},
		{
			name: "wrong type does not hide other violations",
			body: `{"name":123}`,
			wantErr: []apperrors.FieldError{
				{Field: "name", Message: "Name must be a string"},
				{Field: "email", Message: "Invalid email format"},
			},
		},
		{
			name: "both fields of wrong type",
			body: `{"email":true,"name":[]}`,
			wantErr: []apperrors.FieldError{
				{Field: "name", Message: "Name must be a string"},
				{Field: "email", Message: "Invalid email format"},
			},
		},
		{
			name: "keys are case sensitive",
			body: `{"NAME":"Al","EMAIL":"al@example.com"}`,
			wantErr: []apperrors.FieldError{
				{Field: "name", Message: "Name is required"},
				{Field: "email", Message: "Invalid email format"},
			},
		},
		{
			name:    "email longer than the column",
			body:    `{"name":"Al","email":"` + strings.Repeat("a", 244) + `@example.com"}`,
			wantErr: []apperrors.FieldError{{Field: "email", Message: "Email must not exceed 255 characters"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CreateUser([]byte(tt.body))
			if tt.wantErr != nil {
				requireViolations(t, err, tt.wantErr...)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreateUser_NameLengthCountsCharacters(t *testing.T) {
	got, err := CreateUser([]byte(`{"name":"` + strings.Repeat("é", 100) + `","email":"e@example.com"}`))
	require.NoError(t, err)
	assert.Len(t, []rune(got.Name), 100)
}

func TestUpdateUser(t *testing.T) {
	name := "Johnny"
	email := "johnny@example.com"

	tests := []struct {
		name    string
		body    string
		want    domain.Update
		wantErr []apperrors.FieldError
	}{
		{name: "name only", body: `{"name":" Johnny "}`, want: domain.Update{Name: &name}},
		{name: "email only", body: `{"email":"johnny@example.com"}`, want: domain.Update{Email: &email}},
		{name: "both", body: `{"name":"Johnny","email":"johnny@example.com"}`, want: domain.Update{Name: &name, Email: &email}},
		{
			name:    "empty object",
			body:    `{}`,
			wantErr: []apperrors.FieldError{{Field: "", Message: "At least one field (name or email) must be provided"}},
		},
		{
			name:    "nulls count as absent",
			body:    `{"name":null,"email":null}`,
			wantErr: []apperrors.FieldError{{Field: "", Message: "At least one field (name or email) must be provided"}},
		},
		{
			name:    "field rules run before the cross field rule",
			body:    `{"email":"nope"}`,
			wantErr: []apperrors.FieldError{{Field: "email", Message: "Invalid email format"}},
		},
		{
			name:    "short name",
			body:    `{"name":"J"}`,
			wantErr: []apperrors.FieldError{{Field: "name", Message: "Name must be at least 2 characters"}},
		},
		{
			name:    "email of wrong type",
			body:    `{"name":"Johnny","email":7}`,
			wantErr: []apperrors.FieldError{{Field: "email", Message: "Invalid email format"}},
		},
		{
			name:    "email longer than the column",
			body:    `{"email":"` + strings.Repeat("a", 250) + `@example.com"}`,
			wantErr: []apperrors.FieldError{{Field: "email", Message: "Email must not exceed 255 characters"}},
		},
		{
			name:    "non canonical keys are ignored",
			body:    `{"Name":"Johnny"}`,
			wantErr: []apperrors.FieldError{{Field: "", Message: "At least one field (name or email) must be provided"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UpdateUser([]byte(tt.body))
			if tt.wantErr != nil {
				requireViolations(t, err, tt.wantErr...)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{raw: "1", want: 1},
		{raw: "0", want: 0},
		{raw: "007", want: 7},
		{raw: "9223372036854775807", want: 9223372036854775807},
		{raw: "9223372036854775808", wantErr: true},
		{raw: "-1", wantErr: true},
		{raw: "1.5", wantErr: true},
		{raw: "abc", wantErr: true},
		{raw: "", wantErr: true},
		{raw: " 1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := UserID(tt.raw)
			if tt.wantErr {
				requireViolations(t, err, apperrors.FieldError{Field: "id", Message: "ID must be a positive integer"})
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListUsers_Defaults(t *testing.T) {
	f, err := ListUsers(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultListFilter(), f)
}

func TestListUsers_AllParameters(t *testing.T) {
	q := url.Values{
		"limit":     {"1"},
		"offset":    {"5"},
		"sortBy":    {"name"},
		"sortOrder": {"desc"},
		"email":     {"a@example.com"},
		"name":      {"Al"},
		"search":    {"doe"},
	}

	f, err := ListUsers(q)
	require.NoError(t, err)
	assert.Equal(t, domain.ListFilter{
		Email:     "a@example.com",
		Name:      "Al",
		Search:    "doe",
		SortBy:    domain.SortByName,
		SortOrder: domain.SortDesc,
		Limit:     1,
		Offset:    5,
	}, f)
}

func TestListUsers_EmptyFiltersAreAbsent(t *testing.T) {
	f, err := ListUsers(url.Values{"email": {""}, "name": {""}, "search": {""}})
	require.NoError(t, err)
	assert.Empty(t, f.Email)
	assert.Empty(t, f.Name)
	assert.Empty(t, f.Search)
}

func TestListUsers_Violations(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
		want  []apperrors.FieldError
	}{
		{name: "limit zero", query: url.Values{"limit": {"0"}}, want: []apperrors.FieldError{{Field: "limit", Message: "Limit must be between 1 and 100"}}},
		{name: "limit too large", query: url.Values{"limit": {"101"}}, want: []apperrors.FieldError{{Field: "limit", Message: "Limit must be between 1 and 100"}}},
		{name: "limit not digits", query: url.Values{"limit": {"ten"}}, want: []apperrors.FieldError{{Field: "limit", Message: "Limit must be a positive integer"}}},
		{name: "limit empty", query: url.Values{"limit": {""}}, want: []apperrors.FieldError{{Field: "limit", Message: "Limit must be a positive integer"}}},
		{name: "negative offset", query: url.Values{"offset": {"-1"}}, want: []apperrors.FieldError{{Field: "offset", Message: "Offset must be a non-negative integer"}}},
		{name: "unknown sort field", query: url.Values{"sortBy": {"password"}}, want: []apperrors.FieldError{{Field: "sortBy", Message: "Sort by must be one of: id, name, email"}}},
		{name: "unknown sort order", query: url.Values{"sortOrder": {"up"}}, want: []apperrors.FieldError{{Field: "sortOrder", Message: "Sort order must be one of: asc, desc"}}},
		{
			name:  "several violations in field order",
			query: url.Values{"sortOrder": {"up"}, "limit": {"0"}, "offset": {"x"}},
			want: []apperrors.FieldError{
				{Field: "limit", Message: "Limit must be between 1 and 100"},
				{Field: "offset", Message: "Offset must be a non-negative integer"},
				{Field: "sortOrder", Message: "Sort order must be one of: asc, desc"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ListUsers(tt.query)
			requireViolations(t, err, tt.want...)
		})
	}
}
