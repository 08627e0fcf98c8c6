package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	domain "user-crud-service/internal/domain/user"
	"user-crud-service/internal/usecase/user"
	apperrors "user-crud-service/pkg/errors"
)

const (
	bodyField          = "body"
	msgBodyNotJSON     = "Request body must be valid JSON"
	msgBodyNotObject   = "Request body must be a JSON object"
	msgAtLeastOneField = "At least one field (name or email) must be provided"
)

type createUserBody struct {
	Name  *string `json:"name" validate:"required,min=2,max=100"`
	Email *string `json:"email" validate:"required,max=255,email"`
}

type updateUserBody struct {
	Name  *string `json:"name" validate:"omitnil,min=2,max=100"`
	Email *string `json:"email" validate:"omitnil,max=255,email"`
}

type idParam struct {
	ID string `json:"id" validate:"digits,intrange=0:"`
}

type listUsersQuery struct {
	Limit     *string `form:"limit" validate:"omitnil,digits,intrange=1:100"`
	Offset    *string `form:"offset" validate:"omitnil,digits,intrange=0:"`
	SortBy    *string `form:"sortBy" validate:"omitnil,oneof=id name email"`
	SortOrder *string `form:"sortOrder" validate:"omitnil,oneof=asc desc"`
}

// CreateUser validates a create request body. Name is trimmed before its
// length is checked.
func CreateUser(body []byte) (user.CreateUserInput, error) {
	var b createUserBody
	typeErrs, err := decodeBody(body, &b)
	if err != nil {
		return user.CreateUserInput{}, err
	}

	b.Name = trimmed(b.Name)
	if err := check(&b, typeErrs...); err != nil {
		return user.CreateUserInput{}, err
	}

	return user.CreateUserInput{Name: *b.Name, Email: *b.Email}, nil
}

// UpdateUser validates a partial update body. At least one of name and email
// must be present, which is only checked once both fields are individually valid.
func UpdateUser(body []byte) (domain.Update, error) {
	var b updateUserBody
	typeErrs, err := decodeBody(body, &b)
	if err != nil {
		return domain.Update{}, err
	}

	b.Name = trimmed(b.Name)
	if err := check(&b, typeErrs...); err != nil {
		return domain.Update{}, err
	}

	upd := domain.Update{Name: b.Name, Email: b.Email}
	if upd.IsEmpty() {
		return domain.Update{}, apperrors.NewValidationError(apperrors.FieldError{Message: msgAtLeastOneField})
	}
	return upd, nil
}

// UserID validates the id path parameter.
func UserID(raw string) (int64, error) {
	p := idParam{ID: raw}
	if err := check(&p); err != nil {
		return 0, err
	}

	// digits and intrange already guarantee a valid int64
	id, _ := strconv.ParseInt(p.ID, 10, 64)
	return id, nil
}

// ListUsers validates list query parameters and fills in defaults. Empty
// email, name and search values are treated as absent.
func ListUsers(query url.Values) (domain.ListFilter, error) {
	q := listUsersQuery{
		Limit:     queryValue(query, "limit"),
		Offset:    queryValue(query, "offset"),
		SortBy:    queryValue(query, "sortBy"),
		SortOrder: queryValue(query, "sortOrder"),
	}
	if err := check(&q); err != nil {
		return domain.ListFilter{}, err
	}

	f := domain.DefaultListFilter()
	if q.Limit != nil {
		f.Limit, _ = strconv.Atoi(*q.Limit)
	}
	if q.Offset != nil {
		f.Offset, _ = strconv.Atoi(*q.Offset)
	}
	if q.SortBy != nil {
		f.SortBy = domain.SortField(*q.SortBy)
	}
	if q.SortOrder != nil {
		f.SortOrder = domain.SortOrder(*q.SortOrder)
	}
	f.Email = query.Get("email")
	f.Name = query.Get("name")
	f.Search = query.Get("search")

	return f, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// queryValue returns the first value of key, or nil when the key is missing.
func queryValue(query url.Values, key string) *string {
	values, ok := query[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

// decodeBody decodes a JSON object into the fields of dst. Keys must match a
// field's json name exactly and other keys are ignored. An empty body decodes
// as {}. Malformed JSON and non-object bodies fail outright. A field holding
// the wrong JSON type is returned as a violation and left nil, so the
// remaining fields are still checked.
func decodeBody(body []byte, dst any) ([]apperrors.FieldError, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, apperrors.NewValidationError(apperrors.FieldError{Field: bodyField, Message: msgBodyNotObject})
		}
		return nil, apperrors.NewValidationError(apperrors.FieldError{Field: bodyField, Message: msgBodyNotJSON})
	}

	v := reflect.ValueOf(dst).Elem()
	t := v.Type()
	var typeErrs []apperrors.FieldError
	for i := range t.NumField() {
		name := wireName(t.Field(i))
		raw, ok := obj[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, v.Field(i).Addr().Interface()); err != nil {
			v.Field(i).SetZero()
			typeErrs = append(typeErrs, apperrors.FieldError{Field: name, Message: message(name, "type")})
		}
	}
	return typeErrs, nil
}
