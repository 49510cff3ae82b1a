package v1handler

import (
	"io"
	"strings"
	"unicode/utf8"

	"userdir/pkg/domain"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/google/uuid"
)

// User is the wire shape of a user.
type User struct {
	ID       uuid.UUID
	UserName string
	Email    string
}

// Encode writes the user as a JSON object.
func (s *User) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(s.ID.String())
	e.FieldStart("userName")
	e.Str(s.UserName)
	e.FieldStart("email")
	e.Str(s.Email)
	e.ObjEnd()
}

// CreateUserRequest is the body of a registration. ID is uuid.Nil when the
// client did not send one.
type CreateUserRequest struct {
	ID       uuid.UUID
	UserName string
	Email    string
}

// DecodeCreateUserRequest decodes a complete registration body. Content after
// the JSON object, other than whitespace, is rejected.
func DecodeCreateUserRequest(buf []byte) (CreateUserRequest, error) {
	var req CreateUserRequest

	d := jx.DecodeBytes(buf)
	if err := req.Decode(d); err != nil {
		return req, err
	}
	if err := d.Skip(); err != io.EOF { //nolint: errorlint
		return req, errors.New("unexpected trailing data")
	}

	return req, nil
}

// Decode reads a registration body. Field names match case-insensitively,
// unknown fields are skipped and null is treated as absent.
func (s *CreateUserRequest) Decode(d *jx.Decoder) error {
	if s == nil {
		return errors.New("invalid: unable to decode CreateUserRequest to nil")
	}

	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if d.Next() == jx.Null {
			return d.Null()
		}

		switch strings.ToLower(key) {
		case "id":
			v, err := decodeStr(d)
			if err != nil {
				return errors.Wrap(err, "decode field \"id\"")
			}
			if v == "" {
				return nil
			}
			id, err := uuid.Parse(v)
			if err != nil {
				return errors.Wrap(err, "parse field \"id\"")
			}
			s.ID = id
		case "username":
			v, err := decodeStr(d)
			if err != nil {
				return errors.Wrap(err, "decode field \"userName\"")
			}
			s.UserName = v
		case "email":
			v, err := decodeStr(d)
			if err != nil {
				return errors.Wrap(err, "decode field \"email\"")
			}
			s.Email = v
		default:
			return d.Skip()
		}

		return nil
	}); err != nil {
		return errors.Wrap(err, "decode CreateUserRequest")
	}

	return nil
}

// decodeStr reads a JSON string that must be valid UTF-8.
func decodeStr(d *jx.Decoder) (string, error) {
	v, err := d.Str()
	if err != nil {
		return "", err
	}
	if !utf8.ValidString(v) {
		return "", errors.New("invalid UTF-8 in string")
	}

	return v, nil
}

// Error is the wire shape of a failed request.
type Error struct {
	Code    string
	Message string
}

// Encode writes the error as a JSON object.
func (s *Error) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("code")
	e.Str(s.Code)
	e.FieldStart("message")
	e.Str(s.Message)
	e.ObjEnd()
}

// DomainUserToV1 maps a domain user to its wire shape.
func DomainUserToV1(in *domain.User) *User {
	return &User{
		ID:       uuid.UUID(in.ID),
		UserName: in.UserName,
		Email:    in.Email,
	}
}

// ToDomain maps the request to the directory's registration input.
func (s *CreateUserRequest) ToDomain() domain.UserInput {
	return domain.UserInput{
		ID:       domain.UserID(s.ID),
		UserName: s.UserName,
		Email:    s.Email,
	}
}
