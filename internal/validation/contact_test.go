package validation

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCategories struct {
	ids map[int64]bool
	err error
}

func (f *fakeCategories) CategoryExists(ctx context.Context, id int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.ids[id], nil
}

func newContactValidator() *Validator {
	return New(newFakeUsers(), &fakeCategories{ids: map[int64]bool{1: true, 2: true}}, nil)
}

func validContact() ContactSubmission {
	return ContactSubmission{
		FirstName: "Ana",
		LastName:  "Silva",
		Phone:     "11987654321",
		Email:     "a@b.com",
	}
}

func requireFieldErrors(t *testing.T, err error) FieldErrors {
	t.Helper()
	fe, ok := AsFieldErrors(err)
	require.True(t, ok, "expected FieldErrors, got %v", err)
	return fe
}

func TestValidateContact_Valid(t *testing.T) {
	v := newContactValidator()

	sub := validContact()
	sub.FirstName = "  Ana "
	sub.Description = "college friend"

	got, err := v.ValidateContact(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.FirstName)
	assert.Equal(t, "Silva", got.LastName)
	assert.Equal(t, "11987654321", got.Phone)
	assert.Equal(t, "college friend", got.Description)
}

func TestValidateContact_SameNames(t *testing.T) {
	v := newContactValidator()

	sub := validContact()
	sub.LastName = "Ana"

	_, err := v.ValidateContact(context.Background(), sub)
	fe := requireFieldErrors(t, err)

	assert.Equal(t, []string{MsgSameNames}, fe.Messages()["first_name"])
	assert.Equal(t, []string{MsgSameNames}, fe.Messages()["last_name"])
	assert.False(t, fe.Has("phone"))
	assert.False(t, fe.Has("email"))
	assert.Equal(t, []string{"first_name", "last_name"}, fe.Fields())
}

func TestValidateContact_SameNamesIsCaseSensitive(t *testing.T) {
	v := newContactValidator()

	sub := validContact()
	sub.LastName = "ana"

	_, err := v.ValidateContact(context.Background(), sub)
	assert.NoError(t, err)
}

func TestValidateContact_NameFormat(t *testing.T) {
	tests := []struct {
		name      string
		firstName string
		lastName  string
		wantFirst bool
		wantLast  bool
	}{
		{name: "plain letters", firstName: "Maria", lastName: "Souza"},
		{name: "accented letters", firstName: "João", lastName: "Conceição"},
		{name: "latin-1 range", firstName: "Zoë", lastName: "Ñúñez"},
		{name: "digit in first name", firstName: "Ana1", lastName: "Souza", wantFirst: true},
		{name: "punctuation in last name", firstName: "Ana", lastName: "D'Avila", wantLast: true},
		{name: "space in name", firstName: "Ana Maria", lastName: "Souza", wantFirst: true},
		{name: "hyphen in both", firstName: "Ana-Lu", lastName: "Souza-Lima", wantFirst: true, wantLast: true},
		{name: "outside latin-1", firstName: "Łukasz", lastName: "Souza", wantFirst: true},
	}

	v := newContactValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validContact()
			sub.FirstName = tt.firstName
			sub.LastName = tt.lastName

			_, err := v.ValidateContact(context.Background(), sub)
			if !tt.wantFirst && !tt.wantLast {
				assert.NoError(t, err)
				return
			}

			fe := requireFieldErrors(t, err)
			assert.Equal(t, tt.wantFirst, fe.HasKind("first_name", KindFormat))
			assert.Equal(t, tt.wantLast, fe.HasKind("last_name", KindFormat))
		})
	}
}

func TestValidateContact_BlockedFirstName(t *testing.T) {
	v := newContactValidator()

	sub := validContact()
	sub.FirstName = "ABC"

	_, err := v.ValidateContact(context.Background(), sub)
	fe := requireFieldErrors(t, err)
	assert.Equal(t, []string{MsgBlockedName}, fe.Messages()["first_name"])
	assert.False(t, fe.Has("last_name"))

	// only the exact literal is blocked
	sub.FirstName = "Abc"
	_, err = v.ValidateContact(context.Background(), sub)
	assert.NoError(t, err)
}

func TestValidateContact_AccumulatesAllNameErrors(t *testing.T) {
	v := newContactValidator()

	sub := validContact()
	sub.FirstName = "ABC"
	sub.LastName = "ABC"
	sub.Phone = "123"

	_, err := v.ValidateContact(context.Background(), sub)
	fe := requireFieldErrors(t, err)

	assert.Equal(t, []string{MsgSameNames, MsgBlockedName}, fe.Messages()["first_name"])
	assert.Equal(t, []string{MsgSameNames}, fe.Messages()["last_name"])
	assert.Equal(t, []string{MsgInvalidPhone}, fe.Messages()["phone"])
}

func TestValidateContact_Phone(t *testing.T) {
	tests := []struct {
		phone   string
		wantErr bool
	}{
		{phone: "11987654321"},
		{phone: "1132654321"},
		{phone: "123", wantErr: true},
		{phone: "11-98765-4321", wantErr: true},
		{phone: "119876543210", wantErr: true},
		{phone: "(11)98765432", wantErr: true},
		{phone: "+5511987654321", wantErr: true},
	}

	v := newContactValidator()
	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			sub := validContact()
			sub.Phone = tt.phone

			_, err := v.ValidateContact(context.Background(), sub)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			fe := requireFieldErrors(t, err)
			assert.Equal(t, []string{MsgInvalidPhone}, fe.Messages()["phone"])
		})
	}
}

func TestValidateContact_RequiredAndLength(t *testing.T) {
	v := newContactValidator()

	sub := ContactSubmission{
		FirstName: strings.Repeat("A", 51),
		LastName:  "",
		Phone:     "",
		Email:     "not-an-email",
	}

	_, err := v.ValidateContact(context.Background(), sub)
	fe := requireFieldErrors(t, err)

	assert.Equal(t, []FieldError{{Kind: KindLength, Message: "Ensure this value has at most 50 characters."}}, fe["first_name"])
	assert.Equal(t, []FieldError{{Kind: KindRequired, Message: "This field is required."}}, fe["last_name"])
	assert.Equal(t, []FieldError{{Kind: KindRequired, Message: "This field is required."}}, fe["phone"])
	assert.True(t, fe.HasKind("email", KindFormat))
}

func TestValidateContact_Category(t *testing.T) {
	v := newContactValidator()

	known := int64(2)
	sub := validContact()
	sub.Category = &known
	_, err := v.ValidateContact(context.Background(), sub)
	assert.NoError(t, err)

	unknown := int64(99)
	sub.Category = &unknown
	_, err = v.ValidateContact(context.Background(), sub)
	fe := requireFieldErrors(t, err)
	assert.Equal(t, []string{MsgInvalidCategory}, fe.Messages()["category"])
}

func TestValidateContact_CategoryLookupFailure(t *testing.T) {
	lookupErr := errors.New("connection refused")
	v := New(newFakeUsers(), &fakeCategories{err: lookupErr}, nil)

	id := int64(1)
	sub := validContact()
	sub.Category = &id

	_, err := v.ValidateContact(context.Background(), sub)
	require.Error(t, err)
	assert.ErrorIs(t, err, lookupErr)
	_, isFieldErr := AsFieldErrors(err)
	assert.False(t, isFieldErr)
}

func TestValidateContact_Picture(t *testing.T) {
	png := base64.StdEncoding.EncodeToString([]byte("\x89PNG\r\n\x1a\nfake image body"))

	tests := []struct {
		name    string
		picture *Picture
		wantErr bool
	}{
		{
			name:    "plain base64 png",
			picture: &Picture{Image: png, FileName: "me.png", ContentType: "image/png"},
		},
		{
			name:    "data URI jpeg",
			picture: &Picture{Image: "data:image/jpeg;base64," + png, FileName: "me.jpg", ContentType: "IMAGE/JPEG"},
		},
		{
			name:    "gif rejected",
			picture: &Picture{Image: png, FileName: "me.gif", ContentType: "image/gif"},
			wantErr: true,
		},
		{
			name:    "broken base64",
			picture: &Picture{Image: "not-valid-base64!!!", FileName: "me.png", ContentType: "image/png"},
			wantErr: true,
		},
		{
			name:    "broken data URI",
			picture: &Picture{Image: "data:invalid", FileName: "me.png", ContentType: "image/png"},
			wantErr: true,
		},
		{
			name:    "empty image",
			picture: &Picture{Image: "", FileName: "me.png", ContentType: "image/png"},
			wantErr: true,
		},
		{
			name: "too large",
			picture: &Picture{
				Image:       base64.StdEncoding.EncodeToString(make([]byte, MaxPictureSize+1)),
				FileName:    "big.png",
				ContentType: "image/png",
			},
			wantErr: true,
		},
	}

	v := newContactValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validContact()
			sub.Picture = tt.picture

			got, err := v.ValidateContact(context.Background(), sub)
			if tt.wantErr {
				fe := requireFieldErrors(t, err)
				assert.True(t, fe.HasKind("picture", KindUpload))
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, got.Picture.Data())
		})
	}
}

func TestValidateContact_EndToEndScenario(t *testing.T) {
	v := newContactValidator()

	_, err := v.ValidateContact(context.Background(), ContactSubmission{
		FirstName: "Ana",
		LastName:  "Ana",
		Phone:     "11987654321",
		Email:     "a@b.com",
	})

	fe := requireFieldErrors(t, err)
	assert.True(t, fe.HasKind("first_name", KindEquality))
	assert.True(t, fe.HasKind("last_name", KindEquality))
	assert.False(t, fe.Has("phone"))
	assert.False(t, fe.Has("email"))
	assert.Contains(t, err.Error(), "first_name: "+MsgSameNames)
}
