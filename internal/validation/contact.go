package validation

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

const (
	MsgSameNames        = "First name cannot be the same as last name."
	MsgFirstNameLetters = "First name may only contain letters."
	MsgLastNameLetters  = "Last name may only contain letters."
	MsgBlockedName      = "Invalid name."
	MsgInvalidPhone     = "Invalid phone number. Use the format: area-code + number."
	MsgInvalidCategory  = "Select a valid choice."

	// BlockedFirstName is rejected verbatim as a first name.
	BlockedFirstName = "ABC"

	MaxPictureSize = 10 * 1024 * 1024
)

var (
	// Latin letters including the Latin-1 accented range.
	nameRegex = regexp.MustCompile(`^[A-Za-zÀ-ÿ]+$`)

	// Two-digit area code followed by an 8 or 9 digit number.
	phoneRegex = regexp.MustCompile(`^\d{2}\d{4,5}\d{4}$`)

	pictureTypes = map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/webp": true,
	}
)

// ValidateContact checks a contact submission.
//
// On failure the returned error is FieldErrors; any other error comes from
// the category lookup.
func (v *Validator) ValidateContact(ctx context.Context, sub ContactSubmission) (ContactSubmission, error) {
	sub.trim()
	errs := FieldErrors{}

	if err := v.checkStruct(&sub, errs, nil); err != nil {
		return sub, err
	}

	firstOK := !errs.Has("first_name")
	lastOK := !errs.Has("last_name")

	if firstOK && lastOK && sub.FirstName == sub.LastName {
		errs.Add("first_name", KindEquality, MsgSameNames)
		errs.Add("last_name", KindEquality, MsgSameNames)
	}
	if firstOK && !nameRegex.MatchString(sub.FirstName) {
		errs.Add("first_name", KindFormat, MsgFirstNameLetters)
	}
	if lastOK && !nameRegex.MatchString(sub.LastName) {
		errs.Add("last_name", KindFormat, MsgLastNameLetters)
	}
	if firstOK && sub.FirstName == BlockedFirstName {
		errs.Add("first_name", KindBlocklist, MsgBlockedName)
	}

	if !errs.Has("phone") && !phoneRegex.MatchString(sub.Phone) {
		errs.Add("phone", KindFormat, MsgInvalidPhone)
	}

	if sub.Category != nil && v.categories != nil && !errs.Has("category") {
		exists, err := v.categories.CategoryExists(ctx, *sub.Category)
		if err != nil {
			return sub, fmt.Errorf("failed to look up category: %w", err)
		}
		if !exists {
			errs.Add("category", KindChoice, MsgInvalidCategory)
		}
	}

	if sub.Picture != nil {
		checkPicture(sub.Picture, errs)
	}

	return sub, errs.orNil()
}

func checkPicture(p *Picture, errs FieldErrors) {
	if p.Image == "" {
		errs.Add("picture", KindUpload, "The submitted file is empty.")
		return
	}
	if !pictureTypes[strings.ToLower(p.ContentType)] {
		errs.Add("picture", KindUpload, "Upload a valid image. Allowed types: jpeg, png, webp.")
		return
	}
	if err := p.decode(); err != nil {
		errs.Add("picture", KindUpload, "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
		return
	}
	if len(p.data) == 0 {
		errs.Add("picture", KindUpload, "The submitted file is empty.")
		return
	}
	if len(p.data) > MaxPictureSize {
		errs.Add("picture", KindUpload, fmt.Sprintf("File too large: %d bytes (max %d bytes).", len(p.data), MaxPictureSize))
	}
}
