package domain

import (
	"regexp"
	"strings"
)

var (
	emailRe  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	mobileRe = regexp.MustCompile(`^[0-9]{10}$`)
)

// Payload is a candidate set of field values, typically a merge of an
// existing record with the incoming changes. Validation is pure: no store
// access, uniqueness is checked elsewhere.
type Payload struct {
	FirstName string
	LastName  string
	Email     string
	Mobile    string
	Gender    string
	Status    string
	Location  string
}

func PayloadFrom(u *User) Payload {
	return Payload{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Mobile:    u.Mobile,
		Gender:    string(u.Gender),
		Status:    string(u.Status),
		Location:  u.Location,
	}
}

// Validate checks every rule independently (no short-circuit) and returns
// the violations in field order. An empty slice means the payload is valid.
func (p Payload) Validate() []string {
	var errs []string

	required := []struct{ name, val string }{
		{"firstName", p.FirstName},
		{"lastName", p.LastName},
		{"email", p.Email},
		{"mobile", p.Mobile},
		{"gender", p.Gender},
		{"status", p.Status},
		{"location", p.Location},
	}
	for _, f := range required {
		if strings.TrimSpace(f.val) == "" {
			errs = append(errs, f.name+" is required")
		}
	}

	if p.Email != "" && !emailRe.MatchString(p.Email) {
		errs = append(errs, "Email is invalid")
	}
	if p.Mobile != "" && !mobileRe.MatchString(p.Mobile) {
		errs = append(errs, "Mobile must be a 10 digit number")
	}
	if p.Gender != "" && p.Gender != string(GenderMale) && p.Gender != string(GenderFemale) {
		errs = append(errs, "Gender must be Male or Female")
	}
	if p.Status != "" && p.Status != string(StatusActive) && p.Status != string(StatusInactive) {
		errs = append(errs, "Status must be Active or Inactive")
	}

	return errs
}
