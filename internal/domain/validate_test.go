package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validPayload() Payload {
	return Payload{
		FirstName: "A",
		LastName:  "B",
		Email:     "a@b.com",
		Mobile:    "1234567890",
		Gender:    "Male",
		Status:    "Active",
		Location:  "Pune",
	}
}

func TestPayloadValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Payload)
		want   []string
	}{
		{
			name:   "valid payload",
			mutate: func(p *Payload) {},
			want:   nil,
		},
		{
			name:   "missing first name",
			mutate: func(p *Payload) { p.FirstName = "" },
			want:   []string{"firstName is required"},
		},
		{
			name:   "whitespace-only location counts as missing",
			mutate: func(p *Payload) { p.Location = "   " },
			want:   []string{"location is required"},
		},
		{
			name:   "invalid email shape",
			mutate: func(p *Payload) { p.Email = "not-an-email" },
			want:   []string{"Email is invalid"},
		},
		{
			name:   "email without tld",
			mutate: func(p *Payload) { p.Email = "a@b" },
			want:   []string{"Email is invalid"},
		},
		{
			name:   "mobile too short",
			mutate: func(p *Payload) { p.Mobile = "12345" },
			want:   []string{"Mobile must be a 10 digit number"},
		},
		{
			name:   "mobile with letters",
			mutate: func(p *Payload) { p.Mobile = "12345abcde" },
			want:   []string{"Mobile must be a 10 digit number"},
		},
		{
			name:   "unknown gender",
			mutate: func(p *Payload) { p.Gender = "Other" },
			want:   []string{"Gender must be Male or Female"},
		},
		{
			name:   "unknown status",
			mutate: func(p *Payload) { p.Status = "Archived" },
			want:   []string{"Status must be Active or Inactive"},
		},
		{
			name: "all rules checked, not short-circuited",
			mutate: func(p *Payload) {
				p.FirstName = ""
				p.Email = "bad"
				p.Mobile = "99"
				p.Gender = "X"
			},
			want: []string{
				"firstName is required",
				"Email is invalid",
				"Mobile must be a 10 digit number",
				"Gender must be Male or Female",
			},
		},
		{
			name: "everything missing lists every field in order",
			mutate: func(p *Payload) {
				*p = Payload{}
			},
			want: []string{
				"firstName is required",
				"lastName is required",
				"email is required",
				"mobile is required",
				"gender is required",
				"status is required",
				"location is required",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := validPayload()
			tt.mutate(&p)
			assert.Equal(t, tt.want, p.Validate())
		})
	}
}

func TestPayloadFrom(t *testing.T) {
	t.Parallel()

	u := &User{
		FirstName: "A", LastName: "B", Email: "a@b.com", Mobile: "1234567890",
		Gender: GenderFemale, Status: StatusInactive, Location: "Pune",
	}
	p := PayloadFrom(u)
	assert.Empty(t, p.Validate())
	assert.Equal(t, "Female", p.Gender)
	assert.Equal(t, "Inactive", p.Status)
}
