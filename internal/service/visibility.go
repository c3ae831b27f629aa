package service

import "github.com/userhub/backend/internal/model"

// Project derives the view of user's profile that viewer may see. It is
// pure and total: any visibility value outside public/private is handled
// by the fall-through, never rejected.
//
// Owner and public viewers get email/phone/birth date gated by the
// individual show_* flags; the stored flag wins even for the owner. A
// private profile hides the bio behind a placeholder and drops location,
// website, company and job title. "friends" falls through to the base
// fields with no conditional fields at all: no friends graph exists, so a
// friend currently sees exactly what a stranger sees.
func Project(user *model.User, viewer *model.AuthUser) model.PublicProfile {
	profile := model.PublicProfile{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Bio:       user.Bio,
		AvatarURL: user.AvatarURL,
		Location:  user.Location,
		Website:   user.Website,
		Company:   user.Company,
		JobTitle:  user.JobTitle,
		CreatedAt: user.CreatedAt,
	}

	switch {
	case viewer != nil && viewer.ID == user.ID:
		applyConditionalFields(&profile, user)
	case user.ProfileVisibility == model.VisibilityPublic:
		applyConditionalFields(&profile, user)
	case user.ProfileVisibility == model.VisibilityPrivate:
		hidden := model.HiddenBio
		profile.Bio = &hidden
		profile.Location = nil
		profile.Website = nil
		profile.Company = nil
		profile.JobTitle = nil
	}

	return profile
}

func applyConditionalFields(profile *model.PublicProfile, user *model.User) {
	if user.ShowEmail {
		email := user.Email
		profile.Email = &email
	}
	if user.ShowPhone {
		profile.Phone = user.Phone
	}
	if user.ShowBirthDate {
		profile.BirthDate = user.BirthDate
	}
}
