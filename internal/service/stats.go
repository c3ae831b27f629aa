package service

import (
	"math"
	"time"

	"github.com/userhub/backend/internal/model"
)

// ProfileStats summarizes how filled-in a profile is and how old the
// account is. Pure over the user record.
func ProfileStats(user *model.User, now time.Time) model.ProfileStatsResponse {
	fields := []*string{
		user.FirstName,
		user.LastName,
		user.Phone,
		user.Bio,
		user.Location,
		user.Website,
		user.Company,
		user.JobTitle,
		user.AvatarURL,
	}

	completed := 0
	for _, field := range fields {
		if field != nil && *field != "" {
			completed++
		}
	}
	if user.BirthDate != nil {
		completed++
	}
	total := len(fields) + 1

	var lastLogin *string
	if user.LastLogin != nil {
		formatted := user.LastLogin.Format(time.RFC3339)
		lastLogin = &formatted
	}

	return model.ProfileStatsResponse{
		ProfileCompleteness: model.CompletenessStats{
			Percentage:      math.Round(float64(completed)/float64(total)*1000) / 10,
			CompletedFields: completed,
			TotalFields:     total,
		},
		AccountAgeDays:      int(now.Sub(user.CreatedAt).Hours() / 24),
		DaysSinceLastUpdate: int(now.Sub(user.ProfileUpdatedAt).Hours() / 24),
		LastLogin:           lastLogin,
		ProfileVisibility:   user.ProfileVisibility,
		PrivacySettings: model.PrivacySettings{
			ShowEmail:     user.ShowEmail,
			ShowPhone:     user.ShowPhone,
			ShowBirthDate: user.ShowBirthDate,
		},
	}
}
