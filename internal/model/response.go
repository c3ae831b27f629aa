package model

type ErrorResponse struct {
	Error string `json:"error"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type AuthLogoutResponse struct {
	Status string `json:"status"`
}

type AuthMeResponse struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

type AvatarResponse struct {
	Message   string `json:"message"`
	AvatarURL string `json:"avatarUrl"`
}

type ProfileStatsResponse struct {
	ProfileCompleteness CompletenessStats `json:"profileCompleteness"`
	AccountAgeDays      int               `json:"accountAgeDays"`
	DaysSinceLastUpdate int               `json:"daysSinceLastUpdate"`
	LastLogin           *string           `json:"lastLogin"`
	ProfileVisibility   string            `json:"profileVisibility"`
	PrivacySettings     PrivacySettings   `json:"privacySettings"`
}

type CompletenessStats struct {
	Percentage      float64 `json:"percentage"`
	CompletedFields int     `json:"completedFields"`
	TotalFields     int     `json:"totalFields"`
}

type PrivacySettings struct {
	ShowEmail     bool `json:"showEmail"`
	ShowPhone     bool `json:"showPhone"`
	ShowBirthDate bool `json:"showBirthDate"`
}
