package models

// ApiConfig is the configuration the API delivers once per session.
//
// OperationTimeBounds holds raw per-operation overrides
// ({"upload_put": {"still_working_ms": 1, "fail_ms": 2}}). Entries are kept
// undecoded so a malformed one only invalidates itself.
type ApiConfig struct {
	Environment             string         `json:"ENVIRONMENT,omitempty"`
	LanguageCode            string         `json:"LANGUAGE_CODE,omitempty"`
	Languages               [][]string     `json:"LANGUAGES,omitempty"`
	MediaBaseURL            string         `json:"MEDIA_BASE_URL,omitempty"`
	FrontendTheme           string         `json:"FRONTEND_THEME,omitempty"`
	FrontendCSSURL          string         `json:"FRONTEND_CSS_URL,omitempty"`
	FrontendExternalHomeURL string         `json:"FRONTEND_EXTERNAL_HOME_URL,omitempty"`
	FrontendFeedbackButton  bool           `json:"FRONTEND_FEEDBACK_BUTTON_SHOW,omitempty"`
	SilentLoginEnabled      bool           `json:"FRONTEND_SILENT_LOGIN_ENABLED,omitempty"`
	PosthogKey              map[string]any `json:"POSTHOG_KEY,omitempty"`
	CrispWebsiteID          string         `json:"CRISP_WEBSITE_ID,omitempty"`
	OperationTimeBounds     map[string]any `json:"OPERATION_TIME_BOUNDS,omitempty"`
}
