package model

// Request and response bodies of the REST API.

type MessageResponse struct {
	Message string `json:"message"`
}

type RegisterPayload struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     Role        `json:"role"` // student | supervisor
	Profile  UserProfile `json:"profile"`
}

type RegisterResponse struct {
	Message                    string `json:"message"`
	UserID                     string `json:"userId"`
	SupervisorApprovalRequired bool   `json:"supervisorApprovalRequired"`
}

type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthLoginResponse struct {
	AccessToken        string `json:"accessToken"`
	RefreshToken       string `json:"refreshToken"`
	Role               Role   `json:"role"`
	SupervisorApproved *bool  `json:"supervisorApproved,omitempty"`
	IsApproved         *bool  `json:"isApproved,omitempty"`
}

type RefreshPayload struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse: refreshToken and role are only present when the server rotates them.
type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	Role         Role   `json:"role,omitempty"`
}

type VerifyEmailPayload struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type EmailPayload struct {
	Email string `json:"email"`
}

type ResetPasswordPayload struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

type UserEnvelope struct {
	User User `json:"user"`
}

type ProfileUpdate struct {
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

type UserListQuery struct {
	Page               int
	Limit              int
	Role               Role
	SupervisorApproved *bool
}

type ApproveSupervisorResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type QuestionListQuery struct {
	Page       int
	Limit      int
	Level      Level
	Competency string
}

type QuestionEnvelope struct {
	Question Question `json:"question"`
}

type BulkResponse struct {
	Count int `json:"count"`
}

type StartAssessmentResponse struct {
	AttemptID string               `json:"attemptId"`
	Step      int                  `json:"step"`
	Questions []AssessmentQuestion `json:"questions"`
}

type SubmitAssessmentPayload struct {
	AttemptID string            `json:"attemptId"`
	Answers   map[string]string `json:"answers"` // questionId -> option key
}

type AttemptEnvelope struct {
	Attempt AssessmentAttempt `json:"attempt"`
}

type AttemptsEnvelope struct {
	Attempts []AssessmentAttempt `json:"attempts"`
}

type Certificate struct {
	ID     string `json:"id"`
	Serial string `json:"serial"`
	Level  string `json:"level"`
}

type CertificateEnvelope struct {
	Certificate Certificate `json:"certificate"`
}

type RoleCount struct {
	Role  Role `json:"_id"`
	Count int  `json:"count"`
}

type AnalyticsUsers struct {
	Data struct {
		Total  int         `json:"total"`
		ByRole []RoleCount `json:"byRole"`
	} `json:"data"`
}

type CompetencyPerformanceRow struct {
	Competency string  `json:"competency"`
	Level      string  `json:"level"`
	Accuracy   float64 `json:"accuracy"`
}

type AssessmentsAnalyticsRow struct {
	Step           int     `json:"step"`
	Total          int     `json:"total"`
	CompletionRate float64 `json:"completionRate"`
}

type CompetencyAnalytics struct {
	Data []CompetencyPerformanceRow `json:"data"`
}

type AssessmentsAnalytics struct {
	Data []AssessmentsAnalyticsRow `json:"data"`
}

type MonitoredAttempt struct {
	ID            string         `json:"id"`
	Step          int            `json:"step"`
	StartedAt     string         `json:"startedAt"`
	Status        string         `json:"status"`
	QuestionCount int            `json:"questionCount"`
	Telemetry     map[string]any `json:"telemetry,omitempty"`
}

type MonitorResponse struct {
	Attempt *MonitoredAttempt `json:"attempt"`
	Message string            `json:"message,omitempty"`
}

type InvalidatePayload struct {
	Reason string `json:"reason"`
}

type InvalidateResponse struct {
	Message        string `json:"message"`
	AttemptID      string `json:"attemptId"`
	PreviousStatus string `json:"previousStatus"`
	NewStatus      string `json:"newStatus"`
	Reason         string `json:"reason"`
}
