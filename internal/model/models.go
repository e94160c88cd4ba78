package model

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleStudent    Role = "student"
	RoleSupervisor Role = "supervisor"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleStudent, RoleSupervisor:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Level is a certification / question level, A1 (lowest) through C2.
type Level string

const (
	LevelA1 Level = "A1"
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
	LevelC1 Level = "C1"
	LevelC2 Level = "C2"
)

var Levels = []Level{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2}

func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	for _, v := range Levels {
		if v == l {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown level %q", s)
}

type QuestionOption struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Question struct {
	ID               string           `json:"_id"`
	Competency       string           `json:"competency"`
	Level            Level            `json:"level"`
	Text             string           `json:"text"`
	Options          []QuestionOption `json:"options"`
	CorrectOptionKey string           `json:"correctOptionKey,omitempty"` // hidden for students
	CreatedBy        string           `json:"createdBy,omitempty"`
	CreatedAt        string           `json:"createdAt,omitempty"`
	UpdatedAt        string           `json:"updatedAt,omitempty"`
}

// Public returns a copy without the answer key.
func (q Question) Public() Question {
	q.CorrectOptionKey = ""
	q.Options = append([]QuestionOption(nil), q.Options...)
	return q
}

func (q Question) HasOption(key string) bool {
	for _, o := range q.Options {
		if o.Key == key {
			return true
		}
	}
	return false
}

type UserProfile struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type User struct {
	ID                 string      `json:"_id"`
	Email              string      `json:"email"`
	Role               Role        `json:"role"`
	IsEmailVerified    bool        `json:"isEmailVerified"`
	SupervisorApproved *bool       `json:"supervisorApproved,omitempty"`
	Profile            UserProfile `json:"profile"`
	CurrentLevel       string      `json:"currentLevel,omitempty"`
	CreatedAt          string      `json:"createdAt,omitempty"`
	UpdatedAt          string      `json:"updatedAt,omitempty"`
}

type Pagination[T any] struct {
	Items []T `json:"items"`
	Page  int `json:"page"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type AssessmentQuestion struct {
	QuestionID string `json:"questionId"`
	Competency string `json:"competency"`
	Level      string `json:"level"`
}

type AssessmentAttempt struct {
	ID             string               `json:"id,omitempty"`
	Step           int                  `json:"step"`
	Questions      []AssessmentQuestion `json:"questions"`
	Status         string               `json:"status,omitempty"`
	ScorePercent   *float64             `json:"scorePercent,omitempty"`
	LevelAwarded   string               `json:"levelAwarded,omitempty"`
	AdvancedToNext *bool                `json:"advancedToNext,omitempty"`
	StartedAt      string               `json:"startedAt,omitempty"`
	SubmittedAt    string               `json:"submittedAt,omitempty"`
}
