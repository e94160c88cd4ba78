package devapi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/quiz"
)

// Competencies are the areas the seeded questions are spread over.
var Competencies = []string{
	"Information and data literacy",
	"Communication and collaboration",
	"Digital content creation",
	"Safety",
	"Problem solving",
}

// Account is a seeded login.
type Account struct {
	Email    string
	Password string
	Role     model.Role
	Approved bool // supervisors only
}

// DefaultAccounts are created, already verified, by Seed.
var DefaultAccounts = []Account{
	{Email: "admin@example.com", Password: "admin123", Role: model.RoleAdmin},
	{Email: "student@example.com", Password: "student123", Role: model.RoleStudent},
	{Email: "supervisor@example.com", Password: "supervisor123", Role: model.RoleSupervisor, Approved: true},
	{Email: "pending@example.com", Password: "pending123", Role: model.RoleSupervisor},
}

// Seed fills the store with the default accounts, a few fake students and a
// full question bank (QuestionsPerStep per step, split evenly over the two
// levels). The same seed yields the same data.
func Seed(s *Store, seed int64, students int) error {
	f := gofakeit.New(seed)
	for _, a := range DefaultAccounts {
		if err := AddAccount(s, a, f.Name()); err != nil {
			return err
		}
	}
	for i := 0; i < students; i++ {
		a := Account{Email: strings.ToLower(f.Username()) + "@students.example.com", Password: f.Password(true, true, true, false, false, 10), Role: model.RoleStudent}
		if err := AddAccount(s, a, f.Name()); err != nil && !errors.Is(err, ErrDuplicate) {
			return err
		}
	}
	perLevel := quiz.QuestionsPerStep / 2
	for _, lvl := range model.Levels {
		for i := 0; i < perLevel; i++ {
			s.PutQuestion(fakeQuestion(f, lvl, Competencies[i%len(Competencies)]))
		}
	}
	return nil
}

// AddAccount creates a verified user.
func AddAccount(s *Store, a Account, name string) error {
	hash, err := hashPassword(a.Password)
	if err != nil {
		return err
	}
	secret, err := newOTPSecret(a.Email)
	if err != nil {
		return err
	}
	u := &userRecord{
		User:         model.User{Email: a.Email, Role: a.Role, IsEmailVerified: true, Profile: model.UserProfile{Name: name}},
		PasswordHash: hash,
		OTPSecret:    secret,
	}
	if a.Role == model.RoleSupervisor {
		ok := a.Approved
		u.SupervisorApproved = &ok
	}
	if err := s.CreateUser(u); err != nil {
		return fmt.Errorf("seed %s: %w", a.Email, err)
	}
	return nil
}

func fakeQuestion(f *gofakeit.Faker, lvl model.Level, competency string) model.Question {
	keys := []string{"a", "b", "c", "d"}
	q := model.Question{
		Competency:       competency,
		Level:            lvl,
		Text:             fmt.Sprintf("[%s] %s", lvl, f.Question()),
		CorrectOptionKey: f.RandomString(keys),
	}
	for _, k := range keys {
		q.Options = append(q.Options, model.QuestionOption{Key: k, Value: f.Sentence(4)})
	}
	return q
}
