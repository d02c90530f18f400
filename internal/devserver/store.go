package devserver

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/academic-tracker/internal/models"
	appErrors "github.com/noah-isme/academic-tracker/pkg/errors"
)

const duplicateStageMessage = "La etapa ya existe"

type account struct {
	ID           string
	Cedula       string
	Email        string
	GivenName    string
	FamilyName   string
	Role         models.UserRole
	PasswordHash []byte
	ProfileImage string
	CreatedAt    time.Time

	BirthDate time.Time
	Phone     string
	Address   string
	Sex       string
}

// store is the in-memory state of the emulated API.
type store struct {
	mu       sync.RWMutex
	now      func() time.Time
	accounts map[string]*account // by id
	posts    []models.Post       // newest first
	stages   []models.EvaluationStage
}

func newStore(now func() time.Time) *store {
	return &store{now: now, accounts: make(map[string]*account)}
}

func (s *store) addAccount(a account, password string) (*account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.accounts {
		if existing.Cedula == a.Cedula {
			return nil, appErrors.Clone(appErrors.ErrConflict, "El usuario ya existe")
		}
	}
	a.ID = uuid.NewString()
	a.PasswordHash = hash
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now().UTC()
	}
	stored := a
	s.accounts[a.ID] = &stored
	return &stored, nil
}

// authenticate finds the account matching the predicate and checks its password.
func (s *store) authenticate(match func(*account) bool, password string) (*account, error) {
	s.mu.RLock()
	var found *account
	for _, a := range s.accounts {
		if match(a) {
			copied := *a
			found = &copied
			break
		}
	}
	s.mu.RUnlock()

	if found == nil || bcrypt.CompareHashAndPassword(found.PasswordHash, []byte(password)) != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "Credenciales inválidas")
	}
	return found, nil
}

func (s *store) accountByCedula(cedula string, staff bool) (*account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.Cedula == cedula && a.Role.IsStaff() == staff {
			copied := *a
			return &copied, true
		}
	}
	return nil, false
}

func (s *store) professors() []models.ProfessorRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ProfessorRef, 0)
	for _, a := range s.accounts {
		if a.Role == models.RoleProfessor {
			out = append(out, models.ProfessorRef{ID: a.ID, GivenName: a.GivenName, FamilyName: a.FamilyName})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FamilyName+out[i].GivenName < out[j].FamilyName+out[j].GivenName
	})
	return out
}

func (s *store) isProfessor(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	return ok && a.Role == models.RoleProfessor
}

// postPage returns the 1-based page and the total page count.
func (s *store) postPage(page, size int) ([]models.Post, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := (len(s.posts) + size - 1) / size
	start := (page - 1) * size
	if start >= len(s.posts) {
		return []models.Post{}, total
	}
	end := start + size
	if end > len(s.posts) {
		end = len(s.posts)
	}
	out := make([]models.Post, end-start)
	copy(out, s.posts[start:end])
	return out, total
}

func (s *store) post(id string) (models.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.posts {
		if p.ID == id {
			return p, true
		}
	}
	return models.Post{}, false
}

func (s *store) createPost(title, description, image string) models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	post := models.Post{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Image:       image,
		CreatedAt:   s.now().UTC(),
	}
	s.posts = append([]models.Post{post}, s.posts...)
	return post
}

func (s *store) updatePost(id, title, description string) (models.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.posts {
		if s.posts[i].ID == id {
			s.posts[i].Title = title
			s.posts[i].Description = description
			return s.posts[i], true
		}
	}
	return models.Post{}, false
}

func (s *store) deletePost(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.posts {
		if s.posts[i].ID == id {
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			return true
		}
	}
	return false
}

func (s *store) listStages() []models.EvaluationStage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.EvaluationStage, len(s.stages))
	copy(out, s.stages)
	return out
}

func (s *store) createStage(req models.StageRequest) (models.EvaluationStage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.stages {
		if strings.EqualFold(string(existing.Name), string(req.Name)) {
			return models.EvaluationStage{}, appErrors.Clone(appErrors.ErrConflict, duplicateStageMessage)
		}
	}
	stage := models.EvaluationStage{
		ID:        uuid.NewString(),
		Name:      req.Name,
		StartDate: req.StartDate.UTC(),
		EndDate:   req.EndDate.UTC(),
		Panel:     append([]string(nil), req.Panel...),
	}
	s.stages = append(s.stages, stage)
	sort.SliceStable(s.stages, func(i, j int) bool { return s.stages[i].Name < s.stages[j].Name })
	return stage, nil
}

func (s *store) deleteStage(name models.StageName) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.stages {
		if s.stages[i].Name == name {
			s.stages = append(s.stages[:i], s.stages[i+1:]...)
			return true
		}
	}
	return false
}
