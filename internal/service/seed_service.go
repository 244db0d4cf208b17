package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/aeroclubhq/membership-backend/internal/models"
)

// SkillSeeder описывает зависимости сидера от каталога навыков.
type SkillSeeder interface {
	Create(ctx context.Context, skill *models.Skill, levels []models.SkillLevel) error
	GetBySlug(ctx context.Context, slug string) (*models.Skill, error)
}

// SeedService наполняет базу тестовыми данными (только development).
type SeedService struct {
	users  AuthRepository
	skills SkillSeeder
}

// NewSeedService создаёт сервис тестовых данных.
func NewSeedService(users AuthRepository, skills SkillSeeder) *SeedService {
	return &SeedService{users: users, skills: skills}
}

// Seed создаёт демонстрационных участников и навыки клуба.
func (s *SeedService) Seed(ctx context.Context) error {
	demoUsers := []struct {
		email    string
		username string
		role     string
	}{
		{"admin@aeroclub.local", "admin", models.RoleAdmin},
		{"instructor@aeroclub.local", "instructor", models.RoleInstructor},
		{"pilot1@aeroclub.local", "pilot1", models.RoleMember},
		{"pilot2@aeroclub.local", "pilot2", models.RoleMember},
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed service: %w", err)
	}

	for _, u := range demoUsers {
		if _, err := s.users.GetByEmail(ctx, u.email); err == nil {
			continue
		}
		user := &models.User{
			Email:        u.email,
			Username:     u.username,
			PasswordHash: string(passHash),
			Role:         u.role,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return fmt.Errorf("seed service: участник %s: %w", u.email, err)
		}
	}

	cap5 := 5
	demoSkills := []struct {
		slug   string
		name   string
		levels []models.SkillLevel
	}{
		{"paragliding", "Парапланеризм", []models.SkillLevel{
			{Level: 1, IsOpen: true},
			{Level: 2, IsOpen: true},
			{Level: 3, IsOpen: true, Capacity: &cap5},
		}},
		{"winch-operator", "Оператор лебёдки", []models.SkillLevel{
			{Level: 1, IsOpen: true},
			{Level: 2, IsOpen: true, Capacity: &cap5},
			{Level: 3, IsOpen: false},
		}},
		{"first-aid", "Первая помощь", []models.SkillLevel{
			{Level: 1, IsOpen: true},
			{Level: 2, IsOpen: true},
			{Level: 3, IsOpen: true},
		}},
	}

	for _, sk := range demoSkills {
		if _, err := s.skills.GetBySlug(ctx, sk.slug); err == nil {
			continue
		}
		skill := &models.Skill{
			Slug:     sk.slug,
			Name:     sk.name,
			IsActive: true,
		}
		if err := s.skills.Create(ctx, skill, sk.levels); err != nil {
			return fmt.Errorf("seed service: навык %s: %w", sk.slug, err)
		}
	}

	return nil
}
