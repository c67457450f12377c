package profiles

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("profile not found")
)

// Defaults del formulario de alta; se aplican cuando el campo viene en cero.
const (
	defaultAgeYears    = 4.5
	defaultWeightKg    = 13.5
	defaultSensitivity = 8
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name         string
	Breed        string
	AgeYears     float64
	WeightKg     float64
	MedicalNotes string
	Sensitivity  int
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Profile, error) {
	name := strings.TrimSpace(in.Name)
	breed := strings.TrimSpace(in.Breed)
	if name == "" || breed == "" {
		return Profile{}, ErrInvalidInput
	}

	age := in.AgeYears
	if age == 0 {
		age = defaultAgeYears
	}
	weight := in.WeightKg
	if weight == 0 {
		weight = defaultWeightKg
	}
	sensitivity := in.Sensitivity
	if sensitivity == 0 {
		sensitivity = defaultSensitivity
	}

	now := s.now()
	p := Profile{
		ID:             uuid.NewString(),
		Name:           name,
		Breed:          breed,
		AgeYears:       age,
		WeightKg:       weight,
		Brachycephalic: IsBrachycephalic(breed),
		MedicalNotes:   strings.TrimSpace(in.MedicalNotes),
		Sensitivity:    sensitivity,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := validate(p); err != nil {
		return Profile{}, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Profile, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Profile, error) {
	return s.repo.List(ctx)
}

// UpdateInput usa punteros para PATCH real: nil = no tocar.
type UpdateInput struct {
	Name         *string
	Breed        *string
	AgeYears     *float64
	WeightKg     *float64
	MedicalNotes *string
	Sensitivity  *int
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Profile, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Profile{}, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return Profile{}, ErrInvalidInput
		}
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Breed != nil {
		if strings.TrimSpace(*in.Breed) == "" {
			return Profile{}, ErrInvalidInput
		}
		p.Breed = strings.TrimSpace(*in.Breed)
		p.Brachycephalic = IsBrachycephalic(p.Breed)
	}
	if in.AgeYears != nil {
		p.AgeYears = *in.AgeYears
	}
	if in.WeightKg != nil {
		p.WeightKg = *in.WeightKg
	}
	if in.MedicalNotes != nil {
		p.MedicalNotes = strings.TrimSpace(*in.MedicalNotes)
	}
	if in.Sensitivity != nil {
		p.Sensitivity = *in.Sensitivity
	}

	if err := validate(p); err != nil {
		return Profile{}, err
	}

	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// validate aplica los rangos del formulario de alta:
// edad 0.5-20, peso 5-30, sensibilidad 1-10.
func validate(p Profile) error {
	if p.AgeYears < 0.5 || p.AgeYears > 20 {
		return ErrInvalidInput
	}
	if p.WeightKg < 5 || p.WeightKg > 30 {
		return ErrInvalidInput
	}
	if p.Sensitivity < 1 || p.Sensitivity > 10 {
		return ErrInvalidInput
	}
	return nil
}
