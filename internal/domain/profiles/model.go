package profiles

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Breed define las razas sugeridas en el formulario.
// El campo acepta también texto libre (raza custom).
type Breed string

const (
	BreedCorgi      Breed = "Corgi"
	BreedShibaInu   Breed = "Shiba Inu"
	BreedChihuahua  Breed = "Chihuahua"
	BreedSchnauzer  Breed = "Schnauzer"
	BreedPomeranian Breed = "Pomeranian"
)

// Razas braquicéfalas (hocico corto): umbral de calor más estricto.
var brachycephalicBreeds = map[string]struct{}{
	"french bulldog": {},
	"pug":            {},
}

// IsBrachycephalic reporta si breed pertenece al set fijo de razas
// braquicéfalas (case-insensitive).
func IsBrachycephalic(breed string) bool {
	_, ok := brachycephalicBreeds[strings.ToLower(strings.TrimSpace(breed))]
	return ok
}

// A partir de esta edad el perfil se considera senior para el contexto.
const seniorAgeYears = 10.0

// Notas de contexto especiales que se inyectan al prompt del modelo.
const (
	brachyNote = "CRITICAL: this is a brachycephalic (short-muzzled) breed with extremely low heat tolerance. Lower the temperature thresholds by 5°C."
	seniorNote = "CRITICAL: senior dog. Anxiety responses are muted; react sooner."
)

// Profile es el perfil de la mascota monitoreada. Se crea al inicio de la
// sesión y es inmutable durante una corrida (la corrida guarda un snapshot).
type Profile struct {
	ID string

	Name  string
	Breed string

	AgeYears float64
	WeightKg float64

	// Derivado de Breed; no se acepta por input.
	Brachycephalic bool

	MedicalNotes string

	// 1-10: qué tan sensible es el dueño a señales de ansiedad.
	Sensitivity int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Senior reporta si la edad supera el umbral senior.
func (p Profile) Senior() bool {
	return p.AgeYears > seniorAgeYears
}

// Context arma el string de contexto que viaja en los prompts de ambas
// etapas: nombre, raza, edad, sensibilidad y la nota crítica si aplica.
func (p Profile) Context() string {
	ctx := fmt.Sprintf(
		"Name: %s, Breed: %s, Age: %s, Owner Sensitivity: %d/10.",
		p.Name,
		p.Breed,
		strconv.FormatFloat(p.AgeYears, 'f', -1, 64),
		p.Sensitivity,
	)

	if note := p.contextNote(); note != "" {
		ctx += " " + note
	}
	return ctx
}

func (p Profile) contextNote() string {
	if p.Brachycephalic {
		return brachyNote
	}
	if p.Senior() {
		return seniorNote
	}
	return ""
}
