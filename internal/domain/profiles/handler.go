package profiles

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/profiles", func(pr chi.Router) {
		pr.Post("/", createProfileHandler(svc))
		pr.Get("/", listProfilesHandler(svc))
		pr.Get("/{profileID}", getProfileHandler(svc))
		pr.Patch("/{profileID}", updateProfileHandler(svc))
	})
}

type createProfileRequest struct {
	Name         string  `json:"name"`
	Breed        string  `json:"breed"`
	AgeYears     float64 `json:"age_years"`
	WeightKg     float64 `json:"weight_kg"`
	MedicalNotes string  `json:"medical_notes"`
	Sensitivity  int     `json:"sensitivity"`
}

type updateProfileRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name         *string  `json:"name"`
	Breed        *string  `json:"breed"`
	AgeYears     *float64 `json:"age_years"`
	WeightKg     *float64 `json:"weight_kg"`
	MedicalNotes *string  `json:"medical_notes"`
	Sensitivity  *int     `json:"sensitivity"`
}

type profileResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Breed          string    `json:"breed"`
	AgeYears       float64   `json:"age_years"`
	WeightKg       float64   `json:"weight_kg"`
	Brachycephalic bool      `json:"brachycephalic"`
	MedicalNotes   string    `json:"medical_notes"`
	Sensitivity    int       `json:"sensitivity"`
	Context        string    `json:"context"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func createProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Create(r.Context(), CreateInput{
			Name:         req.Name,
			Breed:        req.Breed,
			AgeYears:     req.AgeYears,
			WeightKg:     req.WeightKg,
			MedicalNotes: req.MedicalNotes,
			Sensitivity:  req.Sensitivity,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toProfileResponse(p))
	}
}

func listProfilesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]profileResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toProfileResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "profileID"))
		if err != nil {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toProfileResponse(p))
	}
}

func updateProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req updateProfileRequest
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Update(r.Context(), chi.URLParam(r, "profileID"), UpdateInput{
			Name:         req.Name,
			Breed:        req.Breed,
			AgeYears:     req.AgeYears,
			WeightKg:     req.WeightKg,
			MedicalNotes: req.MedicalNotes,
			Sensitivity:  req.Sensitivity,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrNotFound:
				http.Error(w, "profile not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toProfileResponse(p))
	}
}

func toProfileResponse(p Profile) profileResponse {
	return profileResponse{
		ID:             p.ID,
		Name:           p.Name,
		Breed:          p.Breed,
		AgeYears:       p.AgeYears,
		WeightKg:       p.WeightKg,
		Brachycephalic: p.Brachycephalic,
		MedicalNotes:   p.MedicalNotes,
		Sensitivity:    p.Sensitivity,
		Context:        p.Context(),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// (profiles/scenarios/runs) para evitar crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
