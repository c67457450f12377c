package observer

import (
	"context"
	"fmt"

	"paw-guardian/internal/platform/logger"
	"paw-guardian/internal/ports/llm"
)

// Service corre la etapa de observación contra el modelo de visión.
type Service struct {
	model    llm.Classifier
	language string
	log      logger.Logger
}

// NewService arma el observador. language es el idioma pedido para el campo
// observations del JSON (ej. "Japanese").
func NewService(model llm.Classifier, language string, log logger.Logger) *Service {
	return &Service{model: model, language: language, log: log}
}

// Observe analiza el video y devuelve la observación normalizada.
// Sólo devuelve error ante fallas de transporte con el modelo; las
// respuestas malformadas degradan a una Observation sin sujeto.
func (s *Service) Observe(ctx context.Context, video llm.VideoRef, petContext string) (Observation, error) {
	text, err := s.model.ClassifyVideo(ctx, video, s.buildPrompt(petContext))
	if err != nil {
		return Observation{}, err
	}

	obs := parseObservation(text)
	s.log.Info("observer: analysis complete", map[string]any{
		"subject_detected": obs.SubjectDetected,
		"anxiety_level":    string(obs.AnxietyLevel),
	})
	return obs, nil
}

func (s *Service) buildPrompt(petContext string) string {
	return fmt.Sprintf(`Analyze the video based on these criteria:
- Relax: Body relaxed, sitting quietly, no exploration.
- Low Anxiety: Licking nose, ears back, looking around restlessly.
- High Anxiety: Scratching windows, heavy panting, continuous barking.

[CRITICAL RULE]
If NO dog is visible in the car, set "subject_detected" to false AND "anxiety_level" to "None".

Context: %s.
Output JSON: {
    "subject_detected": bool,
    "anxiety_level": "Relax|Low|High",
    "observations": "string (%s)",
    "stress_signs": ["string"]
}`, petContext, s.language)
}
