// Package decision implementa la segunda etapa del pipeline: una política de
// seguridad determinística que decide QUÉ acciones son obligatorias, y un
// motor de tool-calling que conversa con el modelo para ejecutarlas y
// redactar el reporte final. El modelo pone las palabras; la política pone
// los límites.
package decision

import (
	"encoding/json"
	"fmt"
	"strconv"

	"paw-guardian/internal/domain/actions"
	"paw-guardian/internal/domain/observer"
	"paw-guardian/internal/domain/profiles"
)

// Umbrales de temperatura de cabina, en °C.
const (
	// Por encima de esto es emergencia térmica para cualquier raza.
	heatEmergencyC = 35.0
	// Por encima de esto es emergencia para razas braquicéfalas.
	brachyHeatLimitC = 30.0
	// Por debajo de esto un perro relajado se considera seguro.
	comfortCeilingC = 30.0
)

// Verdict es el veredicto de la política para una observación dada. El motor
// usa Required como whitelist dura: el modelo no puede despachar ninguna
// acción fuera de esta lista, y toda acción de la lista se ejecuta sí o sí
// (si el modelo no la pide, la ejecuta el host).
type Verdict struct {
	// Safe indica que no se requiere intervención (Required vacío).
	Safe bool

	// Required son las acciones obligatorias, deduplicadas por nombre y en
	// orden de evaluación de reglas. Args trae los argumentos por defecto
	// que usa el host cuando el modelo omite la acción.
	Required []actions.Request

	// Reasons acumula el motivo de cada regla disparada, para el transcript.
	Reasons []string
}

// RequiredNames lista los nombres de las acciones obligatorias, en orden.
func (v Verdict) RequiredNames() []string {
	names := make([]string, 0, len(v.Required))
	for _, req := range v.Required {
		names = append(names, req.Name)
	}
	return names
}

// Requires reporta si la acción name está en la lista obligatoria.
func (v Verdict) Requires(name string) bool {
	for _, req := range v.Required {
		if req.Name == name {
			return true
		}
	}
	return false
}

// Evaluate aplica las reglas de seguridad sobre la observación. Es pura:
// mismas entradas, mismo veredicto, sin tocar red ni reloj.
//
// Reglas, en orden de prioridad:
//  1. temp > 35°C: llamada de emergencia + ventanillas al 100%.
//  2. raza braquicéfala y temp > 30°C: llamada de emergencia.
//  3. ansiedad High: llamada de emergencia.
//  4. ansiedad Low: música relajante + SMS al dueño.
//
// Sin sujeto detectado no se permite NINGUNA acción, sin importar el resto
// de los campos. Si una acción ya fue requerida por una regla anterior, la
// regla posterior suma su motivo pero no pisa los argumentos.
func Evaluate(obs observer.Observation, temperatureC float64, pet profiles.Profile) Verdict {
	if !obs.SubjectDetected {
		return Verdict{
			Safe:    true,
			Reasons: []string{"no pet detected in the cabin; interventions are not permitted"},
		}
	}

	var v Verdict
	temp := formatTemp(temperatureC)

	if temperatureC > heatEmergencyC {
		v.trigger(
			fmt.Sprintf("cabin temperature %s°C exceeds the %.0f°C emergency threshold", temp, heatEmergencyC),
			callRequest(fmt.Sprintf("Emergency: cabin temperature is %s°C with %s inside the car. Return immediately.", temp, pet.Name)),
			windowsRequest(100),
		)
	}

	if pet.Brachycephalic && temperatureC > brachyHeatLimitC {
		v.trigger(
			fmt.Sprintf("brachycephalic breed in a %s°C cabin (limit %.0f°C)", temp, brachyHeatLimitC),
			callRequest(fmt.Sprintf("Emergency: %s is a short-muzzled breed and the cabin is at %s°C. Return to the car immediately.", pet.Name, temp)),
		)
	}

	switch obs.AnxietyLevel {
	case observer.LevelHigh:
		v.trigger(
			"anxiety level is High",
			callRequest(fmt.Sprintf("Emergency: %s is showing high anxiety inside the car. Please return as soon as possible.", pet.Name)),
		)
	case observer.LevelLow:
		v.trigger(
			"anxiety level is Low",
			musicRequest(actions.TrackRelax),
			smsRequest(fmt.Sprintf("%s is showing early signs of anxiety in the car. Soothing music is playing; please check in soon.", pet.Name)),
		)
	}

	if len(v.Required) == 0 {
		v.Safe = true
		if obs.AnxietyLevel == observer.LevelRelax && temperatureC < comfortCeilingC {
			v.Reasons = append(v.Reasons, "pet is relaxed and cabin temperature is comfortable")
		} else {
			v.Reasons = append(v.Reasons, "no safety rule triggered")
		}
	}
	return v
}

// trigger registra el motivo de una regla y agrega sus acciones, salvo las
// que ya estaban requeridas (la primera regla gana los argumentos).
func (v *Verdict) trigger(reason string, reqs ...actions.Request) {
	v.Reasons = append(v.Reasons, reason)
	for _, req := range reqs {
		if !v.Requires(req.Name) {
			v.Required = append(v.Required, req)
		}
	}
}

func callRequest(message string) actions.Request {
	return requestJSON(actions.NameEmergencyCall, map[string]any{"message": message})
}

func smsRequest(message string) actions.Request {
	return requestJSON(actions.NameSendSMSAlert, map[string]any{"message": message})
}

func windowsRequest(level int) actions.Request {
	return requestJSON(actions.NameOpenCarWindows, map[string]any{"level": level})
}

func musicRequest(track string) actions.Request {
	return requestJSON(actions.NamePlayMusic, map[string]any{"track_type": track})
}

func requestJSON(name string, args map[string]any) actions.Request {
	raw, _ := json.Marshal(args)
	return actions.Request{Name: name, Args: raw}
}

// formatTemp imprime la temperatura sin decimales de relleno (26, 30.5).
func formatTemp(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64)
}
