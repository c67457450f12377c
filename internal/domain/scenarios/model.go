package scenarios

import "fmt"

// Scenario es un video preset del feed de monitoreo.
type Scenario struct {
	ID       string
	Title    string
	Summary  string
	VideoURI string // gs://bucket/objeto
}

// Catalog devuelve los cuatro escenarios fijos del demo apuntando al
// bucket configurado. Los nombres de archivo son los de los clips subidos.
func Catalog(bucket string) []Scenario {
	uri := func(object string) string {
		return fmt.Sprintf("gs://%s/%s", bucket, object)
	}

	return []Scenario{
		{
			ID:       "relax",
			Title:    "Scenario A: Standby (Relax)",
			Summary:  "Safe: pet resting calmly",
			VideoURI: uri("Relax.mp4"),
		},
		{
			ID:       "low_anxiety",
			Title:    "Scenario B: Low Anxiety",
			Summary:  "Caution: early signs of distress",
			VideoURI: uri("Low Anxiety.mp4"),
		},
		{
			ID:       "high_anxiety",
			Title:    "Scenario C: High Anxiety",
			Summary:  "Warning: severe separation anxiety",
			VideoURI: uri("High Anxiety.mp4"),
		},
		{
			ID:       "empty_car",
			Title:    "Scenario D: Empty Cabin (Nothing)",
			Summary:  "Standby: no pet in the vehicle",
			VideoURI: uri("Nothing.mp4"),
		},
	}
}
