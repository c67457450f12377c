// Package env resuelve secretos desde variables de entorno. En los
// despliegues reales el contenedor las recibe inyectadas por el secret
// manager; para el proceso es transparente.
package env

import (
	"os"
	"strings"
)

type Source struct{}

func New() Source { return Source{} }

func (Source) Get(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}

func (s Source) Has(names ...string) bool {
	for _, n := range names {
		if s.Get(n) == "" {
			return false
		}
	}
	return true
}
