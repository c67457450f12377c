package messaging

import (
	"context"
	"errors"
)

// ErrNotConfigured indica que faltan credenciales/números del proveedor.
// Las acciones lo degradan a un outcome string; nunca aborta la corrida.
var ErrNotConfigured = errors.New("messaging not configured")

// Messenger es el proveedor de notificaciones al dueño (SMS + llamada de voz).
// Los métodos devuelven el recibo del proveedor (p.ej. SID) si aplica.
type Messenger interface {
	IsConfigured() bool
	SendSMS(ctx context.Context, body string) (string, error)
	PlaceCall(ctx context.Context, message string) (string, error)
}
