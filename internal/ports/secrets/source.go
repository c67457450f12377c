package secrets

// Nombres de los secretos que consume el sistema. Un Source los resuelve
// desde el entorno o desde el secret manager del despliegue.
const (
	TwilioAccountSID = "TWILIO_ACCOUNT_SID"
	TwilioAuthToken  = "TWILIO_AUTH_TOKEN"
	TwilioPhone      = "TWILIO_PHONE_NUMBER"
	TwilioSMSNumber  = "TWILIO_SMS_NUMBER"
	OwnerPhone       = "OWNER_PHONE_NUMBER"
)

// Source entrega secretos por nombre. Get devuelve "" si no existe;
// Has es true solo si TODOS los nombres están presentes y no vacíos.
type Source interface {
	Get(name string) string
	Has(names ...string) bool
}
