package event

type Type string

const (
	PaymentAdmitted Type = "ADMITTED"
)

type Event struct {
	Type    Type
	Payload any
}
