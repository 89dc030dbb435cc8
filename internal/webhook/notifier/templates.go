package notifier

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"payment-webhook/internal/webhook/data"
)

type message struct {
	Subject string
	Heading string
	Body    string
	Color   template.CSS
}

var messages = map[data.Status]message{
	data.PaidStatus: {
		Subject: "✅ Tu pago ha sido confirmado",
		Heading: "¡Pago confirmado!",
		Body:    "Tu pedido ha sido procesado exitosamente. Pronto recibirás más información sobre el envío.",
		Color:   "#22c55e",
	},
	data.FailedStatus: {
		Subject: "❌ Tu pago no pudo ser procesado",
		Heading: "Pago fallido",
		Body:    "Lamentablemente no pudimos procesar tu pago. Por favor intenta de nuevo o usa otro método de pago.",
		Color:   "#ef4444",
	},
	data.ExpiredStatus: {
		Subject: "⏰ Tu sesión de pago ha expirado",
		Heading: "Sesión expirada",
		Body:    "La sesión de pago ha expirado. Puedes volver a intentar realizando un nuevo pedido.",
		Color:   "#f59e0b",
	},
}

var statusEmail = template.Must(template.New("status").Parse(`
<div style="font-family:sans-serif;max-width:520px;margin:0 auto;padding:24px">
  <div style="background:{{.Color}};color:#fff;padding:16px 24px;border-radius:8px 8px 0 0">
    <h1 style="margin:0;font-size:22px">{{.Heading}}</h1>
  </div>
  <div style="border:1px solid #e5e7eb;border-top:none;padding:24px;border-radius:0 0 8px 8px">
    <p style="color:#374151;font-size:15px;line-height:1.6">{{.Body}}</p>
    {{- if .Total}}
    <p style="font-size:18px;font-weight:bold;margin:16px 0">Total: ${{.Total}} MXN</p>
    {{- end}}
    <p style="color:#9ca3af;font-size:13px;margin-top:24px">Pedido: {{.OrderID}}</p>
  </div>
</div>
`))

type renderData struct {
	Heading string
	Body    string
	Color   template.CSS
	Total   string
	OrderID string
}

// render returns the subject and HTML body for status. Statuses without a
// customer-facing message, such as pending, return ok == false.
func render(status data.Status, orderID uuid.UUID, total *decimal.Decimal) (subject, body string, ok bool, err error) {
	msg, ok := messages[status]
	if !ok {
		return "", "", false, nil
	}
	in := renderData{
		Heading: msg.Heading,
		Body:    msg.Body,
		Color:   msg.Color,
		OrderID: orderID.String(),
	}
	if total != nil {
		in.Total = total.StringFixed(2)
	}
	var buf bytes.Buffer
	if err := statusEmail.Execute(&buf, in); err != nil {
		return "", "", true, fmt.Errorf("failed to render %s email: %w", status, err)
	}
	return msg.Subject, buf.String(), true, nil
}
