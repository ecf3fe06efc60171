// Package mailtmpl renders the transactional emails sent by the storefront.
package mailtmpl

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"storefront-core/internal/pkg/errs"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	orderStatusTmpl  = template.Must(template.ParseFS(templateFS, "templates/order_status.tmpl"))
	rotationCodeTmpl = template.Must(template.ParseFS(templateFS, "templates/rotation_code.tmpl"))
)

type Message struct {
	Subject string
	Body    string
}

type OrderItem struct {
	Name     string
	Quantity int
}

type OrderStatus struct {
	OrderID    string
	Status     string
	Region     string
	TotalMinor int64
	Items      []OrderItem
}

type RotationCode struct {
	Code        string
	ValidFor    time.Duration
	MaxAttempts int
}

func RenderOrderStatus(data OrderStatus) (Message, error) {
	view := struct {
		OrderStatus
		OrderRef    string
		StatusLabel string
		RegionLabel string
		Total       string
	}{
		OrderStatus: data,
		OrderRef:    orderRef(data.OrderID),
		StatusLabel: data.Status,
		RegionLabel: regionLabel(data.Region),
		Total:       FormatPeso(data.TotalMinor),
	}
	return render(orderStatusTmpl, view)
}

func RenderRotationCode(data RotationCode) (Message, error) {
	view := struct {
		Code        string
		ValidFor    string
		MaxAttempts int
	}{
		Code:        data.Code,
		ValidFor:    humanDuration(data.ValidFor),
		MaxAttempts: data.MaxAttempts,
	}
	return render(rotationCodeTmpl, view)
}

// FormatPeso renders minor units, e.g. 123450 -> "PHP 1,234.50".
func FormatPeso(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	whole := fmt.Sprintf("%d", minor/100)
	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(r)
	}
	return fmt.Sprintf("PHP %s%s.%02d", sign, grouped.String(), minor%100)
}

func render(t *template.Template, data any) (Message, error) {
	var subject, body bytes.Buffer
	if err := t.ExecuteTemplate(&subject, "subject", data); err != nil {
		return Message{}, errs.Wrap(err, "render subject")
	}
	if err := t.ExecuteTemplate(&body, "body", data); err != nil {
		return Message{}, errs.Wrap(err, "render body")
	}
	return Message{Subject: strings.TrimSpace(subject.String()), Body: body.String()}, nil
}

func orderRef(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return "#" + strings.ToUpper(id)
}

func regionLabel(region string) string {
	switch region {
	case "luzon":
		return "Luzon"
	case "visayas":
		return "Visayas"
	case "mindanao":
		return "Mindanao"
	case "international":
		return "your international address"
	default:
		return region
	}
}

func humanDuration(d time.Duration) string {
	if d%time.Minute == 0 {
		m := int(d / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
	return d.String()
}
