package notify

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"fomeninja/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Weekday and month names for the pt-BR long date used in message texts.
var (
	weekdayNames = []string{
		"domingo", "segunda-feira", "terça-feira", "quarta-feira",
		"quinta-feira", "sexta-feira", "sábado",
	}
	monthNames = []string{
		"janeiro", "fevereiro", "março", "abril", "maio", "junho",
		"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
	}
)

// WhatsAppNotifier builds structured confirmation requests for the external
// messaging collaborator. It only produces {recipient, text, deep link};
// actual delivery happens outside this system.
type WhatsAppNotifier struct {
	requests chan models.NotificationRequest
	logger   *zerolog.Logger
}

// NewWhatsAppNotifier buffers up to size pending requests for the consumer.
func NewWhatsAppNotifier(size int, logger *zerolog.Logger) *WhatsAppNotifier {
	if size <= 0 {
		size = 64
	}
	return &WhatsAppNotifier{
		requests: make(chan models.NotificationRequest, size),
		logger:   logger,
	}
}

// EnqueueConfirmation builds a confirmation request for the reservation and
// hands it to the consumer channel. A full channel drops the request: the
// notification is advisory and must not block or fail the creation.
func (n *WhatsAppNotifier) EnqueueConfirmation(ctx context.Context, r models.Reservation) (models.NotificationRequest, error) {
	text := ConfirmationText(r)
	req := models.NotificationRequest{
		ID:             uuid.NewString(),
		ReservationID:  r.ID,
		RecipientPhone: r.Phone,
		MessageText:    text,
		DeepLink:       DeepLink(r.Phone, text),
	}

	select {
	case n.requests <- req:
	default:
		n.logger.Warn().Int64("reservation_id", r.ID).Msg("notification queue full, request dropped")
	}

	return req, nil
}

// Requests exposes the pending request channel to the delivery collaborator.
func (n *WhatsAppNotifier) Requests() <-chan models.NotificationRequest {
	return n.requests
}

// ConfirmationText renders the pt-BR confirmation message for a reservation.
func ConfirmationText(r models.Reservation) string {
	return fmt.Sprintf(
		"Olá %s, sua reserva para %d pessoas no dia %s às %s foi confirmada. Agradecemos a preferência!",
		r.Name, r.PartySize, FormatLongDate(r.Date), r.Time,
	)
}

// FormatLongDate renders a YYYY-MM-DD date as a pt-BR long date, e.g.
// "terça-feira, 10 de junho de 2025". Unparseable input is returned as-is.
func FormatLongDate(date string) string {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s, %d de %s de %d",
		weekdayNames[int(t.Weekday())], t.Day(), monthNames[int(t.Month())-1], t.Year())
}

// DeepLink builds a wa.me link with the message prefilled. Non-digit
// characters are stripped from the phone.
func DeepLink(phone, text string) string {
	var digits strings.Builder
	for _, c := range phone {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}
	return fmt.Sprintf("https://wa.me/%s?text=%s", digits.String(), url.QueryEscape(text))
}
