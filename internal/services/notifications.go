package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mirantsoa/clinic-api/internal/config"
	"github.com/mirantsoa/clinic-api/internal/models"
)

// Notifier delivers appointment confirmations through an outbound message
// gateway. Delivery is fire-and-forget; a gateway failure is logged and never
// surfaces to the request that triggered it.
type Notifier struct {
	cfg    config.MailConfig
	client *http.Client
	log    *logrus.Logger
}

func NewNotifier(cfg config.MailConfig, log *logrus.Logger) *Notifier {
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

// AppointmentConfirmation notifies the patient that an appointment was
// booked. Sent in a goroutine so it doesn't block the API response.
func (n *Notifier) AppointmentConfirmation(to string, apt *models.Appointment) {
	if to == "" {
		n.log.Debug("notification skipped: no recipient address")
		return
	}

	body := fmt.Sprintf(
		"Appointment confirmed: %s with %s on %s.",
		apt.Service,
		apt.Professional,
		apt.Date.Format("Jan 2 at 3:04 PM"),
	)
	go n.send(to, "Appointment confirmation", body)
}

func (n *Notifier) send(to, subject, body string) {
	payload, _ := json.Marshal(map[string]string{
		"to":      to,
		"from":    n.cfg.From,
		"subject": subject,
		"message": body,
		"key":     n.cfg.APIKey,
	})

	resp, err := n.client.Post(n.cfg.APIURL, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		n.log.WithError(err).WithField("to", to).Warn("notification gateway request failed")
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)

	if success, _ := result["success"].(bool); !success {
		reason, _ := result["error"].(string)
		n.log.WithFields(logrus.Fields{"to": to, "reason": reason}).Warn("notification rejected by gateway")
		return
	}
	n.log.WithField("to", to).Info("notification sent")
}
