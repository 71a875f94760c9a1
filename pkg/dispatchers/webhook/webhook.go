package webhook

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	config "github.com/azurescope/explorer/config"
	event "github.com/azurescope/explorer/pkg/event"
)

var webhookErrMsg = `
%s

You need to set the webhook url,
using the scanner config file, or using environment variables:

export WEBHOOK_URL=webhook_url

`

// Webhook handler implements the Dispatcher interface,
// Notify event via a plain JSON POST
type Webhook struct {
	Url     string
	Cert    string
	TlsSkip bool
}

// WebhookMessage is the payload POSTed for each event. The embedded event
// fields are flattened into the top-level JSON object.
type WebhookMessage struct {
	event.Event
	Text string    `json:"text"`
	Time time.Time `json:"time"`
}

// Init prepares webhook configuration
func (w *Webhook) Init(c *config.Config) error {
	url := c.Handler.Webhook.Url
	cert := c.Handler.Webhook.Cert
	tlsSkip := c.Handler.Webhook.TlsSkip

	if url == "" {
		url = os.Getenv("WEBHOOK_URL")
	}

	w.Url = url
	w.Cert = cert
	w.TlsSkip = tlsSkip

	if w.Url == "" {
		return fmt.Errorf(webhookErrMsg, "Missing webhook url")
	}

	return nil
}

// Handle handles the notification.
func (w *Webhook) Handle(e event.Event) {
	msg := WebhookMessage{
		Event: e,
		Text:  e.Message(),
		Time:  time.Now(),
	}

	if err := postMessage(w, &msg); err != nil {
		logrus.Printf("%s\n", err)
		return
	}

	logrus.Printf("Message successfully sent to %s at %s ", w.Url, msg.Time)
}

func postMessage(w *Webhook, msg *WebhookMessage) error {
	message, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", w.Url, bytes.NewBuffer(message))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")

	client, err := buildClient(w)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %s", resp.Status)
	}

	return nil
}

func buildClient(w *Webhook) (*http.Client, error) {
	if w.TlsSkip {
		transCfg := &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
		return &http.Client{Transport: transCfg}, nil
	}

	if w.Cert == "" {
		return &http.Client{}, nil
	}

	caCert, err := os.ReadFile(w.Cert)
	if err != nil {
		return nil, fmt.Errorf("reading webhook cert: %w", err)
	}

	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("webhook cert %q contains no usable certificates", w.Cert)
	}

	transCfg := &http.Transport{
		TLSClientConfig: &tls.Config{RootCAs: caCertPool},
	}

	return &http.Client{Transport: transCfg}, nil
}
