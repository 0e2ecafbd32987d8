package notify

import (
	"context"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/kennelworks/kennelworks/internal/httpclient"
	"github.com/kennelworks/kennelworks/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// WebhookNotifier posts notifications to an HTTP endpoint, typically a
// chat integration the facility staff watches.
type WebhookNotifier struct {
	url    string
	client httpclient.Client
	logger *logger.Logger
}

func NewWebhookNotifier(url string, client httpclient.Client, log *logger.Logger) *WebhookNotifier {
	return &WebhookNotifier{url: url, client: client, logger: log}
}

type webhookPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (n *WebhookNotifier) Notify(ctx context.Context, title, body string) {
	payload, err := json.Marshal(webhookPayload{Title: title, Body: body})
	if err != nil {
		n.logger.Errorw("failed to encode notification", "error", err)
		return
	}

	_, err = n.client.Send(ctx, &httpclient.Request{
		Method: http.MethodPost,
		URL:    n.url,
		Body:   payload,
	})
	if err != nil {
		// Fire and forget: the next scheduled check is the retry.
		n.logger.Errorw("failed to deliver notification",
			"title", title,
			"error", err)
	}
}
