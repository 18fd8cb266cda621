// Package logging writes one JSON object per line through the standard logger.
package logging

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

type Fields struct {
	Service    string `json:"service"`
	RequestID  string `json:"request_id,omitempty"`
	UserID     uint   `json:"user_id,omitempty"`
	OrderID    uint   `json:"order_id,omitempty"`
	Step       string `json:"step,omitempty"`
	Status     string `json:"status,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	Message    string `json:"message,omitempty"`
}

type ctxKey struct{}

// WithRequestID stores the request id so deeper layers can tag their lines.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func Log(fields Fields) {
	payload := struct {
		Fields
		Timestamp string `json:"timestamp"`
	}{fields, time.Now().UTC().Format(time.RFC3339Nano)}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("{\"service\":%q,\"status\":\"log_error\",\"error\":%q}", fields.Service, err.Error())
		return
	}
	log.Print(string(data))
}

// LogContext is Log with the request id taken from ctx.
func LogContext(ctx context.Context, fields Fields) {
	if fields.RequestID == "" {
		fields.RequestID = RequestID(ctx)
	}
	Log(fields)
}
