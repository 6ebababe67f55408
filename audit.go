package goAccount

import (
	"io"

	internalaudit "github.com/MrEthical07/goAccount/internal/audit"
	"github.com/rs/zerolog"
)

// AuditEvent is one security-relevant engine event.
type AuditEvent = internalaudit.Event

// AuditSink receives audit events from the dispatcher goroutine.
type AuditSink = internalaudit.Sink

// NewJSONWriterSink writes one JSON object per line to w.
func NewJSONWriterSink(w io.Writer) AuditSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewChannelSink buffers events on a channel; read them with Events().
func NewChannelSink(buffer int) *internalaudit.ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewZerologSink logs each event through logger.
func NewZerologSink(logger zerolog.Logger) AuditSink {
	return internalaudit.NewZerologSink(logger)
}
