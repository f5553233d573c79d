package ocigo

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TraceMetadata is the Connection "trace metadata" attribute spec §4.3
// names: identifier, module, action, client info, operation, and the DB
// operation string. It is pushed onto the OCI session (Conn.SetTraceMetadata)
// and mirrored onto every span this package opens so a trace backend shows
// the same labels OCI's own tracing/monitoring views would.
type TraceMetadata struct {
	Identifier  string // OCI_ATTR_CLIENT_IDENTIFIER
	Module      string // OCI_ATTR_MODULE
	Action      string // OCI_ATTR_ACTION
	ClientInfo  string // OCI_ATTR_CLIENT_INFO
	DBOperation string // OCI_ATTR_DBOP
}

var tracer = otel.Tracer("github.com/go-ocilib/ocigo")

// startSpan opens a span named op (e.g. "ocigo.prepare", "ocigo.exec",
// "ocigo.fetch"), tagging it with meta's trace metadata and the SQL text
// when non-empty. Grounded on the donor APM wrapper's
// trace.SpanFromContext/span.SetAttributes pattern for a database/sql
// driver, generalized here to start the span itself rather than only
// annotate one found in the incoming context.
func startSpan(ctx context.Context, op string, meta TraceMetadata, query string) (context.Context, trace.Span) {
	attrs := make([]attribute.KeyValue, 0, 6)
	if meta.Identifier != "" {
		attrs = append(attrs, attribute.String("db.client.identifier", meta.Identifier))
	}
	if meta.Module != "" {
		attrs = append(attrs, attribute.String("db.module", meta.Module))
	}
	if meta.Action != "" {
		attrs = append(attrs, attribute.String("db.action", meta.Action))
	}
	if meta.ClientInfo != "" {
		attrs = append(attrs, attribute.String("db.client.info", meta.ClientInfo))
	}
	if meta.DBOperation != "" {
		attrs = append(attrs, attribute.String("db.operation", meta.DBOperation))
	}
	if query != "" {
		attrs = append(attrs, attribute.String("db.statement", query))
	}
	return tracer.Start(ctx, op, trace.WithAttributes(attrs...))
}

// endSpan records err (if any) and ends span. Kept as a tiny helper so call
// sites read as a single deferred line.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
	span.End()
}
