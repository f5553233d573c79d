package ocigo

import (
	"context"
	"errors"
	"testing"
)

func TestStartSpan_NoopTracerReturnsUsableSpan(t *testing.T) {
	meta := TraceMetadata{Module: "reports", Action: "refresh", DBOperation: "SELECT"}

	ctx, span := startSpan(context.Background(), "ocigo.query", meta, "select 1 from dual")
	if ctx == nil {
		t.Fatalf("expected a non-nil context")
	}
	if span == nil {
		t.Fatalf("expected a non-nil span")
	}
	endSpan(span, nil)
}

func TestEndSpan_RecordsError(t *testing.T) {
	_, span := startSpan(context.Background(), "ocigo.exec", TraceMetadata{}, "")
	endSpan(span, errors.New("boom"))
}
