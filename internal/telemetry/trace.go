package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartSpan creates a new span for a service operation.
//
// Usage:
//
//	ctx, span := telemetry.StartSpan(ctx, "ramapi/services/iam", "iam.ResolveOrCreate",
//	    attribute.String(telemetry.AttrIdentityIDValue, idValue),
//	)
//	defer span.End()
func StartSpan(ctx context.Context, tracerName, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	return tracer.Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// RecordError records an error on the span and sets the span status to error.
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// AddEvent adds a named event to the span with optional attributes.
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// Common attribute keys.
const (
	AttrPrincipalID     = "principal.id"
	AttrPrincipalAgency = "principal.agency_user"

	AttrIdentityIDValue    = "identity.id_value"
	AttrIdentityRawIDValue = "identity.raw_id_value"

	AttrRelationshipID     = "relationship.id"
	AttrRelationshipStatus = "relationship.status"

	AttrPermissionAction  = "permission.action"
	AttrPermissionAllowed = "permission.allowed"
)
