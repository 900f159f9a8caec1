package obs

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const maxStatementLen = 300

type pgxSpanKey struct{}

// PGXTracer implements pgx.QueryTracer. Spans are named after the sqlc query
// ("db.CreateBudget") when the statement carries a "-- name:" header.
type PGXTracer struct{}

// TraceQueryStart starts a client span for the statement.
func (PGXTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	name, op := describeSQL(data.SQL)
	ctx, span := otel.Tracer("presupuesto/db").Start(ctx, "db."+name, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", op),
		attribute.String("db.statement", truncateSQL(data.SQL)),
	)
	return context.WithValue(ctx, pgxSpanKey{}, span)
}

// TraceQueryEnd records the affected rows and any error, then ends the span.
func (PGXTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	span, ok := ctx.Value(pgxSpanKey{}).(trace.Span)
	if !ok {
		return
	}
	defer span.End()
	span.SetAttributes(attribute.Int64("db.rows_affected", data.CommandTag.RowsAffected()))
	if data.Err != nil && data.Err != pgx.ErrNoRows {
		span.RecordError(data.Err)
		span.SetStatus(codes.Error, data.Err.Error())
	}
}

// describeSQL returns the sqlc query name (or the verb) and the SQL verb.
func describeSQL(sql string) (name, op string) {
	name, op = "query", "UNKNOWN"
	for _, line := range strings.Split(sql, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "-- name:"); ok {
			if f := strings.Fields(rest); len(f) > 0 {
				name = f[0]
			}
			continue
		}
		if strings.HasPrefix(line, "--") {
			continue
		}
		op = strings.ToUpper(strings.Fields(line)[0])
		break
	}
	if name == "query" && op != "UNKNOWN" {
		name = strings.ToLower(op)
	}
	return name, op
}

func truncateSQL(sql string) string {
	trimmed := strings.TrimSpace(sql)
	if len(trimmed) > maxStatementLen {
		return trimmed[:maxStatementLen] + "..."
	}
	return trimmed
}
