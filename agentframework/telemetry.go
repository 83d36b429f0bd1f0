// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// LoggingMiddleware logs the start and outcome of every [Agent.Run] on
// logger, or on slog.Default when logger is nil.
func LoggingMiddleware(logger *slog.Logger) AgentMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next AgentHandler) AgentHandler {
		return func(ctx context.Context, req *AgentRequest) (*AgentResponse, error) {
			logger.InfoContext(ctx, "agent run started", "message_count", len(req.Messages))
			start := time.Now()

			resp, err := next(ctx, req)
			elapsed := slog.Duration("duration", time.Since(start))
			if err != nil {
				logger.ErrorContext(ctx, "agent run failed", elapsed, slog.Any("error", err))
				return nil, err
			}
			logger.InfoContext(ctx, "agent run completed",
				slog.String("agent_name", resp.AgentName),
				elapsed,
				slog.Int("response_messages", len(resp.Messages)),
				slog.Group("usage",
					slog.Int("input_tokens", resp.Usage.InputTokens),
					slog.Int("output_tokens", resp.Usage.OutputTokens),
				),
			)
			return resp, nil
		}
	}
}

// Span attribute keys, following the OpenTelemetry GenAI conventions.
const (
	attrOperationName = attribute.Key("gen_ai.operation.name")
	attrToolName      = attribute.Key("gen_ai.tool.name")
	attrToolCallID    = attribute.Key("gen_ai.tool.call.id")
)

// TracingFunctionMiddleware returns a [FunctionMiddleware] that wraps every
// tool invocation in an "execute_tool" span.
func TracingFunctionMiddleware(tracer trace.Tracer) FunctionMiddleware {
	return func(ctx context.Context, fc *FunctionInvocationContext, next FunctionNext) error {
		ctx, span := tracer.Start(ctx, "execute_tool "+fc.Function.Name(),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(
				attrOperationName.String("execute_tool"),
				attrToolName.String(fc.Function.Name()),
				attrToolCallID.String(fc.CallID),
			),
		)
		defer span.End()

		if err := next(ctx, fc); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		return nil
	}
}
