package logger

import (
	"context"
	"time"
)

// BusinessOperation represents a timed operation for logging
type BusinessOperation struct {
	Component string
	Module    string
	Operation string
	RequestID string
	StartTime time.Time
	logger    *Entry
	ctx       context.Context
}

// StartOperation starts an operation on logger "component.module"
func (m *Manager) StartOperation(ctx context.Context, component, module, operation string) *BusinessOperation {
	startTime := time.Now()

	logCtx := FromContext(ctx).Merge(LogContext{
		Component: component,
		Module:    module,
		Operation: operation,
		StartTime: startTime,
	})

	op := &BusinessOperation{
		Component: component,
		Module:    module,
		Operation: operation,
		RequestID: logCtx.RequestID,
		StartTime: startTime,
		logger:    m.WithContext(logCtx),
		ctx:       WithContext(ctx, logCtx),
	}

	op.logger.Debug("Operation started")
	return op
}

// WithDomain adds the business domain (users, maps, email ...) to the context
func (bo *BusinessOperation) WithDomain(domain string) *BusinessOperation {
	bo.logger = bo.logger.WithDomain(domain)
	bo.ctx = WithContext(bo.ctx, LogContext{Domain: domain})
	return bo
}

// WithActor adds the acting user
func (bo *BusinessOperation) WithActor(actor string) *BusinessOperation {
	bo.logger = bo.logger.WithActor(actor)
	bo.ctx = WithContext(bo.ctx, LogContext{Actor: actor})
	return bo
}

// Info logs info message
func (bo *BusinessOperation) Info(message string, fields ...Fields) {
	if len(fields) > 0 {
		bo.logger.WithFields(fields[0]).Info(message)
	} else {
		bo.logger.Info(message)
	}
}

// Error logs error message
func (bo *BusinessOperation) Error(message string, err error, fields ...Fields) {
	bo.logger.WithFields(mergeFields(Fields{"error": err.Error()}, fields)).Error(message)
}

// Success logs successful completion
func (bo *BusinessOperation) Success(message string, fields ...Fields) {
	duration := time.Since(bo.StartTime)
	bo.logger.WithFields(mergeFields(Fields{
		"duration":    duration,
		"duration_ms": duration.Milliseconds(),
		"success":     true,
	}, fields)).Info(message)
}

// Fail logs failed completion
func (bo *BusinessOperation) Fail(message string, err error, fields ...Fields) {
	duration := time.Since(bo.StartTime)
	bo.logger.WithFields(mergeFields(Fields{
		"duration":    duration,
		"duration_ms": duration.Milliseconds(),
		"success":     false,
		"error":       err.Error(),
	}, fields)).Error(message)
}

// GetContext returns the enhanced context
func (bo *BusinessOperation) GetContext() context.Context {
	return bo.ctx
}

// GetLogger returns the operation logger
func (bo *BusinessOperation) GetLogger() *Entry {
	return bo.logger
}

func mergeFields(base Fields, extra []Fields) Fields {
	if len(extra) > 0 {
		for k, v := range extra[0] {
			base[k] = v
		}
	}
	return base
}
