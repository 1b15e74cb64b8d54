package usecase

import (
	"github.com/kirillkom/destination-organizer/internal/core/domain"
	"github.com/kirillkom/destination-organizer/internal/core/ports"
)

type nopDiagnostics struct{}

func (nopDiagnostics) Write(ports.DiagnosticCategory, string) {}
func (nopDiagnostics) Header(string)                          {}

type nopMetrics struct{}

func (nopMetrics) ObserveDocument(domain.DocumentStatus, float64) {}
func (nopMetrics) ObserveOutcome(domain.OutcomeStatus)            {}
