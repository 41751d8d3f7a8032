package services

import (
	"context"

	"github.com/latum0/exonyb-sub001/logger"
	"github.com/latum0/exonyb-sub001/models"
	"github.com/latum0/exonyb-sub001/repository"
)

type AuditService struct {
	audit repository.AuditRepository
}

func NewAuditService(audit repository.AuditRepository) *AuditService {
	return &AuditService{audit: audit}
}

func (s *AuditService) GetAuditTrail(ctx context.Context, page, limit int) ([]models.AuditLog, int64, *ServiceError) {
	entries, total, err := s.audit.FindAll(ctx, page, limit)
	if err != nil {
		logger.Error(ctx, "Failed to fetch audit trail", err)
		return nil, 0, internal("Failed to fetch audit trail")
	}
	return entries, total, nil
}
