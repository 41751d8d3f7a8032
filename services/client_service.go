package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/latum0/exonyb-sub001/logger"
	"github.com/latum0/exonyb-sub001/models"
	"github.com/latum0/exonyb-sub001/repository"
)

type ClientService struct {
	clients repository.ClientRepository
}

func NewClientService(clients repository.ClientRepository) *ClientService {
	return &ClientService{clients: clients}
}

func (s *ClientService) CreateClient(ctx context.Context, req *models.CreateClientRequest) (*models.Client, *ServiceError) {
	client := &models.Client{
		ID:      uuid.New(),
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
	if err := s.clients.Create(ctx, client); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ServiceError{StatusCode: 409, Message: "A client with this email already exists"}
		}
		logger.Error(ctx, "Failed to create client", err)
		return nil, internal("Failed to create client")
	}
	return client, nil
}

func (s *ClientService) GetClients(ctx context.Context, page, limit int) ([]models.Client, int64, *ServiceError) {
	clients, total, err := s.clients.FindAll(ctx, page, limit)
	if err != nil {
		logger.Error(ctx, "Failed to fetch clients", err)
		return nil, 0, internal("Failed to fetch clients")
	}
	return clients, total, nil
}

func (s *ClientService) GetClientByID(ctx context.Context, id uuid.UUID) (*models.Client, *ServiceError) {
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "Client not found")
	}
	return client, nil
}
