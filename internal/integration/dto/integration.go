package dto

import "netcrm-backend/internal/integration/domain"

type ConnectResponse struct {
	AuthURL string `json:"auth_url"`
}

type StatusResponse struct {
	Integrations []*domain.Integration `json:"integrations"`
}
