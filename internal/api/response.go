package api

import "github.com/kazz187/leavepush/internal/pushsubscription"

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type vapidKeyResponse struct {
	Success   bool   `json:"success"`
	PublicKey string `json:"publicKey"`
}

type notifyManyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Sent    int    `json:"sent"`
	Removed int    `json:"removed"`
}

type healthResponse struct {
	Success bool                   `json:"success"`
	Status  string                 `json:"status"`
	Uptime  float64                `json:"uptime"`
	Stats   pushsubscription.Stats `json:"stats"`
}

type unsubscribeResponse struct {
	Success bool   `json:"success"`
	Removed bool   `json:"removed"`
	Message string `json:"message"`
}
