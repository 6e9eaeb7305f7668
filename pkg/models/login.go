package models

// LoginResponse is returned by POST /ajax/loginapp.php
type LoginResponse struct {
	Success    bool   `json:"success"`
	ServerUUID string `json:"server_uuid"`
	Message    string `json:"message"`
}
