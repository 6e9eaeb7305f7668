package models

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

// CurrentSchemaVersion is the AccountRecord layout written by this client.
//
//	v1: connection fields only
//	v2: serverUuid, dateFormat
//	v3: notificationPerm
const CurrentSchemaVersion = 3

// Defaults applied to new profiles and to records upgraded from older layouts.
const (
	DefaultPort       = "7001"
	DefaultRTSPPort   = "7002"
	DefaultLogin      = "admin"
	DefaultPassword   = "bluecherry"
	DefaultDateFormat = "M-D-YY h:m:s A"
)

// AccountRecord is one configured server connection profile.
type AccountRecord struct {
	ID          string `json:"id,omitempty"`
	Address     string `json:"address"`
	Port        string `json:"port,omitempty"`
	Login       string `json:"login"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	RTSPAddress string `json:"rtspAddress,omitempty"`
	RTSPPort    string `json:"rtspPort,omitempty"`

	// v2
	ServerUUID string `json:"serverUuid,omitempty"`
	DateFormat string `json:"dateFormat,omitempty"`

	// v3
	NotificationPermissionGranted bool `json:"notificationPerm"`

	SchemaVersion int `json:"schemaVersion,omitempty"`
}

// AccountEntry is an element of the ordered account list.
type AccountEntry struct {
	ID     string        `json:"id"`
	Record AccountRecord `json:"record"`
}

// NewAccountRecord returns a profile with the stock server defaults filled in.
func NewAccountRecord(address, name string) AccountRecord {
	return AccountRecord{
		Address:       address,
		Port:          DefaultPort,
		Login:         DefaultLogin,
		Password:      DefaultPassword,
		Name:          name,
		RTSPPort:      DefaultRTSPPort,
		DateFormat:    DefaultDateFormat,
		SchemaVersion: CurrentSchemaVersion,
	}
}

// Upgrade fills the defaults introduced by every schema version newer than
// the record's own and stamps it with CurrentSchemaVersion.
func (a AccountRecord) Upgrade() AccountRecord {
	if a.SchemaVersion < 1 {
		a.SchemaVersion = 1
	}
	if a.SchemaVersion < 2 {
		if a.DateFormat == "" {
			a.DateFormat = DefaultDateFormat
		}
		a.SchemaVersion = 2
	}
	if a.SchemaVersion < 3 {
		// notificationPerm decodes to false when absent.
		a.SchemaVersion = 3
	}
	if a.DateFormat == "" {
		a.DateFormat = DefaultDateFormat
	}
	return a
}

var (
	ErrMissingAddress = errors.New("server address is required")
	ErrMissingLogin   = errors.New("login is required")
	ErrMissingName    = errors.New("server name is required")
)

// Validate checks the fields a connection attempt depends on.
func (a AccountRecord) Validate() error {
	if a.Address == "" {
		return ErrMissingAddress
	}
	if a.Login == "" {
		return ErrMissingLogin
	}
	if a.Name == "" {
		return ErrMissingName
	}
	for field, p := range map[string]string{"port": a.Port, "rtspPort": a.RTSPPort} {
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || n > 65535 {
			return fmt.Errorf("invalid %s %q", field, p)
		}
	}
	return nil
}

// BaseURL is the HTTPS management address of the server.
func (a AccountRecord) BaseURL() string {
	host := a.Address
	if a.Port != "" {
		host = net.JoinHostPort(a.Address, a.Port)
	}
	return "https://" + host
}

// StreamHost is the RTSP host, falling back to the management address.
func (a AccountRecord) StreamHost() string {
	if a.RTSPAddress != "" {
		return a.RTSPAddress
	}
	return a.Address
}
