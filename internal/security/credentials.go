package security

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	apperrors "clinicreport/internal/errors"
)

// ServiceAccountType is the "type" of a Google service-account key file
const ServiceAccountType = "service_account"

// ServiceAccount is the non-secret part of a service-account key
type ServiceAccount struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	TokenURI    string `json:"token_uri"`
}

// Credentials holds a service-account key read from disk
type Credentials struct {
	Account ServiceAccount
	data    []byte
}

// Data returns the raw key JSON
func (c *Credentials) Data() []byte {
	return c.data
}

// Clear overwrites the key material
func (c *Credentials) Clear() {
	for i := range c.data {
		c.data[i] = 0
	}
	c.data = nil
}

// LoadServiceAccount reads and checks a service-account key file. The key
// must be a service_account with a client email and private key. Keys readable
// by group or others are accepted with a warning.
func LoadServiceAccount(path string, logger *slog.Logger) (*Credentials, error) {
	if logger == nil {
		logger = slog.Default()
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.NewConfigError("read sheets credentials", err).WithContext("path", path)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		logger.Warn("Credentials file is readable by other users",
			slog.String("path", path),
			slog.String("mode", fs.FileMode(perm).String()))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigError("read sheets credentials", err).WithContext("path", path)
	}

	var key struct {
		ServiceAccount
		PrivateKey string `json:"private_key"`
	}
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, apperrors.NewConfigError("parse sheets credentials", err).WithContext("path", path)
	}

	var missing []string
	if key.Type != ServiceAccountType {
		return nil, apperrors.NewConfigError(
			fmt.Sprintf("sheets credentials must be a %s key, got %q", ServiceAccountType, key.Type), nil).
			WithContext("path", path)
	}
	if key.ClientEmail == "" {
		missing = append(missing, "client_email")
	}
	if !strings.Contains(key.PrivateKey, "PRIVATE KEY") {
		missing = append(missing, "private_key")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewConfigError(
			"sheets credentials missing "+strings.Join(missing, ", "), nil).WithContext("path", path)
	}

	logger.Debug("Service account credentials loaded",
		slog.String("client_email", key.ClientEmail),
		slog.String("project_id", key.ProjectID))

	return &Credentials{Account: key.ServiceAccount, data: data}, nil
}
