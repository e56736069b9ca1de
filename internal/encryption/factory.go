package encryption

import (
	"fmt"

	"share/internal/config"
	"share/internal/share"
)

// NewEncryptorFromConfig creates an Encryptor for the configured type.
// Type "none" (and the empty default) returns a nil Encryptor: content is
// sent and saved as is.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (share.Encryptor, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "age":
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
