package encryption

import (
	"fmt"

	"github.com/tuncaytekle/docsync/internal/config"
	"github.com/tuncaytekle/docsync/internal/docsync"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration
// type. Type "none" (the default) returns nil: documents are pushed in
// plaintext.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (docsync.Encryptor, error) {
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
