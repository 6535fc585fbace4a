// Package keys persists attack secrets and leaked sample batches as JSON.
package keys

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"seasign-bias/attack"
)

const (
	secretVersion = "seasign-secret-v1"
	batchVersion  = "seasign-batch-v1"
)

// SecretFile is a secret exponent vector together with its parameter set.
type SecretFile struct {
	Version   string        `json:"version"`
	Timestamp string        `json:"timestamp"`
	Params    attack.Params `json:"params"`
	Secret    attack.Vector `json:"secret"`
}

// BatchFile is a batch of accepted ephemeral vectors. The secret is optional
// and only stored for simulations.
type BatchFile struct {
	Version   string          `json:"version"`
	Timestamp string          `json:"timestamp"`
	Params    attack.Params   `json:"params"`
	KnownSigs int             `json:"known_sigs,omitempty"`
	Secret    attack.Vector   `json:"secret,omitempty"`
	Samples   []attack.Vector `json:"samples"`
}

// SaveSecret writes the secret to path after validating it against params.
func SaveSecret(path string, params attack.Params, secret attack.Vector) error {
	if err := params.CheckSecret(secret); err != nil {
		return err
	}
	return writeJSON(path, &SecretFile{
		Version:   secretVersion,
		Timestamp: now(),
		Params:    params,
		Secret:    secret,
	})
}

// LoadSecret reads and validates a secret file.
func LoadSecret(path string) (*SecretFile, error) {
	var sf SecretFile
	if err := readJSON(path, &sf); err != nil {
		return nil, err
	}
	if sf.Version != secretVersion {
		return nil, fmt.Errorf("%s: unsupported version %q", path, sf.Version)
	}
	if err := sf.Params.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := sf.Params.CheckSecret(sf.Secret); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &sf, nil
}

// SaveBatch writes a batch of samples to path.
func SaveBatch(path string, bf *BatchFile) error {
	if bf == nil {
		return nil
	}
	if err := bf.validate(); err != nil {
		return err
	}
	out := *bf
	out.Version = batchVersion
	if out.Timestamp == "" {
		out.Timestamp = now()
	}
	return writeJSON(path, &out)
}

// LoadBatch reads and validates a batch file.
func LoadBatch(path string) (*BatchFile, error) {
	var bf BatchFile
	if err := readJSON(path, &bf); err != nil {
		return nil, err
	}
	if bf.Version != batchVersion {
		return nil, fmt.Errorf("%s: unsupported version %q", path, bf.Version)
	}
	if err := bf.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &bf, nil
}

func (bf *BatchFile) validate() error {
	if err := bf.Params.Validate(); err != nil {
		return err
	}
	if bf.Secret != nil {
		if err := bf.Params.CheckSecret(bf.Secret); err != nil {
			return err
		}
	}
	for j, e := range bf.Samples {
		if len(e) != bf.Params.N {
			return fmt.Errorf("%w: sample %d has length %d, want %d", attack.ErrInvalidInput, j, len(e), bf.Params.N)
		}
	}
	return nil
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

func writeJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
