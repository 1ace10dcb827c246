package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"checkinchain/crypto"

	"github.com/BurntSushi/toml"
)

type Config struct {
	DataDir        string `toml:"DataDir"`
	MetricsAddress string `toml:"MetricsAddress"`
	ChainID        int64  `toml:"ChainID"`
	Environment    string `toml:"Environment"`
	TrustedSigner  string `toml:"TrustedSigner"`
	Owner          string `toml:"Owner"`
	Treasury       string `toml:"Treasury"`
	Manager        string `toml:"Manager"`
	EscrowAccount  string `toml:"EscrowAccount"`
}

// Load loads the configuration from the given path, creating a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./checkin-data"
	}
	if strings.TrimSpace(cfg.MetricsAddress) == "" {
		cfg.MetricsAddress = ":9464"
	}
	if strings.TrimSpace(cfg.Environment) == "" {
		cfg.Environment = "local"
	}
	if cfg.ChainID == 0 {
		cfg.ChainID = 1
	}
	return cfg, nil
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{
		DataDir:        "./checkin-data",
		MetricsAddress: ":9464",
		ChainID:        1,
		Environment:    "local",
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every field the daemon depends on is present and well
// formed. Address fields must be bech32 with the platform prefix.
func (c *Config) Validate() error {
	if c.ChainID <= 0 {
		return fmt.Errorf("config: ChainID must be positive")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: DataDir is required")
	}
	for name, value := range map[string]string{
		"TrustedSigner": c.TrustedSigner,
		"Owner":         c.Owner,
		"Treasury":      c.Treasury,
		"Manager":       c.Manager,
		"EscrowAccount": c.EscrowAccount,
	} {
		if _, err := decodeAddress(value); err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
	}
	return nil
}

func decodeAddress(value string) ([20]byte, error) {
	var out [20]byte
	if strings.TrimSpace(value) == "" {
		return out, fmt.Errorf("address is required")
	}
	decoded, err := crypto.DecodeAddress(value)
	if err != nil {
		return out, err
	}
	copy(out[:], decoded.Bytes())
	return out, nil
}

// TrustedSignerAddress returns the decoded trusted signer identity.
func (c *Config) TrustedSignerAddress() ([20]byte, error) { return decodeAddress(c.TrustedSigner) }

// OwnerAddress returns the decoded parameter owner identity.
func (c *Config) OwnerAddress() ([20]byte, error) { return decodeAddress(c.Owner) }

// TreasuryAddress returns the decoded treasury wallet.
func (c *Config) TreasuryAddress() ([20]byte, error) { return decodeAddress(c.Treasury) }

// ManagerAddress returns the decoded operations manager identity.
func (c *Config) ManagerAddress() ([20]byte, error) { return decodeAddress(c.Manager) }

// EscrowAddress returns the decoded escrow custody account.
func (c *Config) EscrowAddress() ([20]byte, error) { return decodeAddress(c.EscrowAccount) }
