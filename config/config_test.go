package config

import (
	"os"
	"path/filepath"
	"testing"

	"checkinchain/crypto"
)

func testBech32(t *testing.T) string {
	t.Helper()
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key.PubKey().Address().String()
}

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "./checkin-data" || cfg.MetricsAddress != ":9464" || cfg.ChainID != 1 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default file not written: %v", err)
	}

	// A default config has no identities yet and must not validate.
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure for empty addresses")
	}
}

func TestLoadFillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("ChainID = 777\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ChainID != 777 {
		t.Fatalf("unexpected chain id %d", cfg.ChainID)
	}
	if cfg.DataDir == "" || cfg.MetricsAddress == "" || cfg.Environment == "" {
		t.Fatalf("missing fields not defaulted: %+v", cfg)
	}
}

func TestValidateAndDecode(t *testing.T) {
	cfg := &Config{
		DataDir:        "./data",
		MetricsAddress: ":9464",
		ChainID:        777,
		TrustedSigner:  testBech32(t),
		Owner:          testBech32(t),
		Treasury:       testBech32(t),
		Manager:        testBech32(t),
		EscrowAccount:  testBech32(t),
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	signer, err := cfg.TrustedSignerAddress()
	if err != nil {
		t.Fatalf("decode signer: %v", err)
	}
	if signer == ([20]byte{}) {
		t.Fatal("decoded signer is zero")
	}

	cfg.Manager = "not-an-address"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure for bad address")
	}
}
