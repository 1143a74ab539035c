package discovery

import (
	"errors"
	"testing"
)

func TestMDNSAdvertiserIdle(t *testing.T) {
	adv, err := NewMDNSAdvertiser(DefaultAdvertiserConfig())
	if err != nil {
		t.Fatalf("NewMDNSAdvertiser() error = %v", err)
	}

	if adv.IsAdvertising() {
		t.Error("new advertiser should not be advertising")
	}
	info := &BeaconInfo{Identity: testIdentity()}
	if err := adv.Update(info); !errors.Is(err, ErrNotAdvertising) {
		t.Errorf("Update() error = %v, want ErrNotAdvertising", err)
	}
	if err := adv.Stop(); err != nil {
		t.Errorf("Stop() on idle advertiser error = %v", err)
	}
}

func TestNewMDNSAdvertiserUnknownInterface(t *testing.T) {
	cfg := DefaultAdvertiserConfig()
	cfg.Interface = "does-not-exist0"
	if _, err := NewMDNSAdvertiser(cfg); err == nil {
		t.Error("expected error for unknown interface")
	}
}
