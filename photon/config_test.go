package photon

import "testing"

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults with emissions set", Config{Emissions: 1000, CausticFactor: 1, KNearestPhotons: 50, MaxPhotonsPerOctreeLeaf: 200}, false},
		{"negative emissions", Config{Emissions: -1, CausticFactor: 1, KNearestPhotons: 1, MaxPhotonsPerOctreeLeaf: 1}, true},
		{"caustic factor below 1", Config{Emissions: 1, CausticFactor: 0.5, KNearestPhotons: 1, MaxPhotonsPerOctreeLeaf: 1}, true},
		{"zero k nearest", Config{Emissions: 1, CausticFactor: 1, KNearestPhotons: 0, MaxPhotonsPerOctreeLeaf: 1}, true},
		{"zero leaf capacity", Config{Emissions: 1, CausticFactor: 1, KNearestPhotons: 1, MaxPhotonsPerOctreeLeaf: 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultConfigNeedsCausticFactorSet(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected DefaultConfig() alone (CausticFactor unset) to fail validation")
	}
	cfg.Emissions = 1000
	cfg.CausticFactor = 4
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected a fully populated default config to validate, got %v", err)
	}
}
