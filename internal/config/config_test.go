package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("port = %q, want 8000", cfg.Port)
	}
	if cfg.DBMaxConns != 20 || cfg.DBMinConns != 5 {
		t.Errorf("pool sizes = %d/%d, want 20/5", cfg.DBMaxConns, cfg.DBMinConns)
	}
	if !cfg.IsDev() {
		t.Error("ENV=development should report IsDev")
	}
}

func TestResolvedAuthMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"explicit wins", Config{Env: "production", AuthMode: "development"}, "development"},
		{"dev env", Config{Env: "development"}, "development"},
		{"production defaults to jwt", Config{Env: "production"}, "jwt"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cfg.ResolvedAuthMode(); got != tc.want {
				t.Errorf("mode = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"dev without auth", Config{Env: "development"}, false},
		{"jwt without issuer", Config{Env: "production", DatabaseURL: "postgres://x"}, true},
		{"jwt with issuer", Config{Env: "production", AuthIssuer: "https://idp", DatabaseURL: "postgres://x"}, false},
		{"jwt with jwks only", Config{Env: "production", AuthJWKSURL: "https://idp/jwks", DatabaseURL: "postgres://x"}, false},
		{"production without db", Config{Env: "production", AuthIssuer: "https://idp"}, true},
		{"bad mode", Config{Env: "production", AuthMode: "anonymous"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
