package config

import "testing"

func TestS3ConfigIsConfigured(t *testing.T) {
	t.Run("empty config is not configured", func(t *testing.T) {
		cfg := S3Config{}
		if cfg.IsConfigured() {
			t.Fatal("expected IsConfigured=false for empty config")
		}
	})

	t.Run("required fields set is configured", func(t *testing.T) {
		cfg := S3Config{
			Endpoint:        "https://s3.example.com",
			Region:          "eu-west-1",
			Bucket:          "neverita-images",
			AccessKeyID:     "key",
			SecretAccessKey: "secret",
		}
		if !cfg.IsConfigured() {
			t.Fatal("expected IsConfigured=true when all required fields are set")
		}
	})
}

func TestS3ConfigMissingRequired(t *testing.T) {
	cfg := S3Config{
		Endpoint: "https://s3.example.com",
		Bucket:   "neverita-images",
	}
	missing := cfg.MissingRequired()

	want := []string{"S3_REGION", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY"}
	if len(missing) != len(want) {
		t.Fatalf("expected %d missing fields, got %d (%v)", len(want), len(missing), missing)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Fatalf("expected missing[%d]=%s, got %s", i, want[i], missing[i])
		}
	}
}

func TestParseCORSOrigins(t *testing.T) {
	t.Run("local defaults", func(t *testing.T) {
		origins := parseCORSOrigins("", "local")
		if len(origins) == 0 {
			t.Fatal("expected local default origins")
		}
	})

	t.Run("prod denies by default", func(t *testing.T) {
		if origins := parseCORSOrigins("", "production"); origins != nil {
			t.Fatalf("expected nil origins in production, got %v", origins)
		}
	})

	t.Run("comma separated with spaces", func(t *testing.T) {
		origins := parseCORSOrigins(" https://a.example.com , https://b.example.com ", "production")
		if len(origins) != 2 || origins[0] != "https://a.example.com" || origins[1] != "https://b.example.com" {
			t.Fatalf("unexpected origins: %v", origins)
		}
	})
}
