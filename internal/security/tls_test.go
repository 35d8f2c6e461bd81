package security

import "testing"

func TestBuildServerTLSConfigRequiresCertAndKey(t *testing.T) {
	if _, err := BuildServerTLSConfig("", "", "", false); err == nil {
		t.Fatal("expected error for missing cert and key")
	}
	if _, err := BuildServerTLSConfig("cert.pem", "", "", false); err == nil {
		t.Fatal("expected error for missing key")
	}
}

func TestBuildServerTLSConfigRequiresCAForClientAuth(t *testing.T) {
	if _, err := BuildServerTLSConfig("/nonexistent/cert.pem", "/nonexistent/key.pem", "", true); err == nil {
		t.Fatal("expected error before reaching client auth setup")
	}
}
