package tls

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/config"
)

func TestSetupDisabled(t *testing.T) {
	c, err := Setup(config.TLSConfig{})
	if err != nil || c != nil {
		t.Fatalf("expected nil config, got %v %v", c, err)
	}
}

func TestSetupNoSource(t *testing.T) {
	if _, err := Setup(config.TLSConfig{Enabled: true}); !errors.Is(err, ErrNoCertificate) {
		t.Fatalf("expected ErrNoCertificate, got %v", err)
	}
}

func TestSetupMissingFiles(t *testing.T) {
	dir := t.TempDir()
	if _, err := Setup(config.TLSConfig{Enabled: true, Dir: dir}); err == nil {
		t.Fatal("expected error without auto_generate")
	}
}

func TestSetupAutoGenerate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")
	c, err := Setup(config.TLSConfig{Enabled: true, Dir: dir, AutoGenerate: true, Hosts: []string{"nexus.local", "127.0.0.1"}, MinVersion: "1.3"})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if c.MinVersion != tls.VersionTLS13 {
		t.Fatalf("min version %x", c.MinVersion)
	}
	cert, err := c.GetCertificate(&tls.ClientHelloInfo{})
	if err != nil {
		t.Fatalf("get certificate: %v", err)
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if leaf.Subject.CommonName != "nexus.local" || len(leaf.DNSNames) != 1 || len(leaf.IPAddresses) != 1 {
		t.Fatalf("unexpected leaf: cn=%s dns=%v ip=%v", leaf.Subject.CommonName, leaf.DNSNames, leaf.IPAddresses)
	}
	if _, err := os.Stat(CACertPath(dir)); err != nil {
		t.Fatalf("ca cert not written: %v", err)
	}
	fi, err := os.Stat(filepath.Join(dir, tlsKey))
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm()&0o077 != 0 {
		t.Fatalf("key file too permissive: %v", fi.Mode().Perm())
	}

	// an existing pair is reused
	before, _ := os.ReadFile(filepath.Join(dir, tlsCrt))
	if _, err := Setup(config.TLSConfig{Enabled: true, Dir: dir, AutoGenerate: true}); err != nil {
		t.Fatalf("second setup: %v", err)
	}
	after, _ := os.ReadFile(filepath.Join(dir, tlsCrt))
	if string(before) != string(after) {
		t.Fatal("certificate regenerated")
	}
}

func TestSetupExplicitFiles(t *testing.T) {
	dir := t.TempDir()
	cc := CertConfig{
		CommonName: "localhost",
		Hosts:      []string{"localhost"},
		NotAfter:   timeInDays(1),
		CertPath:   filepath.Join(dir, "server.crt"),
		KeyPath:    filepath.Join(dir, "server.key"),
	}
	if err := GenerateSelfSignedCert(cc); err != nil {
		t.Fatalf("generate: %v", err)
	}
	c, err := Setup(config.TLSConfig{Enabled: true, CertFile: cc.CertPath, KeyFile: cc.KeyPath})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if c.MinVersion != tls.VersionTLS12 {
		t.Fatalf("default min version %x", c.MinVersion)
	}
}

func TestParseTLSVersion(t *testing.T) {
	cases := map[string]uint16{"1.2": tls.VersionTLS12, "TLS1.3": tls.VersionTLS13}
	for in, want := range cases {
		if got, ok := parseTLSVersion(in); !ok || got != want {
			t.Fatalf("%s: got %x %v", in, got, ok)
		}
	}
	if _, ok := parseTLSVersion("1.0"); ok {
		t.Fatal("1.0 must not parse")
	}
}

func TestSafeReadFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(p, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := safeReadFile(dir, p); err != nil {
		t.Fatalf("inside dir: %v", err)
	}
	if _, err := safeReadFile(filepath.Join(dir, "sub"), p); err == nil {
		t.Fatal("expected error for file outside base dir")
	}
}

func timeInDays(d int) time.Time { return time.Now().AddDate(0, 0, d) }
