package certs

import (
	"crypto/x509"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leafOf(t *testing.T, m *FileManager) *x509.Certificate {
	t.Helper()
	cert, err := m.GetOrCreateCertificate()
	require.NoError(t, err)
	require.Len(t, cert.Certificate, 1)
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)
	return leaf
}

func TestGetOrCreateCertificate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")
	m := NewFileManager(dir, "sapflow.plant.local", "10.20.0.5")

	leaf := leafOf(t, m)
	assert.Equal(t, []string{"sapflow"}, leaf.Subject.Organization)
	for _, host := range []string{"localhost", "sapflow.plant.local", "10.20.0.5", "127.0.0.1"} {
		assert.NoError(t, leaf.VerifyHostname(host), host)
	}

	certFile, keyFile := m.Paths()
	info, err := os.Stat(keyFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	_, err = os.Stat(certFile)
	require.NoError(t, err)

	again := leafOf(t, m)
	assert.Equal(t, leaf.SerialNumber, again.SerialNumber, "a valid certificate is reused")
}

func TestGetOrCreateCertificate_Reissues(t *testing.T) {
	tests := []struct {
		setup func(t *testing.T, dir string) *FileManager
		name  string
	}{
		{
			name: "new host",
			setup: func(t *testing.T, dir string) *FileManager {
				t.Helper()
				leafOf(t, NewFileManager(dir))
				return NewFileManager(dir, "sapflow.plant.local")
			},
		},
		{
			name: "about to expire",
			setup: func(t *testing.T, dir string) *FileManager {
				t.Helper()
				leafOf(t, NewFileManager(dir))
				m := NewFileManager(dir)
				m.now = func() time.Time { return time.Now().Add(validity - 24*time.Hour) }
				return m
			},
		},
		{
			name: "corrupt files",
			setup: func(t *testing.T, dir string) *FileManager {
				t.Helper()
				m := NewFileManager(dir)
				require.NoError(t, os.MkdirAll(dir, 0o700))
				certFile, keyFile := m.Paths()
				require.NoError(t, os.WriteFile(certFile, []byte("not a certificate"), 0o600))
				require.NoError(t, os.WriteFile(keyFile, []byte("not a key"), 0o600))
				return m
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			m := tt.setup(t, dir)
			before, err := os.ReadFile(filepath.Join(dir, "sapflow.crt"))
			require.NoError(t, err)

			leafOf(t, m)

			after, err := os.ReadFile(filepath.Join(dir, "sapflow.crt"))
			require.NoError(t, err)
			assert.NotEqual(t, before, after)
		})
	}
}

func TestVerify_HostNotCovered(t *testing.T) {
	dir := t.TempDir()
	cert, err := NewFileManager(dir).GetOrCreateCertificate()
	require.NoError(t, err)

	err = NewFileManager(dir, "other.plant.local").verify(cert)
	assert.ErrorIs(t, err, ErrHostNotCovered)
}
