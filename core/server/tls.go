package server

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"time"
)

// buildTLSConfig is the TLS bootstrap step of Start. It returns nil when TLS
// is disabled, performing no certificate work at all. With TLS enabled it
// loads the configured cert/key pair, or generates a self-signed certificate
// when either path is absent. All failures abort startup before bind.
func buildTLSConfig(cfg Config) (*tls.Config, error) {
	if !cfg.TLS {
		return nil, nil
	}

	if cfg.TLSCertFile == "" || cfg.TLSKeyFile == "" {
		cert, err := generateSelfSigned(cfg.Host)
		if err != nil {
			return nil, fmt.Errorf("%w: self-signed certificate: %v", ErrTLSInitialization, err)
		}
		return newTLSConfig(cert), nil
	}

	cert, err := loadKeyPair(cfg.TLSCertFile, cfg.TLSKeyFile, cfg.TLSKeyPassword)
	if err != nil {
		return nil, err
	}
	return newTLSConfig(cert), nil
}

// loadKeyPair reads and validates operator-supplied certificate material.
// Unreadable paths are configuration errors; structurally invalid certificate
// material is a TLS initialization error; an undecodable or mismatched
// private key is a key load error.
func loadKeyPair(certFile, keyFile, keyPassword string) (tls.Certificate, error) {
	certPEM, err := os.ReadFile(certFile)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("%w: reading certificate %s: %v", ErrInvalidConfig, certFile, err)
	}
	keyPEM, err := os.ReadFile(keyFile)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("%w: reading private key %s: %v", ErrInvalidConfig, keyFile, err)
	}

	certBlock, _ := pem.Decode(certPEM)
	if certBlock == nil {
		return tls.Certificate{}, fmt.Errorf("%w: %s contains no PEM data", ErrTLSInitialization, certFile)
	}
	if _, err := x509.ParseCertificate(certBlock.Bytes); err != nil {
		return tls.Certificate{}, fmt.Errorf("%w: parsing %s: %v", ErrTLSInitialization, certFile, err)
	}

	keyBlock, _ := pem.Decode(keyPEM)
	if keyBlock == nil {
		return tls.Certificate{}, fmt.Errorf("%w: %s contains no PEM data", ErrKeyLoad, keyFile)
	}

	if keyPassword != "" {
		// Legacy PEM encryption is the only passphrase scheme supported here.
		//nolint:staticcheck // x509.DecryptPEMBlock is deprecated but required for legacy encrypted keys
		der, err := x509.DecryptPEMBlock(keyBlock, []byte(keyPassword))
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("%w: decrypting %s: %v", ErrKeyLoad, keyFile, err)
		}
		keyPEM = pem.EncodeToMemory(&pem.Block{Type: keyBlock.Type, Bytes: der})
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		// The certificate already parsed above, so remaining failures are
		// key-side: undecodable material or a key/cert mismatch.
		return tls.Certificate{}, fmt.Errorf("%w: %v", ErrKeyLoad, err)
	}
	return cert, nil
}

// generateSelfSigned creates a one-year ECDSA P-256 identity for hosts with
// no operator-supplied certificate. Not CA-signed; clients must opt in to
// trusting it.
func generateSelfSigned(host string) (tls.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, err
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, err
	}

	template := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: "self-signed"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
	}
	if ip := net.ParseIP(host); ip != nil {
		template.IPAddresses = append(template.IPAddresses, ip)
	} else if host != "" {
		template.DNSNames = append(template.DNSNames, host)
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, err
	}

	leaf, err := x509.ParseCertificate(der)
	if err != nil {
		return tls.Certificate{}, err
	}

	return tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  key,
		Leaf:        leaf,
	}, nil
}

// newTLSConfig wraps a certificate in the baseline TLS profile: TLS 1.2+
// with forward-secret cipher suites, per Mozilla's modern compatibility
// recommendations.
func newTLSConfig(cert tls.Certificate) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
		CipherSuites: []uint16{
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
		},
		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
		},
	}
}
