package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"net"
	"time"

	"github.com/PARC/ccnxFileRepo/pkg/constants"
)

// selfSignedTLSConfig generates an ephemeral, process-local self-signed
// certificate for the "serve" producer. The spec scopes key/identity
// management out of this repository, so there is no CA to issue from;
// a fresh self-signed leaf per process is the honest floor below that.
func selfSignedTLSConfig() (*tls.Config, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("generate server key: %w", err)
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{Organization: []string{"ccnxfilerepo"}},
		NotBefore:    time.Now().Add(-time.Minute),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IPAddresses:  []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
		DNSNames:     []string{"localhost"},
	}
	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("create server certificate: %w", err)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{{
			Certificate: [][]byte{certDER},
			PrivateKey:  key,
		}},
		NextProtos: []string{constants.ALPN},
		MinVersion: tls.VersionTLS13,
	}, nil
}

// insecureClientTLSConfig builds the "fetch" consumer's TLS config. With no
// CA to validate the producer's self-signed leaf against, the client skips
// verification; authenticating the producer is out of scope (see the
// key/identity Non-goal).
func insecureClientTLSConfig() *tls.Config {
	return &tls.Config{
		NextProtos:         []string{constants.ALPN},
		InsecureSkipVerify: true,
		MinVersion:         tls.VersionTLS13,
	}
}
