package authn

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"os"

	"golang.org/x/crypto/ssh"

	"github.com/tritoncli/triton/errs"
)

// privateKeySigner signs with an in-memory private key parsed from a PEM
// file.
type privateKeySigner struct {
	fingerprint string
	algorithm   string
	signFn      func(data []byte) ([]byte, error)
}

// NewPrivateKeySigner loads the PEM private key at path and returns a signer
// for it. keyID must be a fingerprint of the key's public half; passphrase
// is consulted only for encrypted keys.
func NewPrivateKeySigner(keyID, path string, passphrase []byte) (Signer, error) {
	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.KindAuth, err, "reading private key %q", path)
	}

	raw, err := ssh.ParseRawPrivateKey(pemBytes)
	if _, missing := err.(*ssh.PassphraseMissingError); missing {
		if len(passphrase) == 0 {
			return nil, errs.New(errs.KindAuth, "private key %q is encrypted and no passphrase was provided", path)
		}
		raw, err = ssh.ParseRawPrivateKeyWithPassphrase(pemBytes, passphrase)
	}
	if err != nil {
		return nil, errs.Wrap(errs.KindAuth, err, "parsing private key %q", path)
	}

	sshSigner, err := ssh.NewSignerFromKey(raw)
	if err != nil {
		return nil, errs.Wrap(errs.KindAuth, err, "deriving public key from %q", path)
	}
	if !MatchesFingerprint(keyID, sshSigner.PublicKey()) {
		md5Form, sha256Form := FingerprintsOf(sshSigner.PublicKey())
		return nil, errs.New(errs.KindAuth,
			"private key %q does not match keyId %q (key fingerprints: %s, %s)",
			path, keyID, md5Form, sha256Form)
	}

	s := &privateKeySigner{fingerprint: keyID}
	switch key := raw.(type) {
	case *rsa.PrivateKey:
		s.algorithm = "rsa-sha256"
		s.signFn = func(data []byte) ([]byte, error) {
			digest := sha256.Sum256(data)
			return rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
		}
	case *ecdsa.PrivateKey:
		s.algorithm = "ecdsa-sha256"
		s.signFn = func(data []byte) ([]byte, error) {
			digest := sha256.Sum256(data)
			return ecdsa.SignASN1(rand.Reader, key, digest[:])
		}
	case *ed25519.PrivateKey:
		s.algorithm = "ed25519"
		s.signFn = func(data []byte) ([]byte, error) {
			return ed25519.Sign(*key, data), nil
		}
	case ed25519.PrivateKey:
		s.algorithm = "ed25519"
		s.signFn = func(data []byte) ([]byte, error) {
			return ed25519.Sign(key, data), nil
		}
	default:
		return nil, errs.New(errs.KindAuth, "unsupported private key type %T in %q", raw, path)
	}
	return s, nil
}

func (s *privateKeySigner) Sign(data []byte) ([]byte, error) {
	sig, err := s.signFn(data)
	if err != nil {
		return nil, errs.Wrap(errs.KindAuth, err, "signing request")
	}
	return sig, nil
}

func (s *privateKeySigner) Algorithm() string   { return s.algorithm }
func (s *privateKeySigner) Fingerprint() string { return s.fingerprint }
