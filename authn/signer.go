// Package authn produces HTTP-Signature authentication for CloudAPI
// requests, signing with a local PEM private key or via the SSH agent. Keys
// are identified by fingerprint (MD5 colon-hex or SHA256 form).
package authn

import (
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"
)

// Signer signs the HTTP-Signature signing string for a single key. Signers
// are stateless and safe for concurrent use.
type Signer interface {
	// Sign returns the raw signature over data.
	Sign(data []byte) ([]byte, error)
	// Algorithm is the HTTP-Signature algorithm label (e.g. "rsa-sha256").
	Algorithm() string
	// Fingerprint is the canonical fingerprint of the signing key as given
	// by the profile's keyId.
	Fingerprint() string
}

// SignedHeaders is the HTTP-Signature "headers" parameter every request
// signs over.
const SignedHeaders = "(request-target) date"

// SigningString assembles the HTTP-Signature signing string for the request
// line and date.
func SigningString(method, requestURI, date string) string {
	return fmt.Sprintf("(request-target): %s %s\ndate: %s", strings.ToLower(method), requestURI, date)
}

// AuthorizationHeader signs the signing string and renders the full
// Authorization header value. The keyId parameter is the CloudAPI key path,
// "/<account>/keys/<fingerprint>".
func AuthorizationHeader(s Signer, account, signingString string) (string, error) {
	sig, err := s.Sign([]byte(signingString))
	if err != nil {
		return "", err
	}
	keyID := fmt.Sprintf("/%s/keys/%s", account, s.Fingerprint())
	return fmt.Sprintf("Signature keyId=%q,algorithm=%q,headers=%q,signature=%q",
		keyID, s.Algorithm(), SignedHeaders, base64.StdEncoding.EncodeToString(sig)), nil
}

// FingerprintsOf returns both fingerprint forms of pub: the legacy MD5
// colon-hex form and the OpenSSH SHA256 form.
func FingerprintsOf(pub ssh.PublicKey) (md5Form, sha256Form string) {
	return ssh.FingerprintLegacyMD5(pub), ssh.FingerprintSHA256(pub)
}

// MatchesFingerprint reports whether keyID identifies pub. Both the MD5
// colon-hex form (with or without an "MD5:" prefix, any case) and the
// "SHA256:..." form are accepted.
func MatchesFingerprint(keyID string, pub ssh.PublicKey) bool {
	md5Form, sha256Form := FingerprintsOf(pub)
	normalized := strings.TrimPrefix(strings.ToLower(keyID), "md5:")
	if normalized == md5Form {
		return true
	}
	return keyID == sha256Form
}
