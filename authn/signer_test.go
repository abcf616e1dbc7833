package authn

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

type staticSigner struct {
	sig         []byte
	algorithm   string
	fingerprint string
}

func (s *staticSigner) Sign([]byte) ([]byte, error) { return s.sig, nil }
func (s *staticSigner) Algorithm() string           { return s.algorithm }
func (s *staticSigner) Fingerprint() string         { return s.fingerprint }

func TestSigningString(t *testing.T) {
	got := SigningString("GET", "/admin/machines?limit=1000", "Thu, 28 Aug 2026 12:00:00 GMT")
	want := "(request-target): get /admin/machines?limit=1000\ndate: Thu, 28 Aug 2026 12:00:00 GMT"
	assert.Equal(t, want, got)
}

func TestAuthorizationHeader(t *testing.T) {
	signer := &staticSigner{
		sig:         []byte("raw-signature"),
		algorithm:   "rsa-sha256",
		fingerprint: "SHA256:yV8GlKTmJYofvZsqXMdtsnfAcDsjh25C7M6kuwnVja8",
	}
	authz, err := AuthorizationHeader(signer, "admin", SigningString("GET", "/admin", "date"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(authz, "Signature "))
	assert.Contains(t, authz, fmt.Sprintf("keyId=%q", "/admin/keys/"+signer.fingerprint))
	assert.Contains(t, authz, `algorithm="rsa-sha256"`)
	assert.Contains(t, authz, fmt.Sprintf("headers=%q", SignedHeaders))
	assert.Contains(t, authz, fmt.Sprintf("signature=%q", base64.StdEncoding.EncodeToString(signer.sig)))
}

func TestMatchesFingerprint(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	sshPub, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)

	md5Form, sha256Form := FingerprintsOf(sshPub)

	assert.True(t, MatchesFingerprint(md5Form, sshPub))
	assert.True(t, MatchesFingerprint("MD5:"+md5Form, sshPub))
	assert.True(t, MatchesFingerprint(sha256Form, sshPub))
	assert.False(t, MatchesFingerprint("SHA256:AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", sshPub))
	assert.False(t, MatchesFingerprint("", sshPub))
}
