package authn

import (
	"net"
	"os"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"

	"github.com/tritoncli/triton/errs"
)

// agentSigner signs via the user's SSH agent. The identity is selected by
// fingerprint at construction; each Sign is a round-trip to the agent.
type agentSigner struct {
	fingerprint string
	algorithm   string
	client      agent.Agent
	key         ssh.PublicKey
}

// agentAlgorithms maps SSH wire signature formats to HTTP-Signature
// algorithm labels. The agent protocol picks the hash, so RSA identities
// sign rsa-sha1 unless the agent supports rsa-sha2.
var agentAlgorithms = map[string]string{
	ssh.KeyAlgoRSA:       "rsa-sha1",
	ssh.KeyAlgoRSASHA256: "rsa-sha256",
	ssh.KeyAlgoRSASHA512: "rsa-sha512",
	ssh.KeyAlgoECDSA256:  "ecdsa-sha256",
	ssh.KeyAlgoECDSA384:  "ecdsa-sha384",
	ssh.KeyAlgoECDSA521:  "ecdsa-sha512",
	ssh.KeyAlgoED25519:   "ed25519",
}

// NewAgentSigner connects to the SSH agent at socketPath (default
// $SSH_AUTH_SOCK) and selects the identity whose fingerprint is keyID.
func NewAgentSigner(keyID, socketPath string) (Signer, error) {
	if socketPath == "" {
		socketPath = os.Getenv("SSH_AUTH_SOCK")
	}
	if socketPath == "" {
		return nil, errs.New(errs.KindAuth, "no ssh-agent socket: SSH_AUTH_SOCK is not set")
	}

	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, errs.Wrap(errs.KindAuth, err, "connecting to ssh-agent at %q", socketPath)
	}
	client := agent.NewClient(conn)

	keys, err := client.List()
	if err != nil {
		return nil, errs.Wrap(errs.KindAuth, err, "listing ssh-agent identities")
	}
	for _, key := range keys {
		pub, err := ssh.ParsePublicKey(key.Marshal())
		if err != nil {
			continue
		}
		if MatchesFingerprint(keyID, pub) {
			return &agentSigner{
				fingerprint: keyID,
				algorithm:   agentAlgorithms[pub.Type()],
				client:      client,
				key:         pub,
			}, nil
		}
	}
	return nil, errs.New(errs.KindAuth,
		"no ssh-agent identity matches keyId %q (%d identities listed)", keyID, len(keys))
}

func (s *agentSigner) Sign(data []byte) ([]byte, error) {
	sig, err := s.client.Sign(s.key, data)
	if err != nil {
		return nil, errs.Wrap(errs.KindAuth, err, "ssh-agent refused to sign")
	}
	return sig.Blob, nil
}

func (s *agentSigner) Algorithm() string   { return s.algorithm }
func (s *agentSigner) Fingerprint() string { return s.fingerprint }
