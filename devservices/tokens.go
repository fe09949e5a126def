package devservices

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/ruteri/vc-storage-client/interfaces"
)

// DefaultNetwork is the DID network of generated identities.
const DefaultNetwork = "testnet"

// ErrInvalidToken is returned when a credential or authorization token fails verification.
var ErrInvalidToken = errors.New("invalid token")

// ContentID derives the CIDv1 (raw, sha2-256) of data.
func ContentID(data []byte) (interfaces.CID, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return "", err
	}
	return interfaces.CID(cid.NewCidV1(cid.Raw, sum).String()), nil
}

// NewIdentity generates a fresh secp256k1 key and returns its did:nda identifier.
func NewIdentity(network string) (interfaces.DID, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return "", fmt.Errorf("could not generate key: %w", err)
	}
	return interfaces.DIDFromAddress(network, crypto.PubkeyToAddress(key.PublicKey)), nil
}

// Keys holds the signing secrets shared by the two services.
type Keys struct {
	// Credential signs VCs minted by the file manager.
	Credential []byte
	// Authorization signs tokens issued by the presentation service.
	Authorization []byte
}

// NewKeys generates random signing secrets.
func NewKeys() (Keys, error) {
	keys := Keys{Credential: make([]byte, 32), Authorization: make([]byte, 32)}
	if _, err := rand.Read(keys.Credential); err != nil {
		return Keys{}, err
	}
	if _, err := rand.Read(keys.Authorization); err != nil {
		return Keys{}, err
	}
	return keys, nil
}

// AccessClaims is the payload of both token kinds: the subject (holder) may read CID.
type AccessClaims struct {
	jwt.RegisteredClaims
	CID string `json:"cid"`
}

func signAccess(key []byte, issuer, holder interfaces.DID, cid interfaces.CID, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    string(issuer),
			Subject:   string(holder),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		CID: string(cid),
	})
	return token.SignedString(key)
}

func verifyAccess(key []byte, tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" || claims.CID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
