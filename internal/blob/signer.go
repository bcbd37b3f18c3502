package blob

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrBadToken токен ссылки на блоб не прошёл проверку или истёк.
var ErrBadToken = errors.New("invalid blob token")

type blobClaims struct {
	jwt.RegisteredClaims
	Ref string `json:"ref"`
}

// URLSigner выдаёт подписанные ссылки /blobs/{token} для локальных хранилищ.
type URLSigner struct {
	secret  []byte
	baseURL string
	ttl     time.Duration
	now     func() time.Time
}

func NewURLSigner(secret, baseURL string, ttl time.Duration) *URLSigner {
	return &URLSigner{secret: []byte(secret), baseURL: baseURL, ttl: ttl, now: time.Now}
}

// Sign возвращает полную ссылку на блоб.
func (s *URLSigner) Sign(ref string) (string, error) {
	now := s.now()
	claims := blobClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Ref: ref,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign blob url: %w", err)
	}
	return s.baseURL + "/blobs/" + token, nil
}

// Verify проверяет токен и возвращает ref.
func (s *URLSigner) Verify(token string) (string, error) {
	claims := &blobClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid || claims.Ref == "" {
		return "", ErrBadToken
	}
	return claims.Ref, nil
}
