package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ShortlinkService 签名短链：仅编码目标地址与签发时间，无落库。
type ShortlinkService struct {
	secret []byte
	ttl    time.Duration // <=0 表示永不过期
	now    func() time.Time
}

// NewShortlinkService 创建短链服务
func NewShortlinkService(secret string, ttl time.Duration) *ShortlinkService {
	return &ShortlinkService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

type shortlinkPayload struct {
	URL      string `json:"u"`
	IssuedAt int64  `json:"ts"`
}

// Sign 生成跳转令牌：base64url(JSON{u,ts}) + "." + hex(HMAC-SHA256)
func (s *ShortlinkService) Sign(targetURL string) (string, error) {
	if strings.TrimSpace(targetURL) == "" {
		return "", fmt.Errorf("%w: empty target url", ErrInvalidParam)
	}
	raw, err := json.Marshal(shortlinkPayload{URL: targetURL, IssuedAt: s.now().Unix()})
	if err != nil {
		return "", err
	}
	body := base64.RawURLEncoding.EncodeToString(raw)
	return body + "." + s.mac(body), nil
}

// Resolve 校验令牌并还原目标地址
func (s *ShortlinkService) Resolve(token string) (string, error) {
	body, sig, ok := strings.Cut(token, ".")
	if !ok || body == "" || sig == "" {
		return "", ErrTokenInvalid
	}
	if !hmac.Equal([]byte(sig), []byte(s.mac(body))) {
		return "", ErrTokenInvalid
	}

	raw, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return "", ErrTokenInvalid
	}
	var payload shortlinkPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.URL == "" {
		return "", ErrTokenInvalid
	}

	if s.ttl > 0 {
		issued := time.Unix(payload.IssuedAt, 0)
		if s.now().Sub(issued) > s.ttl {
			return "", ErrTokenExpired
		}
	}
	return payload.URL, nil
}

func (s *ShortlinkService) mac(body string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(body))
	return hex.EncodeToString(h.Sum(nil))
}
