package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

func testAuthService(t *testing.T, expiry time.Duration) *AuthService {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewAuthService(nil, "test-secret", expiry, logger)
}

func TestTokenRoundTrip(t *testing.T) {
	svc := testAuthService(t, time.Hour)

	token, err := svc.GenerateJWTToken("7f9c24e5-2b31-4bce-a8f0-9ac6c0f2b6b1")
	if err != nil {
		t.Fatalf("не удалось сгенерировать токен: %v", err)
	}

	userID, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("не удалось распознать собственный токен: %v", err)
	}
	if userID != "7f9c24e5-2b31-4bce-a8f0-9ac6c0f2b6b1" {
		t.Errorf("из токена извлечен чужой subject: %s", userID)
	}
}

func TestParseTokenExpired(t *testing.T) {
	svc := testAuthService(t, -time.Minute)

	token, err := svc.GenerateJWTToken("user")
	if err != nil {
		t.Fatalf("не удалось сгенерировать токен: %v", err)
	}

	if _, err := svc.ParseToken(token); err == nil {
		t.Fatal("просроченный токен принят")
	}
}

func TestParseTokenForeignIssuer(t *testing.T) {
	svc := testAuthService(t, time.Hour)

	// Токен с правильной подписью, но чужим издателем
	claims := jwt.RegisteredClaims{
		Issuer:    "другой-сервис",
		Subject:   "user",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("не удалось подписать токен: %v", err)
	}

	if _, err := svc.ParseToken(foreign); err == nil {
		t.Fatal("токен чужого издателя принят")
	}
}

func TestParseTokenGarbage(t *testing.T) {
	svc := testAuthService(t, time.Hour)

	if _, err := svc.ParseToken("не.токен.вовсе"); err == nil {
		t.Fatal("мусорная строка принята за токен")
	}
}
