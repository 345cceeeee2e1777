package redisstore

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/invorya/cyclecount-api/internal/application/cyclecount"
)

var _ cyclecount.OtpService = (*OtpService)(nil)

const otpKeyPrefix = "cyclecount:otp:"

// verifyConsumeScript compara y borra en un solo paso: el código solo se
// consume cuando coincide. Un intento fallido deja el reto vivo.
var verifyConsumeScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	redis.call('DEL', KEYS[1])
	return 1
end
return 0
`)

// OtpService emite y verifica códigos de 6 dígitos atados a la sesión,
// almacenados en Redis con TTL. Emitir de nuevo reemplaza el reto anterior.
type OtpService struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOtpService construye el servicio con la vigencia configurada.
func NewOtpService(client *redis.Client, ttl time.Duration) *OtpService {
	return &OtpService{client: client, ttl: ttl}
}

// Issue genera un código aleatorio (crypto/rand) de 6 dígitos y lo guarda con TTL.
func (s *OtpService) Issue(ctx context.Context, sessionID string) (*cyclecount.OtpChallenge, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return nil, fmt.Errorf("generar código: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())

	if err := s.client.Set(ctx, otpKeyPrefix+sessionID, code, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("guardar reto OTP: %w", err)
	}
	return &cyclecount.OtpChallenge{
		ChallengeID: uuid.New().String(),
		ExpiresAt:   time.Now().UTC().Add(s.ttl),
	}, nil
}

// VerifyAndConsume compara el código contra el reto vivo. Si coincide lo
// consume atómicamente (script GET+DEL): un código usado no vale para retry.
// Reto vencido o ausente cuenta como no coincidente.
func (s *OtpService) VerifyAndConsume(ctx context.Context, sessionID, code string) (bool, error) {
	res, err := verifyConsumeScript.Run(ctx, s.client, []string{otpKeyPrefix + sessionID}, code).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("verificar OTP: %w", err)
	}
	return res == 1, nil
}
