// Package ingest accepts signed game results and turns them into wins.
package ingest

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"

	"github.com/osse101/WinLedger_Go/internal/domain"
	"github.com/osse101/WinLedger_Go/internal/ledger"
	"github.com/osse101/WinLedger_Go/internal/logger"
	"github.com/osse101/WinLedger_Go/internal/metrics"
	"github.com/osse101/WinLedger_Go/internal/repository"
)

// Client is one participant of a game result
type Client struct {
	Username string `json:"username" validate:"required,max=64"`
}

// ResultClaims is the payload of a signed game result
type ResultClaims struct {
	Points  float64  `json:"points" validate:"gt=0"`
	Clan    string   `json:"clan" validate:"required"`
	Clients []Client `json:"clients" validate:"required,min=1,dive"`
	jwt.RegisteredClaims
}

// Award is the ledger outcome for one client. Err is set when the win was not registered.
type Award struct {
	MemberID string         `json:"member_id"`
	Result   *ledger.Result `json:"result,omitempty"`
	Err      string         `json:"error,omitempty"`
}

// Outcome summarizes an accepted game result
type Outcome struct {
	RawPoints  int64              `json:"raw_points"`
	Points     int64              `json:"points"`
	Multiplier *domain.Multiplier `json:"multiplier,omitempty"`
	Awards     []Award            `json:"awards"`
}

// Multipliers applies the active guild multiplier to raw points
type Multipliers interface {
	Resolve(ctx context.Context, guildID string, raw int64) (int64, *domain.Multiplier, error)
}

// Service defines the interface for game result ingestion
type Service interface {
	// Submit verifies token and registers a win for every client of the result
	Submit(ctx context.Context, guildID, token string) (*Outcome, error)
}

type service struct {
	key         *rsa.PublicKey
	guilds      repository.GuildConfigs
	multipliers Multipliers
	ledger      ledger.Service
	validate    *validator.Validate
}

// NewService creates a new ingestion service verifying tokens with key
func NewService(key *rsa.PublicKey, guilds repository.GuildConfigs, multipliers Multipliers, ledgerSvc ledger.Service) Service {
	return &service{
		key:         key,
		guilds:      guilds,
		multipliers: multipliers,
		ledger:      ledgerSvc,
		validate:    validator.New(),
	}
}

// LoadPublicKey reads a PEM encoded RSA public key
func LoadPublicKey(path string) (*rsa.PublicKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgReadKey, err)
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(raw)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgParseKey, err)
	}
	return key, nil
}

func (s *service) Submit(ctx context.Context, guildID, token string) (*Outcome, error) {
	log := logger.FromContext(ctx)

	cfg, err := s.guilds.GetGuildConfig(ctx, guildID)
	if err != nil {
		return nil, s.fail(ctx, OutcomeFailed, err)
	}

	claims, err := s.verify(token)
	if err != nil {
		outcome := OutcomeMalformed
		if errors.Is(err, ErrUnauthorized) {
			outcome = OutcomeUnauthorized
		}
		return nil, s.fail(ctx, outcome, err)
	}
	if claims.Clan != guildID {
		return nil, s.fail(ctx, OutcomeForbidden, fmt.Errorf("%w: %s", ErrClanMismatch, claims.Clan))
	}
	if !cfg.AutoPoints {
		return nil, s.fail(ctx, OutcomeForbidden, domain.ErrAutoPointsDisabled)
	}

	raw, err := ledger.DeltaFromFloat(claims.Points)
	if err != nil || raw <= 0 {
		return nil, s.fail(ctx, OutcomeMalformed, fmt.Errorf("%w: "+ErrMsgPoints, ErrMalformedResult, claims.Points))
	}
	points, m, err := s.multipliers.Resolve(ctx, guildID, raw)
	if err != nil {
		return nil, s.fail(ctx, OutcomeFailed, err)
	}

	out := &Outcome{RawPoints: raw, Points: points, Multiplier: m, Awards: make([]Award, 0, len(claims.Clients))}
	for _, c := range claims.Clients {
		award := Award{MemberID: c.Username}
		res, err := s.ledger.RegisterWin(ctx, guildID, c.Username, points)
		if err != nil {
			log.Warn(LogMsgAwardFailed, "guild_id", guildID, "member_id", c.Username, "error", err)
			award.Err = err.Error()
		} else {
			award.Result = res
		}
		out.Awards = append(out.Awards, award)
	}

	metrics.IngestResults.WithLabelValues(OutcomeAccepted).Inc()
	log.Info(LogMsgResultAccepted, "guild_id", guildID, "points", points, "clients", len(claims.Clients))
	return out, nil
}

// verify checks the signature and shape of token
func (s *service) verify(token string) (*ResultClaims, error) {
	claims := &ResultClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(token), claims, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{SigningMethod}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if err := s.validate.Struct(claims); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedResult, describe(err))
	}
	return claims, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf(ErrMsgClaimsField, strings.ToLower(fe.Namespace()), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}

func (s *service) fail(ctx context.Context, outcome string, err error) error {
	metrics.IngestResults.WithLabelValues(outcome).Inc()
	logger.FromContext(ctx).Warn(LogMsgResultRejected, "outcome", outcome, "error", err)
	return err
}
