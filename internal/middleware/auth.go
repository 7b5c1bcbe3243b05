package middleware

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/storehub/auth-service/internal/constants"
	"github.com/storehub/auth-service/internal/service"
	"github.com/storehub/auth-service/pkg/logger"
	"go.uber.org/zap"
)

// StrategyName identifies one of the fixed credential checks.
type StrategyName string

const (
	StrategyBearer StrategyName = "Bearer"
	StrategyAPIKey StrategyName = "ApiKey"
	StrategyNone   StrategyName = "None"
)

// Condition aggregates multiple strategies into one decision.
type Condition string

const (
	ConditionAnd Condition = "and"
	ConditionOr  Condition = "or"
)

// Requirement declares, per route, which strategies must succeed and how
// they combine. It is attached once at route registration and immutable
// afterwards.
type Requirement struct {
	Strategies []StrategyName
	Condition  Condition
}

// DefaultRequirement applies when a route declares nothing: no check.
func DefaultRequirement() Requirement {
	return Requirement{
		Strategies: []StrategyName{StrategyNone},
		Condition:  ConditionAnd,
	}
}

// Strategy is a single credential check. A nil return admits the request;
// a non-nil error denies it. Denial reasons stay inside this package for
// log-level diagnostics only and are never shown to the caller.
type Strategy interface {
	Evaluate(c *gin.Context) error
}

// Per-strategy denial reasons, surfaced only in logs.
var (
	errMissingToken  = errors.New("access token is missing")
	errInvalidToken  = errors.New("access token is invalid")
	errInvalidAPIKey = errors.New("api key is missing or invalid")
	errGuardsFailed  = errors.New("all guards failed")
)

// bearerStrategy admits requests carrying a valid access token in the
// Authorization header and attaches the decoded payload to the request.
type bearerStrategy struct {
	tokens *service.TokenService
}

func (s *bearerStrategy) Evaluate(c *gin.Context) error {
	header := c.GetHeader(constants.HeaderAuthorization)
	if !strings.HasPrefix(header, constants.BearerScheme) {
		return errMissingToken
	}

	tokenString := header[len(constants.BearerScheme):]
	if tokenString == "" {
		return errMissingToken
	}

	payload, err := s.tokens.VerifyAccessToken(tokenString)
	if err != nil {
		return errInvalidToken
	}

	c.Set(constants.CtxKeyUser, payload)
	return nil
}

// apiKeyStrategy compares the x-api-key header against the configured
// secret in constant time.
type apiKeyStrategy struct {
	secret []byte
}

func (s *apiKeyStrategy) Evaluate(c *gin.Context) error {
	key := c.GetHeader(constants.HeaderAPIKey)
	if key == "" {
		return errInvalidAPIKey
	}

	if subtle.ConstantTimeCompare([]byte(key), s.secret) != 1 {
		return errInvalidAPIKey
	}

	return nil
}

// noneStrategy always admits and attaches nothing.
type noneStrategy struct{}

func (s *noneStrategy) Evaluate(c *gin.Context) error {
	return nil
}

// AuthMiddleware resolves route requirements against a static strategy
// registry and evaluates them per request.
type AuthMiddleware struct {
	registry map[StrategyName]Strategy
}

func NewAuthMiddleware(tokenService *service.TokenService, apiKeySecret string) *AuthMiddleware {
	return &AuthMiddleware{
		registry: map[StrategyName]Strategy{
			StrategyBearer: &bearerStrategy{tokens: tokenService},
			StrategyAPIKey: &apiKeyStrategy{secret: []byte(apiKeySecret)},
			StrategyNone:   &noneStrategy{},
		},
	}
}

// resolve maps declared names to strategy instances. Unknown names are a
// configuration error.
func (m *AuthMiddleware) resolve(names []StrategyName) ([]Strategy, error) {
	strategies := make([]Strategy, 0, len(names))
	for _, name := range names {
		strategy, ok := m.registry[name]
		if !ok {
			return nil, fmt.Errorf("unknown auth strategy %q", name)
		}
		strategies = append(strategies, strategy)
	}
	return strategies, nil
}

// evaluate runs the strategies under the requirement's combinator.
//
// OR admits on the first strategy that allows and denies only when every
// strategy has denied. AND denies on the first failure without evaluating
// the rest, so a caller cannot probe which check is misconfigured. An
// empty strategy list allows under AND (vacuous truth) and denies under
// OR (vacuous falsehood).
func evaluate(c *gin.Context, strategies []Strategy, condition Condition) error {
	if condition == ConditionOr {
		err := errGuardsFailed
		for _, strategy := range strategies {
			if guardErr := strategy.Evaluate(c); guardErr == nil {
				return nil
			} else {
				err = guardErr
			}
		}
		logger.GetLogger().Debug("All auth strategies denied",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		return errGuardsFailed
	}

	for _, strategy := range strategies {
		if guardErr := strategy.Evaluate(c); guardErr != nil {
			logger.GetLogger().Debug("Auth strategy denied",
				zap.String("path", c.Request.URL.Path),
				zap.Error(guardErr))
			return errGuardsFailed
		}
	}
	return nil
}

// Require builds the gin middleware for a route requirement. Requirements
// are resolved here, at registration time, so an unknown strategy name
// aborts startup instead of surfacing on the first request.
func (m *AuthMiddleware) Require(req Requirement) gin.HandlerFunc {
	strategies, err := m.resolve(req.Strategies)
	if err != nil {
		panic(err)
	}

	condition := req.Condition
	if condition == "" {
		condition = ConditionAnd
	}

	return func(c *gin.Context) {
		if err := evaluate(c, strategies, condition); err != nil {
			logger.GetLogger().Warn("Request denied by auth policy",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()))
			c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgUnauthorized, nil))
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAuth is the common case: a single Bearer check.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return m.Require(Requirement{
		Strategies: []StrategyName{StrategyBearer},
		Condition:  ConditionAnd,
	})
}

// CurrentUser reads the verified token payload attached by the Bearer
// strategy. The second return is false on routes that admitted the
// request without a bearer token.
func CurrentUser(c *gin.Context) (*service.TokenPayload, bool) {
	value, exists := c.Get(constants.CtxKeyUser)
	if !exists {
		return nil, false
	}

	payload, ok := value.(*service.TokenPayload)
	return payload, ok
}
