package services

import (
  "context"
  "errors"
  "fmt"
  "time"
  "github.com/google/uuid"
  "golang.org/x/crypto/bcrypt"
  "gorm.io/gorm"
  redisclient "github.com/varzia/worldcup-backend/internal/clients/redis"
  "github.com/varzia/worldcup-backend/internal/clients/smsir"
  "github.com/varzia/worldcup-backend/internal/logger"
  "github.com/varzia/worldcup-backend/internal/repos"
  "github.com/varzia/worldcup-backend/internal/types"
  "github.com/varzia/worldcup-backend/internal/utils"
)

var (
  ErrInvalidPhone    = errors.New("invalid phone number")
  ErrRateLimited     = errors.New("rate limit exceeded, wait before requesting another code")
  ErrTooManyAttempts = errors.New("too many verification attempts, wait and try again")
  ErrOTPNotFound     = errors.New("otp code expired or not found, request a new code")
  ErrOTPExpired      = errors.New("otp code has expired, request a new code")
  ErrOTPInvalid      = errors.New("invalid otp code")
  ErrSMSUnavailable  = errors.New("failed to send sms, try again later")
  ErrSessionNotFound = errors.New("session not found")
)

type AuthResponse struct {
  Token string       `json:"token"`
  User  *types.User  `json:"user"`
}

type otpData struct {
  Code      string   `json:"code"`
  ExpiresAt int64    `json:"expiresAt"`
  Attempts  int      `json:"attempts"`
}

type AuthService interface {
  SendOTP(ctx context.Context, phone, clientIP string) error
  VerifyOTP(ctx context.Context, phone, code, userAgent, clientIP string) (*AuthResponse, error)
  GetUserSessions(ctx context.Context, userID uuid.UUID) ([]*types.UserSession, error)
  DeleteSession(ctx context.Context, userID, sessionID uuid.UUID) error
  ValidateToken(ctx context.Context, token string) (*types.User, error)
}

type authService struct {
  db                *gorm.DB
  log               *logger.Logger
  userRepo          repos.UserRepo
  sessionRepo       repos.UserSessionRepo
  kv                redisclient.KV
  sms               smsir.Client
  otpCodeTTL        time.Duration
  sendLimitTTL      time.Duration
  verifyAttemptsTTL time.Duration
  verifyMaxAttempts int
  bcryptCost        int
  sessionTTL        time.Duration
}

func NewAuthService(
  db *gorm.DB,
  log *logger.Logger,
  userRepo repos.UserRepo,
  sessionRepo repos.UserSessionRepo,
  kv redisclient.KV,
  sms smsir.Client,
) AuthService {
  serviceLog := log.With("service", "AuthService")
  otpCodeTTL := utils.GetEnvAsInt("OTP_CODE_TTL", 120, log)
  sendLimitTTL := utils.GetEnvAsInt("OTP_SEND_LIMIT_TTL", 120, log)
  verifyAttemptsTTL := utils.GetEnvAsInt("OTP_VERIFY_ATTEMPTS_TTL", 60, log)
  verifyMaxAttempts := utils.GetEnvAsInt("OTP_VERIFY_MAX_ATTEMPTS", 5, log)
  bcryptCost := utils.GetEnvAsInt("BCRYPT_SALT_ROUNDS", 12, log)
  return &authService{
    db:                db,
    log:               serviceLog,
    userRepo:          userRepo,
    sessionRepo:       sessionRepo,
    kv:                kv,
    sms:               sms,
    otpCodeTTL:        time.Duration(otpCodeTTL) * time.Second,
    sendLimitTTL:      time.Duration(sendLimitTTL) * time.Second,
    verifyAttemptsTTL: time.Duration(verifyAttemptsTTL) * time.Second,
    verifyMaxAttempts: verifyMaxAttempts,
    bcryptCost:        bcryptCost,
    sessionTTL:        30 * 24 * time.Hour,
  }
}

func otpKey(phone string) string          { return "otp:phone:" + phone }
func sendLimitKey(phone string) string    { return "otp:send:limit:" + phone }
func sendLimitIPKey(ip string) string     { return "otp:send:limit:ip:" + ip }
func verifyAttemptsKey(phone string) string { return "otp:verify:attempts:" + phone }

func (as *authService) SendOTP(ctx context.Context, phone, clientIP string) error {
  if !smsir.IsValidPhone(phone) {
    return ErrInvalidPhone
  }

  if err := as.checkSendRateLimit(ctx, phone, clientIP); err != nil {
    return err
  }

  code := smsir.GenerateCode()
  data := otpData{
    Code:      code,
    ExpiresAt: time.Now().Add(as.otpCodeTTL).UnixMilli(),
    Attempts:  0,
  }
  if err := as.kv.SetJSON(ctx, otpKey(phone), data, as.otpCodeTTL); err != nil {
    return fmt.Errorf("store otp: %w", err)
  }

  if err := as.setSendRateLimit(ctx, phone, clientIP); err != nil {
    as.log.Warn("Failed to set send rate limit", "phone", phone, "error", err)
  }

  status, err := as.sms.SendOTP(ctx, phone, code)
  if err != nil {
    as.log.Error("SMS send failed", "phone", phone, "error", err)
    return ErrSMSUnavailable
  }
  if status != 200 && status != 201 {
    as.log.Error("SMS provider rejected send", "phone", phone, "status", status)
    return ErrSMSUnavailable
  }

  as.log.Info("OTP sent", "phone", phone)
  return nil
}

func (as *authService) VerifyOTP(ctx context.Context, phone, code, userAgent, clientIP string) (*AuthResponse, error) {
  if err := as.checkVerifyRateLimit(ctx, phone); err != nil {
    return nil, err
  }

  var data otpData
  hit, err := as.kv.GetJSON(ctx, otpKey(phone), &data)
  if err != nil {
    return nil, fmt.Errorf("read otp: %w", err)
  }
  if !hit {
    return nil, ErrOTPNotFound
  }

  if time.Now().UnixMilli() > data.ExpiresAt {
    _ = as.kv.Del(ctx, otpKey(phone))
    return nil, ErrOTPExpired
  }

  if data.Code != code {
    data.Attempts++
    remaining, ttlErr := as.kv.TTL(ctx, otpKey(phone))
    if ttlErr == nil && remaining > 0 {
      _ = as.kv.SetJSON(ctx, otpKey(phone), data, remaining)
    }
    as.incrementVerifyAttempts(ctx, phone)
    return nil, ErrOTPInvalid
  }

  _ = as.kv.Del(ctx, otpKey(phone))

  user, err := as.userRepo.GetByPhone(ctx, nil, phone)
  if err != nil {
    return nil, fmt.Errorf("find user: %w", err)
  }
  if user == nil {
    user, err = as.userRepo.Create(ctx, nil, &types.User{Phone: phone, IsVerified: true})
    if err != nil {
      return nil, fmt.Errorf("create user: %w", err)
    }
  } else if !user.IsVerified {
    user.IsVerified = true
    if err := as.userRepo.Save(ctx, nil, user); err != nil {
      return nil, fmt.Errorf("mark user verified: %w", err)
    }
  }

  token := uuid.NewString()
  tokenHash, err := bcrypt.GenerateFromPassword([]byte(token), as.bcryptCost)
  if err != nil {
    return nil, fmt.Errorf("hash session token: %w", err)
  }

  session := &types.UserSession{
    UserID:    user.ID,
    TokenHash: string(tokenHash),
    ExpiresAt: time.Now().Add(as.sessionTTL),
    UserAgent: userAgent,
    IPAddress: clientIP,
    IsActive:  true,
  }
  if _, err := as.sessionRepo.Create(ctx, nil, session); err != nil {
    return nil, fmt.Errorf("create session: %w", err)
  }

  as.log.Info("OTP verified", "phone", phone, "user_id", user.ID)
  return &AuthResponse{Token: token, User: user}, nil
}

func (as *authService) GetUserSessions(ctx context.Context, userID uuid.UUID) ([]*types.UserSession, error) {
  return as.sessionRepo.GetActiveByUserID(ctx, nil, userID)
}

func (as *authService) DeleteSession(ctx context.Context, userID, sessionID uuid.UUID) error {
  session, err := as.sessionRepo.GetActiveByID(ctx, nil, sessionID, userID)
  if err != nil {
    return err
  }
  if session == nil {
    return ErrSessionNotFound
  }
  session.IsActive = false
  return as.sessionRepo.Save(ctx, nil, session)
}

// ValidateToken resolves an opaque session token to its user, or (nil, nil)
// when no active unexpired session matches.
func (as *authService) ValidateToken(ctx context.Context, token string) (*types.User, error) {
  sessions, err := as.sessionRepo.GetActive(ctx, nil)
  if err != nil {
    return nil, err
  }

  for _, session := range sessions {
    if bcrypt.CompareHashAndPassword([]byte(session.TokenHash), []byte(token)) != nil {
      continue
    }
    if session.ExpiresAt.Before(time.Now()) {
      session.IsActive = false
      if err := as.sessionRepo.Save(ctx, nil, session); err != nil {
        as.log.Warn("Failed to deactivate expired session", "session_id", session.ID, "error", err)
      }
      return nil, nil
    }
    return as.userRepo.GetByID(ctx, nil, session.UserID)
  }

  return nil, nil
}

func (as *authService) checkSendRateLimit(ctx context.Context, phone, clientIP string) error {
  phoneLimited, err := as.kv.Exists(ctx, sendLimitKey(phone))
  if err != nil {
    return fmt.Errorf("check phone rate limit: %w", err)
  }
  ipLimited, err := as.kv.Exists(ctx, sendLimitIPKey(clientIP))
  if err != nil {
    return fmt.Errorf("check ip rate limit: %w", err)
  }
  if phoneLimited || ipLimited {
    return ErrRateLimited
  }
  return nil
}

func (as *authService) setSendRateLimit(ctx context.Context, phone, clientIP string) error {
  if err := as.kv.SetJSON(ctx, sendLimitKey(phone), 1, as.sendLimitTTL); err != nil {
    return err
  }
  return as.kv.SetJSON(ctx, sendLimitIPKey(clientIP), 1, as.sendLimitTTL)
}

func (as *authService) checkVerifyRateLimit(ctx context.Context, phone string) error {
  var attempts int
  _, err := as.kv.GetJSON(ctx, verifyAttemptsKey(phone), &attempts)
  if err != nil {
    return fmt.Errorf("check verify attempts: %w", err)
  }
  if attempts >= as.verifyMaxAttempts {
    return ErrTooManyAttempts
  }
  return nil
}

func (as *authService) incrementVerifyAttempts(ctx context.Context, phone string) {
  attempts, err := as.kv.Incr(ctx, verifyAttemptsKey(phone))
  if err != nil {
    as.log.Warn("Failed to count verify attempt", "phone", phone, "error", err)
    return
  }
  if attempts == 1 {
    if err := as.kv.Expire(ctx, verifyAttemptsKey(phone), as.verifyAttemptsTTL); err != nil {
      as.log.Warn("Failed to expire verify attempts", "phone", phone, "error", err)
    }
  }
}
