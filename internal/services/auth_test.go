package services

import (
  "context"
  "encoding/json"
  "errors"
  "testing"
  "time"
  "github.com/google/uuid"
  "golang.org/x/crypto/bcrypt"
  "gorm.io/gorm"
  "github.com/varzia/worldcup-backend/internal/types"
)

const testPhone = "09123456789"

type fakeUserRepo struct {
  byPhone map[string]*types.User
  byID    map[uuid.UUID]*types.User
  saved   []*types.User
}

func newFakeUserRepo() *fakeUserRepo {
  return &fakeUserRepo{byPhone: map[string]*types.User{}, byID: map[uuid.UUID]*types.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error) {
  user.ID = uuid.New()
  f.byPhone[user.Phone] = user
  f.byID[user.ID] = user
  return user, nil
}

func (f *fakeUserRepo) Save(ctx context.Context, tx *gorm.DB, user *types.User) error {
  f.saved = append(f.saved, user)
  return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error) {
  return f.byID[userID], nil
}

func (f *fakeUserRepo) GetByPhone(ctx context.Context, tx *gorm.DB, phone string) (*types.User, error) {
  return f.byPhone[phone], nil
}

type fakeSessionRepo struct {
  sessions []*types.UserSession
  saved    []*types.UserSession
}

func (f *fakeSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.UserSession) (*types.UserSession, error) {
  session.ID = uuid.New()
  f.sessions = append(f.sessions, session)
  return session, nil
}

func (f *fakeSessionRepo) Save(ctx context.Context, tx *gorm.DB, session *types.UserSession) error {
  f.saved = append(f.saved, session)
  return nil
}

func (f *fakeSessionRepo) GetActive(ctx context.Context, tx *gorm.DB) ([]*types.UserSession, error) {
  var active []*types.UserSession
  for _, session := range f.sessions {
    if session.IsActive {
      active = append(active, session)
    }
  }
  return active, nil
}

func (f *fakeSessionRepo) GetActiveByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserSession, error) {
  var active []*types.UserSession
  for _, session := range f.sessions {
    if session.IsActive && session.UserID == userID {
      active = append(active, session)
    }
  }
  return active, nil
}

func (f *fakeSessionRepo) GetActiveByID(ctx context.Context, tx *gorm.DB, sessionID, userID uuid.UUID) (*types.UserSession, error) {
  for _, session := range f.sessions {
    if session.IsActive && session.ID == sessionID && session.UserID == userID {
      return session, nil
    }
  }
  return nil, nil
}

type fakeSMS struct {
  status    int
  err       error
  lastPhone string
  lastCode  string
  calls     int
}

func (f *fakeSMS) SendOTP(ctx context.Context, phone, code string) (int, error) {
  f.calls++
  f.lastPhone = phone
  f.lastCode = code
  return f.status, f.err
}

type authFixture struct {
  service  AuthService
  kv       *fakeKV
  users    *fakeUserRepo
  sessions *fakeSessionRepo
  sms      *fakeSMS
}

func newAuthFixture(t *testing.T) *authFixture {
  t.Helper()
  t.Setenv("BCRYPT_SALT_ROUNDS", "4")
  kv := newFakeKV()
  users := newFakeUserRepo()
  sessions := &fakeSessionRepo{}
  sms := &fakeSMS{status: 200}
  service := NewAuthService(nil, testLogger(t), users, sessions, kv, sms)
  return &authFixture{service: service, kv: kv, users: users, sessions: sessions, sms: sms}
}

func storedOTP(t *testing.T, kv *fakeKV, phone string) otpData {
  t.Helper()
  raw, ok := kv.store["otp:phone:"+phone]
  if !ok {
    t.Fatalf("no otp stored for %s", phone)
  }
  var data otpData
  if err := json.Unmarshal(raw, &data); err != nil {
    t.Fatalf("decode stored otp: %v", err)
  }
  return data
}

func seedOTP(t *testing.T, kv *fakeKV, phone, code string, expiresAt time.Time) {
  t.Helper()
  if err := kv.SetJSON(context.Background(), "otp:phone:"+phone, otpData{
    Code:      code,
    ExpiresAt: expiresAt.UnixMilli(),
  }, 2*time.Minute); err != nil {
    t.Fatalf("seed otp: %v", err)
  }
}

func TestSendOTPRejectsInvalidPhone(t *testing.T) {
  fx := newAuthFixture(t)

  for _, phone := range []string{"", "12345", "0912345678", "091234567890", "9123456789", "0912345678a"} {
    if err := fx.service.SendOTP(context.Background(), phone, "10.0.0.1"); !errors.Is(err, ErrInvalidPhone) {
      t.Errorf("phone %q: err = %v, want ErrInvalidPhone", phone, err)
    }
  }
  if fx.sms.calls != 0 {
    t.Fatalf("sms sent %d times for invalid phones", fx.sms.calls)
  }
}

func TestSendOTPStoresCodeAndSendsSMS(t *testing.T) {
  fx := newAuthFixture(t)

  if err := fx.service.SendOTP(context.Background(), testPhone, "10.0.0.1"); err != nil {
    t.Fatalf("SendOTP: %v", err)
  }

  data := storedOTP(t, fx.kv, testPhone)
  if len(data.Code) != 6 {
    t.Fatalf("stored code %q, want 6 digits", data.Code)
  }
  if data.ExpiresAt <= time.Now().UnixMilli() {
    t.Fatal("stored code already expired")
  }
  if fx.sms.lastPhone != testPhone || fx.sms.lastCode != data.Code {
    t.Fatalf("sms sent %q/%q, want %q/%q", fx.sms.lastPhone, fx.sms.lastCode, testPhone, data.Code)
  }
  if _, ok := fx.kv.store["otp:send:limit:"+testPhone]; !ok {
    t.Fatal("phone send limit not set")
  }
  if _, ok := fx.kv.store["otp:send:limit:ip:10.0.0.1"]; !ok {
    t.Fatal("ip send limit not set")
  }
}

func TestSendOTPRateLimited(t *testing.T) {
  fx := newAuthFixture(t)

  if err := fx.service.SendOTP(context.Background(), testPhone, "10.0.0.1"); err != nil {
    t.Fatalf("first SendOTP: %v", err)
  }
  if err := fx.service.SendOTP(context.Background(), testPhone, "10.0.0.1"); !errors.Is(err, ErrRateLimited) {
    t.Fatalf("second SendOTP err = %v, want ErrRateLimited", err)
  }
  if fx.sms.calls != 1 {
    t.Fatalf("sms sent %d times, want 1", fx.sms.calls)
  }
}

func TestSendOTPSMSFailure(t *testing.T) {
  t.Run("transport error", func(t *testing.T) {
    fx := newAuthFixture(t)
    fx.sms.err = errors.New("timeout")
    if err := fx.service.SendOTP(context.Background(), testPhone, "10.0.0.1"); !errors.Is(err, ErrSMSUnavailable) {
      t.Fatalf("err = %v, want ErrSMSUnavailable", err)
    }
  })

  t.Run("provider rejection", func(t *testing.T) {
    fx := newAuthFixture(t)
    fx.sms.status = 429
    if err := fx.service.SendOTP(context.Background(), testPhone, "10.0.0.1"); !errors.Is(err, ErrSMSUnavailable) {
      t.Fatalf("err = %v, want ErrSMSUnavailable", err)
    }
  })
}

func TestVerifyOTPCreatesUserAndSession(t *testing.T) {
  fx := newAuthFixture(t)
  seedOTP(t, fx.kv, testPhone, "123456", time.Now().Add(2*time.Minute))

  resp, err := fx.service.VerifyOTP(context.Background(), testPhone, "123456", "test-agent", "10.0.0.1")
  if err != nil {
    t.Fatalf("VerifyOTP: %v", err)
  }
  if resp.User == nil || resp.User.Phone != testPhone || !resp.User.IsVerified {
    t.Fatalf("unexpected user %+v", resp.User)
  }
  if resp.Token == "" {
    t.Fatal("empty session token")
  }

  if len(fx.sessions.sessions) != 1 {
    t.Fatalf("created %d sessions, want 1", len(fx.sessions.sessions))
  }
  session := fx.sessions.sessions[0]
  if session.TokenHash == resp.Token {
    t.Fatal("session stores the raw token instead of a hash")
  }
  if err := bcrypt.CompareHashAndPassword([]byte(session.TokenHash), []byte(resp.Token)); err != nil {
    t.Fatalf("token hash does not match issued token: %v", err)
  }
  if session.UserAgent != "test-agent" || session.IPAddress != "10.0.0.1" {
    t.Fatalf("session metadata %q/%q", session.UserAgent, session.IPAddress)
  }

  if _, ok := fx.kv.store["otp:phone:"+testPhone]; ok {
    t.Fatal("otp not consumed after successful verify")
  }
}

func TestVerifyOTPMarksExistingUserVerified(t *testing.T) {
  fx := newAuthFixture(t)
  existing := &types.User{ID: uuid.New(), Phone: testPhone}
  fx.users.byPhone[testPhone] = existing
  fx.users.byID[existing.ID] = existing
  seedOTP(t, fx.kv, testPhone, "654321", time.Now().Add(time.Minute))

  resp, err := fx.service.VerifyOTP(context.Background(), testPhone, "654321", "", "")
  if err != nil {
    t.Fatalf("VerifyOTP: %v", err)
  }
  if resp.User.ID != existing.ID {
    t.Fatalf("verified a different user %s", resp.User.ID)
  }
  if !existing.IsVerified {
    t.Fatal("existing user not marked verified")
  }
  if len(fx.users.saved) != 1 {
    t.Fatalf("user saved %d times, want 1", len(fx.users.saved))
  }
}

func TestVerifyOTPNotFound(t *testing.T) {
  fx := newAuthFixture(t)
  if _, err := fx.service.VerifyOTP(context.Background(), testPhone, "123456", "", ""); !errors.Is(err, ErrOTPNotFound) {
    t.Fatalf("err = %v, want ErrOTPNotFound", err)
  }
}

func TestVerifyOTPExpired(t *testing.T) {
  fx := newAuthFixture(t)
  seedOTP(t, fx.kv, testPhone, "123456", time.Now().Add(-time.Second))

  if _, err := fx.service.VerifyOTP(context.Background(), testPhone, "123456", "", ""); !errors.Is(err, ErrOTPExpired) {
    t.Fatalf("err = %v, want ErrOTPExpired", err)
  }
  if _, ok := fx.kv.store["otp:phone:"+testPhone]; ok {
    t.Fatal("expired otp left in place")
  }
}

func TestVerifyOTPWrongCodeCountsAttempt(t *testing.T) {
  fx := newAuthFixture(t)
  seedOTP(t, fx.kv, testPhone, "123456", time.Now().Add(time.Minute))

  if _, err := fx.service.VerifyOTP(context.Background(), testPhone, "000000", "", ""); !errors.Is(err, ErrOTPInvalid) {
    t.Fatalf("err = %v, want ErrOTPInvalid", err)
  }

  var attempts int
  if err := json.Unmarshal(fx.kv.store["otp:verify:attempts:"+testPhone], &attempts); err != nil || attempts != 1 {
    t.Fatalf("attempts counter = %d (%v), want 1", attempts, err)
  }
  data := storedOTP(t, fx.kv, testPhone)
  if data.Attempts != 1 {
    t.Fatalf("stored otp attempts = %d, want 1", data.Attempts)
  }
}

func TestVerifyOTPTooManyAttempts(t *testing.T) {
  fx := newAuthFixture(t)
  seedOTP(t, fx.kv, testPhone, "123456", time.Now().Add(time.Minute))

  for i := 0; i < 5; i++ {
    if _, err := fx.service.VerifyOTP(context.Background(), testPhone, "000000", "", ""); !errors.Is(err, ErrOTPInvalid) {
      t.Fatalf("attempt %d: err = %v, want ErrOTPInvalid", i, err)
    }
  }
  if _, err := fx.service.VerifyOTP(context.Background(), testPhone, "123456", "", ""); !errors.Is(err, ErrTooManyAttempts) {
    t.Fatalf("err = %v, want ErrTooManyAttempts", err)
  }
}

func TestValidateToken(t *testing.T) {
  fx := newAuthFixture(t)
  seedOTP(t, fx.kv, testPhone, "123456", time.Now().Add(time.Minute))
  resp, err := fx.service.VerifyOTP(context.Background(), testPhone, "123456", "", "")
  if err != nil {
    t.Fatalf("VerifyOTP: %v", err)
  }

  user, err := fx.service.ValidateToken(context.Background(), resp.Token)
  if err != nil {
    t.Fatalf("ValidateToken: %v", err)
  }
  if user == nil || user.ID != resp.User.ID {
    t.Fatalf("resolved user %+v, want %s", user, resp.User.ID)
  }

  user, err = fx.service.ValidateToken(context.Background(), "not-a-real-token")
  if err != nil {
    t.Fatalf("ValidateToken: %v", err)
  }
  if user != nil {
    t.Fatalf("unknown token resolved to user %s", user.ID)
  }
}

func TestValidateTokenDeactivatesExpiredSession(t *testing.T) {
  fx := newAuthFixture(t)
  token := uuid.NewString()
  hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.MinCost)
  if err != nil {
    t.Fatalf("bcrypt: %v", err)
  }
  session := &types.UserSession{
    ID:        uuid.New(),
    UserID:    uuid.New(),
    TokenHash: string(hash),
    ExpiresAt: time.Now().Add(-time.Hour),
    IsActive:  true,
  }
  fx.sessions.sessions = append(fx.sessions.sessions, session)

  user, err := fx.service.ValidateToken(context.Background(), token)
  if err != nil {
    t.Fatalf("ValidateToken: %v", err)
  }
  if user != nil {
    t.Fatalf("expired session resolved to user %s", user.ID)
  }
  if session.IsActive {
    t.Fatal("expired session left active")
  }
}

func TestDeleteSession(t *testing.T) {
  fx := newAuthFixture(t)
  userID := uuid.New()
  session := &types.UserSession{
    ID:        uuid.New(),
    UserID:    userID,
    ExpiresAt: time.Now().Add(time.Hour),
    IsActive:  true,
  }
  fx.sessions.sessions = append(fx.sessions.sessions, session)

  if err := fx.service.DeleteSession(context.Background(), userID, uuid.New()); !errors.Is(err, ErrSessionNotFound) {
    t.Fatalf("err = %v, want ErrSessionNotFound", err)
  }

  if err := fx.service.DeleteSession(context.Background(), userID, session.ID); err != nil {
    t.Fatalf("DeleteSession: %v", err)
  }
  if session.IsActive {
    t.Fatal("session still active after delete")
  }
}
