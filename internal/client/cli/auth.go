package cli

import (
	"context"
	"errors"
	"log"

	"github.com/itd-social/itd-client/internal/client/api"
	"github.com/itd-social/itd-client/internal/client/session"
	"github.com/itd-social/itd-client/internal/common"
)

// promptCredentials gathers email, password, and the bot-verification token.
// The password bytes are the caller's to wipe.
func (a *App) promptCredentials() (email string, password []byte, challenge string, err error) {
	email, err = GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", nil, "", err
	}
	password, err = GetPassword(a.out)
	if err != nil {
		return "", nil, "", err
	}
	challenge, err = GetSimpleText(a.reader, "Enter verification token (from the widget)", a.out)
	if err != nil {
		common.WipeBytes(password)
		return "", nil, "", err
	}
	return email, password, challenge, nil
}

func (a *App) Login(ctx context.Context) error {
	email, password, challenge, err := a.promptCredentials()
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	defer common.WipeBytes(password)

	res, err := a.session.SignIn(ctx, email, string(password), challenge)
	return a.reportAuth(res, err)
}

func (a *App) Register(ctx context.Context) error {
	email, password, challenge, err := a.promptCredentials()
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	defer common.WipeBytes(password)

	res, err := a.session.SignUp(ctx, email, string(password), challenge)
	return a.reportAuth(res, err)
}

func (a *App) reportAuth(res session.SignInResult, err error) error {
	switch {
	case errors.Is(err, session.ErrChallengeRequired):
		log.Printf("A verification token is required; paste it from the widget")
	case errors.Is(err, api.ErrRateLimited):
		log.Printf("Too many attempts, try again later")
	case errors.Is(err, api.ErrConflict):
		log.Printf("An account with this email already exists")
	case err != nil:
		log.Printf("Authentication failed: %s", err.Error())
	case res.RequiresOtp:
		log.Printf("A code was sent to %s; enter it with: otp <code>", res.Email)
	default:
		log.Printf("Signed in")
	}
	return err
}

func (a *App) VerifyOtp(ctx context.Context, code string) error {
	_, err := a.session.VerifyOtp(ctx, code)
	if err != nil {
		log.Printf("Verification failed: %s", err.Error())
		return err
	}
	log.Printf("Signed in")
	return nil
}

func (a *App) ResendOtp(ctx context.Context) error {
	if cooldown := a.session.ResendCooldown(); cooldown > 0 {
		log.Printf("Wait %ds before requesting another code", cooldown)
		return nil
	}
	if err := a.session.ResendOtp(ctx); err != nil {
		log.Printf("Resend failed: %s", err.Error())
		return err
	}
	log.Printf("A new code was sent")
	return nil
}

func (a *App) Back(ctx context.Context) error {
	a.session.BackFromOtp()
	log.Printf("Verification abandoned")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		log.Printf("Logout: %s", err.Error())
		return err
	}
	log.Printf("Logged out")
	return nil
}
