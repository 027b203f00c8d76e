package providers

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/auth"
	"google.golang.org/api/option"
)

var _ AuthProvider = &FirebaseAuthProvider{}

// FirebaseAuthProvider verifies Firebase ID tokens
type FirebaseAuthProvider struct {
	auth *auth.Client
}

// NewFirebaseAuthProviderOptions configures the Firebase app. CredentialsFile
// takes precedence over APIKey when both are set.
type NewFirebaseAuthProviderOptions struct {
	ProjectID       string
	APIKey          string
	CredentialsFile string
}

// NewFirebaseAuthProvider creates a new FirebaseAuthProvider
func NewFirebaseAuthProvider(ctx context.Context, opts NewFirebaseAuthProviderOptions) (*FirebaseAuthProvider, error) {
	var opt option.ClientOption
	if opts.CredentialsFile != "" {
		opt = option.WithCredentialsFile(opts.CredentialsFile)
	} else {
		opt = option.WithAPIKey(opts.APIKey)
	}
	cfg := &firebase.Config{
		ProjectID: opts.ProjectID,
	}
	app, err := firebase.NewApp(ctx, cfg, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing app: %v", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Auth client: %v", err)
	}

	return &FirebaseAuthProvider{
		auth: client,
	}, nil
}

// VerifyToken verifies a Firebase ID token
func (p *FirebaseAuthProvider) VerifyToken(ctx context.Context, idToken string) (*TokenClaims, error) {
	token, err := p.auth.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims := &TokenClaims{
		UID: token.UID,
	}
	if name, ok := token.Claims["name"].(string); ok {
		claims.Name = name
	}
	return claims, nil
}
