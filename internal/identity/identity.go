// Package identity supplies the current user for operations that need one.
package identity

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider reports the signed-in user, if any.
type Provider interface {
	CurrentUser(ctx context.Context) (string, bool)
}

// Static is a Provider with a fixed user. The zero value is signed out.
type Static string

func (s Static) CurrentUser(context.Context) (string, bool) {
	return string(s), s != ""
}

type contextKey struct{}

// WithUser attaches a user to ctx. The HTTP API uses it per request.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// Anonymous marks ctx as carrying a request-scoped identity with no user.
// A Chain asked with such a context does not fall back to other providers.
func Anonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, "")
}

// FromContext is a Provider that reads the user attached by WithUser.
type FromContext struct{}

func (FromContext) CurrentUser(ctx context.Context) (string, bool) {
	userID, _ := ctx.Value(contextKey{}).(string)
	return userID, userID != ""
}

// Chain asks each provider in turn and returns the first user found.
type Chain []Provider

func (c Chain) CurrentUser(ctx context.Context) (string, bool) {
	if userID, scoped := ctx.Value(contextKey{}).(string); scoped {
		return userID, userID != ""
	}
	for _, p := range c {
		if p == nil {
			continue
		}
		if user, ok := p.CurrentUser(ctx); ok {
			return user, true
		}
	}
	return "", false
}

// identityFile is the on-disk form of a FileProvider session.
type identityFile struct {
	UserID     string    `yaml:"user_id"`
	SignedInAt time.Time `yaml:"signed_in_at"`
}

// FileProvider keeps the signed-in user in <library>/.identity.yaml.
type FileProvider struct {
	path string
	mu   sync.Mutex
}

// NewFileProvider creates a provider storing its state under libraryDir.
func NewFileProvider(libraryDir string) *FileProvider {
	return &FileProvider{path: filepath.Join(libraryDir, ".identity.yaml")}
}

func (p *FileProvider) CurrentUser(context.Context) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := os.ReadFile(p.path)
	if err != nil {
		return "", false
	}
	var f identityFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return "", false
	}
	return f.UserID, f.UserID != ""
}

// SignIn records userID as the current user.
func (p *FileProvider) SignIn(userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user id must not be empty")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := yaml.Marshal(identityFile{UserID: userID, SignedInAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return fmt.Errorf("failed to create identity directory: %w", err)
	}
	if err := os.WriteFile(p.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write identity file: %w", err)
	}
	return nil
}

// SignOut forgets the current user. Signing out twice is not an error.
func (p *FileProvider) SignOut() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove identity file: %w", err)
	}
	return nil
}
