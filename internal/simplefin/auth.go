package simplefin

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// AuthState is the saved SimpleFIN access grant. A claim token is one-use, so
// the access URL it yields must be persisted.
type AuthState struct {
	AccessURL string    `json:"access_url"`
	ClaimedAt time.Time `json:"claimed_at"`
	TokenHint string    `json:"token_hint"`
}

// LoadOrClaimAuth returns the saved access grant, claiming the token first if
// no grant exists yet.
func LoadOrClaimAuth(token string) (*AuthState, error) {
	stateFile, err := stateFilePath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve auth state path: %w", err)
	}

	auth, err := loadAuthState(stateFile)
	if err == nil && auth.AccessURL != "" {
		slog.Debug("using saved SimpleFIN access URL",
			"claimed_at", auth.ClaimedAt.Format("2006-01-02"))
		return auth, nil
	}

	if token == "" {
		return nil, fmt.Errorf("no saved SimpleFIN access and no claim token provided")
	}

	accessURL, err := claimToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to claim SimpleFIN token: %w", err)
	}

	auth = &AuthState{
		AccessURL: accessURL,
		ClaimedAt: time.Now(),
		TokenHint: tokenHint(token),
	}
	if err := saveAuthState(stateFile, auth); err != nil {
		return nil, fmt.Errorf("failed to save auth state: %w", err)
	}

	slog.Info("claimed SimpleFIN access URL", "state_file", stateFile)
	return auth, nil
}

func stateFilePath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}

	dir := filepath.Join(dataDir, "piper")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "simplefin_auth.json"), nil
}

func loadAuthState(path string) (*AuthState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var auth AuthState
	if err := json.Unmarshal(data, &auth); err != nil {
		return nil, err
	}
	return &auth, nil
}

func saveAuthState(path string, auth *AuthState) error {
	data, err := json.MarshalIndent(auth, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// tokenHint keeps just enough of the token to recognize which one was claimed.
func tokenHint(token string) string {
	if len(token) > 16 {
		return token[:8] + "..." + token[len(token)-8:]
	}
	return "short_token"
}
