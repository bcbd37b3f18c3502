package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"GophShare/internal/cli/api"
	"GophShare/internal/config"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// authenticate отправляет учётные данные и сохраняет полученную cookie.
func authenticate(ctx context.Context, cfg *config.Config, path string, req credentials) (*http.Response, []byte, error) {
	resp, body, err := api.DoJSON(ctx, http.MethodPost, endpoint(cfg, path), req, "")
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode == http.StatusOK {
		if err := api.PersistAuthFromResponse(resp, tokenStore(cfg)); err != nil {
			return nil, nil, fmt.Errorf("saving auth: %w", err)
		}
	}
	return resp, body, nil
}

type registerCmd struct{}

func (registerCmd) Name() string        { return "register" }
func (registerCmd) Description() string { return "Create an account and log in" }
func (registerCmd) Usage() string       { return "register <email> <password> [name]" }

func (registerCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return ErrUsage
	}
	req := credentials{Email: args[0], Password: args[1]}
	if len(args) == 3 {
		req.Name = args[2]
	}
	resp, body, err := authenticate(ctx, cfg, "/api/user/register", req)
	if err != nil {
		return err
	}
	switch resp.StatusCode {
	case http.StatusOK:
		fmt.Fprintln(Out, "Registered and logged in")
		return nil
	case http.StatusConflict:
		return errors.New("email already registered")
	default:
		return fmt.Errorf("server error: %s", strings.TrimSpace(string(body)))
	}
}

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Login and store auth cookie" }
func (loginCmd) Usage() string       { return "login <email> <password>" }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	resp, body, err := authenticate(ctx, cfg, "/api/user/login", credentials{Email: args[0], Password: args[1]})
	if err != nil {
		return err
	}
	switch resp.StatusCode {
	case http.StatusOK:
		fmt.Fprintln(Out, "Logged in successfully")
		return nil
	case http.StatusUnauthorized:
		return errors.New("invalid email or password")
	default:
		return fmt.Errorf("server error: %s", strings.TrimSpace(string(body)))
	}
}

type logoutCmd struct{}

func (logoutCmd) Name() string        { return "logout" }
func (logoutCmd) Description() string { return "Forget the stored auth cookie" }
func (logoutCmd) Usage() string       { return "logout" }

func (logoutCmd) Run(_ context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	if err := tokenStore(cfg).Clear(); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Logged out")
	return nil
}

type statusCmd struct{}

func (statusCmd) Name() string        { return "status" }
func (statusCmd) Description() string { return "Show who the server thinks you are" }
func (statusCmd) Usage() string       { return "status" }

func (statusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	token, _ := tokenStore(cfg).Load()
	resp, body, err := api.DoJSON(ctx, http.MethodPost, endpoint(cfg, "/api/user/test"), struct{}{}, token)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var dr struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal(body, &dr); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	fmt.Fprintln(Out, "Status:", dr.Result)
	return nil
}

func init() {
	RegisterCmd(registerCmd{})
	RegisterCmd(loginCmd{})
	RegisterCmd(logoutCmd{})
	RegisterCmd(statusCmd{})
}
