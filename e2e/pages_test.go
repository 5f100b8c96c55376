//go:build e2e

package e2e

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// waitTimeout bounds every condition the suite waits for
const waitTimeout = 10 * time.Second

// Selectors shared between the storefront markup and the identity login page
const (
	selLoginButton    = "#login-button"
	selLoggedInButton = "#logged-in-button"
	selLogoutConfirm  = ".account-menu__item.logout-confirm"
	selUsername       = "#username"
	selPassword       = "#password"
	selSubmitLogin    = ".button.login"
	selLoginError     = ".login-error"
	selProductCard    = "a.product-card"
)

func timeoutMs() *float64 {
	return playwright.Float(float64(waitTimeout.Milliseconds()))
}

// waitVisible waits until selector is visible, naming the selector on timeout
func waitVisible(page playwright.Page, selector string) error {
	err := page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: timeoutMs(),
	})
	if err != nil {
		return fmt.Errorf("%q never became visible within %s: %w", selector, waitTimeout, err)
	}
	return nil
}

// waitURL waits until the page URL matches pattern, naming it on timeout
func waitURL(page playwright.Page, pattern string) error {
	err := page.WaitForURL(pattern, playwright.PageWaitForURLOptions{
		Timeout: timeoutMs(),
	})
	if err != nil {
		return fmt.Errorf("never navigated to %q within %s (at %s): %w", pattern, waitTimeout, page.URL(), err)
	}
	return nil
}

// StorefrontPage wraps the storefront's authentication controls
type StorefrontPage struct {
	page playwright.Page
	cfg  suiteConfig
}

func NewStorefrontPage(page playwright.Page, cfg suiteConfig) *StorefrontPage {
	return &StorefrontPage{page: page, cfg: cfg}
}

// Open navigates to the storefront root
func (s *StorefrontPage) Open() error {
	if _, err := s.page.Goto(s.cfg.StorefrontURL + "/"); err != nil {
		return fmt.Errorf("failed to open storefront: %w", err)
	}
	return nil
}

// StartLogin clicks the login trigger and waits for the authentication origin's form
func (s *StorefrontPage) StartLogin() (*LoginPage, error) {
	if err := waitVisible(s.page, selLoginButton); err != nil {
		return nil, err
	}
	if err := s.page.Locator(selLoginButton).Click(); err != nil {
		return nil, fmt.Errorf("failed to click login trigger: %w", err)
	}
	if err := waitURL(s.page, s.cfg.AuthOrigin+"/**"); err != nil {
		return nil, err
	}
	if err := waitVisible(s.page, selUsername); err != nil {
		return nil, err
	}
	return &LoginPage{page: s.page}, nil
}

// Login signs in through the authentication origin and waits for the outcome,
// which is either the authenticated indicator or the login error.
func (s *StorefrontPage) Login(username, password string) error {
	login, err := s.StartLogin()
	if err != nil {
		return err
	}
	if err := login.Submit(username, password); err != nil {
		return err
	}
	return waitVisible(s.page, selLoggedInButton+", "+selLoginError)
}

// IsAuthenticated reports whether the authenticated indicator is shown
func (s *StorefrontPage) IsAuthenticated() (bool, error) {
	visible, err := s.page.Locator(selLoggedInButton).IsVisible()
	if err != nil {
		return false, fmt.Errorf("failed to check %q: %w", selLoggedInButton, err)
	}
	return visible, nil
}

// Logout opens the account menu, confirms, and waits for the login trigger
func (s *StorefrontPage) Logout() error {
	if err := s.page.Locator(selLoggedInButton).Click(); err != nil {
		return fmt.Errorf("failed to open account menu: %w", err)
	}
	if err := waitVisible(s.page, selLogoutConfirm); err != nil {
		return err
	}
	if err := s.page.Locator(selLogoutConfirm).Click(); err != nil {
		return fmt.Errorf("failed to confirm logout: %w", err)
	}
	return waitVisible(s.page, selLoginButton)
}

// LoginPage is the authentication origin's sign-in form
type LoginPage struct {
	page playwright.Page
}

// Submit fills in the credentials and submits the form
func (l *LoginPage) Submit(username, password string) error {
	if err := l.page.Locator(selUsername).Fill(username); err != nil {
		return fmt.Errorf("failed to fill %q: %w", selUsername, err)
	}
	if err := l.page.Locator(selPassword).Fill(password); err != nil {
		return fmt.Errorf("failed to fill %q: %w", selPassword, err)
	}
	if err := l.page.Locator(selSubmitLogin).Click(); err != nil {
		return fmt.Errorf("failed to click %q: %w", selSubmitLogin, err)
	}
	return nil
}

// ErrorMessage returns the visible login error, if any
func (l *LoginPage) ErrorMessage() (string, error) {
	if err := waitVisible(l.page, selLoginError); err != nil {
		return "", err
	}
	return l.page.Locator(selLoginError).TextContent()
}
