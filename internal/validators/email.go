package validators

import (
	"context"
	"net"
	"strings"
	"time"
)

// Resolver is the subset of *net.Resolver the domain check needs.
type Resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// EmailDomainChecker accepts an address when its domain has an MX record,
// or failing that an A/AAAA record.
type EmailDomainChecker struct {
	Resolver Resolver
	Timeout  time.Duration
}

func NewEmailDomainChecker() *EmailDomainChecker {
	return &EmailDomainChecker{
		Resolver: net.DefaultResolver,
		Timeout:  3 * time.Second,
	}
}

func (c *EmailDomainChecker) Valid(ctx context.Context, email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	domain := strings.TrimSuffix(email[at+1:], ".")
	if domain == "" {
		return false
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	if mx, err := c.Resolver.LookupMX(ctx, domain); err == nil && len(mx) > 0 {
		return true
	}

	if ips, err := c.Resolver.LookupIPAddr(ctx, domain); err == nil && len(ips) > 0 {
		return true
	}

	return false
}
