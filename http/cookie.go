package http

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

type SameSite int

const (
	SameSiteDefaultMode SameSite = iota
	SameSiteLaxMode
	SameSiteStrictMode
	SameSiteNoneMode
)

func (s SameSite) String() string {
	switch s {
	case SameSiteLaxMode:
		return "Lax"
	case SameSiteStrictMode:
		return "Strict"
	case SameSiteNoneMode:
		return "None"
	default:
		return ""
	}
}

var (
	ErrCookieSecurePrefix = errors.New("http: cookie name has __Secure- prefix but Secure is not set")
	ErrCookieHostPrefix   = errors.New("http: cookie name has __Host- prefix but requires Secure, empty Domain and Path=/")
)

// cookieDateFormat is RFC 7231's IMF-fixdate, the format Set-Cookie Expires
// uses on the wire.
const cookieDateFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

// Cookie mirrors gravel's Cookie struct in shape, but its String() method
// follows the attribute order mandated by the spec (§4.8): name=value;
// Domain; Path; Max-Age; Expires; Secure; HttpOnly; SameSite. This order
// differs from gravel's own cookie.go (which puts Path before Domain and
// Expires before Max-Age) — the spec's order is grounded in the original
// C++ response_t::set_cookie instead.
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	MaxAge   time.Duration
	Expires  time.Time
	Secure   bool
	HTTPOnly bool
	SameSite SameSite
}

// Build validates prefix rules and serializes the Set-Cookie value. Building
// a __Host- cookie with a non-empty Domain (or non-"/" Path, or without
// Secure) fails at build time — scenario 9 in the spec's testable
// properties.
func (c Cookie) Build() (string, error) {
	if strings.HasPrefix(c.Name, "__Secure-") && !c.Secure {
		return "", ErrCookieSecurePrefix
	}
	if strings.HasPrefix(c.Name, "__Host-") {
		if !c.Secure || c.Domain != "" || c.Path != "/" {
			return "", ErrCookieHostPrefix
		}
	}

	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('=')
	b.WriteString(c.Value)

	if c.Domain != "" {
		b.WriteString("; Domain=")
		b.WriteString(c.Domain)
	}
	if c.Path != "" {
		b.WriteString("; Path=")
		b.WriteString(c.Path)
	}
	if c.MaxAge != 0 {
		b.WriteString("; Max-Age=")
		b.WriteString(strconv.Itoa(int(c.MaxAge / time.Second)))
		b.WriteString("; Expires=")
		b.WriteString(time.Now().Add(c.MaxAge).UTC().Format(cookieDateFormat))
	} else if !c.Expires.IsZero() {
		b.WriteString("; Expires=")
		b.WriteString(c.Expires.UTC().Format(cookieDateFormat))
	}
	if c.Secure {
		b.WriteString("; Secure")
	}
	if c.HTTPOnly {
		b.WriteString("; HttpOnly")
	}
	if s := c.SameSite.String(); s != "" {
		b.WriteString("; SameSite=")
		b.WriteString(s)
	}

	return b.String(), nil
}

// ParseCookies parses a request Cookie header into a name→value map.
// Supplemented feature (SPEC_FULL.md): the spec's §4.8 only describes the
// Set-Cookie builder; round-trip parsing is grounded in the original's
// cookie_t and exposed here as Request.Cookie.
func ParseCookies(header string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		eq := strings.IndexByte(part, '=')
		if eq < 0 {
			continue
		}
		name := strings.TrimSpace(part[:eq])
		value := strings.TrimSpace(part[eq+1:])
		if name == "" {
			continue
		}
		if _, exists := out[name]; !exists {
			out[name] = value
		}
	}
	return out
}
