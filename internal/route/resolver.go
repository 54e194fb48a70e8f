// Package route classifies a location path into the view to render and the
// navigation, if any, the shell must perform.
//
// Resolve is a pure function of its inputs. Redirects are returned as data,
// never performed here; the shell navigates at most once per resolution and
// skips navigation when it is already at the target, which is what keeps
// redirect chains finite.
package route

import (
	"net/url"
	"strings"
)

// Well-known location paths.
const (
	RootPath    = "/"
	LoginPath   = "/login"
	SectionRoot = "/stocks"
	AccountPath = "/account"
	AdminPrefix = "/admin"
)

// View identifies the top-level screen the shell renders.
type View int

const (
	// ViewNone renders a neutral loading state while the session hydrates.
	ViewNone View = iota
	ViewLogin
	ViewStockList
	ViewStockDetail
	ViewAccount
	ViewAdmin
)

// String returns the view name for logs.
func (v View) String() string {
	switch v {
	case ViewLogin:
		return "login"
	case ViewStockList:
		return "stock-list"
	case ViewStockDetail:
		return "stock-detail"
	case ViewAccount:
		return "account"
	case ViewAdmin:
		return "admin"
	default:
		return "none"
	}
}

// Resolution is the outcome of classifying one location.
type Resolution struct {
	View View
	// StockName carries the decoded detail slug when View is ViewStockDetail.
	StockName string
	// RedirectTo, when non-empty, is the path the shell must navigate to.
	RedirectTo string
}

// Resolve classifies path given the current auth state.
//
// Rules, in order: hydration guard, unauthenticated lockout, login bounce
// for authenticated users, root default, admin prefix, detail slug, account,
// and finally canonicalization of bare legacy paths under the section root.
func Resolve(path string, authenticated, hydrated bool) Resolution {
	path = normalize(path)

	if !hydrated {
		return Resolution{View: ViewNone}
	}

	if !authenticated {
		if path == LoginPath {
			return Resolution{View: ViewLogin}
		}
		return Resolution{RedirectTo: LoginPath}
	}

	if path == LoginPath {
		return Resolution{RedirectTo: SectionRoot}
	}

	if path == RootPath {
		return Resolution{RedirectTo: SectionRoot}
	}

	if strings.HasPrefix(path, AdminPrefix) {
		return Resolution{View: ViewAdmin}
	}

	if slug, ok := detailSlug(path); ok {
		return Resolution{View: ViewStockDetail, StockName: slug}
	}

	if path == AccountPath {
		return Resolution{View: ViewAccount}
	}

	if path == SectionRoot {
		return Resolution{View: ViewStockList}
	}

	// Legacy/bare path: canonicalize under the section root.
	return Resolution{RedirectTo: SectionRoot + path}
}

// normalize collapses empty paths to root and strips trailing slashes so
// "/stocks/" and "/stocks" resolve alike.
func normalize(path string) string {
	if path == "" {
		return RootPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return path
}

// detailSlug extracts the percent-decoded stock name from a section detail
// path. Returns false when the path is not a detail path or the slug is
// empty.
func detailSlug(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, SectionRoot+"/")
	if !ok || rest == "" {
		return "", false
	}
	decoded, err := url.PathUnescape(rest)
	if err != nil {
		// Malformed escapes keep their literal form.
		decoded = rest
	}
	if strings.TrimSpace(decoded) == "" {
		return "", false
	}
	return decoded, true
}
