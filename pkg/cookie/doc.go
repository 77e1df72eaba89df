// Package cookie reads and writes HTTP cookies with shared attributes.
//
// The web surface keeps two cookies: the viewer ID, HMAC-signed so a client
// cannot attach to another viewer's session, and the UI locale, stored plain.
//
//	m := cookie.New(cookie.WithSecret(cfg.CookieSecret), cookie.WithSecure(true))
//	_ = m.SetSigned(w, "viewer", id, 0)
//	id, err := m.GetSigned(r, "viewer")
//
// GetSigned returns [ErrBadSig] for tampered values and [ErrNotFound] for
// missing cookies.
package cookie
