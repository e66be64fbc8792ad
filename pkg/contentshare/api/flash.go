package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// flashCookieName holds one-shot messages carried across a redirect
const flashCookieName = "flash"

// setFlash stores a message for the next request. A later call in the same
// response overwrites the earlier one.
func setFlash(w http.ResponseWriter, key, message string) {
	data, err := json.Marshal(map[string]string{key: message})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and clears the pending messages. It returns nil when none are set.
func popFlash(w http.ResponseWriter, r *http.Request) map[string]string {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	data, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var messages map[string]string
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil
	}
	return messages
}

// redirectWithFlash sets a flash and answers with 302 Found
func redirectWithFlash(w http.ResponseWriter, r *http.Request, to, key, message string) {
	setFlash(w, key, message)
	http.Redirect(w, r, to, http.StatusFound)
}
