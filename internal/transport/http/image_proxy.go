package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const maxProxyRedirects = 10

var errRedirectNotAllowed = errors.New("redirect target not allowed")

const proxyUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// ImageProxy fetches card images from allow-listed hosts on the client's behalf,
// so hosts that block hotlinking still render.
type ImageProxy struct {
	allowed []string
	client  *http.Client
	log     logrus.FieldLogger
}

func NewImageProxy(allowedDomains []string, timeout time.Duration, log logrus.FieldLogger) *ImageProxy {
	p := &ImageProxy{allowed: allowedDomains, log: log}
	p.client = &http.Client{Timeout: timeout, CheckRedirect: p.checkRedirect}
	return p
}

// checkRedirect follows redirects only while they stay on allow-listed hosts.
func (p *ImageProxy) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxProxyRedirects {
		return fmt.Errorf("stopped after %d redirects", maxProxyRedirects)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return errRedirectNotAllowed
	}
	if !p.Allowed(req.URL.Hostname()) {
		return errRedirectNotAllowed
	}
	return nil
}

func (p *ImageProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		http.Error(w, "Missing URL parameter", http.StatusBadRequest)
		return
	}
	target, err := url.Parse(raw)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Hostname() == "" {
		http.Error(w, "Invalid URL parameter", http.StatusBadRequest)
		return
	}
	if !p.Allowed(target.Hostname()) {
		http.Error(w, "Domain not allowed", http.StatusForbidden)
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		http.Error(w, "Failed to fetch image", http.StatusInternalServerError)
		return
	}
	req.Header.Set("User-Agent", proxyUserAgent)
	req.Header.Set("Referer", "https://www.google.com/")
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8")

	resp, err := p.client.Do(req)
	if errors.Is(err, errRedirectNotAllowed) {
		p.log.WithField("url", raw).Warn("image proxy redirect off the allow-list")
		http.Error(w, "Domain not allowed", http.StatusForbidden)
		return
	}
	if err != nil {
		p.log.WithError(err).WithField("url", raw).Warn("image proxy fetch")
		http.Error(w, "Failed to fetch image", http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		http.Error(w, fmt.Sprintf("Failed to fetch image: %s", http.StatusText(resp.StatusCode)), resp.StatusCode)
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, resp.Body); err != nil {
		p.log.WithError(err).WithField("url", raw).Warn("image proxy copy")
	}
}

// Allowed matches the host exactly or as a subdomain of an allow-listed domain.
func (p *ImageProxy) Allowed(host string) bool {
	host = strings.ToLower(host)
	for _, d := range p.allowed {
		d = strings.ToLower(d)
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
