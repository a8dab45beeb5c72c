// Package fetch downloads remote documents under strict resource and
// security limits and hands them to the pipeline as temp-file backed
// artifacts.
package fetch

import (
	"net/http"
	"time"
)

// newTransport returns a pooled transport shared by all downloads.
// Connection reuse matters here because the service fetches many
// small documents from a long tail of hosts.
func newTransport(maxConns, maxIdlePerHost int) *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          maxConns,
		MaxConnsPerHost:       maxConns,
		MaxIdleConnsPerHost:   maxIdlePerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
}
