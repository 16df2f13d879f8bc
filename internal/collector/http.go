package collector

import (
	"time"

	"github.com/go-resty/resty/v2"
)

func newRestyClient(baseURL, proxyURL string) *resty.Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second)
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return client
}
