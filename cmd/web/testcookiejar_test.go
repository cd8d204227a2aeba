package main

import (
	"net/http"
	"net/http/cookiejar"
	url2 "net/url"

	"github.com/mlahtinen/gumshoe/internal/errors"
)

type testCookieJar struct {
	jar *cookiejar.Jar
}

// newTestCookieJar returns a [http.CookieJar] that does not enforce the Secure
// flag so that session cookies survive plain HTTP in tests.
func newTestCookieJar() (*testCookieJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "new cookie jar")
	}

	return &testCookieJar{jar: jar}, nil
}

func (u *testCookieJar) SetCookies(url *url2.URL, cookies []*http.Cookie) {
	for _, cookie := range cookies {
		cookie.Secure = false
	}
	u.jar.SetCookies(url, cookies)
}

func (u *testCookieJar) Cookies(url *url2.URL) []*http.Cookie {
	return u.jar.Cookies(url)
}
