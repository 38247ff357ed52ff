//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

type postResponse struct {
	Success bool `json:"success"`
	Post    struct {
		ID        string `json:"id"`
		Slug      string `json:"slug"`
		Published bool   `json:"published"`
	} `json:"post"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func requireAdminPassword(t *testing.T) string {
	t.Helper()
	password := os.Getenv("ADMIN_PASSWORD")
	require.NotEmpty(t, password, "ADMIN_PASSWORD is required for e2e tests")
	return password
}

func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("ENVIS_BASE_URL", "http://localhost:8080")
	password := requireAdminPassword(t)
	suffix := strings.ToLower(ulid.Make().String())

	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, baseURL+"/readyz", "", nil, nil), "readyz")

	// Waitlist: first signup wins, the second is a conflict.
	signup := map[string]any{
		"name":       "E2E Family",
		"email":      "e2e-" + suffix + "@example.com",
		"familySize": "3",
	}
	require.Equal(t, http.StatusCreated, doJSON(t, http.MethodPost, baseURL+"/api/waitlist", "", signup, nil), "waitlist join")
	var conflict errorResponse
	require.Equal(t, http.StatusConflict, doJSON(t, http.MethodPost, baseURL+"/api/waitlist", "", signup, &conflict), "duplicate join")
	assert.Equal(t, "ALREADY_ON_WAITLIST", conflict.Code)

	token := login(t, baseURL, password)

	// Blog: drafts stay hidden until published.
	slug := "e2e-" + suffix
	var created postResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/admin/blog", token, map[string]any{
		"title":     "E2E <post>",
		"slug":      slug,
		"excerpt":   "Written by the smoke test",
		"content":   "# Hello",
		"published": false,
	}, &created)
	require.Equal(t, http.StatusCreated, status, "create post")
	postURL := baseURL + "/api/admin/blog/" + created.Post.ID
	t.Cleanup(func() { doJSON(t, http.MethodDelete, postURL, token, nil, nil) })

	require.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, baseURL+"/api/blog/"+slug, "", nil, nil), "draft visible publicly")

	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPatch, postURL, token, map[string]any{"published": true}, nil), "publish post")
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, baseURL+"/api/blog/"+slug, "", nil, nil), "published post")

	sitemap := getBody(t, baseURL+"/sitemap.xml")
	assert.Contains(t, sitemap, "/blog/"+slug+"</loc>", "sitemap missing published post")

	page := getBody(t, baseURL+"/blog/"+slug)
	if strings.Contains(page, "<head>") {
		assert.Contains(t, page, "E2E &lt;post&gt; |", "blog page missing escaped title")
	}

	require.Equal(t, http.StatusOK, doJSON(t, http.MethodDelete, postURL, token, nil, nil), "delete post")
	require.Equal(t, http.StatusNotFound, doJSON(t, http.MethodDelete, postURL, token, nil, nil), "second delete")

	// Logout revokes the token.
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, baseURL+"/api/admin/logout", token, nil, nil), "logout")
	require.Equal(t, http.StatusUnauthorized, doJSON(t, http.MethodGet, baseURL+"/api/admin/blog", token, nil, nil), "revoked token")
}

func TestE2EProducts(t *testing.T) {
	baseURL := envOrDefault("ENVIS_BASE_URL", "http://localhost:8080")

	var resp struct {
		Data []struct {
			ID     string `json:"id"`
			Prices []struct {
				UnitAmount int64 `json:"unit_amount"`
			} `json:"prices"`
		} `json:"data"`
	}
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, baseURL+"/api/products", "", nil, &resp), "products")
	for _, p := range resp.Data {
		assert.NotEmpty(t, p.Prices, "product %s listed without an active price", p.ID)
	}
}

// TestE2ERateLimiting hammers the login scope with wrong passwords until
// the limiter answers 429.
func TestE2ERateLimiting(t *testing.T) {
	baseURL := envOrDefault("ENVIS_BASE_URL", "http://localhost:8080")
	client := &http.Client{Timeout: 10 * time.Second}

	var limited *http.Response
	for i := 0; i < 50; i++ {
		resp, err := client.Post(baseURL+"/api/admin/login", "application/json",
			strings.NewReader(`{"password":"definitely-wrong"}`))
		require.NoError(t, err)
		if resp.StatusCode == http.StatusTooManyRequests {
			limited = resp
			break
		}
		resp.Body.Close()
	}
	require.NotNil(t, limited, "expected 429 after burst, never rate limited")
	defer limited.Body.Close()

	assert.NotEmpty(t, limited.Header.Get("Retry-After"), "missing Retry-After header on 429 response")
	var errResp errorResponse
	require.NoError(t, json.NewDecoder(limited.Body).Decode(&errResp))
	assert.Equal(t, "RATE_LIMITED", errResp.Code)
}

// TestE2ENoSecretsInResponses checks that presented credentials are never
// echoed back.
func TestE2ENoSecretsInResponses(t *testing.T) {
	baseURL := envOrDefault("ENVIS_BASE_URL", "http://localhost:8080")

	fake := "eyJhbGciOiJIUzI1NiJ9." + strings.Repeat("x", 32) + ".sig"
	req, err := http.NewRequest(http.MethodGet, baseURL+"/api/admin/blog", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+fake)

	resp, err := (&http.Client{Timeout: 10 * time.Second}).Do(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotContains(t, string(body), fake, "SECURITY: error response leaked the presented token")

	wrong := "not-the-password-" + ulid.Make().String()
	assert.NotContains(t, getLoginFailureBody(t, baseURL, wrong), wrong, "SECURITY: login failure echoed the password")
}

func login(t *testing.T, baseURL, password string) string {
	t.Helper()
	var resp loginResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/admin/login", "", map[string]string{"password": password}, &resp)
	require.Equal(t, http.StatusOK, status, "admin login")
	require.NotEmpty(t, resp.Token, "admin login returned no token")
	return resp.Token
}

func getLoginFailureBody(t *testing.T, baseURL, password string) string {
	t.Helper()
	payload, _ := json.Marshal(map[string]string{"password": password})
	resp, err := http.Post(baseURL+"/api/admin/login", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return string(body)
}

func getBody(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "GET %s", url)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func doJSON(t *testing.T, method, url, token string, body any, out any) int {
	t.Helper()

	var buf io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err, "request %s %s", method, url)
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); resp.ContentLength != 0 {
			require.NoError(t, err, "decode %s %s", method, url)
		}
	}

	return resp.StatusCode
}
