package fatsecret_test

// Coverage Notes:
// - Every test talks to an httptest server through the real request path:
//   signing, form encoding, classification and parsing.
// - The remote error table is exercised end to end, including error objects
//   delivered with a non-2xx status.
// - Token mode is covered for the single renewal retry; OAuth1 mode must
//   never retry.

import (
	"context"
	"crypto/hmac"
	"crypto/sha1" // #nosec G505 -- verifying OAuth 1.0 HMAC-SHA1 signatures
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-fatsecret/internal/apierr"
	"github.com/alnah/go-fatsecret/internal/fatsecret"
	"github.com/alnah/go-fatsecret/internal/lang"
	"github.com/alnah/go-fatsecret/internal/metrics"
	"github.com/alnah/go-fatsecret/internal/oauth1"
	"github.com/alnah/go-fatsecret/internal/token"
)

const (
	testKey    = "test-consumer-key"
	testSecret = "test-consumer-secret"
)

const twoFoodsBody = `{
  "foods": {
    "max_results": "10",
    "page_number": "0",
    "total_results": "2",
    "food": [
      {"food_id": "33691", "food_name": "Banana", "food_type": "Generic",
       "food_description": "Per 100g - Calories: 89kcal"},
      {"food_id": "424791", "food_name": "Banana Bread", "food_type": "Generic",
       "food_description": "Per 1 slice - Calories: 196kcal"}
    ]
  }
}`

const bananaBody = `{
  "food": {
    "food_id": "33691",
    "food_name": "Banana",
    "food_type": "Generic",
    "servings": {
      "serving": {"serving_id": "32978", "serving_description": "1 medium", "calories": "105"}
    }
  }
}`

const recipesBody = `{
  "recipes": {
    "max_results": "5", "page_number": "1", "total_results": "1",
    "recipe": {"recipe_id": "12345", "recipe_name": "Chocolate Chip Cookies"}
  }
}`

const recipeBody = `{
  "recipe": {
    "recipe_id": "12345",
    "recipe_name": "Chocolate Chip Cookies",
    "number_of_servings": "24",
    "ingredients": {"ingredient": {"food_id": "1001", "food_name": "Butter", "ingredient_description": "1 cup butter"}},
    "directions": {"direction": {"direction_description": "Bake", "direction_number": "1"}}
  }
}`

func errorBody(code int, msg string) string {
	return fmt.Sprintf(`{"error":{"code":%d,"message":%q}}`, code, msg)
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// fakeAPI records requests and answers with a per-method handler.
type fakeAPI struct {
	hits   atomic.Int32
	routes map[string]http.HandlerFunc

	mu       sync.Mutex
	received []received
}

type received struct {
	method string
	form   url.Values
	header http.Header
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{routes: make(map[string]http.HandlerFunc)}
	srv := httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(srv.Close)
	return api, srv
}

func (a *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	a.hits.Add(1)
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a.mu.Lock()
	a.received = append(a.received, received{method: r.Method, form: r.Form, header: r.Header.Clone()})
	a.mu.Unlock()

	h, ok := a.routes[r.Form.Get("method")]
	if !ok {
		_, _ = io.WriteString(w, errorBody(101, "unknown method "+r.Form.Get("method")))
		return
	}
	h(w, r)
}

// requests returns a snapshot of every request received so far.
func (a *fakeAPI) requests() []received {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]received(nil), a.received...)
}

// last returns the most recent request for an API method.
func (a *fakeAPI) last(t *testing.T, apiMethod string) received {
	t.Helper()
	reqs := a.requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].form.Get("method") == apiMethod {
			return reqs[i]
		}
	}
	t.Fatalf("no request for %s", apiMethod)
	return received{}
}

func (a *fakeAPI) reply(method string, status int, body string) {
	a.routes[method] = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func newSigner(t *testing.T) *oauth1.Signer {
	t.Helper()
	s, err := oauth1.NewSigner(oauth1.Credentials{ConsumerKey: testKey, ConsumerSecret: testSecret})
	require.NoError(t, err)
	return s
}

func newOAuth1Client(t *testing.T, srv *httptest.Server, opts ...fatsecret.Option) *fatsecret.Client {
	t.Helper()
	opts = append([]fatsecret.Option{
		fatsecret.WithBaseURL(srv.URL),
		fatsecret.WithHTTPClient(srv.Client()),
	}, opts...)
	c, err := fatsecret.New(fatsecret.NewOAuth1Authenticator(newSigner(t)), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// ---------------------------------------------------------------------------
// TestNew
// ---------------------------------------------------------------------------

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	auth := fatsecret.NewOAuth1Authenticator(newSigner(t))

	tests := []struct {
		name string
		auth fatsecret.Authenticator
		opts []fatsecret.Option
	}{
		{"nil authenticator", nil, nil},
		{"unsupported method", auth, []fatsecret.Option{fatsecret.WithHTTPMethod("PUT")}},
		{"relative base URL", auth, []fatsecret.Option{fatsecret.WithBaseURL("/rest/server.api")}},
		{"ftp base URL", auth, []fatsecret.Option{fatsecret.WithBaseURL("ftp://platform.fatsecret.com/")}},
		{"base URL with query", auth, []fatsecret.Option{fatsecret.WithBaseURL("https://x.test/api?a=b")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := fatsecret.New(tt.auth, tt.opts...)
			assert.Nil(t, c)
			assert.ErrorIs(t, err, apierr.ErrValidation)
		})
	}
}

func TestNew_DefaultsAndClose(t *testing.T) {
	t.Parallel()

	c, err := fatsecret.New(fatsecret.NewOAuth1Authenticator(newSigner(t)), fatsecret.WithHTTPMethod("get"))
	require.NoError(t, err)
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close(), "Close must be idempotent")

	var nilClient *fatsecret.Client
	assert.NoError(t, nilClient.Close())
}

// closingAuth is an OAuth1 authenticator that also counts Close calls.
type closingAuth struct {
	fatsecret.Authenticator
	closed atomic.Int32
}

func (a *closingAuth) Close() error {
	a.closed.Add(1)
	return nil
}

func TestClose_ClosesAuthenticator(t *testing.T) {
	t.Parallel()

	auth := &closingAuth{Authenticator: fatsecret.NewOAuth1Authenticator(newSigner(t))}
	c, err := fatsecret.New(auth)
	require.NoError(t, err)

	require.NoError(t, c.Close())
	assert.Equal(t, int32(1), auth.closed.Load())
}

// closingSource is a token source holding a resource.
type closingSource struct {
	token.Source
	closed atomic.Int32
}

func (s *closingSource) Close() error {
	s.closed.Add(1)
	return nil
}

func TestClose_ReleasesTokenSource(t *testing.T) {
	t.Parallel()

	var acquired atomic.Int32
	src := &closingSource{Source: tokenSequence(&acquired)}
	c, err := fatsecret.New(fatsecret.NewTokenAuthenticator(token.NewCache(src)))
	require.NoError(t, err)

	require.NoError(t, c.Close())
	assert.Equal(t, int32(1), src.closed.Load())
	assert.Equal(t, int32(0), acquired.Load())
}

// ---------------------------------------------------------------------------
// End-to-end scenarios
// ---------------------------------------------------------------------------

func TestScenario_SearchFoods(t *testing.T) {
	t.Parallel()

	api, srv := newFakeAPI(t)
	api.reply(fatsecret.MethodFoodsSearch, http.StatusOK, twoFoodsBody)
	c := newOAuth1Client(t, srv)

	got, err := c.SearchFoods(context.Background(), "banana", 0, 10)
	require.NoError(t, err)
	require.Len(t, got.Foods, 2)
	assert.Equal(t, 0, got.PageNumber)
	assert.Equal(t, 2, got.TotalResults)
	assert.Equal(t, "Banana Bread", got.Foods[1].Name)

	form := api.last(t, fatsecret.MethodFoodsSearch).form
	assert.Equal(t, "banana", form.Get("search_expression"))
	assert.Equal(t, "0", form.Get("page_number"))
	assert.Equal(t, "10", form.Get("max_results"))
	assert.Equal(t, "json", form.Get("format"))
	assert.Equal(t, testKey, form.Get(oauth1.ParamConsumerKey))
}

func TestScenario_LookupBarcodeNotFound(t *testing.T) {
	t.Parallel()

	api, srv := newFakeAPI(t)
	api.reply(fatsecret.MethodFoodIDFromBarcode, http.StatusOK, errorBody(110, "Invalid barcode"))
	c := newOAuth1Client(t, srv)

	food, err := c.LookupBarcode(context.Background(), "0000000000000")
	assert.Nil(t, food)
	require.ErrorIs(t, err, apierr.ErrBarcodeNotFound)

	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 110, apiErr.Code)
	assert.Equal(t, int32(1), api.hits.Load())
}

func TestScenario_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c := newOAuth1Client(t, srv, fatsecret.WithTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := c.SearchFoods(context.Background(), "banana", 0, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ErrTransport)
	assert.ErrorIs(t, err, apierr.ErrTimeout)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestScenario_TruncatedBody(t *testing.T) {
	t.Parallel()

	api, srv := newFakeAPI(t)
	api.reply(fatsecret.MethodFoodGet, http.StatusOK, `{"food": {"food_id": "12345", "food_name": "Ban`)
	c := newOAuth1Client(t, srv)

	food, err := c.GetFood(context.Background(), "12345")
	assert.Nil(t, food)
	assert.ErrorIs(t, err, apierr.ErrParse)
}

// ---------------------------------------------------------------------------
// TestRemoteErrors
// ---------------------------------------------------------------------------

func TestRemoteErrors_Classification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code int
		want error
	}{
		{2, apierr.ErrAuthFailed},
		{3, apierr.ErrAuthFailed},
		{4, apierr.ErrAuthFailed},
		{5, apierr.ErrAuthFailed},
		{6, apierr.ErrAuthFailed},
		{7, apierr.ErrAuthFailed},
		{8, apierr.ErrAuthFailed},
		{9, apierr.ErrRateLimit},
		{13, apierr.ErrAuthFailed},
		{14, apierr.ErrAuthFailed},
		{106, apierr.ErrFoodNotFound},
		{107, apierr.ErrRecipeNotFound},
		{110, apierr.ErrBarcodeNotFound},
		{1, apierr.ErrRemote},
		{12, apierr.ErrRemote},
		{101, apierr.ErrRemote},
		{211, apierr.ErrRemote},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("code %d", tt.code), func(t *testing.T) {
			t.Parallel()

			api, srv := newFakeAPI(t)
			api.reply(fatsecret.MethodFoodGet, http.StatusOK, errorBody(tt.code, "remote says no"))
			c := newOAuth1Client(t, srv)

			_, err := c.GetFood(context.Background(), "1")
			require.ErrorIs(t, err, tt.want)

			var apiErr *apierr.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, http.StatusOK, apiErr.Status)
			assert.Contains(t, err.Error(), "remote says no")
			assert.Equal(t, int32(1), api.hits.Load(), "OAuth1 mode must not retry")
		})
	}
}

func TestRemoteErrors_StatusPrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		want       error
		wantStatus int
	}{
		{"error object wins over 401", http.StatusUnauthorized, errorBody(8, "bad signature"), apierr.ErrAuthFailed, 401},
		{"error object wins over 500", http.StatusInternalServerError, errorBody(9, "slow down"), apierr.ErrRateLimit, 500},
		{"bare 500", http.StatusInternalServerError, "", apierr.ErrTransport, 500},
		{"bare 429 is transport", http.StatusTooManyRequests, "", apierr.ErrTransport, 429},
		{"quota code on 429", http.StatusTooManyRequests, errorBody(9, "over quota"), apierr.ErrRateLimit, 429},
		{"html 502", http.StatusBadGateway, "<html>bad gateway</html>", apierr.ErrTransport, 502},
		{"zero code on 503", http.StatusServiceUnavailable, errorBody(0, ""), apierr.ErrTransport, 503},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api, srv := newFakeAPI(t)
			api.reply(fatsecret.MethodRecipeGet, tt.status, tt.body)
			c := newOAuth1Client(t, srv)

			_, err := c.GetRecipe(context.Background(), "12345")
			require.ErrorIs(t, err, tt.want)

			var apiErr *apierr.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.Status)
		})
	}
}

func TestClassifyTransportError(t *testing.T) {
	t.Parallel()

	err := fatsecret.ClassifyTransportError("send request", 0, context.DeadlineExceeded)
	assert.ErrorIs(t, err, apierr.ErrTransport)
	assert.ErrorIs(t, err, apierr.ErrTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	err = fatsecret.ClassifyTransportError("send request", 0, errors.New("connection refused"))
	assert.ErrorIs(t, err, apierr.ErrTransport)
	assert.NotErrorIs(t, err, apierr.ErrTimeout)
}

func TestClassifyResponse_Success(t *testing.T) {
	t.Parallel()

	body, err := fatsecret.ClassifyResponse(http.StatusOK, []byte(twoFoodsBody))
	require.NoError(t, err)
	assert.Equal(t, twoFoodsBody, string(body))

	body, err = fatsecret.ClassifyResponse(http.StatusOK, []byte(`{"error":{"code":"9","message":"x"}}`))
	assert.Nil(t, body)
	assert.ErrorIs(t, err, apierr.ErrRateLimit, "string-encoded codes are still classified")
}

// ---------------------------------------------------------------------------
// TestValidation
// ---------------------------------------------------------------------------

func TestValidation_NoNetworkCall(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	doer := fatsecret.DoerFunc(func(*http.Request) (*http.Response, error) {
		calls.Add(1)
		return nil, errors.New("unexpected network call")
	})
	c, err := fatsecret.New(fatsecret.NewOAuth1Authenticator(newSigner(t)), fatsecret.WithHTTPDoer(doer))
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name string
		run  func() error
	}{
		{"blank query", func() error { _, err := c.SearchFoods(ctx, "   ", 0, 10); return err }},
		{"negative page", func() error { _, err := c.SearchFoods(ctx, "banana", -1, 10); return err }},
		{"zero max results", func() error { _, err := c.SearchRecipes(ctx, "cake", 0, 0); return err }},
		{"max results above limit", func() error { _, err := c.SearchRecipes(ctx, "cake", 0, 51); return err }},
		{"empty food id", func() error { _, err := c.GetFood(ctx, ""); return err }},
		{"non-numeric food id", func() error { _, err := c.GetFood(ctx, "12a"); return err }},
		{"non-numeric recipe id", func() error { _, err := c.GetRecipe(ctx, "-5"); return err }},
		{"empty barcode", func() error { _, err := c.LookupBarcode(ctx, ""); return err }},
		{"short barcode", func() error { _, err := c.LookupBarcode(ctx, "12345"); return err }},
		{"unknown region", func() error {
			_, err := c.SearchFoods(ctx, "banana", 0, 10, fatsecret.Region("XX"))
			return err
		}},
		{"unknown language", func() error {
			_, err := c.SearchFoods(ctx, "banana", 0, 10, fatsecret.Region("FR"), fatsecret.Language("xx"))
			return err
		}},
		{"language without region", func() error {
			_, err := c.SearchRecipes(ctx, "cake", 0, 10, fatsecret.Language("fr"))
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), apierr.ErrValidation)
		})
	}
	assert.Equal(t, int32(0), calls.Load())
}

func TestValidation_RegionCause(t *testing.T) {
	t.Parallel()

	c, err := fatsecret.New(fatsecret.NewOAuth1Authenticator(newSigner(t)))
	require.NoError(t, err)

	_, err = c.SearchFoods(context.Background(), "banana", 0, 10, fatsecret.Region("ZZ"))
	assert.ErrorIs(t, err, apierr.ErrValidation)
	assert.ErrorIs(t, err, lang.ErrInvalidRegion)
}

func TestSearch_Localization(t *testing.T) {
	t.Parallel()

	api, srv := newFakeAPI(t)
	api.reply(fatsecret.MethodRecipesSearch, http.StatusOK, recipesBody)
	c := newOAuth1Client(t, srv)

	got, err := c.SearchRecipes(context.Background(), "cookies", 1, 5, fatsecret.Region("fr"), fatsecret.Language("FR-fr"))
	require.NoError(t, err)
	require.Len(t, got.Recipes, 1)
	assert.Equal(t, 1, got.PageNumber)
	form := api.last(t, fatsecret.MethodRecipesSearch).form
	assert.Equal(t, "FR", form.Get("region"))
	assert.Equal(t, "fr", form.Get("language"))
}

func TestNormalizeBarcode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"EAN-13", "3017620422003", "3017620422003", false},
		{"all zeros", "0000000000000", "0000000000000", false},
		{"UPC-A padded", "041196910759", "0041196910759", false},
		{"EAN-8 padded", "96385074", "0000096385074", false},
		{"GTIN-14 leading zero", "03017620422003", "3017620422003", false},
		{"surrounding spaces", " 3017620422003 ", "3017620422003", false},
		{"GTIN-14 indicator", "13017620422003", "", true},
		{"letters", "30176204220AB", "", true},
		{"dashes", "3017-620422003", "", true},
		{"too short", "1234567", "", true},
		{"too long", "123456789012345", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := fatsecret.NormalizeBarcode(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, apierr.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ---------------------------------------------------------------------------
// TestLookupBarcode
// ---------------------------------------------------------------------------

func TestLookupBarcode(t *testing.T) {
	t.Parallel()

	api, srv := newFakeAPI(t)
	api.reply(fatsecret.MethodFoodIDFromBarcode, http.StatusOK, `{"food_id":{"value":"33691"}}`)
	api.reply(fatsecret.MethodFoodGet, http.StatusOK, bananaBody)
	c := newOAuth1Client(t, srv)

	food, err := c.LookupBarcode(context.Background(), "041196910759")
	require.NoError(t, err)
	assert.Equal(t, "Banana", food.Name)
	require.Len(t, food.Servings, 1)
	assert.Equal(t, "0041196910759", api.last(t, fatsecret.MethodFoodIDFromBarcode).form.Get("barcode"))
	assert.Equal(t, "33691", api.last(t, fatsecret.MethodFoodGet).form.Get("food_id"))
}

func TestLookupBarcode_NoMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"zero id", `{"food_id":{"value":"0"}}`},
		{"food not found code", errorBody(106, "No food")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api, srv := newFakeAPI(t)
			api.reply(fatsecret.MethodFoodIDFromBarcode, http.StatusOK, tt.body)
			c := newOAuth1Client(t, srv)

			_, err := c.LookupBarcode(context.Background(), "3017620422003")
			assert.ErrorIs(t, err, apierr.ErrBarcodeNotFound)
			assert.NotErrorIs(t, err, apierr.ErrFoodNotFound)
			assert.Equal(t, int32(1), api.hits.Load(), "food.get.v4 must not be called")
		})
	}
}

// ---------------------------------------------------------------------------
// TestRecipes
// ---------------------------------------------------------------------------

func TestGetRecipe(t *testing.T) {
	t.Parallel()

	api, srv := newFakeAPI(t)
	api.reply(fatsecret.MethodRecipeGet, http.StatusOK, recipeBody)
	c := newOAuth1Client(t, srv)

	r, err := c.GetRecipe(context.Background(), "12345")
	require.NoError(t, err)
	assert.Equal(t, "Chocolate Chip Cookies", r.Name)
	assert.Equal(t, int64(24), r.NumberOfServings.Value)
	require.Len(t, r.Ingredients, 1)
	require.Len(t, r.Directions, 1)
}

// ---------------------------------------------------------------------------
// TestOAuth1Signing
// ---------------------------------------------------------------------------

func TestOAuth1_SignatureVerifies(t *testing.T) {
	t.Parallel()

	for _, method := range []string{http.MethodPost, http.MethodGet} {
		t.Run(method, func(t *testing.T) {
			t.Parallel()

			api, srv := newFakeAPI(t)
			api.reply(fatsecret.MethodFoodsSearch, http.StatusOK, twoFoodsBody)

			c := newOAuth1Client(t, srv, fatsecret.WithHTTPMethod(method))
			_, err := c.SearchFoods(context.Background(), "peanut butter & jelly", 2, 20)
			require.NoError(t, err)

			got := api.last(t, fatsecret.MethodFoodsSearch)
			params := got.form
			assert.Equal(t, method, got.method)
			assert.Equal(t, "peanut butter & jelly", params.Get("search_expression"))
			assert.Equal(t, oauth1.SignatureMethod, params.Get(oauth1.ParamSignatureMethod))
			assert.Equal(t, oauth1.Version, params.Get(oauth1.ParamVersion))

			sig := params.Get(oauth1.ParamSignature)
			require.NotEmpty(t, sig)
			unsigned := url.Values{}
			for k, v := range params {
				if k != oauth1.ParamSignature {
					unsigned[k] = v
				}
			}
			mac := hmac.New(sha1.New, []byte(oauth1.PercentEncode(testSecret)+"&"))
			mac.Write([]byte(oauth1.BaseString(method, srv.URL, unsigned)))
			assert.Equal(t, base64.StdEncoding.EncodeToString(mac.Sum(nil)), sig)
		})
	}
}

func TestOAuth1_FreshNoncePerCall(t *testing.T) {
	t.Parallel()

	api, srv := newFakeAPI(t)
	api.reply(fatsecret.MethodFoodGet, http.StatusOK, bananaBody)
	c := newOAuth1Client(t, srv)

	for range 2 {
		_, err := c.GetFood(context.Background(), "33691")
		require.NoError(t, err)
	}
	reqs := api.requests()
	require.Len(t, reqs, 2)
	assert.NotEqual(t, reqs[0].form.Get(oauth1.ParamNonce), reqs[1].form.Get(oauth1.ParamNonce))
}

// ---------------------------------------------------------------------------
// TestTokenMode
// ---------------------------------------------------------------------------

// tokenSequence hands out tok-1, tok-2, ... and counts acquisitions.
func tokenSequence(n *atomic.Int32) token.Source {
	return token.SourceFunc(func(context.Context) (token.Token, error) {
		i := n.Add(1)
		return token.Token{Value: fmt.Sprintf("tok-%d", i), Type: "Bearer", Expiry: time.Now().Add(time.Hour)}, nil
	})
}

func newTokenClient(t *testing.T, srv *httptest.Server, acquired *atomic.Int32) *fatsecret.Client {
	t.Helper()
	cache := token.NewCache(tokenSequence(acquired))
	c, err := fatsecret.New(fatsecret.NewTokenAuthenticator(cache),
		fatsecret.WithBaseURL(srv.URL),
		fatsecret.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return c
}

func TestTokenMode_RetriesOnceWithFreshToken(t *testing.T) {
	t.Parallel()

	api, srv := newFakeAPI(t)
	api.routes[fatsecret.MethodFoodsSearch] = func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer tok-1" {
			_, _ = io.WriteString(w, errorBody(13, "Invalid or expired token"))
			return
		}
		_, _ = io.WriteString(w, twoFoodsBody)
	}
	var acquired atomic.Int32
	c := newTokenClient(t, srv, &acquired)

	got, err := c.SearchFoods(context.Background(), "banana", 0, 10)
	require.NoError(t, err)
	assert.Len(t, got.Foods, 2)
	var seen []string
	for _, r := range api.requests() {
		seen = append(seen, r.header.Get("Authorization"))
		assert.Empty(t, r.form.Get(oauth1.ParamSignature))
	}
	assert.Equal(t, []string{"Bearer tok-1", "Bearer tok-2"}, seen)
	assert.Equal(t, int32(2), acquired.Load())

	// The renewed token is reused.
	_, err = c.SearchFoods(context.Background(), "banana", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int32(2), acquired.Load())
}

func TestTokenMode_GivesUpAfterOneRetry(t *testing.T) {
	t.Parallel()

	api, srv := newFakeAPI(t)
	api.reply(fatsecret.MethodFoodGet, http.StatusUnauthorized, errorBody(13, "Invalid token"))
	var acquired atomic.Int32
	c := newTokenClient(t, srv, &acquired)

	_, err := c.GetFood(context.Background(), "33691")
	assert.ErrorIs(t, err, apierr.ErrAuthFailed)
	assert.Equal(t, int32(2), api.hits.Load())
	assert.Equal(t, int32(2), acquired.Load())
}

func TestTokenMode_NoRetryForOtherErrors(t *testing.T) {
	t.Parallel()

	api, srv := newFakeAPI(t)
	api.reply(fatsecret.MethodFoodGet, http.StatusOK, errorBody(106, "No food"))
	var acquired atomic.Int32
	c := newTokenClient(t, srv, &acquired)

	_, err := c.GetFood(context.Background(), "1")
	assert.ErrorIs(t, err, apierr.ErrFoodNotFound)
	assert.Equal(t, int32(1), api.hits.Load())
}

func TestTokenMode_AcquisitionFailure(t *testing.T) {
	t.Parallel()

	api, srv := newFakeAPI(t)
	src := token.SourceFunc(func(context.Context) (token.Token, error) {
		return token.Token{}, &apierr.Error{Kind: apierr.KindAuthentication, Status: 401, Message: "invalid_client"}
	})
	c, err := fatsecret.New(fatsecret.NewTokenAuthenticator(token.NewCache(src)),
		fatsecret.WithBaseURL(srv.URL),
		fatsecret.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	_, err = c.GetFood(context.Background(), "1")
	assert.ErrorIs(t, err, apierr.ErrAuthFailed)
	assert.Equal(t, int32(0), api.hits.Load())
}

// ---------------------------------------------------------------------------
// TestRateLimit / TestMetrics
// ---------------------------------------------------------------------------

func TestRateLimit_WaitRespectsDeadline(t *testing.T) {
	t.Parallel()

	api, srv := newFakeAPI(t)
	api.reply(fatsecret.MethodFoodGet, http.StatusOK, bananaBody)
	c := newOAuth1Client(t, srv, fatsecret.WithRateLimit(0.001, 1))

	_, err := c.GetFood(context.Background(), "33691")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.GetFood(ctx, "33691")
	assert.ErrorIs(t, err, apierr.ErrTransport)
	assert.Equal(t, int32(1), api.hits.Load())
}

func TestMetrics_RecordsOutcomes(t *testing.T) {
	t.Parallel()

	api, srv := newFakeAPI(t)
	api.reply(fatsecret.MethodFoodsSearch, http.StatusOK, twoFoodsBody)
	api.reply(fatsecret.MethodFoodGet, http.StatusOK, `{"food": `)

	reg := prometheus.NewRegistry()
	c := newOAuth1Client(t, srv, fatsecret.WithMetrics(metrics.NewCollector(reg)))

	_, err := c.SearchFoods(context.Background(), "banana", 0, 10)
	require.NoError(t, err)
	_, err = c.GetFood(context.Background(), "1")
	require.ErrorIs(t, err, apierr.ErrParse)

	expected := `
# HELP fatsecret_requests_total FatSecret API calls by API method and outcome
# TYPE fatsecret_requests_total counter
fatsecret_requests_total{api_method="food.get.v4",outcome="parse"} 1
fatsecret_requests_total{api_method="foods.search",outcome="ok"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "fatsecret_requests_total"))
}
