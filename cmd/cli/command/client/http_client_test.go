package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/maho-na510/aquarium-visit-log/cmd/cli/dto"
	apidto "github.com/maho-na510/aquarium-visit-log/internal/api/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHTTPClient(server.URL + "/api/v1/")
}

func TestLogin_SendsCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body dto.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test@example.com", body.Email)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user":{"id":1,"name":"テストユーザー","username":"testuser","email":"test@example.com","role":"user"},"token":"abc"}`))
	})

	res, err := c.Login(&dto.LoginRequest{Email: "test@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "abc", res.Token)
	assert.Equal(t, "testuser", res.User.Username)
}

func TestDo_SendsBearerToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Write([]byte(`{"user":null}`))
	})
	c.SetToken("secret")

	user, err := c.Me()
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestDo_DecodesErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/wishlist_items":
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"errors":["Aquarium はすでにウィッシュリストに追加されています"]}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"ログインが必要です"}`))
		}
	})

	id := int64(3)
	_, err := c.AddToWishlist(&dto.WishlistRequest{WishlistItem: apidto.WishlistItemInput{AquariumID: &id}})
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnprocessableEntity))
	assert.Contains(t, err.Error(), "すでに")

	err = c.RemoveFromWishlist(3)
	require.Error(t, err)
	assert.False(t, IsStatus(err, http.StatusUnprocessableEntity))
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, "ログインが必要です", err.Error())
}

func TestRanking_PassesQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/rankings/most_visited", r.URL.Path)
		assert.Equal(t, "month", r.URL.Query().Get("period"))
		w.Write([]byte(`{"rankings":[{"rank":1,"id":4,"name":"沖縄美ら海水族館","is_top5":true,"visit_count":12,"latest_visit":"2026-09-30"}],"period":"month","prefecture":null}`))
	})

	res, err := c.Ranking("most_visited", url.Values{"period": {"month"}})
	require.NoError(t, err)
	require.Len(t, res.Rankings, 1)

	row := res.Rankings[0]
	assert.Equal(t, 1, row.Rank)
	assert.True(t, row.IsTop5)
	require.NotNil(t, row.VisitCount)
	assert.Equal(t, int64(12), *row.VisitCount)
	require.NotNil(t, row.LatestVisit)
	assert.Equal(t, "2026-09-30", *row.LatestVisit)
	assert.Nil(t, row.AverageRating)
	assert.Nil(t, res.Prefecture)
}

func TestRemoveFromWishlist_NoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1/wishlist_items/9", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, c.RemoveFromWishlist(9))
}
